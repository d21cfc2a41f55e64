package http

type ErrorResponse struct {
	Error string `json:"error"`
}

type ChangeRoleRequest struct {
	Role string `json:"role"`
}

type UserResponse struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

type WorkGroupMemberResponse struct {
	WorkGroupID string `json:"workGroupId"`
	UserID      string `json:"userId"`
	Role        string `json:"role"`
}

type WorkGroupMembersResponse struct {
	Members []WorkGroupMemberResponse `json:"members"`
}
