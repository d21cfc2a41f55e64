package http

import "time"

type ErrorResponse struct {
	Error string `json:"error"`
}

type BudgetItemPayload struct {
	Description string  `json:"description"`
	Quantity    int     `json:"quantity"`
	UnitPrice   float64 `json:"unitPrice"`
	Total       float64 `json:"total"`
}

type CreateProposalRequest struct {
	Title        string              `json:"title"`
	Description  string              `json:"description"`
	ExpiresAt    time.Time           `json:"expiresAt"`
	WorkGroupIDs []string            `json:"workGroupIds,omitempty"`
	BudgetItems  []BudgetItemPayload `json:"budgetItems,omitempty"`
}

// PatchProposalRequest carries a partial update; absent fields stay unchanged.
type PatchProposalRequest struct {
	Title        *string              `json:"title,omitempty"`
	Description  *string              `json:"description,omitempty"`
	ExpiresAt    *time.Time           `json:"expiresAt,omitempty"`
	WorkGroupIDs *[]string            `json:"workGroupIds,omitempty"`
	BudgetItems  *[]BudgetItemPayload `json:"budgetItems,omitempty"`
	Status       *string              `json:"status,omitempty"`
}

type CastVoteRequest struct {
	VoteType string `json:"voteType"`
	Comment  string `json:"comment,omitempty"`
}

type VoteResponse struct {
	ID         string    `json:"id"`
	ProposalID string    `json:"proposalId"`
	UserID     string    `json:"userId"`
	VoteType   string    `json:"voteType"`
	Comment    string    `json:"comment,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

type CommentResponse struct {
	ID         string    `json:"id"`
	ProposalID string    `json:"proposalId"`
	UserID     string    `json:"userId"`
	Content    string    `json:"content"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

type ProposalResponse struct {
	ID            string              `json:"id"`
	Title         string              `json:"title"`
	Description   string              `json:"description"`
	Status        string              `json:"status"`
	AuthorID      string              `json:"authorId"`
	ExpiresAt     time.Time           `json:"expiresAt"`
	PositiveVotes int                 `json:"positiveVotes"`
	NegativeVotes int                 `json:"negativeVotes"`
	AbstainVotes  int                 `json:"abstainVotes"`
	WorkGroupIDs  []string            `json:"workGroupIds"`
	BudgetItems   []BudgetItemPayload `json:"budgetItems"`
	Votes         []VoteResponse      `json:"votes,omitempty"`
	Comments      []CommentResponse   `json:"comments,omitempty"`
	CreatedAt     time.Time           `json:"createdAt"`
	UpdatedAt     time.Time           `json:"updatedAt"`
}

type CastVoteResponse struct {
	Proposal ProposalResponse `json:"proposal"`
	UserVote string           `json:"userVote"`
}

type ProposalListResponse struct {
	Items []ProposalResponse `json:"items"`
}

type DeleteProposalResponse struct {
	Success bool `json:"success"`
}
