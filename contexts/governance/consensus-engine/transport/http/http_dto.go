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

type CreateReportRequest struct {
	WorkGroupID  string              `json:"workGroupId"`
	Year         int                 `json:"year"`
	Quarter      int                 `json:"quarter"`
	Participants []string            `json:"participants,omitempty"`
	BudgetItems  []BudgetItemPayload `json:"budgetItems,omitempty"`
}

type CastConsensusVoteRequest struct {
	ReportID string `json:"reportId"`
	VoteType string `json:"voteType"`
	Comment  string `json:"comment,omitempty"`
}

type UpdateConsensusStatusRequest struct {
	ConsensusStatus string `json:"consensusStatus"`
}

type AdjudicateObjectionRequest struct {
	Status string `json:"status"`
}

type ObjectionResponse struct {
	ID        string    `json:"id"`
	VoteID    string    `json:"voteId"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// VoterResponse is the embedded user relation on a returned vote.
type VoterResponse struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

type ConsensusVoteResponse struct {
	ID        string             `json:"id"`
	RoundID   string             `json:"roundId"`
	UserID    string             `json:"userId"`
	User      *VoterResponse     `json:"user,omitempty"`
	VoteType  string             `json:"voteType"`
	Comment   string             `json:"comment,omitempty"`
	Objection *ObjectionResponse `json:"objection,omitempty"`
	CreatedAt time.Time          `json:"createdAt"`
	UpdatedAt time.Time          `json:"updatedAt"`
}

type VotingRoundResponse struct {
	ID          string                  `json:"id"`
	ReportID    string                  `json:"reportId"`
	RoundNumber int                     `json:"roundNumber"`
	Status      string                  `json:"status"`
	StartedAt   time.Time               `json:"startedAt"`
	ClosedAt    *time.Time              `json:"closedAt,omitempty"`
	Votes       []ConsensusVoteResponse `json:"votes,omitempty"`
}

type ReportResponse struct {
	ID              string                `json:"id"`
	WorkGroupID     string                `json:"workGroupId"`
	Year            int                   `json:"year"`
	Quarter         int                   `json:"quarter"`
	ConsensusStatus string                `json:"consensusStatus"`
	Participants    []string              `json:"participants"`
	BudgetItems     []BudgetItemPayload   `json:"budgetItems"`
	Rounds          []VotingRoundResponse `json:"rounds,omitempty"`
	CreatedAt       time.Time             `json:"createdAt"`
	UpdatedAt       time.Time             `json:"updatedAt"`
}

type RoundVotesResponse struct {
	Items []ConsensusVoteResponse `json:"items"`
}

type UpdateConsensusStatusResponse struct {
	Success         bool   `json:"success"`
	ConsensusStatus string `json:"consensusStatus"`
}
