package entities

import "time"

type ProposalStatus string

const (
	ProposalStatusInReview ProposalStatus = "IN_REVIEW"
	ProposalStatusApproved ProposalStatus = "APPROVED"
	ProposalStatusRejected ProposalStatus = "REJECTED"
	ProposalStatusExpired  ProposalStatus = "EXPIRED"
)

func ParseProposalStatus(raw string) (ProposalStatus, bool) {
	switch ProposalStatus(raw) {
	case ProposalStatusInReview, ProposalStatusApproved, ProposalStatusRejected, ProposalStatusExpired:
		return ProposalStatus(raw), true
	default:
		return "", false
	}
}

type VoteType string

const (
	VoteTypePositive VoteType = "POSITIVE"
	VoteTypeNegative VoteType = "NEGATIVE"
	VoteTypeAbstain  VoteType = "ABSTAIN"
)

func ParseVoteType(raw string) (VoteType, bool) {
	switch VoteType(raw) {
	case VoteTypePositive, VoteTypeNegative, VoteTypeAbstain:
		return VoteType(raw), true
	default:
		return "", false
	}
}

type BudgetItem struct {
	Description string
	Quantity    int
	UnitPrice   float64
	Total       float64
}

type Proposal struct {
	ProposalID    string
	Title         string
	Description   string
	Status        ProposalStatus
	AuthorID      string
	ExpiresAt     time.Time
	PositiveVotes int
	NegativeVotes int
	AbstainVotes  int
	WorkGroupIDs  []string
	BudgetItems   []BudgetItem
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// ExpiresAtEndOfDay is the last instant of the expiry calendar day in UTC.
// A proposal stays votable through the whole of its expiry date.
func (p Proposal) ExpiresAtEndOfDay() time.Time {
	expiry := p.ExpiresAt.UTC()
	return time.Date(expiry.Year(), expiry.Month(), expiry.Day(), 23, 59, 59, 999999999, time.UTC)
}

func (p Proposal) IsExpired(now time.Time) bool {
	return p.ExpiresAtEndOfDay().Before(now.UTC())
}

func (p Proposal) TotalVotes() int {
	return p.PositiveVotes + p.NegativeVotes + p.AbstainVotes
}

// CounterFor maps a vote type onto its denormalized tally.
func (p Proposal) CounterFor(voteType VoteType) int {
	switch voteType {
	case VoteTypePositive:
		return p.PositiveVotes
	case VoteTypeNegative:
		return p.NegativeVotes
	default:
		return p.AbstainVotes
	}
}

type Vote struct {
	VoteID     string
	ProposalID string
	UserID     string
	VoteType   VoteType
	Comment    string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Comment is a proposal discussion entry. The row flagged Main is the one kept
// in sync with the author's latest vote justification.
type Comment struct {
	CommentID  string
	ProposalID string
	UserID     string
	Content    string
	Main       bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
