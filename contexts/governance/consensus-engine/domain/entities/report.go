package entities

import "time"

type ConsensusStatus string

const (
	ConsensusStatusPending     ConsensusStatus = "PENDING"
	ConsensusStatusInConsensus ConsensusStatus = "IN_CONSENSUS"
	ConsensusStatusConsensed   ConsensusStatus = "CONSENSED"
	ConsensusStatusRejected    ConsensusStatus = "REJECTED"
)

func ParseConsensusStatus(raw string) (ConsensusStatus, bool) {
	switch ConsensusStatus(raw) {
	case ConsensusStatusPending, ConsensusStatusInConsensus, ConsensusStatusConsensed, ConsensusStatusRejected:
		return ConsensusStatus(raw), true
	default:
		return "", false
	}
}

type RoundStatus string

// Round states keep the Spanish literals external clients depend on.
const (
	RoundStatusActive RoundStatus = "ACTIVA"
	RoundStatusClosed RoundStatus = "CERRADA"
)

type ConsensusVoteType string

const (
	ConsensusVoteConsent ConsensusVoteType = "CONSENTIR"
	ConsensusVoteObject  ConsensusVoteType = "OBJETAR"
	ConsensusVoteAbstain ConsensusVoteType = "ABSTENERSE"
)

func ParseConsensusVoteType(raw string) (ConsensusVoteType, bool) {
	switch ConsensusVoteType(raw) {
	case ConsensusVoteConsent, ConsensusVoteObject, ConsensusVoteAbstain:
		return ConsensusVoteType(raw), true
	default:
		return "", false
	}
}

type ObjectionStatus string

const (
	ObjectionStatusPending ObjectionStatus = "PENDIENTE"
	ObjectionStatusValid   ObjectionStatus = "VALIDA"
	ObjectionStatusInvalid ObjectionStatus = "INVALIDA"
)

func ParseObjectionStatus(raw string) (ObjectionStatus, bool) {
	switch ObjectionStatus(raw) {
	case ObjectionStatusPending, ObjectionStatusValid, ObjectionStatusInvalid:
		return ObjectionStatus(raw), true
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

type QuarterlyReport struct {
	ReportID        string
	WorkGroupID     string
	Year            int
	Quarter         int
	ConsensusStatus ConsensusStatus
	Participants    []string
	BudgetItems     []BudgetItem
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// VotingRound is one bounded consensus window. RoundNumber is monotonic per
// report and at most one round per report is ACTIVA.
type VotingRound struct {
	RoundID     string
	ReportID    string
	RoundNumber int
	Status      RoundStatus
	StartedAt   time.Time
	ClosedAt    *time.Time
}

func (r VotingRound) IsActive() bool {
	return r.Status == RoundStatusActive
}

type ConsensusVote struct {
	VoteID    string
	RoundID   string
	UserID    string
	VoteType  ConsensusVoteType
	Comment   string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Objection is the formal dissent record attached to an OBJETAR vote. It is
// adjudicated PENDIENTE -> VALIDA/INVALIDA by a consensus manager.
type Objection struct {
	ObjectionID string
	VoteID      string
	Status      ObjectionStatus
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
