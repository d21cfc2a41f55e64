package errors

import "errors"

var (
	ErrReportNotFound    = errors.New("quarterly report not found")
	ErrObjectionNotFound = errors.New("objection not found")

	ErrInvalidReportInput       = errors.New("invalid report input")
	ErrReportExists             = errors.New("report already exists for workgroup and period")
	ErrInvalidConsensusVote     = errors.New("invalid consensus vote input")
	ErrObjectionCommentTooShort = errors.New("objection requires a justification of at least 10 characters")
	ErrInvalidConsensusStatus   = errors.New("invalid consensus status")
	ErrInvalidObjectionStatus   = errors.New("invalid objection status")

	// ErrReportConsensed gates every vote on a terminal report.
	ErrReportConsensed = errors.New("report already consensed")
	// ErrValidObjectionsPresent blocks CONSENSED while adjudicated-valid
	// objections remain in the active round.
	ErrValidObjectionsPresent = errors.New("cannot mark consensed while valid objections exist")

	ErrForbidden    = errors.New("caller lacks the required role")
	ErrVoteConflict = errors.New("consensus vote conflicts with an existing vote")
)
