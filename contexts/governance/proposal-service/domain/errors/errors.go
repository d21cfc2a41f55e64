package errors

import "errors"

var (
	ErrInvalidVoteType      = errors.New("invalid vote type")
	ErrInvalidProposalInput = errors.New("invalid proposal input")
	ErrInvalidStatus        = errors.New("invalid proposal status")
	ErrEmptyPatch           = errors.New("proposal patch contains no fields")
	ErrProposalNotFound     = errors.New("proposal not found")
	ErrProposalNotInReview  = errors.New("proposal is not in review")
	ErrProposalExpired      = errors.New("proposal has expired")
	ErrForbidden            = errors.New("caller lacks the required role")
	ErrVoteConflict         = errors.New("concurrent vote for the same user and proposal")
)
