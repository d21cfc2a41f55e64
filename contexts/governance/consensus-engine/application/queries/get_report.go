package queries

import (
	"context"
	"strings"

	domainerrors "agora/contexts/governance/consensus-engine/domain/errors"
	"agora/contexts/governance/consensus-engine/ports"
)

type GetReportUseCase struct {
	Repo ports.ReportRepository
}

// Execute hydrates a report with its rounds newest-first, each round carrying
// its votes and their objections.
func (uc GetReportUseCase) Execute(ctx context.Context, reportID string) (ports.ReportView, error) {
	reportID = strings.TrimSpace(reportID)
	if reportID == "" {
		return ports.ReportView{}, domainerrors.ErrInvalidReportInput
	}
	report, err := uc.Repo.GetReport(ctx, reportID)
	if err != nil {
		return ports.ReportView{}, err
	}
	rounds, err := uc.Repo.ListRoundsByReport(ctx, reportID)
	if err != nil {
		return ports.ReportView{}, err
	}
	view := ports.ReportView{Report: report, Rounds: make([]ports.RoundView, 0, len(rounds))}
	for _, round := range rounds {
		votes, err := hydrateRound(ctx, uc.Repo, round.RoundID)
		if err != nil {
			return ports.ReportView{}, err
		}
		view.Rounds = append(view.Rounds, ports.RoundView{Round: round, Votes: votes})
	}
	return view, nil
}

type ListRoundVotesUseCase struct {
	Repo ports.ReportRepository
}

// Execute returns the round's votes with objections attached.
func (uc ListRoundVotesUseCase) Execute(ctx context.Context, roundID string) ([]ports.VoteView, error) {
	roundID = strings.TrimSpace(roundID)
	if roundID == "" {
		return nil, domainerrors.ErrInvalidReportInput
	}
	return hydrateRound(ctx, uc.Repo, roundID)
}

func hydrateRound(ctx context.Context, repo ports.ReportRepository, roundID string) ([]ports.VoteView, error) {
	votes, err := repo.ListVotesByRound(ctx, roundID)
	if err != nil {
		return nil, err
	}
	views := make([]ports.VoteView, 0, len(votes))
	for _, vote := range votes {
		view := ports.VoteView{Vote: vote}
		objection, found, err := repo.GetObjectionByVote(ctx, vote.VoteID)
		if err != nil {
			return nil, err
		}
		if found {
			obj := objection
			view.Objection = &obj
		}
		views = append(views, view)
	}
	return views, nil
}
