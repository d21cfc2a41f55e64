package consensusengine

import (
	"log/slog"

	httpadapter "agora/contexts/governance/consensus-engine/adapters/http"
	"agora/contexts/governance/consensus-engine/adapters/memory"
	"agora/contexts/governance/consensus-engine/application/commands"
	"agora/contexts/governance/consensus-engine/application/queries"
	"agora/contexts/governance/consensus-engine/domain/entities"
	"agora/contexts/governance/consensus-engine/ports"
)

type Module struct {
	Handler httpadapter.Handler
	Store   *memory.Store
}

type Dependencies struct {
	Repo   ports.ReportRepository
	Tx     ports.TxManager
	Clock  ports.Clock
	IDGen  ports.IDGenerator
	Logger *slog.Logger
}

func NewModule(deps Dependencies) Module {
	return Module{
		Handler: httpadapter.Handler{
			CastVote: commands.CastConsensusVoteUseCase{
				Repo:   deps.Repo,
				Tx:     deps.Tx,
				Clock:  deps.Clock,
				IDGen:  deps.IDGen,
				Logger: deps.Logger,
			},
			UpdateStatus: commands.UpdateConsensusStatusUseCase{
				Repo:   deps.Repo,
				Tx:     deps.Tx,
				Clock:  deps.Clock,
				Logger: deps.Logger,
			},
			AdjudicateObjection: commands.AdjudicateObjectionUseCase{
				Repo:   deps.Repo,
				Clock:  deps.Clock,
				Logger: deps.Logger,
			},
			CreateReport: commands.CreateReportUseCase{
				Repo:   deps.Repo,
				Clock:  deps.Clock,
				IDGen:  deps.IDGen,
				Logger: deps.Logger,
			},
			GetReport:      queries.GetReportUseCase{Repo: deps.Repo},
			ListRoundVotes: queries.ListRoundVotesUseCase{Repo: deps.Repo},
			Logger:         deps.Logger,
		},
	}
}

func NewInMemoryModule(seed []entities.QuarterlyReport, logger *slog.Logger) Module {
	store := memory.NewStore(seed)
	module := NewModule(Dependencies{
		Repo:   store,
		Tx:     store,
		Clock:  store,
		IDGen:  store,
		Logger: logger,
	})
	module.Store = store
	return module
}
