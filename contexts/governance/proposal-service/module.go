package proposalservice

import (
	"log/slog"

	httpadapter "agora/contexts/governance/proposal-service/adapters/http"
	"agora/contexts/governance/proposal-service/adapters/memory"
	"agora/contexts/governance/proposal-service/application/commands"
	"agora/contexts/governance/proposal-service/application/queries"
	"agora/contexts/governance/proposal-service/domain/entities"
	"agora/contexts/governance/proposal-service/ports"
)

type Module struct {
	Handler httpadapter.Handler
	Store   *memory.Store
}

type Dependencies struct {
	Repo   ports.ProposalRepository
	Tx     ports.TxManager
	Clock  ports.Clock
	IDGen  ports.IDGenerator
	Logger *slog.Logger
}

func NewModule(deps Dependencies) Module {
	return Module{
		Handler: httpadapter.Handler{
			Votes: commands.VoteUseCase{
				Repo:   deps.Repo,
				Tx:     deps.Tx,
				Clock:  deps.Clock,
				IDGen:  deps.IDGen,
				Logger: deps.Logger,
			},
			CreateProposal: commands.CreateProposalUseCase{
				Repo:   deps.Repo,
				Clock:  deps.Clock,
				IDGen:  deps.IDGen,
				Logger: deps.Logger,
			},
			UpdateProposal: commands.UpdateProposalUseCase{
				Repo:   deps.Repo,
				Clock:  deps.Clock,
				Logger: deps.Logger,
			},
			DeleteProposal: commands.DeleteProposalUseCase{
				Repo:   deps.Repo,
				Tx:     deps.Tx,
				Logger: deps.Logger,
			},
			GetProposal:   queries.GetProposalUseCase{Repo: deps.Repo},
			ListProposals: queries.ListProposalsUseCase{Repo: deps.Repo},
			Logger:        deps.Logger,
		},
	}
}

func NewInMemoryModule(seed []entities.Proposal, logger *slog.Logger) Module {
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
