package directoryservice

import (
	"log/slog"

	httpadapter "agora/contexts/identity-access/directory-service/adapters/http"
	"agora/contexts/identity-access/directory-service/adapters/memory"
	"agora/contexts/identity-access/directory-service/application"
	"agora/contexts/identity-access/directory-service/domain/entities"
	"agora/contexts/identity-access/directory-service/ports"
)

type Module struct {
	Handler httpadapter.Handler
	Store   *memory.Store
}

type Dependencies struct {
	Users  ports.UserRepository
	Clock  ports.Clock
	Logger *slog.Logger
}

func NewModule(deps Dependencies) Module {
	service := application.Service{
		Users:  deps.Users,
		Clock:  deps.Clock,
		Logger: deps.Logger,
	}
	return Module{
		Handler: httpadapter.Handler{
			Directory: service,
			Logger:    deps.Logger,
		},
	}
}

func NewInMemoryModule(seed []entities.User, logger *slog.Logger) Module {
	store := memory.NewStore(seed)
	module := NewModule(Dependencies{
		Users:  store,
		Clock:  store,
		Logger: logger,
	})
	module.Store = store
	return module
}
