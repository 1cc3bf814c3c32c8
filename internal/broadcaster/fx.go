package broadcaster

import (
	"github.com/fieldside/rightsdesk/internal/broadcaster/repository"
	"github.com/fieldside/rightsdesk/internal/broadcaster/service"
	"go.uber.org/fx"
)

var Module = fx.Module("broadcaster.service",
	fx.Provide(repository.NewRepository),
	fx.Provide(service.NewService),
)
