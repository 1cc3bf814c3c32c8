package territory

import (
	"github.com/fieldside/rightsdesk/internal/territory/repository"
	"github.com/fieldside/rightsdesk/internal/territory/service"
	"go.uber.org/fx"
)

var Module = fx.Module("territory.service",
	fx.Provide(repository.NewRepository),
	fx.Provide(service.NewService),
)
