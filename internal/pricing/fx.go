package pricing

import (
	"go.uber.org/fx"

	"github.com/fieldside/rightsdesk/internal/pricing/repository"
	"github.com/fieldside/rightsdesk/internal/pricing/service"
	"github.com/fieldside/rightsdesk/internal/pricing/signal"
)

var Module = fx.Module("pricing.service",
	fx.Provide(repository.NewRepository),
	fx.Provide(signal.NewClient),
	fx.Provide(service.NewService),
)
