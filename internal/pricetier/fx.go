package pricetier

import (
	"github.com/fieldside/rightsdesk/internal/pricetier/repository"
	"github.com/fieldside/rightsdesk/internal/pricetier/service"
	"go.uber.org/fx"
)

var Module = fx.Module("pricetier.service",
	fx.Provide(repository.NewRepository),
	fx.Provide(service.NewService),
)
