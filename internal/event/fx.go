package event

import (
	"github.com/fieldside/rightsdesk/internal/event/repository"
	"github.com/fieldside/rightsdesk/internal/event/service"
	"go.uber.org/fx"
)

var Module = fx.Module("event.service",
	fx.Provide(repository.NewRepository),
	fx.Provide(service.NewService),
)
