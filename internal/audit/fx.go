package audit

import (
	"github.com/fieldside/rightsdesk/internal/audit/repository"
	"github.com/fieldside/rightsdesk/internal/audit/service"
	"go.uber.org/fx"
)

var Module = fx.Module("audit.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.NewService),
)
