package rights

import (
	"go.uber.org/fx"

	"github.com/fieldside/rightsdesk/internal/rights/domain"
	"github.com/fieldside/rightsdesk/internal/rights/repository"
	"github.com/fieldside/rightsdesk/internal/rights/service"
	territorydomain "github.com/fieldside/rightsdesk/internal/territory/domain"
)

var Module = fx.Module("rights.service",
	fx.Provide(repository.NewRepository),
	fx.Provide(func(s territorydomain.Service) domain.TerritoryValidator { return s }),
	fx.Provide(service.NewService),
)
