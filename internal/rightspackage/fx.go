package rightspackage

import (
	"go.uber.org/fx"

	"github.com/fieldside/rightsdesk/internal/rightspackage/domain"
	"github.com/fieldside/rightsdesk/internal/rightspackage/repository"
	"github.com/fieldside/rightsdesk/internal/rightspackage/service"
	territorydomain "github.com/fieldside/rightsdesk/internal/territory/domain"
)

var Module = fx.Module("rightspackage.service",
	fx.Provide(repository.NewRepository),
	fx.Provide(func(s territorydomain.Service) domain.TerritoryValidator { return s }),
	fx.Provide(service.NewService),
)
