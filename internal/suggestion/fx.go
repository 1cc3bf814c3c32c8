package suggestion

import (
	"github.com/fieldside/rightsdesk/internal/suggestion/service"
	"go.uber.org/fx"
)

var Module = fx.Module("suggestion.service",
	fx.Provide(service.NewService),
)
