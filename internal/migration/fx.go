package migration

import (
	"go.uber.org/fx"
	"gorm.io/gorm"

	auditdomain "github.com/fieldside/rightsdesk/internal/audit/domain"
	broadcasterdomain "github.com/fieldside/rightsdesk/internal/broadcaster/domain"
	"github.com/fieldside/rightsdesk/internal/config"
	eventdomain "github.com/fieldside/rightsdesk/internal/event/domain"
	pricetierdomain "github.com/fieldside/rightsdesk/internal/pricetier/domain"
	pricingdomain "github.com/fieldside/rightsdesk/internal/pricing/domain"
	rightsdomain "github.com/fieldside/rightsdesk/internal/rights/domain"
	packagedomain "github.com/fieldside/rightsdesk/internal/rightspackage/domain"
	"github.com/fieldside/rightsdesk/internal/seed"
	territorydomain "github.com/fieldside/rightsdesk/internal/territory/domain"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg config.Config) error {
		if cfg.DBType == "postgres" {
			sqlDB, err := conn.DB()
			if err != nil {
				return err
			}
			if err := RunMigrations(sqlDB); err != nil {
				return err
			}
		} else {
			// sqlite and mysql are dev conveniences; AutoMigrate keeps
			// them usable without hand-written dialect migrations.
			if err := conn.AutoMigrate(
				&territorydomain.Territory{},
				&broadcasterdomain.Broadcaster{},
				&eventdomain.Event{},
				&packagedomain.RightsPackage{},
				&rightsdomain.RightsEvent{},
				&pricingdomain.EventPricing{},
				&pricingdomain.PricingHistoryEntry{},
				&pricetierdomain.TierConfig{},
				&auditdomain.AuditLog{},
			); err != nil {
				return err
			}
		}

		return seed.EnsureReferenceData(conn)
	}),
)
