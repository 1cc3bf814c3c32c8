package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/fieldside/rightsdesk/internal/actorcontext"
	"github.com/fieldside/rightsdesk/internal/clock"
	"github.com/fieldside/rightsdesk/internal/config"
	eventdomain "github.com/fieldside/rightsdesk/internal/event/domain"
	"github.com/fieldside/rightsdesk/internal/observability/metrics"
	pricetierdomain "github.com/fieldside/rightsdesk/internal/pricetier/domain"
	"github.com/fieldside/rightsdesk/internal/pricing/domain"
	"github.com/fieldside/rightsdesk/internal/ratelimit"
	"github.com/fieldside/rightsdesk/pkg/db"
)

type Params struct {
	fx.In

	Log      *zap.Logger
	GenID    *snowflake.Node
	Clock    clock.Clock
	Metrics  *metrics.Metrics
	DB       *gorm.DB
	Repo     domain.Repository
	Events   eventdomain.Repository
	Tiers    pricetierdomain.Service
	Signal   domain.SignalClient
	Platform *config.PlatformConfigHolder
	Limiter  *ratelimit.RecomputeLimiter `optional:"true"`
}

type service struct {
	log      *zap.Logger
	genID    *snowflake.Node
	clock    clock.Clock
	metrics  *metrics.Metrics
	db       *gorm.DB
	repo     domain.Repository
	events   eventdomain.Repository
	tiers    pricetierdomain.Service
	signal   domain.SignalClient
	platform *config.PlatformConfigHolder
	limiter  *ratelimit.RecomputeLimiter
}

func NewService(p Params) domain.Service {
	return &service{
		log:      p.Log.Named("pricing.service"),
		genID:    p.GenID,
		clock:    p.Clock,
		metrics:  p.Metrics,
		db:       p.DB,
		repo:     p.Repo,
		events:   p.Events,
		tiers:    p.Tiers,
		signal:   p.Signal,
		platform: p.Platform,
		limiter:  p.Limiter,
	}
}

func (s *service) Get(ctx context.Context, eventID string) (*domain.EventPricing, error) {
	parsed, err := parseID(eventID)
	if err != nil {
		return nil, domain.ErrInvalidID
	}
	return s.repo.FindByEventID(ctx, parsed)
}

func (s *service) List(ctx context.Context) ([]domain.EventPricing, error) {
	return s.repo.List(ctx)
}

func (s *service) Effective(ctx context.Context, eventID string) (*domain.EffectivePricing, error) {
	parsed, err := parseID(eventID)
	if err != nil {
		return nil, domain.ErrInvalidID
	}

	row, err := s.repo.FindByEventID(ctx, parsed)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	platform := s.platform.Get()
	tier, price := domain.Resolve(row, pricetierdomain.Tier(platform.DefaultTier), platform.DefaultPriceCents)
	effective := &domain.EffectivePricing{
		EventID:    parsed,
		Tier:       tier,
		PriceCents: price,
	}
	if row != nil {
		effective.IsManualOverride = row.IsManualOverride
	}
	return effective, nil
}

// SetOverride applies a manual tier/price to an event's pricing row and
// records the change. Setting isManualOverride=false is equivalent to
// RevertToComputed. The row update and its history entry commit together.
func (s *service) SetOverride(ctx context.Context, req domain.SetOverrideRequest) (*domain.EventPricing, error) {
	if !req.IsManualOverride {
		return s.RevertToComputed(ctx, req.EventID)
	}

	eventID, err := parseID(req.EventID)
	if err != nil {
		return nil, domain.ErrInvalidID
	}
	if _, err := s.events.FindByID(ctx, eventID); err != nil {
		if errors.Is(err, eventdomain.ErrNotFound) {
			return nil, domain.ErrInvalidEvent
		}
		return nil, err
	}

	if req.ManualTier != nil && !pricetierdomain.ValidTier(*req.ManualTier) {
		return nil, domain.ErrInvalidTier
	}
	if err := s.validateBand(ctx, req.ManualTier, req.ManualPriceCents); err != nil {
		return nil, err
	}

	now := s.clock.Now()
	var updated *domain.EventPricing
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		row, created, err := s.lockOrCreateRow(ctx, tx, eventID)
		if err != nil {
			return err
		}

		platform := s.platform.Get()
		prevTier, prevPrice := domain.Resolve(row, pricetierdomain.Tier(platform.DefaultTier), platform.DefaultPriceCents)
		if created {
			row.CreatedAt = now
		}

		// A tierless manual price still carries an effective tier (the
		// row's computed tier, or the platform default) and must sit
		// inside that tier's band.
		if req.ManualPriceCents != nil && req.ManualTier == nil {
			tier := row.ComputedTier
			if tier == "" {
				tier = pricetierdomain.Tier(platform.DefaultTier)
			}
			if err := s.validateBand(ctx, &tier, req.ManualPriceCents); err != nil {
				return err
			}
		}

		row.IsManualOverride = true
		row.ManualTier = req.ManualTier
		row.ManualPriceCents = req.ManualPriceCents
		row.UpdatedAt = now
		if err := tx.Save(row).Error; err != nil {
			return err
		}

		newTier, newPrice := domain.Resolve(row, pricetierdomain.Tier(platform.DefaultTier), platform.DefaultPriceCents)
		entry := s.historyEntry(ctx, row.ID, domain.ChangeManual, now)
		if !created {
			entry.PreviousTier = &prevTier
			entry.PreviousPriceCents = &prevPrice
		}
		entry.NewTier = &newTier
		entry.NewPriceCents = &newPrice
		if err := s.appendHistory(tx, entry); err != nil {
			return err
		}

		updated = row
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.RecordPricingMutation(ctx, "manual")
	s.log.Info("pricing override set",
		zap.Int64("event_id", eventID.Int64()),
		zap.Int64("pricing_id", updated.ID.Int64()),
	)
	return updated, nil
}

// RevertToComputed clears the manual override. Calling it on a row that is
// not overridden is a no-op, not an error.
func (s *service) RevertToComputed(ctx context.Context, eventID string) (*domain.EventPricing, error) {
	parsed, err := parseID(eventID)
	if err != nil {
		return nil, domain.ErrInvalidID
	}

	var updated *domain.EventPricing
	var reverted bool
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		row, err := s.lockRow(ctx, tx, parsed)
		if err != nil {
			return err
		}
		if !row.IsManualOverride {
			updated = row
			return nil
		}

		now := s.clock.Now()
		platform := s.platform.Get()
		prevTier, prevPrice := domain.Resolve(row, pricetierdomain.Tier(platform.DefaultTier), platform.DefaultPriceCents)

		row.IsManualOverride = false
		row.ManualTier = nil
		row.ManualPriceCents = nil
		row.UpdatedAt = now
		if err := tx.Save(row).Error; err != nil {
			return err
		}

		newTier, newPrice := domain.Resolve(row, pricetierdomain.Tier(platform.DefaultTier), platform.DefaultPriceCents)
		entry := s.historyEntry(ctx, row.ID, domain.ChangeAutomatic, now)
		entry.PreviousTier = &prevTier
		entry.PreviousPriceCents = &prevPrice
		entry.NewTier = &newTier
		entry.NewPriceCents = &newPrice
		if err := s.appendHistory(tx, entry); err != nil {
			return err
		}

		updated = row
		reverted = true
		return nil
	})
	if err != nil {
		return nil, err
	}

	if reverted {
		s.metrics.RecordPricingMutation(ctx, "automatic")
		s.log.Info("pricing override reverted", zap.Int64("event_id", parsed.Int64()))
	}
	return updated, nil
}

// Recompute asks the upstream signal for a fresh tier/price and stores it
// as the computed values, leaving any manual override untouched. A history
// entry is appended only when the computed values actually change.
func (s *service) Recompute(ctx context.Context, eventID string) (*domain.EventPricing, error) {
	parsed, err := parseID(eventID)
	if err != nil {
		return nil, domain.ErrInvalidID
	}
	event, err := s.events.FindByID(ctx, parsed)
	if errors.Is(err, eventdomain.ErrNotFound) {
		return nil, domain.ErrInvalidEvent
	}
	if err != nil {
		return nil, err
	}

	if s.limiter.Enabled() {
		actorID := ""
		if id := actorcontext.ActorIDFromContext(ctx); id != nil {
			actorID = *id
		}
		allowed, err := s.limiter.AllowActor(ctx, actorID)
		if err != nil {
			return nil, err
		}
		if !allowed {
			s.metrics.RecordRateLimitDenied(ctx, "pricing.recompute")
			return nil, domain.ErrRateLimited
		}

		token, acquired, err := s.limiter.TryLockEvent(ctx, parsed.String())
		if err != nil {
			return nil, err
		}
		if !acquired {
			return nil, domain.ErrRecomputeInFlight
		}
		defer func() {
			if err := s.limiter.ReleaseEvent(ctx, parsed.String(), token); err != nil {
				s.log.Warn("recompute lock release failed", zap.Error(err))
			}
		}()
	}

	suggestion, err := s.signal.Suggest(ctx, domain.SignalRequest{
		EventID:  event.ID,
		SportID:  event.SportID,
		LeagueID: event.LeagueID,
		Season:   event.Season,
		StartAt:  event.StartAt,
	})
	if err != nil {
		s.metrics.RecordSignalFetch(ctx, "error")
		return nil, domain.ErrSignalUnavailable
	}
	s.metrics.RecordSignalFetch(ctx, "ok")

	now := s.clock.Now()
	var updated *domain.EventPricing
	var changed bool
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		row, created, err := s.lockOrCreateRow(ctx, tx, parsed)
		if err != nil {
			return err
		}

		platform := s.platform.Get()
		prevTier, prevPrice := domain.Resolve(row, pricetierdomain.Tier(platform.DefaultTier), platform.DefaultPriceCents)
		prevComputedTier := row.ComputedTier
		prevComputedPrice := row.ComputedPriceCents
		if created {
			row.CreatedAt = now
		}

		row.ComputedTier = suggestion.Tier
		row.ComputedPriceCents = suggestion.PriceCents
		row.UpdatedAt = now
		if err := tx.Save(row).Error; err != nil {
			return err
		}

		changed = created || prevComputedTier != suggestion.Tier || prevComputedPrice != suggestion.PriceCents
		if changed {
			changeType := domain.ChangeAutomatic
			if created {
				changeType = domain.ChangeInitial
			}
			newTier, newPrice := domain.Resolve(row, pricetierdomain.Tier(platform.DefaultTier), platform.DefaultPriceCents)
			entry := s.historyEntry(ctx, row.ID, changeType, now)
			if !created {
				entry.PreviousTier = &prevTier
				entry.PreviousPriceCents = &prevPrice
			}
			entry.NewTier = &newTier
			entry.NewPriceCents = &newPrice
			if err := s.appendHistory(tx, entry); err != nil {
				return err
			}
		}

		updated = row
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.RecordPricingMutation(ctx, "recompute")
	s.log.Info("pricing recomputed",
		zap.Int64("event_id", parsed.Int64()),
		zap.String("tier", string(suggestion.Tier)),
		zap.Int64("price_cents", suggestion.PriceCents),
		zap.Bool("changed", changed),
	)
	return updated, nil
}

func (s *service) ListHistory(ctx context.Context, limit int) ([]domain.PricingHistoryEntry, error) {
	return s.repo.ListHistory(ctx, limit)
}

// validateBand checks a manual price against the tier band it targets.
// Without an explicit tier no band applies; the platform bounds were
// already enforced upstream.
func (s *service) validateBand(ctx context.Context, tier *pricetierdomain.Tier, priceCents *int64) error {
	if tier == nil || priceCents == nil {
		return nil
	}
	cfg, err := s.tiers.Get(ctx, *tier)
	if err != nil {
		return err
	}
	if !cfg.Contains(*priceCents) {
		return domain.ErrPriceOutOfBand
	}
	return nil
}

func (s *service) lockRow(ctx context.Context, tx *gorm.DB, eventID snowflake.ID) (*domain.EventPricing, error) {
	q := tx.WithContext(ctx)
	if supportsRowLocks(tx) {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var row domain.EventPricing
	err := q.First(&row, "event_id = ?", eventID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

// sqlite serializes writers at connection level and has no FOR UPDATE.
func supportsRowLocks(tx *gorm.DB) bool {
	return tx.Dialector.Name() != "sqlite"
}

func (s *service) lockOrCreateRow(ctx context.Context, tx *gorm.DB, eventID snowflake.ID) (*domain.EventPricing, bool, error) {
	row, err := s.lockRow(ctx, tx, eventID)
	if err == nil {
		return row, false, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, false, err
	}

	row = &domain.EventPricing{
		ID:      s.genID.Generate(),
		EventID: eventID,
	}
	if err := tx.WithContext(ctx).Create(row).Error; err != nil {
		// Lost the insert race; lock the winner's row instead.
		if db.IsDuplicateKeyErr(err) {
			row, err = s.lockRow(ctx, tx, eventID)
			return row, false, err
		}
		return nil, false, err
	}
	return row, true, nil
}

func (s *service) historyEntry(ctx context.Context, pricingID snowflake.ID, changeType domain.ChangeType, now time.Time) *domain.PricingHistoryEntry {
	return &domain.PricingHistoryEntry{
		ID:             s.genID.Generate(),
		EventPricingID: pricingID,
		ChangeType:     changeType,
		ChangedBy:      actorcontext.ActorIDFromContext(ctx),
		CreatedAt:      now,
	}
}

// appendHistory writes the audit entry inside the mutation's transaction.
// A failed append fails the whole mutation; transient failures get one
// retry before surfacing.
func (s *service) appendHistory(tx *gorm.DB, entry *domain.PricingHistoryEntry) error {
	err := tx.Create(entry).Error
	if err != nil && db.IsTransientErr(err) {
		err = tx.Create(entry).Error
	}
	return err
}

func parseID(raw string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(raw))
	if err != nil || id == 0 {
		return 0, domain.ErrInvalidID
	}
	return id, nil
}
