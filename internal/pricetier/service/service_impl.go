package service

import (
	"context"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/fieldside/rightsdesk/internal/cache"
	"github.com/fieldside/rightsdesk/internal/clock"
	"github.com/fieldside/rightsdesk/internal/pricetier/domain"
)

type Params struct {
	fx.In

	Log   *zap.Logger
	Clock clock.Clock
	Repo  domain.Repository
	Cache cache.CatalogCache `optional:"true"`
}

type service struct {
	log   *zap.Logger
	clock clock.Clock
	repo  domain.Repository
	cache cache.CatalogCache
}

func NewService(p Params) domain.Service {
	return &service{
		log:   p.Log.Named("pricetier.service"),
		clock: p.Clock,
		repo:  p.Repo,
		cache: p.Cache,
	}
}

func (s *service) Get(ctx context.Context, tier domain.Tier) (*domain.TierConfig, error) {
	if !domain.ValidTier(tier) {
		return nil, domain.ErrInvalidTier
	}
	if s.cache != nil {
		if cached, ok := s.cache.GetTierConfig(tier); ok {
			return cached, nil
		}
	}
	cfg, err := s.repo.FindByTier(ctx, tier)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		s.cache.SetTierConfig(cfg)
	}
	return cfg, nil
}

func (s *service) List(ctx context.Context) ([]domain.TierConfig, error) {
	return s.repo.List(ctx)
}

func (s *service) Upsert(ctx context.Context, req domain.UpsertRequest) (*domain.TierConfig, error) {
	now := s.clock.Now()
	cfg := &domain.TierConfig{
		Tier:           req.Tier,
		MinPriceCents:  req.MinPriceCents,
		BasePriceCents: req.BasePriceCents,
		MaxPriceCents:  req.MaxPriceCents,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := s.repo.Upsert(ctx, cfg); err != nil {
		return nil, err
	}
	if s.cache != nil {
		s.cache.InvalidateTier(cfg.Tier)
	}

	s.log.Info("tier band updated",
		zap.String("tier", string(cfg.Tier)),
		zap.Int64("min_cents", cfg.MinPriceCents),
		zap.Int64("base_cents", cfg.BasePriceCents),
		zap.Int64("max_cents", cfg.MaxPriceCents),
	)
	return cfg, nil
}
