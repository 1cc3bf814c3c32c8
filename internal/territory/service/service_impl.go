package service

import (
	"context"

	"go.uber.org/fx"

	"github.com/fieldside/rightsdesk/internal/cache"
	territorydomain "github.com/fieldside/rightsdesk/internal/territory/domain"
)

type Params struct {
	fx.In

	Repo  territorydomain.Repository
	Cache cache.CatalogCache `optional:"true"`
}

type Service struct {
	repo  territorydomain.Repository
	cache cache.CatalogCache
}

func NewService(p Params) territorydomain.Service {
	return &Service{repo: p.Repo, cache: p.Cache}
}

func (s *Service) List(ctx context.Context, region string) ([]territorydomain.Territory, error) {
	if s.cache != nil {
		if territories, ok := s.cache.GetTerritories(region); ok {
			return territories, nil
		}
	}

	territories, err := s.repo.List(ctx, region)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		s.cache.SetTerritories(region, territories)
	}
	return territories, nil
}

func (s *Service) Regions(ctx context.Context) ([]string, error) {
	return s.repo.Regions(ctx)
}

// ValidateCodes normalizes the given codes and verifies each one exists
// in the catalog. Malformed or unknown codes fail validation.
func (s *Service) ValidateCodes(ctx context.Context, codes []string) ([]string, error) {
	normalized, err := territorydomain.NormalizeCodes(codes)
	if err != nil {
		return nil, err
	}
	if len(normalized) == 0 {
		return nil, nil
	}

	// The full catalog ("" region) is cached by List; validate against it
	// without another store round-trip when present.
	if s.cache != nil {
		if all, ok := s.cache.GetTerritories(""); ok {
			known := make(map[string]struct{}, len(all))
			for _, t := range all {
				known[t.Code] = struct{}{}
			}
			for _, code := range normalized {
				if _, ok := known[code]; !ok {
					return nil, territorydomain.ErrUnknownTerritory
				}
			}
			return normalized, nil
		}
	}

	known, err := s.repo.FindByCodes(ctx, normalized)
	if err != nil {
		return nil, err
	}
	if len(known) != len(normalized) {
		return nil, territorydomain.ErrUnknownTerritory
	}
	return normalized, nil
}
