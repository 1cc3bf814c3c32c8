package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fieldside/rightsdesk/internal/cache"
	territorydomain "github.com/fieldside/rightsdesk/internal/territory/domain"
)

type repoStub struct {
	territories []territorydomain.Territory
	listCalls   int
	codesCalls  int
}

func (r *repoStub) List(ctx context.Context, region string) ([]territorydomain.Territory, error) {
	r.listCalls++
	if region == "" {
		return r.territories, nil
	}
	var out []territorydomain.Territory
	for _, t := range r.territories {
		if t.Region == region {
			out = append(out, t)
		}
	}
	return out, nil
}

func (r *repoStub) FindByCodes(ctx context.Context, codes []string) ([]territorydomain.Territory, error) {
	r.codesCalls++
	known := make(map[string]territorydomain.Territory, len(r.territories))
	for _, t := range r.territories {
		known[t.Code] = t
	}
	var out []territorydomain.Territory
	for _, code := range codes {
		if t, ok := known[code]; ok {
			out = append(out, t)
		}
	}
	return out, nil
}

func (r *repoStub) Regions(ctx context.Context) ([]string, error) {
	return []string{"Europe", "Americas"}, nil
}

func newStub() *repoStub {
	return &repoStub{territories: []territorydomain.Territory{
		{Code: "FR", Region: "Europe"},
		{Code: "DE", Region: "Europe"},
		{Code: "US", Region: "Americas"},
	}}
}

func TestListServesRepeatLookupsFromCache(t *testing.T) {
	repo := newStub()
	svc := NewService(Params{Repo: repo, Cache: cache.NewCatalogCache()})

	first, err := svc.List(context.Background(), "Europe")
	require.NoError(t, err)
	require.Len(t, first, 2)
	assert.Equal(t, 1, repo.listCalls)

	second, err := svc.List(context.Background(), "Europe")
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, repo.listCalls)

	// distinct region key misses and loads
	_, err = svc.List(context.Background(), "Americas")
	require.NoError(t, err)
	assert.Equal(t, 2, repo.listCalls)
}

func TestValidateCodesUsesCachedCatalog(t *testing.T) {
	repo := newStub()
	svc := NewService(Params{Repo: repo, Cache: cache.NewCatalogCache()})

	// warm the full catalog
	_, err := svc.List(context.Background(), "")
	require.NoError(t, err)
	require.Equal(t, 1, repo.listCalls)

	codes, err := svc.ValidateCodes(context.Background(), []string{"fr", "de"})
	require.NoError(t, err)
	assert.Equal(t, []string{"FR", "DE"}, codes)
	assert.Zero(t, repo.codesCalls)

	_, err = svc.ValidateCodes(context.Background(), []string{"FR", "XX"})
	assert.ErrorIs(t, err, territorydomain.ErrUnknownTerritory)
	assert.Zero(t, repo.codesCalls)
}

func TestValidateCodesWithoutCacheHitsStore(t *testing.T) {
	repo := newStub()
	svc := NewService(Params{Repo: repo})

	codes, err := svc.ValidateCodes(context.Background(), []string{"us"})
	require.NoError(t, err)
	assert.Equal(t, []string{"US"}, codes)
	assert.Equal(t, 1, repo.codesCalls)
}
