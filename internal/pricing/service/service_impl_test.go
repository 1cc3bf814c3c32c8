package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/fieldside/rightsdesk/internal/clock"
	"github.com/fieldside/rightsdesk/internal/config"
	eventdomain "github.com/fieldside/rightsdesk/internal/event/domain"
	eventrepo "github.com/fieldside/rightsdesk/internal/event/repository"
	pricetierdomain "github.com/fieldside/rightsdesk/internal/pricetier/domain"
	pricetierrepo "github.com/fieldside/rightsdesk/internal/pricetier/repository"
	pricetierservice "github.com/fieldside/rightsdesk/internal/pricetier/service"
	"github.com/fieldside/rightsdesk/internal/pricing/domain"
	pricingrepo "github.com/fieldside/rightsdesk/internal/pricing/repository"
)

type signalStub struct {
	result *domain.SignalResult
	err    error
	calls  int
}

func (s *signalStub) Suggest(ctx context.Context, req domain.SignalRequest) (*domain.SignalResult, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.result, nil
}

type fixture struct {
	db     *gorm.DB
	genID  *snowflake.Node
	clock  *clock.FakeClock
	signal *signalStub
	svc    domain.Service
	event  *eventdomain.Event
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	// A plain ":memory:" DSN gives each pooled connection its own empty
	// database; the service queries the tier repo on the root DB while a
	// transaction holds another connection, so the DB must be shared.
	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&eventdomain.Event{},
		&pricetierdomain.TierConfig{},
		&domain.EventPricing{},
		&domain.PricingHistoryEntry{},
	))

	for _, band := range []pricetierdomain.TierConfig{
		{Tier: pricetierdomain.TierGold, MinPriceCents: 299, BasePriceCents: 399, MaxPriceCents: 500},
		{Tier: pricetierdomain.TierSilver, MinPriceCents: 199, BasePriceCents: 249, MaxPriceCents: 399},
		{Tier: pricetierdomain.TierBronze, MinPriceCents: 99, BasePriceCents: 129, MaxPriceCents: 249},
	} {
		require.NoError(t, db.Create(&band).Error)
	}

	node, err := snowflake.NewNode(3)
	require.NoError(t, err)
	fakeClock := clock.NewFakeClock(time.Date(2026, 5, 20, 9, 0, 0, 0, time.UTC))

	event := &eventdomain.Event{
		ID:      node.Generate(),
		Title:   "Championship Final",
		SportID: node.Generate(),
		StartAt: fakeClock.Now().Add(14 * 24 * time.Hour),
	}
	require.NoError(t, db.Create(event).Error)

	tierSvc := pricetierservice.NewService(pricetierservice.Params{
		Log:   zap.NewNop(),
		Clock: fakeClock,
		Repo:  pricetierrepo.NewRepository(db),
	})

	signal := &signalStub{result: &domain.SignalResult{Tier: pricetierdomain.TierGold, PriceCents: 399}}

	svc := NewService(Params{
		Log:      zap.NewNop(),
		GenID:    node,
		Clock:    fakeClock,
		Metrics:  nil,
		DB:       db,
		Repo:     pricingrepo.NewRepository(db),
		Events:   eventrepo.NewRepository(db),
		Tiers:    tierSvc,
		Signal:   signal,
		Platform: config.NewStaticPlatformConfigHolder(config.DefaultPlatformConfig()),
		Limiter:  nil,
	})

	return &fixture{db: db, genID: node, clock: fakeClock, signal: signal, svc: svc, event: event}
}

func (f *fixture) history(t *testing.T) []domain.PricingHistoryEntry {
	t.Helper()
	entries, err := f.svc.ListHistory(context.Background(), 0)
	require.NoError(t, err)
	return entries
}

func TestEffectiveDefaultsWithoutRow(t *testing.T) {
	f := newFixture(t)

	effective, err := f.svc.Effective(context.Background(), f.event.ID.String())
	require.NoError(t, err)
	assert.Equal(t, pricetierdomain.TierBronze, effective.Tier)
	assert.Equal(t, int64(99), effective.PriceCents)
	assert.False(t, effective.IsManualOverride)
}

func TestRecomputeCreatesRowWithInitialHistory(t *testing.T) {
	f := newFixture(t)

	row, err := f.svc.Recompute(context.Background(), f.event.ID.String())
	require.NoError(t, err)
	assert.Equal(t, pricetierdomain.TierGold, row.ComputedTier)
	assert.Equal(t, int64(399), row.ComputedPriceCents)
	assert.False(t, row.IsManualOverride)

	entries := f.history(t)
	require.Len(t, entries, 1)
	assert.Equal(t, domain.ChangeInitial, entries[0].ChangeType)
	assert.Nil(t, entries[0].PreviousPriceCents)
	require.NotNil(t, entries[0].NewPriceCents)
	assert.Equal(t, int64(399), *entries[0].NewPriceCents)
}

func TestRecomputeAppendsHistoryOnlyOnChange(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Recompute(context.Background(), f.event.ID.String())
	require.NoError(t, err)
	require.Len(t, f.history(t), 1)

	// same signal result: no new entry
	_, err = f.svc.Recompute(context.Background(), f.event.ID.String())
	require.NoError(t, err)
	assert.Len(t, f.history(t), 1)

	f.signal.result = &domain.SignalResult{Tier: pricetierdomain.TierSilver, PriceCents: 249}
	_, err = f.svc.Recompute(context.Background(), f.event.ID.String())
	require.NoError(t, err)

	entries := f.history(t)
	require.Len(t, entries, 2)
	assert.Equal(t, domain.ChangeAutomatic, entries[0].ChangeType)
	require.NotNil(t, entries[0].PreviousPriceCents)
	assert.Equal(t, int64(399), *entries[0].PreviousPriceCents)
	require.NotNil(t, entries[0].NewPriceCents)
	assert.Equal(t, int64(249), *entries[0].NewPriceCents)
}

func TestRecomputeSignalFailure(t *testing.T) {
	f := newFixture(t)
	f.signal.err = errors.New("upstream down")

	_, err := f.svc.Recompute(context.Background(), f.event.ID.String())
	assert.ErrorIs(t, err, domain.ErrSignalUnavailable)
	assert.Empty(t, f.history(t))
}

func TestSetOverrideAndRevertRoundTrip(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Recompute(context.Background(), f.event.ID.String())
	require.NoError(t, err)

	manualTier := pricetierdomain.TierSilver
	manualPrice := int64(249)
	row, err := f.svc.SetOverride(context.Background(), domain.SetOverrideRequest{
		EventID:          f.event.ID.String(),
		IsManualOverride: true,
		ManualTier:       &manualTier,
		ManualPriceCents: &manualPrice,
	})
	require.NoError(t, err)
	assert.True(t, row.IsManualOverride)

	effective, err := f.svc.Effective(context.Background(), f.event.ID.String())
	require.NoError(t, err)
	assert.Equal(t, pricetierdomain.TierSilver, effective.Tier)
	assert.Equal(t, int64(249), effective.PriceCents)
	assert.True(t, effective.IsManualOverride)

	reverted, err := f.svc.RevertToComputed(context.Background(), f.event.ID.String())
	require.NoError(t, err)
	assert.False(t, reverted.IsManualOverride)
	assert.Nil(t, reverted.ManualTier)
	assert.Nil(t, reverted.ManualPriceCents)

	effective, err = f.svc.Effective(context.Background(), f.event.ID.String())
	require.NoError(t, err)
	assert.Equal(t, pricetierdomain.TierGold, effective.Tier)
	assert.Equal(t, int64(399), effective.PriceCents)

	// initial recompute + manual override + revert
	entries := f.history(t)
	require.Len(t, entries, 3)
	assert.Equal(t, domain.ChangeAutomatic, entries[0].ChangeType)
	assert.Equal(t, domain.ChangeManual, entries[1].ChangeType)
	assert.Equal(t, domain.ChangeInitial, entries[2].ChangeType)
}

func TestSetOverrideOutOfBandLeavesRowUntouched(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Recompute(context.Background(), f.event.ID.String())
	require.NoError(t, err)

	manualTier := pricetierdomain.TierSilver
	tooHigh := int64(450) // above silver's max of 399
	_, err = f.svc.SetOverride(context.Background(), domain.SetOverrideRequest{
		EventID:          f.event.ID.String(),
		IsManualOverride: true,
		ManualTier:       &manualTier,
		ManualPriceCents: &tooHigh,
	})
	assert.ErrorIs(t, err, domain.ErrPriceOutOfBand)

	row, err := f.svc.Get(context.Background(), f.event.ID.String())
	require.NoError(t, err)
	assert.False(t, row.IsManualOverride)
	assert.Nil(t, row.ManualPriceCents)
	assert.Len(t, f.history(t), 1)
}

func TestSetOverrideRejectsUnknownTier(t *testing.T) {
	f := newFixture(t)

	bogus := pricetierdomain.Tier("platinum")
	price := int64(200)
	_, err := f.svc.SetOverride(context.Background(), domain.SetOverrideRequest{
		EventID:          f.event.ID.String(),
		IsManualOverride: true,
		ManualTier:       &bogus,
		ManualPriceCents: &price,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidTier)
}

func TestRevertWithoutOverrideIsNoOp(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Recompute(context.Background(), f.event.ID.String())
	require.NoError(t, err)

	row, err := f.svc.RevertToComputed(context.Background(), f.event.ID.String())
	require.NoError(t, err)
	assert.False(t, row.IsManualOverride)
	assert.Len(t, f.history(t), 1)
}

func TestRevertMissingRow(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.RevertToComputed(context.Background(), f.event.ID.String())
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRecomputeUnknownEvent(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Recompute(context.Background(), f.genID.Generate().String())
	assert.ErrorIs(t, err, domain.ErrInvalidEvent)
	assert.Zero(t, f.signal.calls)
}

func TestSetOverrideUnknownEvent(t *testing.T) {
	f := newFixture(t)

	price := int64(199)
	_, err := f.svc.SetOverride(context.Background(), domain.SetOverrideRequest{
		EventID:          f.genID.Generate().String(),
		IsManualOverride: true,
		ManualPriceCents: &price,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidEvent)
}

func TestSetOverrideTierlessPriceBandedAgainstComputedTier(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Recompute(context.Background(), f.event.ID.String())
	require.NoError(t, err)

	// computed tier is gold (299-500); a price-only override still has to
	// sit inside that band
	tooLow := int64(250)
	_, err = f.svc.SetOverride(context.Background(), domain.SetOverrideRequest{
		EventID:          f.event.ID.String(),
		IsManualOverride: true,
		ManualPriceCents: &tooLow,
	})
	assert.ErrorIs(t, err, domain.ErrPriceOutOfBand)

	row, err := f.svc.Get(context.Background(), f.event.ID.String())
	require.NoError(t, err)
	assert.False(t, row.IsManualOverride)

	inBand := int64(450)
	updated, err := f.svc.SetOverride(context.Background(), domain.SetOverrideRequest{
		EventID:          f.event.ID.String(),
		IsManualOverride: true,
		ManualPriceCents: &inBand,
	})
	require.NoError(t, err)
	assert.True(t, updated.IsManualOverride)
	assert.Nil(t, updated.ManualTier)
	require.NotNil(t, updated.ManualPriceCents)
	assert.Equal(t, inBand, *updated.ManualPriceCents)
}

func TestSetOverrideTierlessPriceOnFreshRowUsesPlatformDefault(t *testing.T) {
	f := newFixture(t)

	// no row yet, so the effective tier is the platform default bronze
	// (99-249); the whole transaction rolls back on the band failure
	tooHigh := int64(300)
	_, err := f.svc.SetOverride(context.Background(), domain.SetOverrideRequest{
		EventID:          f.event.ID.String(),
		IsManualOverride: true,
		ManualPriceCents: &tooHigh,
	})
	assert.ErrorIs(t, err, domain.ErrPriceOutOfBand)

	_, err = f.svc.Get(context.Background(), f.event.ID.String())
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
