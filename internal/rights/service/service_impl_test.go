package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	broadcasterdomain "github.com/fieldside/rightsdesk/internal/broadcaster/domain"
	broadcasterrepo "github.com/fieldside/rightsdesk/internal/broadcaster/repository"
	"github.com/fieldside/rightsdesk/internal/clock"
	eventdomain "github.com/fieldside/rightsdesk/internal/event/domain"
	eventrepo "github.com/fieldside/rightsdesk/internal/event/repository"
	"github.com/fieldside/rightsdesk/internal/rights/domain"
	rightsrepo "github.com/fieldside/rightsdesk/internal/rights/repository"
	packagedomain "github.com/fieldside/rightsdesk/internal/rightspackage/domain"
	packagerepo "github.com/fieldside/rightsdesk/internal/rightspackage/repository"
	territorydomain "github.com/fieldside/rightsdesk/internal/territory/domain"
	territoryrepo "github.com/fieldside/rightsdesk/internal/territory/repository"
	territoryservice "github.com/fieldside/rightsdesk/internal/territory/service"
)

type fixture struct {
	db    *gorm.DB
	genID *snowflake.Node
	clock *clock.FakeClock
	svc   domain.Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&territorydomain.Territory{},
		&broadcasterdomain.Broadcaster{},
		&eventdomain.Event{},
		&packagedomain.RightsPackage{},
		&domain.RightsEvent{},
	))

	for _, territory := range []territorydomain.Territory{
		{Code: "FR", Region: "Europe"},
		{Code: "BE", Region: "Europe"},
		{Code: "DE", Region: "Europe"},
		{Code: "GB", Region: "Europe"},
		{Code: "US", Region: "Americas"},
	} {
		require.NoError(t, db.Create(&territory).Error)
	}

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	fakeClock := clock.NewFakeClock(time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC))
	territorySvc := territoryservice.NewService(territoryservice.Params{
		Repo: territoryrepo.NewRepository(db),
	})

	svc := NewService(Params{
		Log:          zap.NewNop(),
		GenID:        node,
		Clock:        fakeClock,
		Metrics:      nil,
		Repo:         rightsrepo.NewRepository(db),
		Events:       eventrepo.NewRepository(db),
		Broadcasters: broadcasterrepo.NewRepository(db),
		Packages:     packagerepo.NewRepository(db),
		Territories:  territorySvc,
	})

	return &fixture{db: db, genID: node, clock: fakeClock, svc: svc}
}

func (f *fixture) seedBroadcaster(t *testing.T, name string) *broadcasterdomain.Broadcaster {
	t.Helper()
	b := &broadcasterdomain.Broadcaster{
		ID:     f.genID.Generate(),
		Name:   name,
		Status: broadcasterdomain.StatusActive,
	}
	require.NoError(t, f.db.Create(b).Error)
	return b
}

func (f *fixture) seedEvent(t *testing.T, title string) *eventdomain.Event {
	t.Helper()
	e := &eventdomain.Event{
		ID:      f.genID.Generate(),
		Title:   title,
		SportID: f.genID.Generate(),
		StartAt: f.clock.Now().Add(72 * time.Hour),
	}
	require.NoError(t, f.db.Create(e).Error)
	return e
}

func (f *fixture) seedGrant(t *testing.T, eventID, broadcasterID snowflake.ID, status domain.GrantStatus, exclusivity domain.Exclusivity, allowed, blocked []string) *domain.RightsEvent {
	t.Helper()
	grant := &domain.RightsEvent{
		ID:                 f.genID.Generate(),
		EventID:            eventID,
		BroadcasterID:      broadcasterID,
		RightsLive:         true,
		TerritoriesAllowed: allowed,
		TerritoriesBlocked: blocked,
		Exclusivity:        exclusivity,
		Platform:           domain.PlatformBoth,
		Status:             status,
	}
	require.NoError(t, f.db.Create(grant).Error)
	return grant
}

func TestFindConflictsNonExclusiveIsAlwaysClear(t *testing.T) {
	f := newFixture(t)
	event := f.seedEvent(t, "Final")
	holder := f.seedBroadcaster(t, "CanalPlus")
	f.seedGrant(t, event.ID, holder.ID, domain.StatusActive, domain.ExclusivityExclusive, []string{"FR"}, nil)

	conflicts, err := f.svc.FindConflicts(context.Background(), domain.FindConflictsRequest{
		EventIDs:    []string{event.ID.String()},
		Territories: []string{"FR"},
		Exclusivity: domain.ExclusivityShared,
	})
	require.NoError(t, err)
	assert.Empty(t, conflicts)
}

func TestFindConflictsEmptyInputs(t *testing.T) {
	f := newFixture(t)

	conflicts, err := f.svc.FindConflicts(context.Background(), domain.FindConflictsRequest{
		EventIDs:    nil,
		Territories: []string{"FR"},
		Exclusivity: domain.ExclusivityExclusive,
	})
	require.NoError(t, err)
	assert.Empty(t, conflicts)

	conflicts, err = f.svc.FindConflicts(context.Background(), domain.FindConflictsRequest{
		EventIDs:    []string{"123"},
		Territories: nil,
		Exclusivity: domain.ExclusivityExclusive,
	})
	require.NoError(t, err)
	assert.Empty(t, conflicts)
}

func TestFindConflictsTerritoryOverlap(t *testing.T) {
	f := newFixture(t)
	event := f.seedEvent(t, "Semi Final")
	holder := f.seedBroadcaster(t, "RTL")
	grant := f.seedGrant(t, event.ID, holder.ID, domain.StatusActive, domain.ExclusivityExclusive, []string{"FR", "BE"}, nil)

	conflicts, err := f.svc.FindConflicts(context.Background(), domain.FindConflictsRequest{
		EventIDs:    []string{event.ID.String()},
		Territories: []string{"be", "DE"},
		Exclusivity: domain.ExclusivityExclusive,
	})
	require.NoError(t, err)
	require.Len(t, conflicts, 1)

	assert.Equal(t, grant.ID, conflicts[0].RightID)
	assert.Equal(t, event.ID, conflicts[0].EventID)
	assert.Equal(t, "Semi Final", conflicts[0].EventTitle)
	assert.Equal(t, holder.ID, conflicts[0].BroadcasterID)
	assert.Equal(t, "RTL", conflicts[0].BroadcasterName)
	assert.Equal(t, []string{"BE"}, conflicts[0].Territories)
}

func TestFindConflictsNoOverlap(t *testing.T) {
	f := newFixture(t)
	event := f.seedEvent(t, "Quarter Final")
	holder := f.seedBroadcaster(t, "Sky")
	f.seedGrant(t, event.ID, holder.ID, domain.StatusActive, domain.ExclusivityExclusive, []string{"GB"}, nil)

	conflicts, err := f.svc.FindConflicts(context.Background(), domain.FindConflictsRequest{
		EventIDs:    []string{event.ID.String()},
		Territories: []string{"FR", "BE"},
		Exclusivity: domain.ExclusivityExclusive,
	})
	require.NoError(t, err)
	assert.Empty(t, conflicts)
}

func TestFindConflictsIgnoresInactiveAndNonExclusiveGrants(t *testing.T) {
	f := newFixture(t)
	event := f.seedEvent(t, "Group Stage")
	holder := f.seedBroadcaster(t, "ZDF")
	f.seedGrant(t, event.ID, holder.ID, domain.StatusDraft, domain.ExclusivityExclusive, []string{"FR"}, nil)
	f.seedGrant(t, event.ID, holder.ID, domain.StatusRevoked, domain.ExclusivityExclusive, []string{"FR"}, nil)
	f.seedGrant(t, event.ID, holder.ID, domain.StatusActive, domain.ExclusivityShared, []string{"FR"}, nil)

	conflicts, err := f.svc.FindConflicts(context.Background(), domain.FindConflictsRequest{
		EventIDs:    []string{event.ID.String()},
		Territories: []string{"FR"},
		Exclusivity: domain.ExclusivityExclusive,
	})
	require.NoError(t, err)
	assert.Empty(t, conflicts)
}

func TestFindConflictsBlockedListDoesNotClearConflict(t *testing.T) {
	f := newFixture(t)
	event := f.seedEvent(t, "Derby")
	holder := f.seedBroadcaster(t, "BeIN")
	// BE is blocked on the existing grant, but the allow-list still claims it
	f.seedGrant(t, event.ID, holder.ID, domain.StatusActive, domain.ExclusivityExclusive, []string{"FR", "BE"}, []string{"BE"})

	conflicts, err := f.svc.FindConflicts(context.Background(), domain.FindConflictsRequest{
		EventIDs:    []string{event.ID.String()},
		Territories: []string{"BE"},
		Exclusivity: domain.ExclusivityExclusive,
	})
	require.NoError(t, err)
	require.Len(t, conflicts, 1)
	assert.Equal(t, []string{"BE"}, conflicts[0].Territories)
}

func TestFindConflictsExcludesOwnGrants(t *testing.T) {
	f := newFixture(t)
	event := f.seedEvent(t, "Playoff")
	self := f.seedBroadcaster(t, "TF1")
	other := f.seedBroadcaster(t, "M6")
	own := f.seedGrant(t, event.ID, self.ID, domain.StatusActive, domain.ExclusivityExclusive, []string{"FR"}, nil)
	theirs := f.seedGrant(t, event.ID, other.ID, domain.StatusActive, domain.ExclusivityExclusive, []string{"FR"}, nil)

	conflicts, err := f.svc.FindConflicts(context.Background(), domain.FindConflictsRequest{
		EventIDs:             []string{event.ID.String()},
		Territories:          []string{"FR"},
		Exclusivity:          domain.ExclusivityExclusive,
		ExcludeBroadcasterID: self.ID.String(),
	})
	require.NoError(t, err)
	require.Len(t, conflicts, 1)
	assert.Equal(t, theirs.ID, conflicts[0].RightID)

	conflicts, err = f.svc.FindConflicts(context.Background(), domain.FindConflictsRequest{
		EventIDs:       []string{event.ID.String()},
		Territories:    []string{"FR"},
		Exclusivity:    domain.ExclusivityExclusive,
		ExcludeRightID: theirs.ID.String(),
	})
	require.NoError(t, err)
	require.Len(t, conflicts, 1)
	assert.Equal(t, own.ID, conflicts[0].RightID)
}

func TestCreateInheritsPackageDefaults(t *testing.T) {
	f := newFixture(t)
	event := f.seedEvent(t, "Opening Match")
	holder := f.seedBroadcaster(t, "ARD")

	pkg := &packagedomain.RightsPackage{
		ID:                 f.genID.Generate(),
		BroadcasterID:      holder.ID,
		Name:               "Bundesliga 2026",
		ScopeType:          packagedomain.ScopeCompetition,
		StartAt:            f.clock.Now().Add(-24 * time.Hour),
		EndAt:              f.clock.Now().Add(365 * 24 * time.Hour),
		IsExclusiveDefault: true,
		TerritoriesDefault: []string{"DE"},
		Status:             packagedomain.StatusActive,
	}
	require.NoError(t, f.db.Create(pkg).Error)

	pkgID := pkg.ID.String()
	grant, err := f.svc.Create(context.Background(), domain.CreateRequest{
		EventID:       event.ID.String(),
		BroadcasterID: holder.ID.String(),
		PackageID:     &pkgID,
		RightsLive:    true,
	})
	require.NoError(t, err)

	assert.Equal(t, domain.ExclusivityExclusive, grant.Exclusivity)
	assert.Equal(t, []string{"DE"}, []string(grant.TerritoriesAllowed))
	assert.Equal(t, domain.PlatformBoth, grant.Platform)
	assert.Equal(t, domain.StatusDraft, grant.Status)
}

func TestCreateRejectsForeignPackage(t *testing.T) {
	f := newFixture(t)
	event := f.seedEvent(t, "Cup Final")
	holder := f.seedBroadcaster(t, "ITV")
	stranger := f.seedBroadcaster(t, "NBC")

	pkg := &packagedomain.RightsPackage{
		ID:            f.genID.Generate(),
		BroadcasterID: stranger.ID,
		Name:          "US Rights",
		ScopeType:     packagedomain.ScopeSport,
		StartAt:       f.clock.Now().Add(-24 * time.Hour),
		EndAt:         f.clock.Now().Add(24 * time.Hour),
		Status:        packagedomain.StatusActive,
	}
	require.NoError(t, f.db.Create(pkg).Error)

	pkgID := pkg.ID.String()
	_, err := f.svc.Create(context.Background(), domain.CreateRequest{
		EventID:            event.ID.String(),
		BroadcasterID:      holder.ID.String(),
		PackageID:          &pkgID,
		RightsLive:         true,
		TerritoriesAllowed: []string{"GB"},
	})
	assert.ErrorIs(t, err, domain.ErrPackageMismatch)
}

func TestCreateReplayWindowRequiresReplayRights(t *testing.T) {
	f := newFixture(t)
	event := f.seedEvent(t, "Friendly")
	holder := f.seedBroadcaster(t, "RAI")

	window := 48
	_, err := f.svc.Create(context.Background(), domain.CreateRequest{
		EventID:            event.ID.String(),
		BroadcasterID:      holder.ID.String(),
		RightsLive:         true,
		ReplayWindowHours:  &window,
		TerritoriesAllowed: []string{"FR"},
		Exclusivity:        domain.ExclusivityShared,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidReplayWindow)

	zero := 0
	_, err = f.svc.Create(context.Background(), domain.CreateRequest{
		EventID:            event.ID.String(),
		BroadcasterID:      holder.ID.String(),
		RightsReplay:       true,
		ReplayWindowHours:  &zero,
		TerritoriesAllowed: []string{"FR"},
		Exclusivity:        domain.ExclusivityShared,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidReplayWindow)
}

func TestLifecycleTransitions(t *testing.T) {
	f := newFixture(t)
	event := f.seedEvent(t, "Grand Final")
	holder := f.seedBroadcaster(t, "SBS")
	grant := f.seedGrant(t, event.ID, holder.ID, domain.StatusDraft, domain.ExclusivityShared, []string{"FR"}, nil)

	activated, err := f.svc.Activate(context.Background(), grant.ID.String())
	require.NoError(t, err)
	assert.Equal(t, domain.StatusActive, activated.Status)

	revoked, err := f.svc.Revoke(context.Background(), grant.ID.String())
	require.NoError(t, err)
	assert.Equal(t, domain.StatusRevoked, revoked.Status)
	require.NotNil(t, revoked.RevokedAt)
	assert.Equal(t, f.clock.Now(), revoked.RevokedAt.UTC())

	// revoked is terminal
	_, err = f.svc.Activate(context.Background(), grant.ID.String())
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}

func TestCreateRejectsUnknownEventAndBroadcaster(t *testing.T) {
	f := newFixture(t)
	event := f.seedEvent(t, "Derby")
	holder := f.seedBroadcaster(t, "ZDF")

	_, err := f.svc.Create(context.Background(), domain.CreateRequest{
		EventID:            f.genID.Generate().String(),
		BroadcasterID:      holder.ID.String(),
		TerritoriesAllowed: []string{"DE"},
		Exclusivity:        domain.ExclusivityShared,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidEvent)

	_, err = f.svc.Create(context.Background(), domain.CreateRequest{
		EventID:            event.ID.String(),
		BroadcasterID:      f.genID.Generate().String(),
		TerritoriesAllowed: []string{"DE"},
		Exclusivity:        domain.ExclusivityShared,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidBroadcaster)
}

func TestCreateUnknownPackageIsNotFound(t *testing.T) {
	f := newFixture(t)
	event := f.seedEvent(t, "Cup Final")
	holder := f.seedBroadcaster(t, "ITV")

	pkgID := f.genID.Generate().String()
	_, err := f.svc.Create(context.Background(), domain.CreateRequest{
		EventID:            event.ID.String(),
		BroadcasterID:      holder.ID.String(),
		PackageID:          &pkgID,
		TerritoriesAllowed: []string{"GB"},
		Exclusivity:        domain.ExclusivityShared,
	})
	assert.ErrorIs(t, err, packagedomain.ErrNotFound)
}

func TestListSortsByRequestedColumn(t *testing.T) {
	f := newFixture(t)
	event := f.seedEvent(t, "Matchday")
	holder := f.seedBroadcaster(t, "RAI")
	f.seedGrant(t, event.ID, holder.ID, domain.StatusDraft, domain.ExclusivityShared, []string{"FR"}, nil)
	f.seedGrant(t, event.ID, holder.ID, domain.StatusActive, domain.ExclusivityShared, []string{"DE"}, nil)

	rows, err := f.svc.List(context.Background(), domain.ListRequest{SortBy: "status", OrderBy: "asc"})
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, domain.StatusActive, rows[0].Status)
	assert.Equal(t, domain.StatusDraft, rows[1].Status)

	// columns outside the allow-list fall back to created_at
	rows, err = f.svc.List(context.Background(), domain.ListRequest{SortBy: "exclusivity"})
	require.NoError(t, err)
	assert.Len(t, rows, 2)
}
