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
	packagedomain "github.com/fieldside/rightsdesk/internal/rightspackage/domain"
	packagerepo "github.com/fieldside/rightsdesk/internal/rightspackage/repository"
	"github.com/fieldside/rightsdesk/internal/suggestion/domain"
)

type fixture struct {
	db        *gorm.DB
	genID     *snowflake.Node
	svc       domain.Service
	eventDate time.Time
	sportID   snowflake.ID
	leagueID  snowflake.ID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&broadcasterdomain.Broadcaster{},
		&packagedomain.RightsPackage{},
	))

	node, err := snowflake.NewNode(2)
	require.NoError(t, err)

	svc := NewService(Params{
		Log:          zap.NewNop(),
		Metrics:      nil,
		Packages:     packagerepo.NewRepository(db),
		Broadcasters: broadcasterrepo.NewRepository(db),
	})

	return &fixture{
		db:        db,
		genID:     node,
		svc:       svc,
		eventDate: time.Date(2026, 7, 10, 18, 0, 0, 0, time.UTC),
		sportID:   node.Generate(),
		leagueID:  node.Generate(),
	}
}

func (f *fixture) seedBroadcaster(t *testing.T, name string, status broadcasterdomain.BroadcasterStatus) *broadcasterdomain.Broadcaster {
	t.Helper()
	b := &broadcasterdomain.Broadcaster{ID: f.genID.Generate(), Name: name, Status: status}
	require.NoError(t, f.db.Create(b).Error)
	return b
}

type pkgSpec struct {
	broadcasterID snowflake.ID
	name          string
	scope         packagedomain.ScopeType
	status        packagedomain.PackageStatus
	startOffset   time.Duration
	endOffset     time.Duration
}

func (f *fixture) seedPackage(t *testing.T, spec pkgSpec) *packagedomain.RightsPackage {
	t.Helper()
	pkg := &packagedomain.RightsPackage{
		ID:            f.genID.Generate(),
		BroadcasterID: spec.broadcasterID,
		Name:          spec.name,
		ScopeType:     spec.scope,
		StartAt:       f.eventDate.Add(spec.startOffset),
		EndAt:         f.eventDate.Add(spec.endOffset),
		Status:        spec.status,
	}
	switch spec.scope {
	case packagedomain.ScopeSport:
		pkg.SportID = &f.sportID
	default:
		pkg.LeagueID = &f.leagueID
	}
	require.NoError(t, f.db.Create(pkg).Error)
	return pkg
}

func (f *fixture) suggest(t *testing.T) []domain.Suggestion {
	t.Helper()
	out, err := f.svc.SuggestBroadcasters(context.Background(), domain.SuggestRequest{
		SportID:   f.sportID.String(),
		LeagueID:  f.leagueID.String(),
		EventDate: f.eventDate,
	})
	require.NoError(t, err)
	return out
}

func TestSuggestRequiresScope(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.SuggestBroadcasters(context.Background(), domain.SuggestRequest{
		EventDate: f.eventDate,
	})
	assert.ErrorIs(t, err, domain.ErrMissingScope)
}

func TestSuggestOrdersBySpecificity(t *testing.T) {
	f := newFixture(t)
	seasonHolder := f.seedBroadcaster(t, "SeasonCo", broadcasterdomain.StatusActive)
	competitionHolder := f.seedBroadcaster(t, "CompCo", broadcasterdomain.StatusActive)
	sportHolder := f.seedBroadcaster(t, "SportCo", broadcasterdomain.StatusActive)

	f.seedPackage(t, pkgSpec{sportHolder.ID, "All Football", packagedomain.ScopeSport, packagedomain.StatusActive, -time.Hour, time.Hour})
	f.seedPackage(t, pkgSpec{competitionHolder.ID, "League One", packagedomain.ScopeCompetition, packagedomain.StatusActive, -time.Hour, time.Hour})
	f.seedPackage(t, pkgSpec{seasonHolder.ID, "Season 2026", packagedomain.ScopeSeason, packagedomain.StatusActive, -time.Hour, time.Hour})

	got := f.suggest(t)
	require.Len(t, got, 3)
	assert.Equal(t, "SeasonCo", got[0].BroadcasterName)
	assert.Equal(t, domain.PrioritySeason, got[0].Priority)
	assert.Equal(t, "CompCo", got[1].BroadcasterName)
	assert.Equal(t, domain.PriorityCompetition, got[1].Priority)
	assert.Equal(t, "SportCo", got[2].BroadcasterName)
	assert.Equal(t, domain.PrioritySport, got[2].Priority)
}

func TestSuggestDeduplicatesByMostSpecificMatch(t *testing.T) {
	f := newFixture(t)
	holder := f.seedBroadcaster(t, "MultiCo", broadcasterdomain.StatusActive)

	f.seedPackage(t, pkgSpec{holder.ID, "Broad Sport Deal", packagedomain.ScopeSport, packagedomain.StatusActive, -time.Hour, time.Hour})
	season := f.seedPackage(t, pkgSpec{holder.ID, "Season Deal", packagedomain.ScopeSeason, packagedomain.StatusActive, -time.Hour, time.Hour})

	got := f.suggest(t)
	require.Len(t, got, 1)
	assert.Equal(t, season.ID, got[0].PackageID)
	assert.Equal(t, string(packagedomain.ScopeSeason), got[0].MatchType)
}

func TestSuggestTieBreakByPackageName(t *testing.T) {
	f := newFixture(t)
	first := f.seedBroadcaster(t, "Zeta", broadcasterdomain.StatusActive)
	second := f.seedBroadcaster(t, "Alpha", broadcasterdomain.StatusActive)

	f.seedPackage(t, pkgSpec{first.ID, "Aardvark Season", packagedomain.ScopeSeason, packagedomain.StatusActive, -time.Hour, time.Hour})
	f.seedPackage(t, pkgSpec{second.ID, "Zebra Season", packagedomain.ScopeSeason, packagedomain.StatusActive, -time.Hour, time.Hour})

	got := f.suggest(t)
	require.Len(t, got, 2)
	assert.Equal(t, "Aardvark Season", got[0].PackageName)
	assert.Equal(t, "Zebra Season", got[1].PackageName)
}

func TestSuggestSkipsInactiveBroadcastersAndPackages(t *testing.T) {
	f := newFixture(t)
	suspended := f.seedBroadcaster(t, "SuspendedCo", broadcasterdomain.StatusSuspended)
	pending := f.seedBroadcaster(t, "PendingCo", broadcasterdomain.StatusPending)
	active := f.seedBroadcaster(t, "ActiveCo", broadcasterdomain.StatusActive)

	f.seedPackage(t, pkgSpec{suspended.ID, "Suspended Deal", packagedomain.ScopeSeason, packagedomain.StatusActive, -time.Hour, time.Hour})
	f.seedPackage(t, pkgSpec{pending.ID, "Pending Deal", packagedomain.ScopeSeason, packagedomain.StatusActive, -time.Hour, time.Hour})
	f.seedPackage(t, pkgSpec{active.ID, "Draft Deal", packagedomain.ScopeSeason, packagedomain.StatusDraft, -time.Hour, time.Hour})
	f.seedPackage(t, pkgSpec{active.ID, "Live Deal", packagedomain.ScopeSeason, packagedomain.StatusActive, -time.Hour, time.Hour})

	got := f.suggest(t)
	require.Len(t, got, 1)
	assert.Equal(t, "ActiveCo", got[0].BroadcasterName)
	assert.Equal(t, "Live Deal", got[0].PackageName)
}

func TestSuggestHonorsValidityWindow(t *testing.T) {
	f := newFixture(t)
	holder := f.seedBroadcaster(t, "WindowCo", broadcasterdomain.StatusActive)

	// window ended before the event date
	f.seedPackage(t, pkgSpec{holder.ID, "Lapsed Deal", packagedomain.ScopeSeason, packagedomain.StatusActive, -48 * time.Hour, -24 * time.Hour})

	assert.Empty(t, f.suggest(t))

	// window containing the event date, boundaries inclusive
	f.seedPackage(t, pkgSpec{holder.ID, "Current Deal", packagedomain.ScopeSeason, packagedomain.StatusActive, 0, 24 * time.Hour})
	got := f.suggest(t)
	require.Len(t, got, 1)
	assert.Equal(t, "Current Deal", got[0].PackageName)
}
