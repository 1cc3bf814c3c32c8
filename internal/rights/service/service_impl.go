package service

import (
	"context"
	"errors"
	"strings"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"

	broadcasterdomain "github.com/fieldside/rightsdesk/internal/broadcaster/domain"
	"github.com/fieldside/rightsdesk/internal/clock"
	eventdomain "github.com/fieldside/rightsdesk/internal/event/domain"
	"github.com/fieldside/rightsdesk/internal/observability/metrics"
	"github.com/fieldside/rightsdesk/internal/rights/domain"
	packagedomain "github.com/fieldside/rightsdesk/internal/rightspackage/domain"
	territorydomain "github.com/fieldside/rightsdesk/internal/territory/domain"
)

type Params struct {
	fx.In

	Log          *zap.Logger
	GenID        *snowflake.Node
	Clock        clock.Clock
	Metrics      *metrics.Metrics
	Repo         domain.Repository
	Events       eventdomain.Repository
	Broadcasters broadcasterdomain.Repository
	Packages     packagedomain.Repository
	Territories  domain.TerritoryValidator
}

type service struct {
	log          *zap.Logger
	genID        *snowflake.Node
	clock        clock.Clock
	metrics      *metrics.Metrics
	repo         domain.Repository
	events       eventdomain.Repository
	broadcasters broadcasterdomain.Repository
	packages     packagedomain.Repository
	territories  domain.TerritoryValidator
}

func NewService(p Params) domain.Service {
	return &service{
		log:          p.Log.Named("rights.service"),
		genID:        p.GenID,
		clock:        p.Clock,
		metrics:      p.Metrics,
		repo:         p.Repo,
		events:       p.Events,
		broadcasters: p.Broadcasters,
		packages:     p.Packages,
		territories:  p.Territories,
	}
}

func (s *service) Create(ctx context.Context, req domain.CreateRequest) (*domain.RightsEvent, error) {
	eventID, err := parseID(req.EventID)
	if err != nil {
		return nil, domain.ErrInvalidEvent
	}
	broadcasterID, err := parseID(req.BroadcasterID)
	if err != nil {
		return nil, domain.ErrInvalidBroadcaster
	}

	if _, err := s.events.FindByID(ctx, eventID); err != nil {
		if errors.Is(err, eventdomain.ErrNotFound) {
			return nil, domain.ErrInvalidEvent
		}
		return nil, err
	}
	if _, err := s.broadcasters.FindByID(ctx, broadcasterID); err != nil {
		if errors.Is(err, broadcasterdomain.ErrNotFound) {
			return nil, domain.ErrInvalidBroadcaster
		}
		return nil, err
	}

	var pkg *packagedomain.RightsPackage
	var packageID *snowflake.ID
	if req.PackageID != nil && strings.TrimSpace(*req.PackageID) != "" {
		pid, err := parseID(*req.PackageID)
		if err != nil {
			return nil, domain.ErrInvalidID
		}
		pkg, err = s.packages.FindByID(ctx, pid)
		if err != nil {
			return nil, err
		}
		if pkg.BroadcasterID != broadcasterID {
			return nil, domain.ErrPackageMismatch
		}
		packageID = &pid
	}

	exclusivity := req.Exclusivity
	if exclusivity == "" && pkg != nil {
		if pkg.IsExclusiveDefault {
			exclusivity = domain.ExclusivityExclusive
		} else {
			exclusivity = domain.ExclusivityNonExclusive
		}
	}
	if !domain.ValidExclusivity(exclusivity) {
		return nil, domain.ErrInvalidExclusivity
	}

	platform := req.Platform
	if platform == "" {
		platform = domain.PlatformBoth
	}
	if !domain.ValidPlatform(platform) {
		return nil, domain.ErrInvalidPlatform
	}

	if req.ReplayWindowHours != nil {
		if !req.RightsReplay || *req.ReplayWindowHours <= 0 {
			return nil, domain.ErrInvalidReplayWindow
		}
	}

	allowed := req.TerritoriesAllowed
	if len(allowed) == 0 && pkg != nil {
		allowed = pkg.TerritoriesDefault
	}
	allowed, err = s.territories.ValidateCodes(ctx, allowed)
	if err != nil {
		return nil, err
	}
	blocked, err := s.territories.ValidateCodes(ctx, req.TerritoriesBlocked)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	grant := &domain.RightsEvent{
		ID:                 s.genID.Generate(),
		EventID:            eventID,
		BroadcasterID:      broadcasterID,
		PackageID:          packageID,
		RightsLive:         req.RightsLive,
		RightsReplay:       req.RightsReplay,
		RightsHighlights:   req.RightsHighlights,
		ReplayWindowHours:  req.ReplayWindowHours,
		TerritoriesAllowed: datatypes.NewJSONSlice(allowed),
		TerritoriesBlocked: datatypes.NewJSONSlice(blocked),
		Exclusivity:        exclusivity,
		Platform:           platform,
		Status:             domain.StatusDraft,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	if err := s.repo.Create(ctx, grant); err != nil {
		return nil, err
	}

	s.log.Info("rights grant created",
		zap.Int64("right_id", grant.ID.Int64()),
		zap.Int64("event_id", eventID.Int64()),
		zap.Int64("broadcaster_id", broadcasterID.Int64()),
		zap.String("exclusivity", string(exclusivity)),
	)
	return grant, nil
}

func (s *service) Get(ctx context.Context, id string) (*domain.RightsEvent, error) {
	parsed, err := parseID(id)
	if err != nil {
		return nil, domain.ErrInvalidID
	}
	return s.repo.FindByID(ctx, parsed)
}

func (s *service) List(ctx context.Context, req domain.ListRequest) ([]domain.RightsEvent, error) {
	return s.repo.List(ctx, req)
}

func (s *service) Activate(ctx context.Context, id string) (*domain.RightsEvent, error) {
	return s.transition(ctx, id, domain.StatusActive)
}

func (s *service) Expire(ctx context.Context, id string) (*domain.RightsEvent, error) {
	return s.transition(ctx, id, domain.StatusExpired)
}

func (s *service) Revoke(ctx context.Context, id string) (*domain.RightsEvent, error) {
	return s.transition(ctx, id, domain.StatusRevoked)
}

func (s *service) transition(ctx context.Context, id string, to domain.GrantStatus) (*domain.RightsEvent, error) {
	grant, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !domain.CanTransition(grant.Status, to) {
		return nil, domain.ErrInvalidTransition
	}

	now := s.clock.Now()
	from := grant.Status
	grant.Status = to
	grant.UpdatedAt = now
	switch to {
	case domain.StatusRevoked:
		grant.RevokedAt = &now
	case domain.StatusExpired:
		grant.ExpiresAt = &now
	}
	if err := s.repo.Update(ctx, grant); err != nil {
		return nil, err
	}

	s.log.Info("rights grant transitioned",
		zap.Int64("right_id", grant.ID.Int64()),
		zap.String("from", string(from)),
		zap.String("to", string(to)),
	)
	return grant, nil
}

// FindConflicts reports active exclusive grants that overlap the candidate's
// allow-list territories. Only exclusive candidates can conflict; shared and
// non-exclusive candidates return no conflicts by definition.
func (s *service) FindConflicts(ctx context.Context, req domain.FindConflictsRequest) ([]domain.Conflict, error) {
	if req.Exclusivity != domain.ExclusivityExclusive {
		s.metrics.RecordConflictCheck(ctx, 0)
		return nil, nil
	}
	if len(req.EventIDs) == 0 || len(req.Territories) == 0 {
		s.metrics.RecordConflictCheck(ctx, 0)
		return nil, nil
	}

	territories, err := territorydomain.NormalizeCodes(req.Territories)
	if err != nil {
		return nil, err
	}

	eventIDs := make([]snowflake.ID, 0, len(req.EventIDs))
	for _, raw := range req.EventIDs {
		id, err := parseID(raw)
		if err != nil {
			return nil, domain.ErrInvalidEvent
		}
		eventIDs = append(eventIDs, id)
	}

	var excludeBroadcaster, excludeRight snowflake.ID
	if strings.TrimSpace(req.ExcludeBroadcasterID) != "" {
		if excludeBroadcaster, err = parseID(req.ExcludeBroadcasterID); err != nil {
			return nil, domain.ErrInvalidBroadcaster
		}
	}
	if strings.TrimSpace(req.ExcludeRightID) != "" {
		if excludeRight, err = parseID(req.ExcludeRightID); err != nil {
			return nil, domain.ErrInvalidID
		}
	}

	grants, err := s.repo.ListActiveExclusiveForEvents(ctx, eventIDs, excludeBroadcaster, excludeRight)
	if err != nil {
		return nil, err
	}

	candidate := make(map[string]struct{}, len(territories))
	for _, code := range territories {
		candidate[code] = struct{}{}
	}

	conflicts := make([]domain.Conflict, 0)
	broadcasterIDs := make(map[snowflake.ID]struct{})
	affectedEvents := make(map[snowflake.ID]struct{})
	for _, grant := range grants {
		// overlap is computed on the allow-list only; a blocked territory
		// on the existing grant does not clear the conflict.
		overlap := intersect(candidate, grant.TerritoriesAllowed)
		if len(overlap) == 0 {
			continue
		}
		conflicts = append(conflicts, domain.Conflict{
			RightID:       grant.ID,
			EventID:       grant.EventID,
			BroadcasterID: grant.BroadcasterID,
			Territories:   overlap,
		})
		broadcasterIDs[grant.BroadcasterID] = struct{}{}
		affectedEvents[grant.EventID] = struct{}{}
	}

	if len(conflicts) == 0 {
		s.metrics.RecordConflictCheck(ctx, 0)
		return nil, nil
	}

	eventTitles, err := s.eventTitles(ctx, keys(affectedEvents))
	if err != nil {
		return nil, err
	}
	broadcasterNames, err := s.broadcasterNames(ctx, keys(broadcasterIDs))
	if err != nil {
		return nil, err
	}
	for i := range conflicts {
		conflicts[i].EventTitle = eventTitles[conflicts[i].EventID]
		conflicts[i].BroadcasterName = broadcasterNames[conflicts[i].BroadcasterID]
	}

	s.metrics.RecordConflictCheck(ctx, len(conflicts))
	s.log.Info("exclusivity conflicts found",
		zap.Int("conflicts", len(conflicts)),
		zap.Int("events_checked", len(eventIDs)),
	)
	return conflicts, nil
}

func (s *service) eventTitles(ctx context.Context, ids []snowflake.ID) (map[snowflake.ID]string, error) {
	events, err := s.events.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	titles := make(map[snowflake.ID]string, len(events))
	for _, e := range events {
		titles[e.ID] = e.Title
	}
	return titles, nil
}

func (s *service) broadcasterNames(ctx context.Context, ids []snowflake.ID) (map[snowflake.ID]string, error) {
	broadcasters, err := s.broadcasters.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	names := make(map[snowflake.ID]string, len(broadcasters))
	for _, b := range broadcasters {
		names[b.ID] = b.Name
	}
	return names, nil
}

func intersect(candidate map[string]struct{}, allowed []string) []string {
	var out []string
	for _, code := range allowed {
		if _, ok := candidate[code]; ok {
			out = append(out, code)
		}
	}
	return out
}

func keys(set map[snowflake.ID]struct{}) []snowflake.ID {
	out := make([]snowflake.ID, 0, len(set))
	for id := range set {
		out = append(out, id)
	}
	return out
}

func parseID(raw string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(raw))
	if err != nil || id == 0 {
		return 0, domain.ErrInvalidID
	}
	return id, nil
}
