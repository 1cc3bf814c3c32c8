package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	broadcasterdomain "github.com/fieldside/rightsdesk/internal/broadcaster/domain"
	"github.com/fieldside/rightsdesk/internal/clock"
	packagedomain "github.com/fieldside/rightsdesk/internal/rightspackage/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
)

type Params struct {
	fx.In

	Log             *zap.Logger
	GenID           *snowflake.Node
	Clock           clock.Clock
	Repo            packagedomain.Repository
	BroadcasterRepo broadcasterdomain.Repository
	Territories     packagedomain.TerritoryValidator
}

type service struct {
	log             *zap.Logger
	genID           *snowflake.Node
	clock           clock.Clock
	repo            packagedomain.Repository
	broadcasterRepo broadcasterdomain.Repository
	territories     packagedomain.TerritoryValidator
}

func NewService(p Params) packagedomain.Service {
	return &service{
		log:             p.Log.Named("rightspackage.service"),
		genID:           p.GenID,
		clock:           p.Clock,
		repo:            p.Repo,
		broadcasterRepo: p.BroadcasterRepo,
		territories:     p.Territories,
	}
}

func (s *service) Create(ctx context.Context, req packagedomain.CreateRequest) (*packagedomain.RightsPackage, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, packagedomain.ErrInvalidName
	}
	if !packagedomain.ValidScopeType(req.ScopeType) {
		return nil, packagedomain.ErrInvalidScopeType
	}
	if req.StartAt.IsZero() || req.EndAt.IsZero() || req.EndAt.Before(req.StartAt) {
		return nil, packagedomain.ErrInvalidWindow
	}

	broadcasterID, err := snowflake.ParseString(strings.TrimSpace(req.BroadcasterID))
	if err != nil || broadcasterID == 0 {
		return nil, packagedomain.ErrInvalidBroadcaster
	}
	if _, err := s.broadcasterRepo.FindByID(ctx, broadcasterID); err != nil {
		return nil, err
	}

	sportID, leagueID, err := scopeIDs(req)
	if err != nil {
		return nil, err
	}

	territories, err := s.territories.ValidateCodes(ctx, req.TerritoriesDefault)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	p := &packagedomain.RightsPackage{
		ID:                 s.genID.Generate(),
		BroadcasterID:      broadcasterID,
		Name:               name,
		ScopeType:          req.ScopeType,
		SportID:            sportID,
		LeagueID:           leagueID,
		Season:             req.Season,
		StartAt:            req.StartAt.UTC(),
		EndAt:              req.EndAt.UTC(),
		IsExclusiveDefault: req.IsExclusiveDefault,
		TerritoriesDefault: datatypes.NewJSONSlice(territories),
		Status:             packagedomain.StatusDraft,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// scopeIDs enforces the fields each scope type requires: sport packages
// need a sport, competition and season packages need a league.
func scopeIDs(req packagedomain.CreateRequest) (*snowflake.ID, *snowflake.ID, error) {
	var sportID, leagueID *snowflake.ID

	if req.SportID != nil {
		parsed, err := snowflake.ParseString(strings.TrimSpace(*req.SportID))
		if err != nil || parsed == 0 {
			return nil, nil, packagedomain.ErrInvalidID
		}
		sportID = &parsed
	}
	if req.LeagueID != nil {
		parsed, err := snowflake.ParseString(strings.TrimSpace(*req.LeagueID))
		if err != nil || parsed == 0 {
			return nil, nil, packagedomain.ErrInvalidID
		}
		leagueID = &parsed
	}

	switch req.ScopeType {
	case packagedomain.ScopeSport:
		if sportID == nil {
			return nil, nil, packagedomain.ErrMissingScopeField
		}
	case packagedomain.ScopeCompetition, packagedomain.ScopeSeason:
		if leagueID == nil {
			return nil, nil, packagedomain.ErrMissingScopeField
		}
	}
	return sportID, leagueID, nil
}

func (s *service) Get(ctx context.Context, id string) (*packagedomain.RightsPackage, error) {
	parsed, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil || parsed == 0 {
		return nil, packagedomain.ErrInvalidID
	}
	p, err := s.repo.FindByID(ctx, parsed)
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (s *service) List(ctx context.Context, req packagedomain.ListRequest) ([]packagedomain.RightsPackage, error) {
	return s.repo.List(ctx, req)
}

func (s *service) Activate(ctx context.Context, id string) (*packagedomain.RightsPackage, error) {
	return s.transition(ctx, id, packagedomain.StatusActive)
}

func (s *service) Expire(ctx context.Context, id string) (*packagedomain.RightsPackage, error) {
	return s.transition(ctx, id, packagedomain.StatusExpired)
}

func (s *service) transition(ctx context.Context, id string, to packagedomain.PackageStatus) (*packagedomain.RightsPackage, error) {
	p, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.Status == to {
		return p, nil
	}
	if !packagedomain.CanTransition(p.Status, to) {
		return nil, packagedomain.ErrInvalidTransition
	}

	from := p.Status
	p.Status = to
	p.UpdatedAt = s.clock.Now()
	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}

	s.log.Info("rights package status changed",
		zap.String("package_id", p.ID.String()),
		zap.String("from", string(from)),
		zap.String("to", string(to)),
	)
	return p, nil
}
