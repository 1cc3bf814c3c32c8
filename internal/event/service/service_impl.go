package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/fieldside/rightsdesk/internal/clock"
	eventdomain "github.com/fieldside/rightsdesk/internal/event/domain"
	"go.uber.org/fx"
)

type Params struct {
	fx.In

	GenID *snowflake.Node
	Clock clock.Clock
	Repo  eventdomain.Repository
}

type service struct {
	genID *snowflake.Node
	clock clock.Clock
	repo  eventdomain.Repository
}

func NewService(p Params) eventdomain.Service {
	return &service{
		genID: p.GenID,
		clock: p.Clock,
		repo:  p.Repo,
	}
}

func (s *service) Create(ctx context.Context, req eventdomain.CreateRequest) (*eventdomain.Event, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, eventdomain.ErrInvalidTitle
	}
	sportID, err := snowflake.ParseString(strings.TrimSpace(req.SportID))
	if err != nil || sportID == 0 {
		return nil, eventdomain.ErrInvalidSport
	}
	if req.StartAt.IsZero() {
		return nil, eventdomain.ErrInvalidStartAt
	}

	var leagueID *snowflake.ID
	if req.LeagueID != nil {
		parsed, err := snowflake.ParseString(strings.TrimSpace(*req.LeagueID))
		if err != nil || parsed == 0 {
			return nil, eventdomain.ErrInvalidID
		}
		leagueID = &parsed
	}

	now := s.clock.Now()
	e := &eventdomain.Event{
		ID:        s.genID.Generate(),
		Title:     title,
		SportID:   sportID,
		LeagueID:  leagueID,
		Season:    req.Season,
		StartAt:   req.StartAt.UTC(),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.Create(ctx, e); err != nil {
		return nil, err
	}
	return e, nil
}

func (s *service) Get(ctx context.Context, id string) (*eventdomain.Event, error) {
	parsed, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil || parsed == 0 {
		return nil, eventdomain.ErrInvalidID
	}
	e, err := s.repo.FindByID(ctx, parsed)
	if err != nil {
		return nil, err
	}
	return e, nil
}

func (s *service) List(ctx context.Context, req eventdomain.ListRequest) ([]eventdomain.Event, error) {
	return s.repo.List(ctx, req)
}
