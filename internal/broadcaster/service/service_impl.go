package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	broadcasterdomain "github.com/fieldside/rightsdesk/internal/broadcaster/domain"
	"github.com/fieldside/rightsdesk/internal/clock"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Params struct {
	fx.In

	Log   *zap.Logger
	GenID *snowflake.Node
	Clock clock.Clock
	Repo  broadcasterdomain.Repository
}

type service struct {
	log   *zap.Logger
	genID *snowflake.Node
	clock clock.Clock
	repo  broadcasterdomain.Repository
}

func NewService(p Params) broadcasterdomain.Service {
	return &service{
		log:   p.Log.Named("broadcaster.service"),
		genID: p.GenID,
		clock: p.Clock,
		repo:  p.Repo,
	}
}

func (s *service) Create(ctx context.Context, req broadcasterdomain.CreateRequest) (*broadcasterdomain.Broadcaster, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, broadcasterdomain.ErrInvalidName
	}

	now := s.clock.Now()
	b := &broadcasterdomain.Broadcaster{
		ID:        s.genID.Generate(),
		Name:      name,
		LegalName: normalizeOptional(req.LegalName),
		Status:    broadcasterdomain.StatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.Create(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}

func (s *service) Get(ctx context.Context, id string) (*broadcasterdomain.Broadcaster, error) {
	parsed, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil || parsed == 0 {
		return nil, broadcasterdomain.ErrInvalidID
	}
	b, err := s.repo.FindByID(ctx, parsed)
	if err != nil {
		return nil, err
	}
	return b, nil
}

func (s *service) List(ctx context.Context, req broadcasterdomain.ListRequest) ([]broadcasterdomain.Broadcaster, error) {
	return s.repo.List(ctx, req)
}

func (s *service) Update(ctx context.Context, req broadcasterdomain.UpdateRequest) (*broadcasterdomain.Broadcaster, error) {
	b, err := s.Get(ctx, req.ID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, broadcasterdomain.ErrInvalidName
		}
		b.Name = name
	}
	if req.LegalName != nil {
		b.LegalName = normalizeOptional(req.LegalName)
	}
	b.UpdatedAt = s.clock.Now()

	if err := s.repo.Update(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}

func (s *service) Transition(ctx context.Context, id string, to broadcasterdomain.BroadcasterStatus) (*broadcasterdomain.Broadcaster, error) {
	if !broadcasterdomain.ValidStatus(to) {
		return nil, broadcasterdomain.ErrInvalidStatus
	}

	b, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if b.Status == to {
		return b, nil
	}
	if !broadcasterdomain.CanTransition(b.Status, to) {
		return nil, broadcasterdomain.ErrInvalidTransition
	}

	from := b.Status
	b.Status = to
	b.UpdatedAt = s.clock.Now()
	if err := s.repo.Update(ctx, b); err != nil {
		return nil, err
	}

	s.log.Info("broadcaster status changed",
		zap.String("broadcaster_id", b.ID.String()),
		zap.String("from", string(from)),
		zap.String("to", string(to)),
	)
	return b, nil
}

func normalizeOptional(v *string) *string {
	if v == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*v)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
