package authorization

import (
	"context"
	_ "embed"
	"fmt"
	"strings"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
	gormadapter "github.com/casbin/gorm-adapter/v3"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/fieldside/rightsdesk/internal/actorcontext"
	auditdomain "github.com/fieldside/rightsdesk/internal/audit/domain"
)

//go:embed model.conf
var modelText string

type Params struct {
	fx.In

	Log      *zap.Logger
	Enforcer *casbin.SyncedEnforcer
	AuditSvc auditdomain.Service `optional:"true"`
}

type ServiceImpl struct {
	log      *zap.Logger
	enforcer *casbin.SyncedEnforcer
	auditSvc auditdomain.Service
}

func NewEnforcer(db *gorm.DB) (*casbin.SyncedEnforcer, error) {
	adapter, err := gormadapter.NewAdapterByDB(db)
	if err != nil {
		return nil, err
	}
	m, err := model.NewModelFromString(modelText)
	if err != nil {
		return nil, err
	}
	enforcer, err := casbin.NewSyncedEnforcer(m, adapter)
	if err != nil {
		return nil, err
	}
	enforcer.EnableAutoSave(true)
	enforcer.EnableAutoBuildRoleLinks(true)
	if err := enforcer.LoadPolicy(); err != nil {
		return nil, err
	}
	if err := seedPolicies(enforcer); err != nil {
		return nil, err
	}
	enforcer.BuildRoleLinks()
	return enforcer, nil
}

func NewService(p Params) Service {
	return &ServiceImpl{
		log:      p.Log.Named("authorization.service"),
		enforcer: p.Enforcer,
		auditSvc: p.AuditSvc,
	}
}

func (s *ServiceImpl) Authorize(ctx context.Context, object, action string) error {
	object = strings.TrimSpace(object)
	if object == "" {
		return ErrInvalidObject
	}
	action = strings.TrimSpace(action)
	if action == "" {
		return ErrInvalidAction
	}

	actor, ok := actorcontext.ActorFromContext(ctx)
	if !ok || actor.ID == 0 {
		return ErrInvalidActor
	}
	role := strings.ToLower(strings.TrimSpace(actor.Role))
	if role == "" {
		s.auditDenied(ctx, object, action)
		return ErrForbidden
	}

	subject := fmt.Sprintf("user:%s", actor.ID.String())
	if err := s.ensureGrouping(subject, "role:"+role); err != nil {
		return err
	}

	allowed, err := s.enforcer.Enforce(subject, object, action)
	if err != nil {
		return err
	}
	if !allowed {
		s.auditDenied(ctx, object, action)
		return ErrForbidden
	}
	return nil
}

// ensureGrouping keeps the casbin grouping in sync with the role asserted
// by the gateway. A role change replaces the old grouping.
func (s *ServiceImpl) ensureGrouping(subject, roleName string) error {
	existing, err := s.enforcer.GetFilteredGroupingPolicy(0, subject)
	if err != nil {
		return err
	}
	for _, rule := range existing {
		if len(rule) < 2 || rule[1] == roleName {
			continue
		}
		params := make([]interface{}, 0, len(rule))
		for _, value := range rule {
			params = append(params, value)
		}
		_, _ = s.enforcer.RemoveGroupingPolicy(params...)
	}

	has, err := s.enforcer.HasGroupingPolicy(subject, roleName)
	if err != nil {
		return err
	}
	if has {
		return nil
	}
	_, err = s.enforcer.AddGroupingPolicy(subject, roleName)
	return err
}

func (s *ServiceImpl) auditDenied(ctx context.Context, object, action string) {
	if s.auditSvc == nil {
		return
	}
	targetID := "capability"
	_ = s.auditSvc.Record(ctx, "authorization.denied", "authorization", &targetID, map[string]any{
		"object": object,
		"action": action,
	})
}

func seedPolicies(enforcer *casbin.SyncedEnforcer) error {
	viewObjects := []string{
		ObjectRights, ObjectRightsPkg, ObjectBroadcaster,
		ObjectEvent, ObjectPricing, ObjectPriceTier, ObjectTerritory,
	}

	var policies [][]string
	for _, object := range viewObjects {
		policies = append(policies, []string{"role:viewer", object, ActionView})
	}

	// Admins hold every viewer permission plus catalog and rights
	// mutations and pricing overrides.
	policies = append(policies,
		[]string{"role:admin", ObjectBroadcaster, ActionCreate},
		[]string{"role:admin", ObjectBroadcaster, ActionUpdate},
		[]string{"role:admin", ObjectEvent, ActionCreate},
		[]string{"role:admin", ObjectEvent, ActionUpdate},
		[]string{"role:admin", ObjectRightsPkg, ActionCreate},
		[]string{"role:admin", ObjectRightsPkg, ActionUpdate},
		[]string{"role:admin", ObjectRights, ActionCreate},
		[]string{"role:admin", ObjectRights, ActionUpdate},
		[]string{"role:admin", ObjectRights, ActionRightsActivate},
		[]string{"role:admin", ObjectRights, ActionRightsExpire},
		[]string{"role:admin", ObjectRights, ActionRightsRevoke},
		[]string{"role:admin", ObjectPricing, ActionPricingOverride},
		[]string{"role:admin", ObjectPricing, ActionPricingRevert},
		[]string{"role:admin", ObjectPricing, ActionPricingRecompute},
		[]string{"role:admin", ObjectAuditLog, ActionAuditLogView},
	)

	// Tier band changes move revenue; owners only.
	policies = append(policies,
		[]string{"role:owner", ObjectPriceTier, ActionPriceTierUpdate},
	)

	groupings := [][]string{
		{"role:admin", "role:viewer"},
		{"role:owner", "role:admin"},
	}

	for _, policy := range policies {
		if _, err := enforcer.AddPolicy(policy); err != nil {
			return err
		}
	}
	for _, grouping := range groupings {
		if _, err := enforcer.AddGroupingPolicy(grouping[0], grouping[1]); err != nil {
			return err
		}
	}
	return nil
}
