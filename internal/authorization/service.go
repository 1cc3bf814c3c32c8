package authorization

import (
	"context"
	"errors"

	"go.uber.org/fx"
)

const (
	ObjectRights      = "rights"
	ObjectRightsPkg   = "rights_package"
	ObjectBroadcaster = "broadcaster"
	ObjectEvent       = "event"
	ObjectPricing     = "pricing"
	ObjectPriceTier   = "price_tier"
	ObjectTerritory   = "territory"
	ObjectAuditLog    = "audit_log"
)

const (
	ActionView   = "view"
	ActionCreate = "create"
	ActionUpdate = "update"

	ActionRightsActivate = "rights.activate"
	ActionRightsExpire   = "rights.expire"
	ActionRightsRevoke   = "rights.revoke"

	ActionPricingOverride  = "pricing.override"
	ActionPricingRevert    = "pricing.revert"
	ActionPricingRecompute = "pricing.recompute"

	ActionPriceTierUpdate = "price_tier.update"
	ActionAuditLogView    = "audit_log.view"
)

type Service interface {
	// Authorize checks whether the actor's role permits the action on the
	// object. Returns ErrForbidden on denial.
	Authorize(ctx context.Context, object, action string) error
}

var (
	ErrInvalidActor  = errors.New("invalid_actor")
	ErrInvalidObject = errors.New("invalid_object")
	ErrInvalidAction = errors.New("invalid_action")
	ErrForbidden     = errors.New("forbidden")
)

var Module = fx.Module("authorization",
	fx.Provide(NewEnforcer),
	fx.Provide(NewService),
)
