package server

import (
	"context"
	"net/http"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
	"gorm.io/gorm"

	"github.com/fieldside/rightsdesk/internal/audit"
	auditdomain "github.com/fieldside/rightsdesk/internal/audit/domain"
	"github.com/fieldside/rightsdesk/internal/authorization"
	"github.com/fieldside/rightsdesk/internal/broadcaster"
	broadcasterdomain "github.com/fieldside/rightsdesk/internal/broadcaster/domain"
	"github.com/fieldside/rightsdesk/internal/cache"
	"github.com/fieldside/rightsdesk/internal/config"
	"github.com/fieldside/rightsdesk/internal/event"
	eventdomain "github.com/fieldside/rightsdesk/internal/event/domain"
	"github.com/fieldside/rightsdesk/internal/observability"
	obsmiddleware "github.com/fieldside/rightsdesk/internal/observability/logger"
	obsmetrics "github.com/fieldside/rightsdesk/internal/observability/metrics"
	obstracing "github.com/fieldside/rightsdesk/internal/observability/tracing"
	"github.com/fieldside/rightsdesk/internal/pricetier"
	pricetierdomain "github.com/fieldside/rightsdesk/internal/pricetier/domain"
	"github.com/fieldside/rightsdesk/internal/pricing"
	pricingdomain "github.com/fieldside/rightsdesk/internal/pricing/domain"
	"github.com/fieldside/rightsdesk/internal/ratelimit"
	"github.com/fieldside/rightsdesk/internal/rights"
	rightsdomain "github.com/fieldside/rightsdesk/internal/rights/domain"
	"github.com/fieldside/rightsdesk/internal/rightspackage"
	packagedomain "github.com/fieldside/rightsdesk/internal/rightspackage/domain"
	"github.com/fieldside/rightsdesk/internal/suggestion"
	suggestiondomain "github.com/fieldside/rightsdesk/internal/suggestion/domain"
	"github.com/fieldside/rightsdesk/internal/territory"
	territorydomain "github.com/fieldside/rightsdesk/internal/territory/domain"
)

var Module = fx.Module("http.server",
	config.Module,
	fx.Provide(registerGin),
	authorization.Module,
	audit.Module,
	cache.Module,
	territory.Module,
	broadcaster.Module,
	event.Module,
	rightspackage.Module,
	rights.Module,
	suggestion.Module,
	pricetier.Module,
	pricing.Module,
	ratelimit.Module,
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obsmiddleware.GinMiddleware(obsmiddleware.MiddlewareConfig{
		Debug:           obsCfg.Debug(),
		ErrorClassifier: classifyErrorForLog,
	}))
	r.Use(obstracing.GinMiddleware())
	r.Use(obsmetrics.GinMiddleware(httpMetrics))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func registerGin(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	return NewEngine(obsCfg, httpMetrics)
}

func run(lc fx.Lifecycle, r *gin.Engine, cfg config.Config) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					panic(err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type Server struct {
	engine         *gin.Engine
	cfg            config.Config
	db             *gorm.DB
	genID          *snowflake.Node
	authzSvc       authorization.Service
	auditSvc       auditdomain.Service
	territorySvc   territorydomain.Service
	broadcasterSvc broadcasterdomain.Service
	eventSvc       eventdomain.Service
	packageSvc     packagedomain.Service
	rightsSvc      rightsdomain.Service
	suggestionSvc  suggestiondomain.Service
	priceTierSvc   pricetierdomain.Service
	pricingSvc     pricingdomain.Service
}

type ServerParams struct {
	fx.In

	Gin            *gin.Engine
	Cfg            config.Config
	DB             *gorm.DB
	GenID          *snowflake.Node
	AuthzSvc       authorization.Service
	AuditSvc       auditdomain.Service
	TerritorySvc   territorydomain.Service
	BroadcasterSvc broadcasterdomain.Service
	EventSvc       eventdomain.Service
	PackageSvc     packagedomain.Service
	RightsSvc      rightsdomain.Service
	SuggestionSvc  suggestiondomain.Service
	PriceTierSvc   pricetierdomain.Service
	PricingSvc     pricingdomain.Service
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:         p.Gin,
		cfg:            p.Cfg,
		db:             p.DB,
		genID:          p.GenID,
		authzSvc:       p.AuthzSvc,
		auditSvc:       p.AuditSvc,
		territorySvc:   p.TerritorySvc,
		broadcasterSvc: p.BroadcasterSvc,
		eventSvc:       p.EventSvc,
		packageSvc:     p.PackageSvc,
		rightsSvc:      p.RightsSvc,
		suggestionSvc:  p.SuggestionSvc,
		priceTierSvc:   p.PriceTierSvc,
		pricingSvc:     p.PricingSvc,
	}

	svc.registerAdminRoutes()

	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

// recordAudit writes a best-effort audit entry for a mutation. Failures
// never fail the request.
func (s *Server) recordAudit(c *gin.Context, action, targetType, targetID string, metadata map[string]any) {
	if s.auditSvc == nil {
		return
	}
	var target *string
	if targetID != "" {
		target = &targetID
	}
	_ = s.auditSvc.Record(c.Request.Context(), action, targetType, target, metadata)
}

func (s *Server) registerAdminRoutes() {
	admin := s.engine.Group("/admin")
	admin.Use(s.ActorContext())

	// -------- Territories --------
	admin.GET("/territories", s.authorize(authorization.ObjectTerritory, authorization.ActionView), s.ListTerritories)
	admin.GET("/territories/regions", s.authorize(authorization.ObjectTerritory, authorization.ActionView), s.ListTerritoryRegions)

	// -------- Broadcasters --------
	admin.GET("/broadcasters", s.authorize(authorization.ObjectBroadcaster, authorization.ActionView), s.ListBroadcasters)
	admin.POST("/broadcasters", s.authorize(authorization.ObjectBroadcaster, authorization.ActionCreate), s.CreateBroadcaster)
	admin.GET("/broadcasters/:id", s.authorize(authorization.ObjectBroadcaster, authorization.ActionView), s.GetBroadcasterByID)
	admin.PATCH("/broadcasters/:id", s.authorize(authorization.ObjectBroadcaster, authorization.ActionUpdate), s.UpdateBroadcaster)
	admin.POST("/broadcasters/:id/transition", s.authorize(authorization.ObjectBroadcaster, authorization.ActionUpdate), s.TransitionBroadcaster)

	// -------- Events --------
	admin.GET("/events", s.authorize(authorization.ObjectEvent, authorization.ActionView), s.ListEvents)
	admin.POST("/events", s.authorize(authorization.ObjectEvent, authorization.ActionCreate), s.CreateEvent)
	admin.GET("/events/:id", s.authorize(authorization.ObjectEvent, authorization.ActionView), s.GetEventByID)

	// -------- Rights Packages --------
	admin.GET("/rights-packages", s.authorize(authorization.ObjectRightsPkg, authorization.ActionView), s.ListRightsPackages)
	admin.POST("/rights-packages", s.authorize(authorization.ObjectRightsPkg, authorization.ActionCreate), s.CreateRightsPackage)
	admin.GET("/rights-packages/:id", s.authorize(authorization.ObjectRightsPkg, authorization.ActionView), s.GetRightsPackageByID)
	admin.POST("/rights-packages/:id/activate", s.authorize(authorization.ObjectRightsPkg, authorization.ActionUpdate), s.ActivateRightsPackage)
	admin.POST("/rights-packages/:id/expire", s.authorize(authorization.ObjectRightsPkg, authorization.ActionUpdate), s.ExpireRightsPackage)

	// -------- Rights --------
	admin.GET("/rights", s.authorize(authorization.ObjectRights, authorization.ActionView), s.ListRights)
	admin.POST("/rights", s.authorize(authorization.ObjectRights, authorization.ActionCreate), s.CreateRights)
	admin.GET("/rights/conflicts", s.authorize(authorization.ObjectRights, authorization.ActionView), s.FindRightsConflicts)
	admin.GET("/rights/suggestions", s.authorize(authorization.ObjectRights, authorization.ActionView), s.SuggestBroadcasters)
	admin.GET("/rights/:id", s.authorize(authorization.ObjectRights, authorization.ActionView), s.GetRightsByID)
	admin.POST("/rights/:id/activate", s.authorize(authorization.ObjectRights, authorization.ActionRightsActivate), s.ActivateRights)
	admin.POST("/rights/:id/expire", s.authorize(authorization.ObjectRights, authorization.ActionRightsExpire), s.ExpireRights)
	admin.POST("/rights/:id/revoke", s.authorize(authorization.ObjectRights, authorization.ActionRightsRevoke), s.RevokeRights)

	// -------- Pricing --------
	admin.GET("/pricing", s.authorize(authorization.ObjectPricing, authorization.ActionView), s.ListEventPricing)
	admin.GET("/pricing/history", s.authorize(authorization.ObjectPricing, authorization.ActionView), s.ListPricingHistory)
	admin.GET("/pricing/:eventId", s.authorize(authorization.ObjectPricing, authorization.ActionView), s.GetEffectivePricing)
	admin.POST("/pricing/:eventId/override", s.authorize(authorization.ObjectPricing, authorization.ActionPricingOverride), s.SetPricingOverride)
	admin.POST("/pricing/:eventId/revert", s.authorize(authorization.ObjectPricing, authorization.ActionPricingRevert), s.RevertPricing)
	admin.POST("/pricing/:eventId/recompute", s.authorize(authorization.ObjectPricing, authorization.ActionPricingRecompute), s.RecomputePricing)

	// -------- Price Tiers --------
	admin.GET("/price-tiers", s.authorize(authorization.ObjectPriceTier, authorization.ActionView), s.ListPriceTiers)
	admin.PUT("/price-tiers/:tier", s.authorize(authorization.ObjectPriceTier, authorization.ActionPriceTierUpdate), s.UpsertPriceTier)

	// -------- Audit Logs --------
	admin.GET("/audit-logs", s.authorize(authorization.ObjectAuditLog, authorization.ActionAuditLogView), s.ListAuditLogs)
}
