package metrics

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Config configures the metrics provider.
type Config struct {
	Enabled          bool
	ExporterEndpoint string
	ExporterProtocol string
	ServiceName      string
	Environment      string
}

// Metrics exposes application-level instruments for the rights and
// pricing engine.
type Metrics struct {
	conflictChecks    metric.Int64Counter
	conflictsFound    metric.Int64Counter
	suggestionQueries metric.Int64Counter
	pricingMutations  metric.Int64Counter
	signalFetches     metric.Int64Counter
	rateLimitDenied   metric.Int64Counter
}

// NewProvider configures and registers the meter provider.
func NewProvider(lc fx.Lifecycle, cfg Config, log *zap.Logger) (metric.MeterProvider, error) {
	if !cfg.Enabled {
		provider := noop.NewMeterProvider()
		otel.SetMeterProvider(provider)
		return provider, nil
	}

	exporter, err := newExporter(cfg.ExporterProtocol, cfg.ExporterEndpoint)
	if err != nil {
		return nil, err
	}

	reader := sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(10*time.Second))
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	otel.SetMeterProvider(provider)

	if lc != nil {
		lc.Append(fx.Hook{
			OnStop: func(ctx context.Context) error {
				if log != nil {
					log.Info("shutting down meter provider")
				}
				return provider.Shutdown(ctx)
			},
		})
	}

	if log != nil {
		log.Info("metrics initialized",
			zap.String("endpoint", cfg.ExporterEndpoint),
			zap.String("protocol", cfg.ExporterProtocol),
		)
	}

	return provider, nil
}

// New configures the domain metrics instruments.
func New(cfg Config, provider metric.MeterProvider) (*Metrics, error) {
	name := strings.TrimSpace(cfg.ServiceName)
	if name == "" {
		name = "rightsdesk"
	}
	meter := provider.Meter(name)

	conflictChecks, err := meter.Int64Counter("rightsdesk_conflict_checks_total")
	if err != nil {
		return nil, err
	}
	conflictsFound, err := meter.Int64Counter("rightsdesk_conflicts_found_total")
	if err != nil {
		return nil, err
	}
	suggestionQueries, err := meter.Int64Counter("rightsdesk_suggestion_queries_total")
	if err != nil {
		return nil, err
	}
	pricingMutations, err := meter.Int64Counter("rightsdesk_pricing_mutations_total")
	if err != nil {
		return nil, err
	}
	signalFetches, err := meter.Int64Counter("rightsdesk_signal_fetches_total")
	if err != nil {
		return nil, err
	}
	rateLimitDenied, err := meter.Int64Counter("rightsdesk_rate_limit_denied_total")
	if err != nil {
		return nil, err
	}

	return &Metrics{
		conflictChecks:    conflictChecks,
		conflictsFound:    conflictsFound,
		suggestionQueries: suggestionQueries,
		pricingMutations:  pricingMutations,
		signalFetches:     signalFetches,
		rateLimitDenied:   rateLimitDenied,
	}, nil
}

// RecordConflictCheck counts one conflict detection query and the
// number of conflicts it surfaced.
func (m *Metrics) RecordConflictCheck(ctx context.Context, conflicts int) {
	if m == nil {
		return
	}
	m.conflictChecks.Add(ctx, 1)
	if conflicts > 0 {
		m.conflictsFound.Add(ctx, int64(conflicts))
	}
}

// RecordSuggestionQuery counts suggestion ranking queries.
func (m *Metrics) RecordSuggestionQuery(ctx context.Context) {
	if m == nil {
		return
	}
	m.suggestionQueries.Add(ctx, 1)
}

// RecordPricingMutation counts override/revert/recompute mutations by kind.
func (m *Metrics) RecordPricingMutation(ctx context.Context, kind string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(attribute.String("change_type", strings.TrimSpace(kind)))
	m.pricingMutations.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordSignalFetch counts upstream pricing-signal calls by outcome.
func (m *Metrics) RecordSignalFetch(ctx context.Context, outcome string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(attribute.String("outcome", strings.TrimSpace(outcome)))
	m.signalFetches.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordRateLimitDenied counts rate limit rejections.
func (m *Metrics) RecordRateLimitDenied(ctx context.Context, endpoint string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(attribute.String("endpoint", strings.TrimSpace(endpoint)))
	m.rateLimitDenied.Add(ctx, 1, metric.WithAttributes(attrs...))
}

func newExporter(protocol, endpoint string) (sdkmetric.Exporter, error) {
	protocol = strings.ToLower(strings.TrimSpace(protocol))
	switch protocol {
	case "http", "http/protobuf":
		opts := []otlpmetrichttp.Option{}
		if endpoint != "" {
			opts = append(opts, otlpmetrichttp.WithEndpoint(endpoint))
		}
		return otlpmetrichttp.New(context.Background(), opts...)
	case "grpc", "grpc/protobuf", "":
		opts := []otlpmetricgrpc.Option{otlpmetricgrpc.WithInsecure()}
		if endpoint != "" {
			opts = append(opts, otlpmetricgrpc.WithEndpoint(endpoint))
		}
		return otlpmetricgrpc.New(context.Background(), opts...)
	default:
		return nil, fmt.Errorf("unsupported OTLP protocol %q", protocol)
	}
}

var allowedLabelKeys = map[attribute.Key]struct{}{
	"endpoint":    {},
	"status_code": {},
	"change_type": {},
	"outcome":     {},
	"reason":      {},
}

// FilterAttributes strips disallowed labels to keep metrics low-cardinality.
func FilterAttributes(attrs ...attribute.KeyValue) []attribute.KeyValue {
	filtered := make([]attribute.KeyValue, 0, len(attrs))
	for _, attr := range attrs {
		if _, ok := allowedLabelKeys[attr.Key]; !ok {
			continue
		}
		filtered = append(filtered, attr)
	}
	return filtered
}
