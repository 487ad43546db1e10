package telemetry

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	otelmetric "go.opentelemetry.io/otel/metric"
)

// Metrics holds the domain counters. Instruments come from the global meter
// provider, so they are no-ops until Init installs the Prometheus exporter.
type Metrics struct {
	claimsAdmitted otelmetric.Float64Counter
	claimsRejected otelmetric.Int64Counter
	postsCreated   otelmetric.Int64Counter
}

// NewMetrics registers the domain instruments
func NewMetrics() (*Metrics, error) {
	meter := otel.Meter(instrumentationName)

	admitted, err := meter.Float64Counter("foodshare.claims.admitted",
		otelmetric.WithDescription("Quantity admitted through claims"))
	if err != nil {
		return nil, err
	}
	rejected, err := meter.Int64Counter("foodshare.claims.rejected",
		otelmetric.WithDescription("Claims rejected by admission, by kind"))
	if err != nil {
		return nil, err
	}
	created, err := meter.Int64Counter("foodshare.posts.created",
		otelmetric.WithDescription("Donation posts created"))
	if err != nil {
		return nil, err
	}

	return &Metrics{
		claimsAdmitted: admitted,
		claimsRejected: rejected,
		postsCreated:   created,
	}, nil
}

// ClaimAdmitted records an admitted claim of the given quantity and unit
func (m *Metrics) ClaimAdmitted(ctx context.Context, quantity float64, unit string) {
	if m == nil {
		return
	}
	m.claimsAdmitted.Add(ctx, quantity, otelmetric.WithAttributes(attribute.String("unit", unit)))
}

// ClaimRejected records a rejected claim
func (m *Metrics) ClaimRejected(ctx context.Context, kind string) {
	if m == nil {
		return
	}
	m.claimsRejected.Add(ctx, 1, otelmetric.WithAttributes(attribute.String("kind", kind)))
}

// PostCreated records a new donation post
func (m *Metrics) PostCreated(ctx context.Context, foodType string) {
	if m == nil {
		return
	}
	m.postsCreated.Add(ctx, 1, otelmetric.WithAttributes(attribute.String("food_type", foodType)))
}
