// Package telemetry wires metrics to an OTLP collector and exposes the
// narrow recorder the monitor consumes.
package telemetry

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	otelmetric "go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

const scope = "slotsnipe"

// Setup configures a periodic OTLP/HTTP metrics pipeline and installs it as
// the global meter provider. Callers own the returned provider's shutdown.
func Setup(ctx context.Context, endpoint string) (*metric.MeterProvider, error) {
	exporter, err := otlpmetrichttp.New(ctx,
		otlpmetrichttp.WithEndpoint(endpoint),
		otlpmetrichttp.WithInsecure(),
	)
	if err != nil {
		return nil, fmt.Errorf("otlp metric exporter: %w", err)
	}

	provider := metric.NewMeterProvider(
		metric.WithReader(metric.NewPeriodicReader(exporter, metric.WithInterval(time.Minute))),
		metric.WithResource(resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(scope),
		)),
	)
	otel.SetMeterProvider(provider)
	return provider, nil
}

// Recorder adapts an OTel meter to the monitor's Metrics interface, creating
// one gauge per metric name on first use.
type Recorder struct {
	meter otelmetric.Meter
	attrs []attribute.KeyValue

	mu     sync.Mutex
	gauges map[string]otelmetric.Float64Gauge
}

func NewRecorder(attrs ...attribute.KeyValue) *Recorder {
	return &Recorder{
		meter:  otel.Meter(scope),
		attrs:  attrs,
		gauges: map[string]otelmetric.Float64Gauge{},
	}
}

// Record is fire-and-forget: gauge creation errors drop the point rather
// than disturb the caller. The at parameter exists for interface fidelity;
// the SDK timestamps measurements itself.
func (r *Recorder) Record(ctx context.Context, name string, value float64, at time.Time) {
	r.mu.Lock()
	g, ok := r.gauges[name]
	if !ok {
		var err error
		g, err = r.meter.Float64Gauge(name)
		if err != nil {
			r.mu.Unlock()
			return
		}
		r.gauges[name] = g
	}
	r.mu.Unlock()

	g.Record(ctx, value, otelmetric.WithAttributes(r.attrs...))
}
