// Package otel owns the metrics pipeline. When enabled, instruments created
// through the global meter are aggregated in memory and read back on demand
// for the end-of-run summary.
package otel

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

// Config holds OTel configuration
type Config struct {
	Enabled     bool
	ServiceName string
}

// Provider manages the OpenTelemetry meter provider
type Provider struct {
	meterProvider *sdkmetric.MeterProvider
	reader        *sdkmetric.ManualReader
	config        Config
}

// New creates a new OTel provider with the given configuration and installs
// it as the global meter provider.
// If OTel is disabled, returns a no-op provider.
func New(cfg Config) (*Provider, error) {
	p := &Provider{
		config: cfg,
	}

	if !cfg.Enabled {
		return p, nil
	}

	res, err := resource.New(context.Background(),
		resource.WithAttributes(
			semconv.ServiceName(cfg.ServiceName),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	p.reader = sdkmetric.NewManualReader()
	p.meterProvider = sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(p.reader),
	)
	otel.SetMeterProvider(p.meterProvider)

	return p, nil
}

// Meter returns a meter with the given name for creating metrics.
func (p *Provider) Meter(name string) metric.Meter {
	if p.meterProvider == nil {
		return noop.Meter{}
	}
	return p.meterProvider.Meter(name)
}

// Collect reads the current value of every instrument.
func (p *Provider) Collect(ctx context.Context) (metricdata.ResourceMetrics, error) {
	var rm metricdata.ResourceMetrics
	if p.reader == nil {
		return rm, nil
	}
	if err := p.reader.Collect(ctx, &rm); err != nil {
		return rm, fmt.Errorf("metric collection failed: %w", err)
	}
	return rm, nil
}

// Totals sums every counter across its attribute sets, keyed by metric name.
// Histograms contribute their observation count.
func (p *Provider) Totals(ctx context.Context) (map[string]float64, error) {
	rm, err := p.Collect(ctx)
	if err != nil {
		return nil, err
	}

	totals := make(map[string]float64)
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			switch data := m.Data.(type) {
			case metricdata.Sum[int64]:
				for _, dp := range data.DataPoints {
					totals[m.Name] += float64(dp.Value)
				}
			case metricdata.Sum[float64]:
				for _, dp := range data.DataPoints {
					totals[m.Name] += dp.Value
				}
			case metricdata.Histogram[float64]:
				for _, dp := range data.DataPoints {
					totals[m.Name] += float64(dp.Count)
				}
			}
		}
	}
	return totals, nil
}

// Shutdown gracefully shuts down the meter provider.
// Should be called when the application exits.
func (p *Provider) Shutdown(ctx context.Context) error {
	if p.meterProvider == nil {
		return nil
	}
	if err := p.meterProvider.Shutdown(ctx); err != nil {
		return fmt.Errorf("meter shutdown failed: %w", err)
	}
	return nil
}

// Enabled returns whether OTel is enabled
func (p *Provider) Enabled() bool {
	return p.config.Enabled
}
