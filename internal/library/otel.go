package library

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const instrumentationName = "github.com/OCAP2/osu-parsers/internal/library"

// provider overrides the global meter provider when set.
var provider metric.MeterProvider

func meter() metric.Meter {
	if provider != nil {
		return provider.Meter(instrumentationName)
	}
	return otel.Meter(instrumentationName)
}

type metrics struct {
	decodedFiles metric.Int64Counter
	encodedFiles metric.Int64Counter
	duration     metric.Float64Histogram
}

func newMetrics() (*metrics, error) {
	m := meter()
	var (
		out metrics
		err error
	)

	out.decodedFiles, err = m.Int64Counter(
		"library.files.decoded",
		metric.WithDescription("Files decoded, by kind and status"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating decoded counter: %w", err)
	}

	out.encodedFiles, err = m.Int64Counter(
		"library.files.encoded",
		metric.WithDescription("Files encoded, by kind and status"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating encoded counter: %w", err)
	}

	out.duration, err = m.Float64Histogram(
		"library.decode.duration",
		metric.WithDescription("Time spent decoding one file"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating duration histogram: %w", err)
	}

	return &out, nil
}

func attrs(kind string, err error) metric.MeasurementOption {
	status := "ok"
	if err != nil {
		status = "error"
	}
	return metric.WithAttributes(attribute.String("kind", kind), attribute.String("status", status))
}

func (m *metrics) decoded(ctx context.Context, kind string, d time.Duration, err error) {
	opt := attrs(kind, err)
	m.decodedFiles.Add(ctx, 1, opt)
	m.duration.Record(ctx, float64(d.Microseconds())/1000, opt)
}

func (m *metrics) encoded(ctx context.Context, kind string, err error) {
	m.encodedFiles.Add(ctx, 1, attrs(kind, err))
}
