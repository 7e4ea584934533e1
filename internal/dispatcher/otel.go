package dispatcher

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

const instrumentationName = "github.com/OCAP2/osu-parsers/internal/dispatcher"

// provider overrides the global meter provider when set.
var provider metric.MeterProvider

func meter() metric.Meter {
	if provider != nil {
		return provider.Meter(instrumentationName)
	}
	return otel.Meter(instrumentationName)
}
