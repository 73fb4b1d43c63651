package tracing

import (
	"github.com/go-redis/redis/extra/redisotel/v8"
	"github.com/go-redis/redis/v8"
	"github.com/honeycombio/honeycomb-opentelemetry-go"
	"github.com/honeycombio/otel-config-go/otelconfig"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var GlobalTracer = otel.Tracer("rufit-backend")

// EndSpanWithErrCheck marks the span as failed when err is set, then ends it.
func EndSpanWithErrCheck(span trace.Span, err error) {
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		span.RecordError(err)
	}
	span.End()
}

// HoneycombSetup configures the OpenTelemetry SDK through the honeycomb distro.
// The returned shutdown func is always safe to call.
func HoneycombSetup(enabled bool, serviceName string, rdb *redis.Client) (func(), error) {
	if !enabled {
		log.Debugf("tracing disabled for [%s]", serviceName)
		return func() {}, nil
	}

	if rdb != nil {
		rdb.AddHook(redisotel.NewTracingHook())
	}

	bsp := honeycomb.NewBaggageSpanProcessor()
	otelShutdown, err := otelconfig.ConfigureOpenTelemetry(
		otelconfig.WithSpanProcessor(bsp),
		otelconfig.WithServiceName(serviceName),
	)
	if err != nil {
		return nil, err
	}

	log.Debugf("honeycomb tracing enabled for [%s]", serviceName)
	return otelShutdown, nil
}
