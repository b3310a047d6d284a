package httpmiddleware

import (
	"net/http"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// Instrument returns a middleware that traces and measures every request
// with otelhttp using the given providers. On top of the standard otelhttp
// metrics it keeps an in-flight request counter on the service meter.
//
// Route-aware span names are the router's concern: handlers that know the
// matched pattern should rename the span and add it to the otelhttp labeler.
func Instrument(serviceName string, tp trace.TracerProvider, mp metric.MeterProvider) Middleware {
	inflight, err := mp.Meter(serviceName).Int64UpDownCounter(
		"http.server.active_requests",
		metric.WithDescription("Number of requests currently being served."),
	)
	if err != nil {
		inflight = nil
	}

	return func(next http.Handler) http.Handler {
		traced := otelhttp.NewHandler(next, serviceName,
			otelhttp.WithTracerProvider(tp),
			otelhttp.WithMeterProvider(mp),
		)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if inflight != nil {
				inflight.Add(r.Context(), 1)
				defer inflight.Add(r.Context(), -1)
			}
			traced.ServeHTTP(w, r)
		})
	}
}
