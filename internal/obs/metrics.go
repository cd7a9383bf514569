package obs

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"google.golang.org/grpc"
	"google.golang.org/grpc/status"
)

var (
	rpcInFlight = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "rpc_in_flight_requests",
		Help: "In-flight RPC requests.",
	})

	rpcRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rpc_requests_total",
			Help: "Total number of RPC requests.",
		},
		[]string{"method", "code"},
	)

	rpcRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "rpc_request_duration_seconds",
			Help:    "RPC request latencies in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "code"},
	)
)

// Init registers the RPC metrics with the default registry.
func Init() {
	prometheus.MustRegister(rpcInFlight, rpcRequestsTotal, rpcRequestDuration)
}

// Handler exposes the Prometheus scrape endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Instrument measures request rate, latency and in-flight count per method.
func Instrument() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		rpcInFlight.Inc()
		start := time.Now()

		resp, err := handler(ctx, req)

		duration := time.Since(start).Seconds()
		code := status.Code(err).String()
		rpcRequestDuration.WithLabelValues(info.FullMethod, code).Observe(duration)
		rpcRequestsTotal.WithLabelValues(info.FullMethod, code).Inc()
		rpcInFlight.Dec()

		return resp, err
	}
}
