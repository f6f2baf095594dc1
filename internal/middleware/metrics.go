package middleware

import (
	"sync"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// RedisErrors counts failed Redis commands by command name.
var RedisErrors = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "interu_redis_errors_total",
	Help: "Total number of failed Redis commands",
}, []string{"command"})

// RateLimitRejections counts requests refused by the Redis-backed limiter.
var RateLimitRejections = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "interu_rate_limit_rejections_total",
	Help: "Requests rejected by the per-identity rate limiter",
}, []string{"resource"})

var (
	httpMetrics     *fiberprometheus.FiberPrometheus
	httpMetricsOnce sync.Once
)

// InitMetrics builds the HTTP metrics collector for the named service. The
// collectors live in the default registry, so every call after the first
// returns the same instance.
func InitMetrics(serviceName string) *fiberprometheus.FiberPrometheus {
	httpMetricsOnce.Do(func() {
		httpMetrics = fiberprometheus.New(serviceName)
	})
	return httpMetrics
}

// MetricsMiddleware records request count, latency and in-flight gauges.
func MetricsMiddleware(prom *fiberprometheus.FiberPrometheus) fiber.Handler {
	return prom.Middleware
}
