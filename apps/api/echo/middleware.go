package echoapi

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/time/rate"

	"github.com/trezcool/studman/core"
	"github.com/trezcool/studman/core/user"
)

var (
	superAdminOnly      = rolesMiddleware(errSuperAdminOnly, user.RoleSuperAdmin)
	adminOnly           = rolesMiddleware(errAccessDenied, user.RoleAdmin)
	lecturerOnly        = rolesMiddleware(errAccessDenied, user.RoleLecturer)
	studentOnly         = rolesMiddleware(errAccessDenied, user.RoleStudent)
	adminOrLecturerOnly = rolesMiddleware(errAccessDenied, user.RoleAdmin, user.RoleLecturer)
)

// rolesMiddleware lets through users having one of roles, and fails with denied otherwise.
// Must run after tokenAuth.Required.
func rolesMiddleware(denied error, roles ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			usr, err := getContextUser(ctx)
			if err != nil {
				return err
			}
			if usr.HasAnyRole(roles...) {
				return next(ctx)
			}
			return denied
		}
	}
}

// requestLogger logs one line per request through the application logger.
func requestLogger(logger core.Logger) echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true, // forwards error to the global error handler, so it can decide appropriate status code
		LogValuesFunc: func(ctx echo.Context, v middleware.RequestLoggerValues) error {
			fields := map[string]interface{}{
				"method":     v.Method,
				"uri":        v.URI,
				"status":     v.Status,
				"latency_ms": v.Latency.Milliseconds(),
				"request_id": v.RequestID,
			}
			if v.Error != nil {
				fields["error"] = v.Error.Error()
			}
			if v.Status >= http.StatusInternalServerError {
				logger.Warn("request failed", fields)
			} else {
				logger.Info("request", fields)
			}
			return nil
		},
	})
}

// metrics holds the HTTP collectors of one server.
type metrics struct {
	registry *prometheus.Registry
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

func newMetrics(namespace string) *metrics {
	m := &metrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Number of HTTP requests processed, by route, method and status.",
		}, []string{"path", "method", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latencies.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"path", "method"}),
	}
	m.registry.MustRegister(
		m.requests,
		m.duration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

func (m *metrics) middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			start := time.Now()
			err := next(ctx)

			status := ctx.Response().Status
			if err != nil {
				if herr, ok := err.(*echo.HTTPError); ok {
					status = herr.Code
				} else if !ctx.Response().Committed {
					status = errorStatus(err)
				}
			}
			path := ctx.Path() // route template, keeps cardinality low
			if path == "" {
				path = "unmatched"
			}
			m.requests.WithLabelValues(path, ctx.Request().Method, strconv.Itoa(status)).Inc()
			m.duration.WithLabelValues(path, ctx.Request().Method).Observe(time.Since(start).Seconds())
			return err
		}
	}
}

// rateLimiter limits every client IP to conf requests per window. Zero requests disables it.
func rateLimiter(conf core.ServerConfig) echo.MiddlewareFunc {
	if conf.RateLimitRequests <= 0 || conf.RateLimitWindow <= 0 {
		return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
	}
	store := middleware.NewRateLimiterMemoryStoreWithConfig(middleware.RateLimiterMemoryStoreConfig{
		Rate:      rate.Limit(float64(conf.RateLimitRequests) / conf.RateLimitWindow.Seconds()),
		Burst:     conf.RateLimitRequests,
		ExpiresIn: conf.RateLimitWindow,
	})
	return middleware.RateLimiterWithConfig(middleware.RateLimiterConfig{
		Store: store,
		DenyHandler: func(ctx echo.Context, _ string, _ error) error {
			return echo.NewHTTPError(http.StatusTooManyRequests, "Too many requests, please try again later.")
		},
	})
}
