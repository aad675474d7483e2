// Package echoapi exposes the REST API over HTTP with echo.
package echoapi

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/labstack/echo/otelecho"
	"go.uber.org/dig"

	"github.com/trezcool/studman/core"
	"github.com/trezcool/studman/core/assignment"
	"github.com/trezcool/studman/core/attendance"
	"github.com/trezcool/studman/core/classroom"
	"github.com/trezcool/studman/core/fee"
	"github.com/trezcool/studman/core/feestructure"
	"github.com/trezcool/studman/core/institute"
	"github.com/trezcool/studman/core/result"
	"github.com/trezcool/studman/core/stats"
	"github.com/trezcool/studman/core/subject"
	"github.com/trezcool/studman/core/theme"
	"github.com/trezcool/studman/core/user"
)

type (
	// ServerDeps are the dependencies of the API server.
	ServerDeps struct {
		dig.In

		Conf       *core.Config
		Logger     core.Logger
		Validate   *validator.Validate
		Translator ut.Translator

		UserSvc         *user.Service
		InstituteSvc    *institute.Service
		ClassSvc        *classroom.Service
		SubjectSvc      *subject.Service
		AssignmentSvc   *assignment.Service
		AttendanceSvc   *attendance.Service
		ResultSvc       *result.Service
		FeeSvc          *fee.Service
		FeeStructureSvc *feestructure.Service
		ThemeSvc        *theme.Service
		StatsSvc        *stats.Service
	}

	Server struct {
		deps     ServerDeps
		app      *echo.Echo
		auth     *tokenAuth
		metrics  *metrics
		errors   chan error
		shutdown chan os.Signal
	}
)

func NewServer(deps ServerDeps) *Server {
	s := &Server{
		deps:     deps,
		app:      echo.New(),
		auth:     newTokenAuth(deps.Conf, deps.UserSvc),
		metrics:  newMetrics(deps.Conf.AppName),
		errors:   make(chan error, 1),
		shutdown: make(chan os.Signal, 1),
	}
	s.setup()
	return s
}

func (s *Server) setup() {
	conf := s.deps.Conf

	s.app.HideBanner = true
	s.app.HidePort = true
	s.app.Debug = conf.Debug
	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(s.deps.Logger, s.deps.Translator, s.SignalShutdown)
	s.app.Server.ReadTimeout = conf.Server.ReadTimeout
	s.app.Server.WriteTimeout = conf.Server.WriteTimeout

	s.app.Pre(middleware.RemoveTrailingSlash())
	s.app.Use(middleware.RequestID())
	if !conf.TestMode {
		s.app.Use(requestLogger(s.deps.Logger))
	}
	// do not recover in DEV|TEST mode
	if !(conf.Debug || conf.TestMode) {
		s.app.Use(middleware.Recover())
	}
	if conf.Tracing {
		s.app.Use(otelecho.Middleware(conf.AppName))
	}
	s.app.Use(s.metrics.middleware())
	s.app.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     conf.Server.CORSAllowOrigins,
		AllowCredentials: !(len(conf.Server.CORSAllowOrigins) == 1 && conf.Server.CORSAllowOrigins[0] == "*"),
	}))
	s.app.Use(middleware.Secure())
	s.app.Use(middleware.Gzip())
	if conf.Server.BodyLimit != "" {
		s.app.Use(middleware.BodyLimit(conf.Server.BodyLimit))
	}

	s.app.GET("/", home)
	s.app.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(s.metrics.registry, promhttp.HandlerOpts{})))
	if backend := conf.Storage.Backend; (backend == "" || backend == "local") && strings.HasPrefix(conf.Storage.PublicURL, "/") {
		s.app.Static(conf.Storage.PublicURL, conf.Storage.LocalDir)
	}

	v1 := s.app.Group("/api/v1", rateLimiter(conf.Server))
	authed := s.auth.Required()

	registerSessionAPI(v1, s.auth, s.deps.UserSvc, s.deps.Validate)
	registerSuperAdminAPI(v1, s.auth, s.deps)
	registerAdminAPI(v1, authed, s.deps)
	registerClassAPI(v1, authed, s.deps)
	registerSubjectAPI(v1, authed, s.deps)
	registerAssignmentAPI(v1, authed, s.deps)
	registerAttendanceAPI(v1, authed, s.deps)
	registerResultAPI(v1, authed, s.deps)
	registerFeeAPI(v1, authed, s.deps)
	registerFeeStructureAPI(v1, authed, s.deps)
	registerThemeAPI(v1, s.auth, s.deps)
	registerUploadAPI(v1, authed, s.deps)
}

// Start listens on the configured address. Listener failures are sent to Errors.
func (s *Server) Start() {
	signal.Notify(s.shutdown, os.Interrupt, syscall.SIGTERM)
	s.deps.Logger.Info("API listening on " + s.deps.Conf.Server.Addr())
	if err := s.app.Start(s.deps.Conf.Server.Addr()); err != nil && err != http.ErrServerClosed {
		s.errors <- err
	}
}

func (s *Server) Errors() <-chan error {
	return s.errors
}

func (s *Server) ShutdownSignal() <-chan os.Signal {
	return s.shutdown
}

// SignalShutdown asks the process to stop gracefully.
func (s *Server) SignalShutdown() {
	select {
	case s.shutdown <- syscall.SIGTERM:
	default: // already signaled
	}
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.Shutdown(ctx)
}

func (s *Server) Close() error {
	return s.app.Close()
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}

func home(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, echo.Map{"message": "API is running"})
}
