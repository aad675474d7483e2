package main

import (
	"context"
	"expvar"
	"fmt"
	"log"
	"net/http"
	_ "net/http/pprof" // registers /debug/pprof on the default mux

	"gorm.io/gorm"

	dig_container "github.com/trezcool/studman/apps/api/di/dig"
	echoapi "github.com/trezcool/studman/apps/api/echo"
	"github.com/trezcool/studman/core"
	"github.com/trezcool/studman/core/user"
	logsvc "github.com/trezcool/studman/services/logger"
	"github.com/trezcool/studman/services/telemetry"
)

func main() {
	c := dig_container.New()

	must(c.Invoke(func(
		conf *core.Config,
		baseLogger *logsvc.Logger,
		apiLogger core.Logger,
		dbLoggerParam dig_container.DBLoggerParam,
		db *gorm.DB,
		closeCache dig_container.CacheCloser,
		usrSvc *user.Service,
		server *echoapi.Server,
	) {
		// =========================================================================
		// Initialize App

		apiLogger.Info(fmt.Sprintf("Application initializing : version %q", conf.Build))
		defer baseLogger.Close()

		shutdownTracing, err := telemetry.Setup(conf, nil)
		if err != nil {
			apiLogger.Fatal(fmt.Sprintf("setting up tracing: %v", err), err)
		}
		defer func() {
			if err := shutdownTracing(context.Background()); err != nil {
				apiLogger.Error("flushing traces", err)
			}
		}()

		dbLogger := dbLoggerParam.Logger
		defer func() {
			sqlDB, err := db.DB()
			if err == nil {
				err = sqlDB.Close()
			}
			if err != nil {
				dbLogger.Fatal("Failed to close", err)
			}
		}()
		defer func() {
			if err := closeCache(); err != nil {
				apiLogger.Error("closing cache", err)
			}
		}()
		defer apiLogger.Info("Application stopped")

		// the super admin account is seeded from the configured credentials
		if conf.SuperAdminPassword != "" {
			usr, created, err := usrSvc.EnsureSuperAdmin(context.Background(), conf.SuperAdminEmail, conf.SuperAdminPassword)
			if err != nil {
				apiLogger.Fatal(fmt.Sprintf("seeding super admin: %v", err), err)
			}
			if created {
				apiLogger.Info("super admin created: " + usr.Email)
			}
		} else {
			apiLogger.Warn("super admin password not configured; super admin login is disabled")
		}

		// =========================================================================
		// Start Debug Service
		//
		// /debug/pprof - Added to the default mux by importing the net/http/pprof package.
		// /debug/vars - Added to the default mux by importing the expvar package.

		// Expose important info under /debug/vars.
		expvar.NewString("build").Set(conf.Build)
		expvar.NewString("env").Set(conf.Env)

		if conf.Server.DebugHost != "" {
			go func() {
				if err := http.ListenAndServe(conf.Server.DebugHost, http.DefaultServeMux); err != nil {
					apiLogger.Error(fmt.Sprintf("debug server closed: %v", err), err)
				}
			}()
		}

		// =========================================================================
		// Start API Service

		go func() {
			server.Start()
		}()

		// =========================================================================
		// Shutdown

		select {
		case err := <-server.Errors():
			apiLogger.Error(fmt.Sprintf("server error: %v", err), err)

		case sig := <-server.ShutdownSignal():
			apiLogger.Info(fmt.Sprintf("%v: Start shutdown...", sig))

			// give outstanding requests a deadline for completion
			ctx, cancel := context.WithTimeout(context.Background(), conf.Server.ShutdownTimeout)
			defer cancel()

			// asking listener to shut down and shed load
			if err := server.Shutdown(ctx); err != nil {
				apiLogger.Error(fmt.Sprintf("could not stop server gracefully: %v", err), err)

				if err = server.Close(); err != nil {
					apiLogger.Error(fmt.Sprintf("could not force stop server: %v", err), err)
				}
			}
		}
	}))
}

func must(err error) {
	if err != nil {
		log.Fatal(err)
	}
}
