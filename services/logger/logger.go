// Package logsvc implements core.Logger with zerolog, reporting warnings and errors to Rollbar.
package logsvc

import (
	"io"
	"os"
	"time"

	"github.com/rollbar/rollbar-go"
	"github.com/rollbar/rollbar-go/errors"
	"github.com/rs/zerolog"

	"github.com/trezcool/studman/core"
	"github.com/trezcool/studman/core/user"
)

type Logger struct {
	zl      zerolog.Logger
	rollbar bool
	exit    func(code int) // mockable
}

var _ core.Logger = (*Logger)(nil)

// New builds the application logger. w receives JSON lines, or human-readable ones
// when conf.LogConsole is set.
func New(w io.Writer, conf *core.Config) *Logger {
	if w == nil {
		w = os.Stderr
	}
	if conf.LogConsole {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}

	level, err := zerolog.ParseLevel(conf.LogLevel)
	if err != nil || conf.LogLevel == "" {
		level = zerolog.InfoLevel
	}
	zl := zerolog.New(w).Level(level).With().
		Timestamp().
		Str("app", conf.AppName).
		Str("env", conf.Env).
		Logger()

	enabled := conf.RollbarToken != "" && !conf.Debug && !conf.TestMode
	if enabled {
		rollbar.SetToken(conf.RollbarToken)
		rollbar.SetEnvironment(conf.Env)
		rollbar.SetServerHost(conf.Server.Host)
		rollbar.SetCodeVersion(conf.Build)
		rollbar.SetStackTracer(errors.StackTracer)
	}
	rollbar.SetEnabled(enabled)

	return &Logger{zl: zl, rollbar: enabled, exit: os.Exit}
}

// Zerolog exposes the underlying logger, for the HTTP request logger.
func (l *Logger) Zerolog() *zerolog.Logger { return &l.zl }

// Named returns a copy of l tagging its lines with component.
func (l *Logger) Named(component string) *Logger {
	cp := *l
	cp.zl = l.zl.With().Str("component", component).Logger()
	return &cp
}

// expected args: error, map[string]interface{}, user.User
func (l *Logger) event(e *zerolog.Event, args []interface{}) *zerolog.Event {
	for _, arg := range args {
		switch a := arg.(type) {
		case error:
			e = e.Err(a)
		case user.User:
			e = e.Str("user_id", a.ID).Str("user_role", a.Role)
		case map[string]interface{}:
			e = e.Fields(a)
		default:
			e = e.Interface("extra", a)
		}
	}
	return e
}

// prepare sets the Rollbar person from the first user.User in args and returns the remaining args.
func (l *Logger) prepare(msg string, args []interface{}) []interface{} {
	var usrSet bool
	newArgs := make([]interface{}, 0, len(args)+1)
	newArgs = append(newArgs, msg)
	for _, arg := range args {
		if usr, ok := arg.(user.User); ok {
			if !usrSet {
				rollbar.SetPerson(usr.ID, usr.FullName, usr.Email)
				usrSet = true
			}
		} else {
			newArgs = append(newArgs, arg)
		}
	}
	if !usrSet {
		rollbar.ClearPerson()
	}
	return newArgs
}

func (l *Logger) Debug(msg string, args ...interface{}) {
	l.event(l.zl.Debug(), args).Msg(msg)
}

func (l *Logger) Info(msg string, args ...interface{}) {
	l.event(l.zl.Info(), args).Msg(msg)
}

func (l *Logger) Warn(msg string, args ...interface{}) {
	l.event(l.zl.Warn(), args).Msg(msg)
	if l.rollbar {
		rollbar.Warning(l.prepare(msg, args)...)
	}
}

func (l *Logger) Error(msg string, args ...interface{}) {
	l.event(l.zl.Error(), args).Msg(msg)
	if l.rollbar {
		rollbar.Error(l.prepare(msg, args)...)
	}
}

func (l *Logger) Fatal(msg string, args ...interface{}) {
	// WithLevel logs at fatal without zerolog's own os.Exit
	l.event(l.zl.WithLevel(zerolog.FatalLevel), args).Msg(msg)
	if l.rollbar {
		rollbar.Critical(l.prepare(msg, args)...)
		rollbar.Close()
	}
	l.exit(1)
}

// Close flushes pending Rollbar items.
func (l *Logger) Close() {
	if l.rollbar {
		rollbar.Close()
	}
}
