// Package app wires the presenter together: command line, configuration,
// logging, services and the terminal UI.
package app

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"deckview/internal/config"
)

type envKey struct{}

// LocalEnv keeps everything the program needs in a single place.
type LocalEnv struct {
	Cfg       *config.Config
	CfgPath   string // empty when running on defaults
	Log       *zap.Logger
	DeckRef   string
	SessionID string

	start         time.Time
	restoreStdLog func()
}

func newLocalEnv() *LocalEnv {
	return &LocalEnv{
		Log:       zap.NewNop(),
		SessionID: uuid.NewString(),
		start:     time.Now(),
	}
}

// EnvFromContext returns the environment stored by ContextWithEnv
func EnvFromContext(ctx context.Context) *LocalEnv {
	if env, ok := ctx.Value(envKey{}).(*LocalEnv); ok {
		return env
	}
	// this should never happen
	panic("localenv not found in context")
}

// ContextWithEnv attaches a fresh environment to ctx
func ContextWithEnv(ctx context.Context) context.Context {
	return context.WithValue(ctx, envKey{}, newLocalEnv())
}

func (e *LocalEnv) Uptime() time.Duration {
	return time.Since(e.start)
}

// RedirectStdLog sends stray standard library log output to the file logger
func (e *LocalEnv) RedirectStdLog() {
	if e.Log == nil {
		return
	}
	e.restoreStdLog = zap.RedirectStdLog(e.Log)
}

func (e *LocalEnv) RestoreStdLog() {
	if e.Log != nil {
		_ = e.Log.Sync()
	}
	if e.restoreStdLog != nil {
		e.restoreStdLog()
		e.restoreStdLog = nil
	}
}
