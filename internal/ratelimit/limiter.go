// Package ratelimit guards the chat endpoint with a per-session and a
// global fixed window. A request consumes from both or from neither.
package ratelimit

import (
	"context"
	"time"
)

const (
	ScopeGlobal  = "global"
	ScopeSession = "session"

	DefaultSessionRequests = 10
	DefaultGlobalRequests  = 30
	DefaultWindow          = time.Minute
)

type Decision struct {
	Allowed    bool
	Scope      string
	RetryAfter time.Duration
}

type Limiter interface {
	Allow(ctx context.Context, sessionID string) (Decision, error)
}

type Limits struct {
	SessionRequests int
	GlobalRequests  int
	Window          time.Duration
}

func (l Limits) withDefaults() Limits {
	if l.SessionRequests <= 0 {
		l.SessionRequests = DefaultSessionRequests
	}
	if l.GlobalRequests <= 0 {
		l.GlobalRequests = DefaultGlobalRequests
	}
	if l.Window <= 0 {
		l.Window = DefaultWindow
	}
	return l
}

// Unlimited allows everything; used when rate limiting is disabled.
type Unlimited struct{}

func (Unlimited) Allow(context.Context, string) (Decision, error) {
	return Decision{Allowed: true}, nil
}
