package router

import (
	"context"

	"github.com/dmitrijs2005/libraryclient/internal/logging"
)

// Session is what the guard needs from the session store.
type Session interface {
	IsAuthenticated() bool
	Resync(ctx context.Context) error
}

// Decision is the guard's verdict on a navigation. An empty Redirect means
// the navigation is allowed.
type Decision struct {
	Redirect string
}

func (d Decision) Allowed() bool { return d.Redirect == "" }

// Guard keeps unauthenticated users on the login view and authenticated
// users off it. It does not look at the second factor or superuser flags;
// views gate on those.
type Guard struct {
	session Session
	log     logging.Logger
}

func NewGuard(s Session, log logging.Logger) *Guard {
	if log == nil {
		log = logging.Nop()
	}
	return &Guard{session: s, log: log}
}

// Check decides whether navigating to the route at path may proceed. When
// the session is not authenticated it first resyncs with the backend; a
// failed resync counts as unauthenticated.
func (g *Guard) Check(ctx context.Context, path string) Decision {
	if !g.session.IsAuthenticated() {
		if err := g.session.Resync(ctx); err != nil {
			g.log.Warn(ctx, "session resync failed", "path", path, "error", err)
		}
	}

	authenticated := g.session.IsAuthenticated()
	switch {
	case path != LoginPath && !authenticated:
		return Decision{Redirect: LoginPath}
	case path == LoginPath && authenticated:
		return Decision{Redirect: LandingPath}
	default:
		return Decision{}
	}
}
