package router

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/libraryclient/internal/logging"
)

// maxHops bounds the redirects followed by one navigation.
const maxHops = 5

var ErrRedirectLoop = errors.New("too many redirects")

// Router resolves paths against the route table and runs the guard before
// every transition.
type Router struct {
	guard *Guard
	log   logging.Logger
}

func New(guard *Guard, log logging.Logger) *Router {
	if log == nil {
		log = logging.Nop()
	}
	return &Router{guard: guard, log: log}
}

// Navigate resolves path, follows static and guard redirects, and returns
// the route finally shown.
func (r *Router) Navigate(ctx context.Context, path string) (Match, error) {
	requested := Normalize(path)
	current := requested

	for hop := 0; hop <= maxHops; hop++ {
		m := Resolve(current)
		if m.Route.Redirect != "" {
			current = m.Route.Redirect
			continue
		}

		d := r.guard.Check(ctx, m.Path)
		if d.Allowed() {
			if m.Path != requested {
				r.log.Debug(ctx, "navigation redirected", "from", requested, "to", m.Path)
			}
			return m, nil
		}
		current = d.Redirect
	}

	return Match{}, fmt.Errorf("navigate %s: %w", requested, ErrRedirectLoop)
}
