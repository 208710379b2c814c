package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/libraryclient/internal/client/api"
	"github.com/dmitrijs2005/libraryclient/internal/client/models"
	"github.com/dmitrijs2005/libraryclient/internal/client/notify"
	"github.com/dmitrijs2005/libraryclient/internal/client/router"
)

var errNoCollection = errors.New("open a collection first, e.g. 'go /books'")

// viewResources maps collection views to their backend resource.
var viewResources = map[router.View]models.Resource{
	router.ViewGenres:    models.Genres,
	router.ViewLibraries: models.Libraries,
	router.ViewBooks:     models.Books,
	router.ViewMembers:   models.Members,
	router.ViewLoans:     models.Loans,
}

// notify shows a message for the configured time and prints it.
func (a *App) notify(text string, kind notify.Kind) {
	notify.Show(a.note, text, kind, a.config.NotificationDuration)
	if banner := renderNotification(a.note.Current()); banner != "" {
		fmt.Fprintln(a.out, banner)
	}
}

// fail reports err to the user. An expired backend session drops the local
// one and sends the user to the login view.
func (a *App) fail(ctx context.Context, what string, err error) error {
	switch {
	case a.sessionExpired(ctx, err):
		a.dropSession(ctx)
		a.notify("Session expired, please log in again", notify.KindWarning)
		_ = a.navigate(ctx, router.LoginPath)
	case errors.Is(err, api.ErrUnavailable):
		a.notify("Server unavailable", notify.KindError)
	default:
		a.notify(fmt.Sprintf("%s: %s", what, describe(err)), notify.KindError)
	}
	return err
}

// sessionExpired reports whether err means the backend no longer knows the
// logged in user. An anonymous request is refused with 403 as often as with
// 401, so a 403 is checked against the backend's view of the session.
func (a *App) sessionExpired(ctx context.Context, err error) bool {
	if !a.session.IsAuthenticated() {
		return false
	}
	if errors.Is(err, api.ErrUnauthorized) {
		return true
	}
	if !errors.Is(err, api.ErrForbidden) {
		return false
	}
	if rerr := a.session.Resync(ctx); rerr != nil {
		a.log.Warn(ctx, "could not recheck session", "error", rerr)
		return false
	}
	return !a.session.IsAuthenticated()
}

// dropSession forgets the local session: identity flags, pending login and
// saved cookies.
func (a *App) dropSession(ctx context.Context) {
	a.session.ResetAuthState()
	if err := a.session.ClearPending(ctx); err != nil {
		a.log.Warn(ctx, "could not clear pending login", "error", err)
	}
	a.forgetCookies(ctx)
}

func (a *App) forgetCookies(ctx context.Context) {
	if a.cookies == nil {
		return
	}
	if err := a.cookies.Clear(ctx); err != nil {
		a.log.Warn(ctx, "could not clear saved cookies", "error", err)
	}
}

// describe prefers the backend's own message over the wrapped chain.
func describe(err error) string {
	var se *api.StatusError
	if errors.As(err, &se) && se.Message != "" {
		return se.Message
	}
	return err.Error()
}

// Go navigates to the path in args[0] and renders the resulting view.
func (a *App) Go(ctx context.Context, args []string) error {
	if len(args) == 0 {
		printlnFn("Usage: go <path>   e.g. go /books")
		return nil
	}
	return a.navigate(ctx, args[0])
}

func (a *App) navigate(ctx context.Context, path string) error {
	m, err := a.router.Navigate(ctx, path)
	if err != nil {
		a.notify("Navigation failed: "+err.Error(), notify.KindError)
		return err
	}
	a.current = m
	return a.render(ctx)
}

// resource returns the collection of the current view.
func (a *App) resource() (models.Resource, error) {
	res, ok := viewResources[a.current.Route.View]
	if !ok {
		a.notify(errNoCollection.Error(), notify.KindWarning)
		return "", errNoCollection
	}
	return res, nil
}

func (a *App) render(ctx context.Context) error {
	switch v := a.current.Route.View; v {
	case router.ViewLogin:
		st := a.session.Snapshot()
		if st.PendingUsername != "" && !st.IsAuthenticated {
			fmt.Fprintf(a.out, "A login for %s is waiting for its one-time code. Type 'login' to start over or 'cancel'.\n", st.PendingUsername)
			return nil
		}
		fmt.Fprintln(a.out, "Please log in: type 'login'.")
		return nil

	case router.ViewProfile:
		return a.renderProfile(ctx)

	case router.ViewNoAccess:
		fmt.Fprintln(a.out, titleStyle.Render("No access"))
		fmt.Fprintln(a.out, "You do not have permission to perform this action.")
		return nil

	case router.ViewNotFound:
		fmt.Fprintf(a.out, "Page not found: %s\n", a.current.Path)
		return nil

	default:
		res, ok := viewResources[v]
		if !ok {
			return nil
		}
		rows, err := a.catalog.List(ctx, res)
		if err != nil {
			return a.fail(ctx, "Could not load "+string(res), err)
		}
		fmt.Fprintln(a.out, renderTable(title(res), rows))
		return nil
	}
}

func (a *App) renderProfile(ctx context.Context) error {
	st := a.session.Snapshot()
	if st.CurrentUser == nil {
		fmt.Fprintln(a.out, "Not logged in.")
		return nil
	}

	role := "Reader"
	if st.IsSuperuser {
		role = "Administrator"
	}
	otp := "not verified"
	if st.IsSecondFactorVerified {
		otp = "verified"
	}
	fmt.Fprintln(a.out, renderPairs("Profile", map[string]string{
		"Username":      st.CurrentUser.Username,
		"Email":         st.CurrentUser.Email,
		"Role":          role,
		"Second factor": otp,
	}))
	return nil
}

func title(res models.Resource) string {
	s := string(res)
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
