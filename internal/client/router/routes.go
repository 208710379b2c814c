// Package router maps client paths to views and decides, through Guard,
// whether a navigation may proceed.
package router

import (
	"strings"
)

// View identifies what the client renders for a route.
type View string

const (
	ViewGenres    View = "genres"
	ViewLibraries View = "libraries"
	ViewBooks     View = "books"
	ViewMembers   View = "members"
	ViewLoans     View = "loans"
	ViewProfile   View = "profile"
	ViewLogin     View = "login"
	ViewNoAccess  View = "no-access"
	ViewNotFound  View = "not-found"
)

const (
	LoginPath    = "/login"
	LandingPath  = "/books"
	NoAccessPath = "/no-access"
)

// Route is one entry of the route table. A Route with Redirect set has no
// view of its own.
type Route struct {
	Path     string
	View     View
	Redirect string
}

// Routes is the static route table. The catch-all not-found route is not
// listed; Resolve falls back to it.
var Routes = []Route{
	{Path: "/", Redirect: LandingPath},
	{Path: "/genres", View: ViewGenres},
	{Path: "/libraries", View: ViewLibraries},
	{Path: "/books", View: ViewBooks},
	{Path: "/members", View: ViewMembers},
	{Path: "/loans", View: ViewLoans},
	{Path: "/profile", View: ViewProfile},
	{Path: LoginPath, View: ViewLogin},
	{Path: NoAccessPath, View: ViewNoAccess},
}

var notFound = Route{Path: "*", View: ViewNotFound}

// Match is the outcome of resolving a path: the route that handles it and
// the normalized path that was asked for.
type Match struct {
	Route Route
	Path  string
}

// Normalize trims whitespace, drops any query or fragment, ensures a leading
// slash and removes trailing slashes ("/books/" -> "/books").
func Normalize(path string) string {
	path = strings.TrimSpace(path)
	if i := strings.IndexAny(path, "?#"); i >= 0 {
		path = path[:i]
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	for len(path) > 1 && strings.HasSuffix(path, "/") {
		path = strings.TrimSuffix(path, "/")
	}
	return path
}

// Resolve finds the route for path; unknown paths resolve to the not-found
// route.
func Resolve(path string) Match {
	p := Normalize(path)
	for _, r := range Routes {
		if r.Path == p {
			return Match{Route: r, Path: p}
		}
	}
	return Match{Route: notFound, Path: p}
}
