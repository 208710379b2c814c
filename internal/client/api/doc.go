// Package api is the HTTP client for the library backend.
//
// # Overview
//
// Client speaks JSON over HTTP to the backend's identity endpoints
// (/userprofile/...) and to the catalog collections (/genres/, /books/, ...).
// Authentication is cookie based: a cookiejar carries the backend session,
// and unsafe requests carry the CSRF token taken from the csrftoken cookie.
// An optional CookieStore persists the jar so a restarted client keeps its
// session.
//
// # Error Handling
//
// Transport failures are reported as ErrUnavailable (wrapping the cause);
// non-2xx responses as *StatusError, which matches ErrBadRequest,
// ErrUnauthorized, ErrForbidden or ErrNotFound through errors.Is. Context
// cancellation is returned as the context's error.
package api
