// Package navigation decides which view the client shows. A Location is
// resolved against the route table and the current session into exactly one
// Resolution; the Controller keeps that resolution current as the location
// and the session change.
package navigation

import (
	"net/url"
	"strings"
)

// Well-known paths.
const (
	LoginPath     = "/login"
	SignupPath    = "/signup"
	DashboardPath = "/"

	// SessionExpiredParam marks a login redirect caused by the backend
	// rejecting the session.
	SessionExpiredParam = "session_expired"
)

// Location is a path plus query, the client's equivalent of a URL.
type Location struct {
	Path  string
	Query url.Values
}

// ParseLocation splits raw into path and query. Malformed queries are
// dropped.
func ParseLocation(raw string) Location {
	path, rawQuery, _ := strings.Cut(raw, "?")
	loc := Location{Path: path}
	if rawQuery != "" {
		if q, err := url.ParseQuery(rawQuery); err == nil && len(q) > 0 {
			loc.Query = q
		}
	}
	return loc
}

// LoginLocation is where an unauthenticated user is sent.
func LoginLocation() Location {
	return Location{Path: LoginPath}
}

// ExpiredLoginLocation is the login view with the session-expired notice.
func ExpiredLoginLocation() Location {
	return Location{Path: LoginPath, Query: url.Values{SessionExpiredParam: {"true"}}}
}

// String renders the location as path?query.
func (l Location) String() string {
	if len(l.Query) == 0 {
		return l.Path
	}
	return l.Path + "?" + l.Query.Encode()
}

// SessionExpired reports whether the session-expired marker is set.
func (l Location) SessionExpired() bool {
	return l.Query.Get(SessionExpiredParam) == "true"
}

// IsAuthPage reports whether l is the login or signup view.
func (l Location) IsAuthPage() bool {
	return l.Path == LoginPath || l.Path == SignupPath
}

// Equal compares path and query.
func (l Location) Equal(other Location) bool {
	return l.String() == other.String()
}
