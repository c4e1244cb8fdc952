// Package catalog resolves movie metadata from two upstream
// providers: Watchmode for canonical identity and title, OMDb for
// descriptive fields (plot, poster, cast, rating, runtime). Records
// are merged by exact title match and persisted on first resolution.
package catalog

import "errors"

// ErrMovieNotFound is returned when either provider reports no match
// for the requested title, or when the providers disagree on the
// title (the merge requires an exact match, no best-effort guessing).
var ErrMovieNotFound = errors.New("movie not found")

// ErrUpstreamUnavailable is returned on network, timeout or
// server-side failures from either provider. Callers must not assume
// any retry happened.
var ErrUpstreamUnavailable = errors.New("catalog provider unavailable")
