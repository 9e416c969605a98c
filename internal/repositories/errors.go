package repositories

import "errors"

// ErrNotFound is returned by lookups when no matching row exists. Callers
// use errors.Is to tell a missing record apart from a datastore failure.
var ErrNotFound = errors.New("record not found")
