package dao

import "errors"

// ErrNotFound covers both a missing row and a row owned by another
// user. Ownership is enforced in the WHERE clause of every query, so
// the two cases are indistinguishable on purpose.
var ErrNotFound = errors.New("not found")
