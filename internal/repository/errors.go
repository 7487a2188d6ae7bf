// Package repository is the console's remote data client: each repo wraps
// one table of the MySQL database and exposes the reads and inserts the
// views need (full-row lists ordered by creation time, count-only reads,
// column-limited scans, relational reads joined over foreign keys).
//
// The sentinel errors below let higher layers distinguish failure
// scenarios without inspecting driver errors.
package repository

import "errors"

// ErrNotFound is returned when a lookup by key matches no row.
var ErrNotFound = errors.New("not found")

// ErrEmailExists is returned by UserRepo.Create for a duplicate email.
var ErrEmailExists = errors.New("email already exists")

// ErrInvalidReference is returned when an insert or update points at a
// parent row that does not exist (for example a lease whose property was
// never created).  Handlers should translate this into a 422 response.
var ErrInvalidReference = errors.New("referenced record does not exist")

// orderNewestFirst is the ordering applied to every full list read.  The
// id tiebreak keeps rows with equal timestamps in a stable order.
const orderNewestFirst = "ORDER BY created_at DESC, id DESC"
