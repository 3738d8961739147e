// Package repository defines data access for the stall availability table.
// Sentinel errors let handlers map failure modes onto HTTP statuses without
// inspecting driver errors: ErrStallNotFound becomes 404 and
// ErrStallConflict becomes 409.
package repository

import "errors"

// ErrStallNotFound is returned when a status update targets an id that has
// no row.  Absent rows are "available by convention" on the read path, but
// the partial-update path refuses to invent them.
var ErrStallNotFound = errors.New("stall not found")

// ErrStallConflict is returned when a conditional booking write finds the
// stall already booked.  Someone else won the race; the caller should
// surface a conflict rather than overwrite.
var ErrStallConflict = errors.New("stall already booked")
