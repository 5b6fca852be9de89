// Package repository defines error types that are reused across
// multiple repositories.  These sentinel values allow higher layers
// such as services and handlers to distinguish between failure
// scenarios without inspecting SQL errors: ErrNotFound maps to 404
// and ErrCheckinExists to 409.
package repository

import (
	"errors"
	"strings"
)

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = errors.New("not found")

// ErrCheckinExists is returned when a second check-in is created for
// the same user and calendar date.  Handlers translate this into 409.
var ErrCheckinExists = errors.New("daily check-in already exists")

// isDuplicateEntry reports whether err is a MySQL duplicate-key error
// (code 1062), raised by the unique keys on users.email and
// (user_id, checkin_date).
func isDuplicateEntry(err error) bool {
	return err != nil && strings.Contains(strings.ToLower(err.Error()), "1062")
}
