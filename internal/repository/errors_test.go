package repository

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsDuplicateEntry(t *testing.T) {
	dup := errors.New("Error 1062 (23000): Duplicate entry '7-2026-08-26' for key 'daily_checkins.uniq_user_date'")
	assert.True(t, isDuplicateEntry(dup))

	fk := errors.New("Error 1452 (23000): Cannot add or update a child row: a foreign key constraint fails")
	assert.False(t, isDuplicateEntry(fk))

	assert.False(t, isDuplicateEntry(nil))
}
