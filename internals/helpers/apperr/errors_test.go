package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	assert.Equal(t, KindConflict, KindOf(Conflict("already checked in")))
	assert.Equal(t, KindNotFound, KindOf(fmt.Errorf("wrapped: %w", NotFound("no session"))))
	assert.Equal(t, KindInternal, KindOf(errors.New("boom")))
}

func TestIsMatchesKind(t *testing.T) {
	err := fmt.Errorf("outer: %w", Authorization("nope"))
	assert.True(t, errors.Is(err, ErrAuthorization))
	assert.False(t, errors.Is(err, ErrConflict))
}

func TestInternalHidesCause(t *testing.T) {
	cause := errors.New("pq: relation attendance_sessions does not exist")
	err := Internal("load session", cause)

	assert.Equal(t, KindInternal, KindOf(err))
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "internal server error", PublicMessage(err))
	assert.Equal(t, "already checked out", PublicMessage(Conflict("already checked out")))
}

func TestInternalKeepsTypedErrors(t *testing.T) {
	typed := Conflict("lost race")
	assert.Same(t, typed, Internal("save", typed))
}
