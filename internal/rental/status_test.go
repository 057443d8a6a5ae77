package rental

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanTransition(t *testing.T) {
	assert.True(t, CanTransition(StatusPending, StatusConfirmed))
	assert.True(t, CanTransition(StatusPending, StatusCancelled))
	assert.True(t, CanTransition(StatusConfirmed, StatusInProgress))
	assert.True(t, CanTransition(StatusConfirmed, StatusCompleted))
	assert.True(t, CanTransition(StatusConfirmed, StatusCancelled))
	assert.True(t, CanTransition(StatusInProgress, StatusCompleted))

	// no forward skips
	assert.False(t, CanTransition(StatusPending, StatusCompleted))
	assert.False(t, CanTransition(StatusPending, StatusInProgress))

	// terminal states stay terminal
	assert.False(t, CanTransition(StatusCompleted, StatusPending))
	assert.False(t, CanTransition(StatusCompleted, StatusCancelled))
	assert.False(t, CanTransition(StatusCancelled, StatusConfirmed))
	assert.False(t, CanTransition(StatusCancelled, StatusCancelled))
}

func TestTransition(t *testing.T) {
	got, err := Transition(StatusPending, StatusConfirmed)
	assert.NoError(t, err)
	assert.Equal(t, StatusConfirmed, got)

	_, err = Transition(StatusPending, StatusCompleted)
	assert.Error(t, err)
	var terr *TransitionError
	assert.ErrorAs(t, err, &terr)
	assert.Equal(t, StatusPending, terr.From)
	assert.Equal(t, StatusCompleted, terr.To)
}

func TestIsTerminal(t *testing.T) {
	assert.True(t, IsTerminal(StatusCompleted))
	assert.True(t, IsTerminal(StatusCancelled))
	assert.False(t, IsTerminal(StatusPending))
	assert.False(t, IsTerminal(StatusConfirmed))
	assert.False(t, IsTerminal(StatusInProgress))
}

func TestStatusValid(t *testing.T) {
	assert.True(t, StatusInProgress.Valid())
	assert.False(t, Status("archived").Valid())
}
