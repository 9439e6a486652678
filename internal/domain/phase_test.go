package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPhase_CanTransitionTo(t *testing.T) {
	tests := []struct {
		from, to Phase
		want     bool
	}{
		{PhaseLobby, PhaseReveal, true},
		{PhaseLobby, PhaseWords, false},
		{PhaseReveal, PhaseWords, true},
		{PhaseWords, PhaseVoting, true},
		{PhaseWords, PhaseRevealRound, false},
		{PhaseVoting, PhaseRevealRound, true},
		{PhaseVoting, PhaseFinished, true},
		{PhaseRevealRound, PhaseWords, true},
		{PhaseFinished, PhaseReveal, true},
		{PhaseFinished, PhaseLobby, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.from.CanTransitionTo(tt.to))
		})
	}
}

func TestRoom_TransitionTo(t *testing.T) {
	room := newTestRoom(3)

	assert.ErrorIs(t, room.TransitionTo(PhaseVoting), ErrInvalidTransition)
	assert.Equal(t, PhaseLobby, room.Phase)

	assert.NoError(t, room.TransitionTo(PhaseReveal))
	assert.Equal(t, PhaseReveal, room.Phase)
}

func TestMode_Valid(t *testing.T) {
	assert.True(t, ModeClassic.Valid())
	assert.True(t, ModeManual.Valid())
	assert.False(t, Mode("speedrun").Valid())
}
