package dispatch

import (
	"testing"

	"github.com/fyrsmithlabs/causewayd/internal/persona"
	"github.com/stretchr/testify/assert"
)

func TestRequestValidate(t *testing.T) {
	t.Run("empty history rejected", func(t *testing.T) {
		req := Request{Persona: persona.Detective}
		assert.ErrorIs(t, req.Validate(), ErrEmptyHistory)
	})

	t.Run("trailing assistant turn rejected", func(t *testing.T) {
		req := Request{History: []Turn{
			{Role: RoleUser, Content: "selam"},
			{Role: RoleAssistant, Content: "selam"},
		}}
		assert.ErrorIs(t, req.Validate(), ErrLastTurnNotUser)
	})

	t.Run("valid request passes", func(t *testing.T) {
		req := Request{History: []Turn{{Role: RoleUser, Content: "selam"}}}
		assert.NoError(t, req.Validate())
	})
}

func TestNewTurnBudget(t *testing.T) {
	t.Run("counts only user turns", func(t *testing.T) {
		history := []Turn{
			{Role: RoleUser, Content: "a"},
			{Role: RoleAssistant, Content: "b"},
			{Role: RoleUser, Content: "c"},
		}
		budget := NewTurnBudget(history, 3)
		assert.Equal(t, 2, budget.Turn)
		assert.False(t, budget.Final)
	})

	t.Run("final exactly at cap", func(t *testing.T) {
		history := []Turn{
			{Role: RoleUser, Content: "a"},
			{Role: RoleUser, Content: "b"},
			{Role: RoleUser, Content: "c"},
		}
		budget := NewTurnBudget(history, 3)
		assert.True(t, budget.Final)
	})

	t.Run("never returns from final to awaiting context", func(t *testing.T) {
		history := []Turn{}
		wasFinal := false
		for i := 0; i < 6; i++ {
			history = append(history, Turn{Role: RoleUser, Content: "x"})
			budget := NewTurnBudget(history, 3)
			if wasFinal {
				assert.True(t, budget.Final, "turn %d regressed out of final", budget.Turn)
			}
			wasFinal = wasFinal || budget.Final
		}
		assert.True(t, wasFinal)
	})
}
