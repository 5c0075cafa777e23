package reward

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pair-tasks/internal/apperr"
)

func TestEvaluate(t *testing.T) {
	st, err := Evaluate(5, 5)
	require.NoError(t, err)
	assert.True(t, st.Unlocked)
	assert.Equal(t, 0, st.Remaining)

	st, err = Evaluate(4, 5)
	require.NoError(t, err)
	assert.Equal(t, Status{Unlocked: false, Remaining: 1}, st)

	st, err = Evaluate(9, 5)
	require.NoError(t, err)
	assert.Equal(t, Status{Unlocked: true, Remaining: 0}, st)
}

func TestEvaluate_RejectsNonPositiveGoal(t *testing.T) {
	_, err := Evaluate(3, 0)
	require.Error(t, err)
	assert.True(t, apperr.IsValidation(err))
}

func TestNewConfig(t *testing.T) {
	cfg, err := NewConfig(7, "  dinner out ")
	require.NoError(t, err)
	assert.Equal(t, 7, cfg.DaysRequired)
	assert.Equal(t, "dinner out", cfg.Gift)

	_, err = NewConfig(-1, "x")
	assert.True(t, apperr.IsValidation(err))
}

func TestDefault(t *testing.T) {
	assert.Equal(t, 5, Default(5).DaysRequired)
	assert.Equal(t, 3, Default(0).DaysRequired)
}
