package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"traincal/internal/model"
	"traincal/internal/program"
)

func TestApplyMutations(t *testing.T) {
	st := program.NewState()

	mutated, err := applyMutations(st, flagConfig{
		setRange: "2024-01-01:2024-01-14",
		days:     "MONDAY,WEDNESDAY",
		times:    "MONDAY=07:30-08:30,WEDNESDAY=18:00-19:30",
		toggles:  "2024-01-01",
	})
	require.NoError(t, err)
	assert.True(t, mutated)

	assert.True(t, st.HasRange())
	assert.Equal(t, []time.Weekday{time.Monday, time.Wednesday}, st.TrainingDays())

	tr, ok := st.TimeForDay(time.Wednesday)
	require.True(t, ok)
	assert.Equal(t, 90, tr.Minutes())

	// The toggled Monday became a forceOff exception.
	assert.False(t, st.IsSelected(model.MustParseDate("2024-01-01")))
	assert.True(t, st.IsSelected(model.MustParseDate("2024-01-08")))
}

func TestApplyMutationsReplacesDayFilter(t *testing.T) {
	st := program.NewState()
	st.AddTrainingDay(time.Friday)
	st.SetTimeForDay(time.Friday, model.TimeRange{
		Start: model.TimeOfDay{Hour: 6, Minute: 0}, End: model.TimeOfDay{Hour: 7, Minute: 0},
	})

	_, err := applyMutations(st, flagConfig{days: "MONDAY"})
	require.NoError(t, err)

	assert.Equal(t, []time.Weekday{time.Monday}, st.TrainingDays())
	_, ok := st.TimeForDay(time.Friday)
	assert.False(t, ok, "dropping a weekday clears its schedule")
}

func TestApplyMutationsRejectsBadFlags(t *testing.T) {
	cases := []flagConfig{
		{setRange: "2024-01-01"},
		{setRange: "2024-01-01:nope"},
		{days: "MONDAY,FUNDAY"},
		{times: "MONDAY"},
		{times: "MONDAY=07:30"},
		{times: "NODAY=07:30-08:30"},
		{times: "MONDAY=07:30-29:00"},
		{toggles: "2024-99-01"},
	}
	for _, fc := range cases {
		_, err := applyMutations(program.NewState(), fc)
		assert.Error(t, err, "%+v", fc)
	}
}

func TestApplyMutationsNoFlags(t *testing.T) {
	mutated, err := applyMutations(program.NewState(), flagConfig{})
	require.NoError(t, err)
	assert.False(t, mutated)
}
