package program

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"traincal/internal/model"
)

func TestCalculateWithoutRange(t *testing.T) {
	assert.Nil(t, Calculate(nil))
	assert.Nil(t, Calculate(NewState()))

	st := NewState()
	st.CloseRangeAt(date("2024-01-01")) // open range: only start anchored
	assert.Nil(t, Calculate(st))
}

func TestCalculateSingleDay(t *testing.T) {
	st := NewState()
	st.SetRange(date("2024-01-01"), date("2024-01-01"))
	st.SetTimeForDay(time.Monday, model.TimeRange{
		Start: model.TimeOfDay{Hour: 7, Minute: 0}, End: model.TimeOfDay{Hour: 8, Minute: 0},
	})

	sum := Calculate(st)
	require.NotNil(t, sum)
	assert.Equal(t, 1, sum.SelectedDays)
	assert.Equal(t, 60, sum.TotalMinutes)
	assert.Equal(t, 1, sum.WeeksInRange)
	assert.Equal(t, 1, sum.WeeksWithTraining)
}

func TestCalculateTwoWeekExample(t *testing.T) {
	st := twoWeekProgram()

	sum := Calculate(st)
	require.NotNil(t, sum)

	assert.Equal(t, date("2024-01-01"), sum.Start)
	assert.Equal(t, date("2024-01-14"), sum.End)
	assert.Equal(t, 4, sum.SelectedDays, "two Mondays and two Wednesdays")
	assert.Equal(t, 300, sum.TotalMinutes)
	assert.Equal(t, 2, sum.WeeksInRange)
	assert.Equal(t, 2, sum.WeeksWithTraining)

	assert.Equal(t, map[model.YearMonth]int{
		{Year: 2024, Month: time.January}: 300,
	}, sum.MinutesByMonth)
	assert.Equal(t, map[int]int{1: 150, 2: 150}, sum.MinutesByWeek)
}

func TestCalculateWithForceOff(t *testing.T) {
	st := twoWeekProgram()
	st.ForceOff(date("2024-01-01")) // first Monday

	sum := Calculate(st)
	require.NotNil(t, sum)
	assert.Equal(t, 3, sum.SelectedDays)
	assert.Equal(t, 240, sum.TotalMinutes)
	assert.Equal(t, map[int]int{1: 90, 2: 150}, sum.MinutesByWeek)
}

func TestCalculateUnscheduledDaysCountButAddNoMinutes(t *testing.T) {
	st := NewState()
	st.SetRange(date("2024-01-01"), date("2024-01-07"))
	st.AddTrainingDay(time.Friday) // no schedule assigned

	sum := Calculate(st)
	require.NotNil(t, sum)
	assert.Equal(t, 1, sum.SelectedDays)
	assert.Equal(t, 0, sum.TotalMinutes)
	assert.Equal(t, 1, sum.WeeksWithTraining, "a zero-minute day still marks its week")
	assert.Equal(t, map[int]int{1: 0}, sum.MinutesByWeek)
}

func TestCalculateWeeksInRangeRoundsUp(t *testing.T) {
	st := NewState()
	st.SetRange(date("2024-01-01"), date("2024-01-08")) // 8 days
	sum := Calculate(st)
	require.NotNil(t, sum)
	assert.Equal(t, 2, sum.WeeksInRange)
}

func TestCalculateSplitsMonths(t *testing.T) {
	st := NewState()
	// Empty weekday filter: every in-range day is selected.
	st.SetRange(date("2024-01-25"), date("2024-02-05"))
	for _, w := range model.Weekdays() {
		st.SetTimeForDay(w, model.TimeRange{
			Start: model.TimeOfDay{Hour: 10, Minute: 0}, End: model.TimeOfDay{Hour: 10, Minute: 30},
		})
	}

	sum := Calculate(st)
	require.NotNil(t, sum)
	assert.Equal(t, 12, sum.SelectedDays)
	assert.Equal(t, map[model.YearMonth]int{
		{Year: 2024, Month: time.January}:  7 * 30,
		{Year: 2024, Month: time.February}: 5 * 30,
	}, sum.MinutesByMonth)
	assert.Equal(t, []model.YearMonth{
		{Year: 2024, Month: time.January},
		{Year: 2024, Month: time.February},
	}, sum.MonthKeys())
}

func TestCalculateCountsForcedOutsideDates(t *testing.T) {
	st := twoWeekProgram()
	st.ForceOn(date("2024-01-20")) // Saturday after the range

	sum := Calculate(st)
	require.NotNil(t, sum)
	// The walk covers min..max of the anchors only; forced dates outside the
	// range do not appear in the summary.
	assert.Equal(t, 4, sum.SelectedDays)
}

func TestCalculateIsDeterministic(t *testing.T) {
	st := twoWeekProgram()
	first := Calculate(st)
	second := Calculate(st)
	assert.Equal(t, first, second)
}
