package program

import (
	"traincal/internal/model"
)

// Calculate derives the aggregate summary for a program by replaying the
// selection decision over every date of the normalized range. It returns nil
// when no range is defined.
//
// Selected dates without a schedule for their weekday still count as
// selected days (and mark their program week) but contribute 0 minutes.
func Calculate(st *State) *model.Summary {
	if st == nil || !st.HasRange() {
		return nil
	}

	start, _ := st.MinDate()
	end, _ := st.MaxDate()

	byMonth := make(map[model.YearMonth]int)
	byWeek := make(map[int]int)
	weeksWithAny := make(map[int]struct{})

	selectedDays := 0
	totalMinutes := 0

	for d := start; !d.After(end); d = d.AddDays(1) {
		if !st.IsSelected(d) {
			continue
		}

		selectedDays++

		mins := 0
		if tr, ok := st.TimeForDay(d.Weekday()); ok {
			mins = tr.Minutes()
		}
		totalMinutes += mins

		byMonth[model.YearMonthOf(d)] += mins

		wk := weekOfProgram(start, d)
		weeksWithAny[wk] = struct{}{}
		byWeek[wk] += mins
	}

	daysInRange := start.DaysUntil(end) + 1

	return &model.Summary{
		Start:             start,
		End:               end,
		SelectedDays:      selectedDays,
		TotalMinutes:      totalMinutes,
		WeeksInRange:      (daysInRange + 6) / 7,
		WeeksWithTraining: len(weeksWithAny),
		MinutesByMonth:    byMonth,
		MinutesByWeek:     byWeek,
	}
}

// weekOfProgram numbers weeks from the range start: days 0-6 are week 1,
// days 7-13 week 2, and so on. This is a program week, not a calendar week.
func weekOfProgram(start, d model.Date) int {
	return start.DaysUntil(d)/7 + 1
}
