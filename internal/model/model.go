package model

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"
)

// Date is a calendar day with no time component. It is a flat comparable
// value so it can be used directly as a map key; equality is by calendar
// value.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// DateOf truncates t to its calendar day.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

// ParseDate parses an ISO "2006-01-02" date string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", strings.TrimSpace(s))
	if err != nil {
		return Date{}, err
	}
	return DateOf(t), nil
}

// MustParseDate is ParseDate for fixtures and defaults; it panics on error.
func MustParseDate(s string) Date {
	d, err := ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

// Time returns the date at midnight in the given location. A nil location
// means UTC.
func (d Date) Time(loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, loc)
}

// AddDays returns the date n days later (or earlier for negative n),
// normalized across month and year boundaries.
func (d Date) AddDays(n int) Date {
	return DateOf(d.Time(time.UTC).AddDate(0, 0, n))
}

func (d Date) Before(o Date) bool {
	return d.Time(time.UTC).Before(o.Time(time.UTC))
}

func (d Date) After(o Date) bool {
	return o.Before(d)
}

// DaysUntil returns the number of whole days from d to o (negative when o
// is earlier).
func (d Date) DaysUntil(o Date) int {
	return int(o.Time(time.UTC).Sub(d.Time(time.UTC)) / (24 * time.Hour))
}

func (d Date) Weekday() time.Weekday {
	return d.Time(time.UTC).Weekday()
}

func (d Date) IsZero() bool {
	return d == Date{}
}

// String renders the ISO form, e.g. "2024-01-01".
func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

// MinDate normalizes an unordered pair of dates to its earlier member.
func MinDate(a, b Date) Date {
	if b.Before(a) {
		return b
	}
	return a
}

// MaxDate normalizes an unordered pair of dates to its later member.
func MaxDate(a, b Date) Date {
	if b.After(a) {
		return b
	}
	return a
}

// TimeOfDay is a wall-clock time within a day.
type TimeOfDay struct {
	Hour   int
	Minute int
}

// ParseTimeOfDay accepts "HH:MM" and "HH:MM:SS"; seconds are dropped.
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	s = strings.TrimSpace(s)
	parts := strings.Split(s, ":")
	if len(parts) != 2 && len(parts) != 3 {
		return TimeOfDay{}, fmt.Errorf("invalid time of day %q", s)
	}
	h, err := parseClockPart(parts[0], 23)
	if err != nil {
		return TimeOfDay{}, fmt.Errorf("invalid time of day %q: %w", s, err)
	}
	m, err := parseClockPart(parts[1], 59)
	if err != nil {
		return TimeOfDay{}, fmt.Errorf("invalid time of day %q: %w", s, err)
	}
	if len(parts) == 3 {
		if _, err := parseClockPart(parts[2], 59); err != nil {
			return TimeOfDay{}, fmt.Errorf("invalid time of day %q: %w", s, err)
		}
	}
	return TimeOfDay{Hour: h, Minute: m}, nil
}

func parseClockPart(s string, max int) (int, error) {
	var n int
	if _, err := fmt.Sscanf(s, "%d", &n); err != nil {
		return 0, err
	}
	if n < 0 || n > max {
		return 0, fmt.Errorf("value %d out of range", n)
	}
	return n, nil
}

// MinuteOfDay counts minutes since midnight.
func (t TimeOfDay) MinuteOfDay() int {
	return t.Hour*60 + t.Minute
}

func (t TimeOfDay) Before(o TimeOfDay) bool {
	return t.MinuteOfDay() < o.MinuteOfDay()
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
}

// TimeRange is a start/end time-of-day pair. End may sit numerically before
// Start, which is read as spanning past midnight into the next day; there is
// no invalid combination.
type TimeRange struct {
	Start TimeOfDay
	End   TimeOfDay
}

// Minutes returns the duration of the range in minutes, rolling End forward
// by 24h when it precedes Start. Equal endpoints yield 0, never 24h.
func (r TimeRange) Minutes() int {
	end := r.End.MinuteOfDay()
	if r.End.Before(r.Start) {
		end += 24 * 60
	}
	mins := end - r.Start.MinuteOfDay()
	if mins < 0 {
		return 0
	}
	return mins
}

// CrossesMidnight reports whether the range ends on the following day.
func (r TimeRange) CrossesMidnight() bool {
	return r.End.Before(r.Start)
}

func (r TimeRange) String() string {
	return r.Start.String() + "-" + r.End.String()
}

// CalendarEvent is a free-form entry filed under a specific date. It has no
// identity beyond its position in that date's list.
type CalendarEvent struct {
	Title       string
	Description string
	Location    string
	Time        TimeRange
	Reminder    bool
}

// weekdayNames carries the persisted token spelling, Monday first.
var weekdayNames = []struct {
	day  time.Weekday
	name string
}{
	{time.Monday, "MONDAY"},
	{time.Tuesday, "TUESDAY"},
	{time.Wednesday, "WEDNESDAY"},
	{time.Thursday, "THURSDAY"},
	{time.Friday, "FRIDAY"},
	{time.Saturday, "SATURDAY"},
	{time.Sunday, "SUNDAY"},
}

// ErrUnknownWeekday is returned by ParseWeekday for unrecognized tokens.
var ErrUnknownWeekday = errors.New("unknown weekday token")

// ParseWeekday maps an upper-case weekday token ("MONDAY") to time.Weekday.
func ParseWeekday(s string) (time.Weekday, error) {
	token := strings.ToUpper(strings.TrimSpace(s))
	for _, wn := range weekdayNames {
		if wn.name == token {
			return wn.day, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownWeekday, s)
}

// WeekdayName renders the persisted token for a weekday.
func WeekdayName(d time.Weekday) string {
	for _, wn := range weekdayNames {
		if wn.day == d {
			return wn.name
		}
	}
	return ""
}

// Weekdays lists all weekdays Monday first, the order used for stable
// serialization and display.
func Weekdays() []time.Weekday {
	out := make([]time.Weekday, 0, len(weekdayNames))
	for _, wn := range weekdayNames {
		out = append(out, wn.day)
	}
	return out
}

// YearMonth keys the per-month aggregation.
type YearMonth struct {
	Year  int
	Month time.Month
}

func YearMonthOf(d Date) YearMonth {
	return YearMonth{Year: d.Year, Month: d.Month}
}

func (ym YearMonth) String() string {
	return fmt.Sprintf("%04d-%02d", ym.Year, int(ym.Month))
}

func (ym YearMonth) before(o YearMonth) bool {
	if ym.Year != o.Year {
		return ym.Year < o.Year
	}
	return ym.Month < o.Month
}

// Summary is the derived aggregate for a program range. It is recomputed on
// demand and never mutated in place.
type Summary struct {
	Start Date
	End   Date

	SelectedDays int
	TotalMinutes int

	WeeksInRange      int
	WeeksWithTraining int

	MinutesByMonth map[YearMonth]int
	MinutesByWeek  map[int]int
}

// MonthKeys returns the months in chronological order.
func (s *Summary) MonthKeys() []YearMonth {
	keys := make([]YearMonth, 0, len(s.MinutesByMonth))
	for ym := range s.MinutesByMonth {
		keys = append(keys, ym)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].before(keys[j]) })
	return keys
}

// WeekKeys returns the program-week numbers in ascending order.
func (s *Summary) WeekKeys() []int {
	keys := make([]int, 0, len(s.MinutesByWeek))
	for wk := range s.MinutesByWeek {
		keys = append(keys, wk)
	}
	sort.Ints(keys)
	return keys
}

// FormatMinutes renders minutes as "H:MM" for display.
func FormatMinutes(mins int) string {
	if mins < 0 {
		mins = 0
	}
	return fmt.Sprintf("%d:%02d", mins/60, mins%60)
}
