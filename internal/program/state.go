package program

import (
	"errors"
	"sort"
	"time"

	"traincal/internal/model"
)

// ErrNoRange is returned by exports that require a defined date range.
var ErrNoRange = errors.New("no date range defined")

// State is the training program aggregate: range anchors, weekday filter,
// per-weekday schedules, per-date force-on/force-off overrides and custom
// events. It is the single source of truth for deciding whether a date is
// selected.
//
// The internal collections never escape; all mutation goes through the
// methods below, which keep the forceOn/forceOff sets disjoint. State is not
// safe for concurrent use; a session owns it from one goroutine.
type State struct {
	start *model.Date
	end   *model.Date

	trainingDays map[time.Weekday]struct{}
	timeByDay    map[time.Weekday]model.TimeRange

	forceOn  map[model.Date]struct{}
	forceOff map[model.Date]struct{}

	events map[model.Date][]model.CalendarEvent
}

// NewState returns an empty program.
func NewState() *State {
	return &State{
		trainingDays: make(map[time.Weekday]struct{}),
		timeByDay:    make(map[time.Weekday]model.TimeRange),
		forceOn:      make(map[model.Date]struct{}),
		forceOff:     make(map[model.Date]struct{}),
		events:       make(map[model.Date][]model.CalendarEvent),
	}
}

// Start returns the raw start anchor as it was set, without normalization.
func (s *State) Start() (model.Date, bool) {
	if s.start == nil {
		return model.Date{}, false
	}
	return *s.start, true
}

// End returns the raw end anchor as it was set, without normalization.
func (s *State) End() (model.Date, bool) {
	if s.end == nil {
		return model.Date{}, false
	}
	return *s.end, true
}

// SetStart sets the start anchor on its own. Anchors may be set in either
// order; normalization happens only at read time via MinDate/MaxDate.
func (s *State) SetStart(d model.Date) {
	s.start = &d
}

// SetEnd sets the end anchor on its own.
func (s *State) SetEnd(d model.Date) {
	s.end = &d
}

// SetRange overwrites both anchors unconditionally.
func (s *State) SetRange(a, z model.Date) {
	s.start = &a
	s.end = &z
}

// HasRange reports whether both anchors are set.
func (s *State) HasRange() bool {
	return s.start != nil && s.end != nil
}

// MinDate returns the chronologically earlier anchor; false when the range
// is not fully defined.
func (s *State) MinDate() (model.Date, bool) {
	if !s.HasRange() {
		return model.Date{}, false
	}
	return model.MinDate(*s.start, *s.end), true
}

// MaxDate returns the chronologically later anchor; false when the range is
// not fully defined.
func (s *State) MaxDate() (model.Date, bool) {
	if !s.HasRange() {
		return model.Date{}, false
	}
	return model.MaxDate(*s.start, *s.end), true
}

// IsInsideRange reports whether d falls inside the normalized range.
func (s *State) IsInsideRange(d model.Date) bool {
	min, ok := s.MinDate()
	if !ok {
		return false
	}
	max, _ := s.MaxDate()
	return !d.Before(min) && !d.After(max)
}

// IsSelected is the effective selection decision for a date, in strict
// priority order: forceOn, then forceOff, then range membership, then the
// weekday filter. An empty filter selects every in-range day.
func (s *State) IsSelected(d model.Date) bool {
	if _, ok := s.forceOn[d]; ok {
		return true
	}
	if _, ok := s.forceOff[d]; ok {
		return false
	}
	if !s.IsInsideRange(d) {
		return false
	}
	if len(s.trainingDays) == 0 {
		return true
	}
	_, ok := s.trainingDays[d.Weekday()]
	return ok
}

// CloseRangeAt closes the range using start as the anchor. The first call
// establishes start and clears end; a later call assigns end, swapping the
// anchors when d lands before start.
func (s *State) CloseRangeAt(d model.Date) {
	if s.start == nil {
		s.start = &d
		s.end = nil
		return
	}
	if d.Before(*s.start) {
		s.end = s.start
		s.start = &d
	} else {
		s.end = &d
	}
}

// AdjustRangeWith re-anchors the range with shift-click semantics: with no
// start it establishes one, with an open range it closes it, and with a full
// range it reassigns end (or swaps when d precedes start).
func (s *State) AdjustRangeWith(d model.Date) {
	if s.start == nil {
		s.start = &d
		s.end = nil
		return
	}
	if s.end == nil {
		s.CloseRangeAt(d)
		return
	}
	if d.Before(*s.start) {
		s.end = s.start
		s.start = &d
	} else {
		s.end = &d
	}
}

// ToggleException flips the per-date override against the current effective
// selection. Afterwards exactly one of the two override sets contains d.
func (s *State) ToggleException(d model.Date) {
	if s.IsSelected(d) {
		delete(s.forceOn, d)
		s.forceOff[d] = struct{}{}
	} else {
		delete(s.forceOff, d)
		s.forceOn[d] = struct{}{}
	}
}

// ForceOn force-selects a date without touching other rules. The date is
// removed from forceOff first so the sets stay disjoint.
func (s *State) ForceOn(d model.Date) {
	delete(s.forceOff, d)
	s.forceOn[d] = struct{}{}
}

// ForceOff force-deselects a date without touching other rules.
func (s *State) ForceOff(d model.Date) {
	delete(s.forceOn, d)
	s.forceOff[d] = struct{}{}
}

// ForceOnDates returns the force-selected dates in chronological order.
func (s *State) ForceOnDates() []model.Date {
	return sortedDates(s.forceOn)
}

// ForceOffDates returns the force-deselected dates in chronological order.
func (s *State) ForceOffDates() []model.Date {
	return sortedDates(s.forceOff)
}

// AddTrainingDay adds a weekday to the filter.
func (s *State) AddTrainingDay(w time.Weekday) {
	s.trainingDays[w] = struct{}{}
}

// RemoveTrainingDay removes a weekday from the filter and drops its
// schedule, mirroring how the day selector clears both together.
func (s *State) RemoveTrainingDay(w time.Weekday) {
	delete(s.trainingDays, w)
	delete(s.timeByDay, w)
}

// IsTrainingDay reports filter membership.
func (s *State) IsTrainingDay(w time.Weekday) bool {
	_, ok := s.trainingDays[w]
	return ok
}

// TrainingDays returns the filter Monday-first.
func (s *State) TrainingDays() []time.Weekday {
	out := make([]time.Weekday, 0, len(s.trainingDays))
	for _, w := range model.Weekdays() {
		if _, ok := s.trainingDays[w]; ok {
			out = append(out, w)
		}
	}
	return out
}

// SetTimeForDay assigns the schedule for a weekday, replacing any previous
// one.
func (s *State) SetTimeForDay(w time.Weekday, tr model.TimeRange) {
	s.timeByDay[w] = tr
}

// ClearTimeForDay removes a weekday's schedule.
func (s *State) ClearTimeForDay(w time.Weekday) {
	delete(s.timeByDay, w)
}

// TimeForDay returns the schedule for a weekday, if any.
func (s *State) TimeForDay(w time.Weekday) (model.TimeRange, bool) {
	tr, ok := s.timeByDay[w]
	return tr, ok
}

// TimeByDay returns a copy of the weekday schedule table.
func (s *State) TimeByDay() map[time.Weekday]model.TimeRange {
	out := make(map[time.Weekday]model.TimeRange, len(s.timeByDay))
	for w, tr := range s.timeByDay {
		out[w] = tr
	}
	return out
}

// AddEvent files an event under a date, keeping that date's list ordered by
// event start time.
func (s *State) AddEvent(d model.Date, ev model.CalendarEvent) {
	list := append(s.events[d], ev)
	sort.SliceStable(list, func(i, j int) bool {
		return list[i].Time.Start.Before(list[j].Time.Start)
	})
	s.events[d] = list
}

// RemoveEvent deletes the i-th event of a date. The date key disappears when
// its list empties. Returns false for an out-of-range index.
func (s *State) RemoveEvent(d model.Date, i int) bool {
	list, ok := s.events[d]
	if !ok || i < 0 || i >= len(list) {
		return false
	}
	list = append(list[:i], list[i+1:]...)
	if len(list) == 0 {
		delete(s.events, d)
	} else {
		s.events[d] = list
	}
	return true
}

// ClearEvents removes every event filed under a date.
func (s *State) ClearEvents(d model.Date) {
	delete(s.events, d)
}

// EventsOn returns a copy of the event list for a date, in stored order.
func (s *State) EventsOn(d model.Date) []model.CalendarEvent {
	list, ok := s.events[d]
	if !ok {
		return nil
	}
	out := make([]model.CalendarEvent, len(list))
	copy(out, list)
	return out
}

// EventDates returns the dates that carry events, in chronological order.
func (s *State) EventDates() []model.Date {
	out := make([]model.Date, 0, len(s.events))
	for d := range s.events {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Before(out[j]) })
	return out
}

// CopyFrom deep-replaces every field with value-independent copies of the
// other state's contents.
func (s *State) CopyFrom(other *State) {
	s.start, s.end = nil, nil
	if other.start != nil {
		d := *other.start
		s.start = &d
	}
	if other.end != nil {
		d := *other.end
		s.end = &d
	}

	s.trainingDays = make(map[time.Weekday]struct{}, len(other.trainingDays))
	for w := range other.trainingDays {
		s.trainingDays[w] = struct{}{}
	}

	s.timeByDay = make(map[time.Weekday]model.TimeRange, len(other.timeByDay))
	for w, tr := range other.timeByDay {
		s.timeByDay[w] = tr
	}

	s.forceOn = make(map[model.Date]struct{}, len(other.forceOn))
	for d := range other.forceOn {
		s.forceOn[d] = struct{}{}
	}

	s.forceOff = make(map[model.Date]struct{}, len(other.forceOff))
	for d := range other.forceOff {
		s.forceOff[d] = struct{}{}
	}

	s.events = make(map[model.Date][]model.CalendarEvent, len(other.events))
	for d, list := range other.events {
		cp := make([]model.CalendarEvent, len(list))
		copy(cp, list)
		s.events[d] = cp
	}
}

func sortedDates(set map[model.Date]struct{}) []model.Date {
	out := make([]model.Date, 0, len(set))
	for d := range set {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Before(out[j]) })
	return out
}
