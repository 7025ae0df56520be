package ics

import (
	"fmt"
	"os"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"
	"github.com/google/uuid"

	appLog "traincal/internal/log"
	"traincal/internal/model"
	"traincal/internal/program"
)

const prodID = "-//traincal//1.0//ES"

// Spanish short weekday labels for the recurring session titles.
var shortDayES = map[time.Weekday]string{
	time.Monday:    "lun",
	time.Tuesday:   "mar",
	time.Wednesday: "mié",
	time.Thursday:  "jue",
	time.Friday:    "vie",
	time.Saturday:  "sáb",
	time.Sunday:    "dom",
}

// Exporter renders a program as a single VCALENDAR document: one VEVENT per
// selected date that has a weekday schedule, plus one VEVENT per custom
// event. Every entry is materialized as a discrete event; no recurrence
// rules are emitted.
type Exporter struct {
	loc *time.Location

	// Overridable in tests for deterministic output.
	now   func() time.Time
	newID func() string
}

// NewExporter creates an Exporter that stamps DTSTART/DTEND with the given
// location's zone identifier. A nil location falls back to time.Local.
func NewExporter(loc *time.Location) *Exporter {
	if loc == nil {
		loc = time.Local
	}
	return &Exporter{
		loc:   loc,
		now:   time.Now,
		newID: uuid.NewString,
	}
}

// Export serializes the program to iCalendar text (CRLF line endings). It
// fails with ErrNoRange when the program has no defined range.
func (e *Exporter) Export(st *program.State) (string, error) {
	if st == nil || !st.HasRange() {
		return "", program.ErrNoRange
	}

	tzid := e.loc.String()

	cal := ical.NewCalendar()
	cal.SetProductId(prodID)
	cal.SetVersion("2.0")
	cal.SetCalscale("GREGORIAN")
	cal.SetMethod(ical.MethodPublish)

	start, _ := st.MinDate()
	end, _ := st.MaxDate()

	sessions := 0
	for d := start; !d.After(end); d = d.AddDays(1) {
		if !st.IsSelected(d) {
			continue
		}
		tr, ok := st.TimeForDay(d.Weekday())
		if !ok {
			// Selected but unscheduled days are omitted from the export.
			continue
		}

		title := fmt.Sprintf("Entrenamiento (%s)", shortDayES[d.Weekday()])
		ev := cal.AddEvent(e.sessionUID(d))
		ev.SetProperty(ical.ComponentPropertySummary, title)
		ev.SetDtStampTime(e.now().UTC())
		e.setTimes(ev, d, tr, tzid)
		sessions++
	}

	custom := 0
	for _, d := range st.EventDates() {
		for _, cev := range st.EventsOn(d) {
			// Reserved characters in TEXT values are escaped by the
			// serializer; properties carry the raw strings.
			ev := cal.AddEvent(e.eventUID(d))
			ev.SetProperty(ical.ComponentPropertySummary, cev.Title)
			if strings.TrimSpace(cev.Description) != "" {
				ev.SetProperty(ical.ComponentPropertyDescription, cev.Description)
			}
			if strings.TrimSpace(cev.Location) != "" {
				ev.SetProperty(ical.ComponentPropertyLocation, cev.Location)
			}
			ev.SetDtStampTime(e.now().UTC())
			e.setTimes(ev, d, cev.Time, tzid)

			if cev.Reminder {
				alarm := ev.AddAlarm()
				alarm.SetTrigger("-PT10M")
				alarm.SetAction(ical.ActionDisplay)
				alarm.SetProperty(ical.ComponentPropertyDescription, cev.Title)
			}
			custom++
		}
	}

	appLog.Debug("ics export built", "sessions", sessions, "custom_events", custom, "tzid", tzid)
	// Serialize defaults to the platform newline; the wire format wants CRLF
	// everywhere.
	return cal.Serialize(ical.WithNewLineWindows), nil
}

// ExportToFile writes the iCalendar document to path as one whole-buffer
// write.
func (e *Exporter) ExportToFile(st *program.State, path string) error {
	text, err := e.Export(st)
	if err != nil {
		return err
	}
	return os.WriteFile(path, []byte(text), 0o644)
}

// setTimes stamps DTSTART/DTEND with an explicit TZID parameter. A range
// whose end time-of-day precedes its start rolls the end date to the next
// calendar day.
func (e *Exporter) setTimes(ev *ical.VEvent, d model.Date, tr model.TimeRange, tzid string) {
	endDate := d
	if tr.CrossesMidnight() {
		endDate = d.AddDays(1)
	}

	// Raw "TZID" parameter key, matching how parameters appear on the wire.
	tz := &ical.KeyValues{Key: "TZID", Value: []string{tzid}}
	ev.SetProperty(ical.ComponentPropertyDtStart, fmtLocal(d, tr.Start), tz)
	ev.SetProperty(ical.ComponentPropertyDtEnd, fmtLocal(endDate, tr.End), tz)
}

func (e *Exporter) sessionUID(d model.Date) string {
	return compactDate(d) + "-" + e.newID()
}

func (e *Exporter) eventUID(d model.Date) string {
	return compactDate(d) + "-evt-" + e.newID()
}

func compactDate(d model.Date) string {
	return strings.ReplaceAll(d.String(), "-", "")
}

// fmtLocal renders a floating local date-time, e.g. "20240101T093000".
func fmtLocal(d model.Date, t model.TimeOfDay) string {
	return fmt.Sprintf("%04d%02d%02dT%02d%02d00", d.Year, int(d.Month), d.Day, t.Hour, t.Minute)
}
