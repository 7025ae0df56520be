package store

import (
	"encoding/json"
	"os"
	"path/filepath"

	appLog "traincal/internal/log"
	"traincal/internal/model"
	"traincal/internal/program"
)

// document is the on-disk JSON shape of a program. It deliberately mirrors
// the save format field for field instead of serializing internal structures
// directly.
type document struct {
	Start *string `json:"start"`
	End   *string `json:"end"`

	TrainingDays []string                `json:"trainingDays"`
	TimeByDay    map[string]timeRangeDoc `json:"timeByDay"`

	ForceOn  []string `json:"forceOn"`
	ForceOff []string `json:"forceOff"`

	Events map[string][]eventDoc `json:"events"`

	// Totals is write-only, informational; it is ignored on load.
	Totals *totalsDoc `json:"totals,omitempty"`
}

type timeRangeDoc struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

type eventDoc struct {
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Location    string       `json:"location"`
	Time        timeRangeDoc `json:"time"`
	Reminder    bool         `json:"reminder"`
}

type totalsDoc struct {
	Start             string `json:"start"`
	End               string `json:"end"`
	WeeksInRange      int    `json:"weeksInRange"`
	WeeksWithTraining int    `json:"weeksWithTraining"`
	SelectedDays      int    `json:"selectedDays"`
	TotalMinutes      int    `json:"totalMinutes"`
}

// EncodeJSON serializes a program to the indented JSON document. When
// withTotals is set and the program has a range, the computed summary is
// embedded as the informational totals block.
func EncodeJSON(st *program.State, withTotals bool) ([]byte, error) {
	doc := document{
		TrainingDays: []string{},
		TimeByDay:    map[string]timeRangeDoc{},
		ForceOn:      []string{},
		ForceOff:     []string{},
		Events:       map[string][]eventDoc{},
	}

	if d, ok := st.Start(); ok {
		s := d.String()
		doc.Start = &s
	}
	if d, ok := st.End(); ok {
		s := d.String()
		doc.End = &s
	}

	for _, w := range st.TrainingDays() {
		doc.TrainingDays = append(doc.TrainingDays, model.WeekdayName(w))
	}

	for w, tr := range st.TimeByDay() {
		doc.TimeByDay[model.WeekdayName(w)] = timeRangeFrom(tr)
	}

	for _, d := range st.ForceOnDates() {
		doc.ForceOn = append(doc.ForceOn, d.String())
	}
	for _, d := range st.ForceOffDates() {
		doc.ForceOff = append(doc.ForceOff, d.String())
	}

	for _, d := range st.EventDates() {
		list := st.EventsOn(d)
		docs := make([]eventDoc, 0, len(list))
		for _, ev := range list {
			docs = append(docs, eventDoc{
				Title:       ev.Title,
				Description: ev.Description,
				Location:    ev.Location,
				Time:        timeRangeFrom(ev.Time),
				Reminder:    ev.Reminder,
			})
		}
		doc.Events[d.String()] = docs
	}

	if withTotals {
		if sum := program.Calculate(st); sum != nil {
			doc.Totals = &totalsDoc{
				Start:             sum.Start.String(),
				End:               sum.End.String(),
				WeeksInRange:      sum.WeeksInRange,
				WeeksWithTraining: sum.WeeksWithTraining,
				SelectedDays:      sum.SelectedDays,
				TotalMinutes:      sum.TotalMinutes,
			}
		}
	}

	return json.MarshalIndent(doc, "", "  ")
}

// DecodeJSON deserializes a program from its JSON document. A document that
// fails to parse as JSON aborts the load; individual weekday or date tokens
// that fail to parse are dropped from their collection instead.
func DecodeJSON(data []byte) (*program.State, error) {
	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, err
	}

	st := program.NewState()

	if doc.Start != nil {
		if d, err := model.ParseDate(*doc.Start); err == nil {
			st.SetStart(d)
		} else {
			appLog.Warn("skipping unparseable start date", "token", *doc.Start)
		}
	}
	if doc.End != nil {
		if d, err := model.ParseDate(*doc.End); err == nil {
			st.SetEnd(d)
		} else {
			appLog.Warn("skipping unparseable end date", "token", *doc.End)
		}
	}

	for _, token := range doc.TrainingDays {
		w, err := model.ParseWeekday(token)
		if err != nil {
			appLog.Warn("skipping unknown training day", "token", token)
			continue
		}
		st.AddTrainingDay(w)
	}

	for key, trDoc := range doc.TimeByDay {
		w, err := model.ParseWeekday(key)
		if err != nil {
			appLog.Warn("skipping schedule for unknown weekday", "token", key)
			continue
		}
		tr, err := timeRangeTo(trDoc)
		if err != nil {
			appLog.Warn("skipping unparseable schedule", "weekday", key, "err", err)
			continue
		}
		st.SetTimeForDay(w, tr)
	}

	for _, token := range doc.ForceOn {
		if d, err := model.ParseDate(token); err == nil {
			st.ForceOn(d)
		} else {
			appLog.Warn("skipping unparseable forceOn date", "token", token)
		}
	}
	for _, token := range doc.ForceOff {
		if d, err := model.ParseDate(token); err == nil {
			st.ForceOff(d)
		} else {
			appLog.Warn("skipping unparseable forceOff date", "token", token)
		}
	}

	for key, list := range doc.Events {
		d, err := model.ParseDate(key)
		if err != nil {
			appLog.Warn("skipping events under unparseable date", "token", key)
			continue
		}
		for _, evDoc := range list {
			tr, err := timeRangeTo(evDoc.Time)
			if err != nil {
				appLog.Warn("skipping event with unparseable time",
					"date", key, "title", evDoc.Title, "err", err)
				continue
			}
			st.AddEvent(d, model.CalendarEvent{
				Title:       evDoc.Title,
				Description: evDoc.Description,
				Location:    evDoc.Location,
				Time:        tr,
				Reminder:    evDoc.Reminder,
			})
		}
	}

	return st, nil
}

// SaveJSON writes the program document to path, atomically via a temp file
// in the same directory. Existing state on disk survives a failed write.
func SaveJSON(st *program.State, path string, withTotals bool) error {
	data, err := EncodeJSON(st, withTotals)
	if err != nil {
		return err
	}
	return writeFileAtomic(path, data)
}

// LoadJSON reads and decodes a program document from path.
func LoadJSON(path string) (*program.State, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return DecodeJSON(data)
}

func timeRangeFrom(tr model.TimeRange) timeRangeDoc {
	return timeRangeDoc{Start: tr.Start.String(), End: tr.End.String()}
}

func timeRangeTo(doc timeRangeDoc) (model.TimeRange, error) {
	start, err := model.ParseTimeOfDay(doc.Start)
	if err != nil {
		return model.TimeRange{}, err
	}
	end, err := model.ParseTimeOfDay(doc.End)
	if err != nil {
		return model.TimeRange{}, err
	}
	return model.TimeRange{Start: start, End: end}, nil
}

// writeFileAtomic writes data via a temp file plus rename so readers never
// observe a half-written document.
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".traincal-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}
