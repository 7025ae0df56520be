package store

import (
	"fmt"
	"strings"

	"traincal/internal/model"
	"traincal/internal/program"
)

// EncodeCSV renders the flat summary table: one row per selected date, a
// blank line, then the resumen key/value section. It fails with ErrNoRange
// when the program has no defined range.
func EncodeCSV(st *program.State) (string, error) {
	sum := program.Calculate(st)
	if sum == nil {
		return "", program.ErrNoRange
	}

	var b strings.Builder
	b.WriteString("fecha,dow,minutos\n")

	for d := sum.Start; !d.After(sum.End); d = d.AddDays(1) {
		if !st.IsSelected(d) {
			continue
		}
		mins := 0
		if tr, ok := st.TimeForDay(d.Weekday()); ok {
			mins = tr.Minutes()
		}
		fmt.Fprintf(&b, "%s,%s,%d\n", d, model.WeekdayName(d.Weekday()), mins)
	}

	b.WriteString("\nresumen,valor\n")
	fmt.Fprintf(&b, "semanas_del_rango,%d\n", sum.WeeksInRange)
	fmt.Fprintf(&b, "semanas_con_entrenamiento,%d\n", sum.WeeksWithTraining)
	fmt.Fprintf(&b, "dias_seleccionados,%d\n", sum.SelectedDays)
	fmt.Fprintf(&b, "minutos_totales,%d\n", sum.TotalMinutes)

	return b.String(), nil
}

// SaveCSV writes the summary table to path. No partial output is written
// when the range precondition fails.
func SaveCSV(st *program.State, path string) error {
	text, err := EncodeCSV(st)
	if err != nil {
		return err
	}
	return writeFileAtomic(path, []byte(text))
}
