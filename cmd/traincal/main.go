package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"

	"traincal/internal/config"
	"traincal/internal/ics"
	appLog "traincal/internal/log"
	"traincal/internal/model"
	"traincal/internal/program"
	"traincal/internal/store"
)

// flagConfig holds parsed CLI flag values.
type flagConfig struct {
	configPath string
	statePath  string

	initState bool
	setRange  string
	days      string
	times     string
	toggles   string

	summary   bool
	csvExport bool
	icsExport bool
	watch     bool
}

func main() {
	appLog.Info("traincal starting", "version", "1.0.0")

	flags := parseFlags()

	conf, err := config.Load(flags.configPath)
	if err != nil {
		appLog.Error("failed to load config", err, "config_path", flags.configPath)
		os.Exit(1)
	}
	appLog.SetLevel(appLog.ParseLevel(conf.LogLevel))

	// CLI -state overrides the config file path if provided.
	if flags.statePath != "" {
		conf.StateFile = flags.statePath
	}

	appLog.Info("effective config",
		"timezone", conf.Timezone,
		"state_file", conf.StateFile,
		"ics_out", conf.ICSOut,
		"csv_out", conf.CSVOut,
		"refresh", conf.RefreshCron,
		"watch", flags.watch,
	)

	loc, err := time.LoadLocation(conf.Timezone)
	if err != nil {
		appLog.Error("unknown timezone, falling back to local zone", err, "timezone", conf.Timezone)
		loc = time.Local
	}

	st, err := loadState(conf.StateFile, flags.initState)
	if err != nil {
		appLog.Error("failed to load program", err, "state_file", conf.StateFile)
		os.Exit(1)
	}

	mutated, err := applyMutations(st, flags)
	if err != nil {
		appLog.Error("invalid mutation flag", err)
		os.Exit(1)
	}
	if mutated {
		if err := store.SaveJSON(st, conf.StateFile, true); err != nil {
			appLog.Error("failed to save program", err, "state_file", conf.StateFile)
			os.Exit(1)
		}
		appLog.Info("program saved", "state_file", conf.StateFile)
	}

	if flags.watch {
		runWatch(conf, loc)
		appLog.Info("traincal exiting")
		return
	}

	if err := runOnce(st, conf, loc, flags); err != nil {
		appLog.Error("operation failed", err)
		os.Exit(1)
	}
	appLog.Info("traincal exiting")
}

func parseFlags() flagConfig {
	var cfg flagConfig

	flag.StringVar(&cfg.configPath, "config", "config.yaml", "Path to config file")
	flag.StringVar(&cfg.statePath, "state", "", "Program JSON file (overrides config if set)")

	flag.BoolVar(&cfg.initState, "init", false, "Create an empty program file if none exists")
	flag.StringVar(&cfg.setRange, "set-range", "", "Set the date range, e.g. 2024-01-01:2024-03-31")
	flag.StringVar(&cfg.days, "days", "", "Comma-separated training weekdays, e.g. MONDAY,WEDNESDAY")
	flag.StringVar(&cfg.times, "times", "", "Weekday schedules, e.g. MONDAY=07:30-08:30,WEDNESDAY=18:00-19:30")
	flag.StringVar(&cfg.toggles, "toggle", "", "Comma-separated dates whose selection exception is toggled")

	flag.BoolVar(&cfg.summary, "summary", false, "Print the program summary")
	flag.BoolVar(&cfg.csvExport, "csv", false, "Export the summary table to the configured CSV path")
	flag.BoolVar(&cfg.icsExport, "ics", false, "Export the calendar to the configured ICS path")
	flag.BoolVar(&cfg.watch, "watch", false, "Stay up and re-run exports on the configured cron schedule")

	flag.Parse()

	return cfg
}

// loadState reads the program document, optionally creating an empty one
// first when -init is given and no file exists yet.
func loadState(path string, initState bool) (*program.State, error) {
	if initState {
		if _, err := os.Stat(path); os.IsNotExist(err) {
			st := program.NewState()
			if err := store.SaveJSON(st, path, false); err != nil {
				return nil, err
			}
			appLog.Info("empty program created", "state_file", path)
			return st, nil
		}
	}
	return store.LoadJSON(path)
}

// applyMutations applies the mutation flags to the program, reporting
// whether anything changed.
func applyMutations(st *program.State, flags flagConfig) (bool, error) {
	mutated := false

	if flags.setRange != "" {
		a, z, ok := strings.Cut(flags.setRange, ":")
		if !ok {
			return mutated, fmt.Errorf("range %q must be start:end", flags.setRange)
		}
		from, err := model.ParseDate(a)
		if err != nil {
			return mutated, err
		}
		to, err := model.ParseDate(z)
		if err != nil {
			return mutated, err
		}
		st.SetRange(from, to)
		mutated = true
	}

	if flags.days != "" {
		// The flag names the full filter: weekdays absent from it are removed.
		wanted := make(map[time.Weekday]bool)
		for _, token := range strings.Split(flags.days, ",") {
			w, err := model.ParseWeekday(token)
			if err != nil {
				return mutated, err
			}
			wanted[w] = true
		}
		for _, w := range model.Weekdays() {
			if wanted[w] {
				st.AddTrainingDay(w)
			} else if st.IsTrainingDay(w) {
				st.RemoveTrainingDay(w)
			}
		}
		mutated = true
	}

	if flags.times != "" {
		for _, entry := range strings.Split(flags.times, ",") {
			day, span, ok := strings.Cut(entry, "=")
			if !ok {
				return mutated, fmt.Errorf("schedule %q must be WEEKDAY=HH:MM-HH:MM", entry)
			}
			w, err := model.ParseWeekday(day)
			if err != nil {
				return mutated, err
			}
			from, to, ok := strings.Cut(span, "-")
			if !ok {
				return mutated, fmt.Errorf("schedule %q must be WEEKDAY=HH:MM-HH:MM", entry)
			}
			start, err := model.ParseTimeOfDay(from)
			if err != nil {
				return mutated, err
			}
			end, err := model.ParseTimeOfDay(to)
			if err != nil {
				return mutated, err
			}
			st.SetTimeForDay(w, model.TimeRange{Start: start, End: end})
		}
		mutated = true
	}

	if flags.toggles != "" {
		for _, token := range strings.Split(flags.toggles, ",") {
			d, err := model.ParseDate(token)
			if err != nil {
				return mutated, err
			}
			st.ToggleException(d)
		}
		mutated = true
	}

	return mutated, nil
}

// runOnce performs the requested read-only operations. With no operation
// flags at all, it prints the summary.
func runOnce(st *program.State, conf *config.Config, loc *time.Location, flags flagConfig) error {
	if !flags.summary && !flags.csvExport && !flags.icsExport {
		flags.summary = true
	}

	if flags.summary {
		printSummary(st)
	}
	if flags.csvExport {
		if err := store.SaveCSV(st, conf.CSVOut); err != nil {
			return err
		}
		appLog.Info("csv exported", "path", conf.CSVOut)
	}
	if flags.icsExport {
		if err := ics.NewExporter(loc).ExportToFile(st, conf.ICSOut); err != nil {
			return err
		}
		appLog.Info("ics exported", "path", conf.ICSOut)
	}
	return nil
}

// runWatch re-runs both exports on the configured cron schedule until
// SIGINT/SIGTERM. The program file is re-read on every tick so edits made by
// other invocations are picked up.
func runWatch(conf *config.Config, loc *time.Location) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigCh
		appLog.Info("signal received, shutting down", "signal", sig.String())
		cancel()
	}()

	exportAll := func() {
		st, err := store.LoadJSON(conf.StateFile)
		if err != nil {
			appLog.Error("watch: failed to load program", err, "state_file", conf.StateFile)
			return
		}
		if err := store.SaveCSV(st, conf.CSVOut); err != nil {
			appLog.Error("watch: csv export failed", err, "path", conf.CSVOut)
		}
		if err := ics.NewExporter(loc).ExportToFile(st, conf.ICSOut); err != nil {
			appLog.Error("watch: ics export failed", err, "path", conf.ICSOut)
		}
		appLog.Info("watch: exports refreshed", "ics", conf.ICSOut, "csv", conf.CSVOut)
	}

	c := cron.New()
	if _, err := c.AddFunc(conf.RefreshCron, exportAll); err != nil {
		appLog.Error("invalid refresh cron spec", err, "refresh", conf.RefreshCron)
		os.Exit(1)
	}

	// One immediate pass so a fresh start does not wait for the first tick.
	exportAll()
	c.Start()

	<-ctx.Done()
	stopCtx := c.Stop()
	<-stopCtx.Done()
}

// printSummary renders the computed summary to stdout.
func printSummary(st *program.State) {
	sum := program.Calculate(st)
	if sum == nil {
		fmt.Println("Sin rango definido.")
		return
	}

	fmt.Printf("Programa: %s .. %s\n", sum.Start, sum.End)
	fmt.Printf("Días seleccionados: %d\n", sum.SelectedDays)
	fmt.Printf("Minutos totales: %d (%s)\n", sum.TotalMinutes, model.FormatMinutes(sum.TotalMinutes))
	fmt.Printf("Semanas del rango: %d\n", sum.WeeksInRange)
	fmt.Printf("Semanas con entrenamiento: %d\n", sum.WeeksWithTraining)

	if len(sum.MinutesByMonth) > 0 {
		fmt.Println("Minutos por mes:")
		for _, ym := range sum.MonthKeys() {
			mins := sum.MinutesByMonth[ym]
			fmt.Printf("  %s  %d (%s)\n", ym, mins, model.FormatMinutes(mins))
		}
	}
	if len(sum.MinutesByWeek) > 0 {
		fmt.Println("Minutos por semana:")
		for _, wk := range sum.WeekKeys() {
			mins := sum.MinutesByWeek[wk]
			fmt.Printf("  semana %d  %d (%s)\n", wk, mins, model.FormatMinutes(mins))
		}
	}
}
