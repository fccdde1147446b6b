package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
	"golang.org/x/term"

	"github.com/ogadix/splash/internal/history"
	"github.com/ogadix/splash/internal/i18n"
)

const defaultHistoryCount = 10

func historyCmd(a cliArgs, args []string) {
	loc := i18n.New(i18n.Detect(a.lang))
	path := history.DefaultPath()

	count := defaultHistoryCount
	if len(args) > 0 {
		switch args[0] {
		case "clear":
			historyClear(path, loc)
			return
		case "clean":
			historyClean(path, args[1:], loc)
			return
		}
		n, err := strconv.Atoi(args[0])
		if err != nil || n <= 0 {
			fatal("history count must be a positive number, got %q", args[0])
		}
		count = n
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		fmt.Println(loc.T("HistoryNone", nil))
		return
	}
	s, err := history.Open(path)
	if err != nil {
		fatal("%v", err)
	}
	defer s.Close()

	runs, err := s.Runs(count)
	if err != nil {
		fatal("%v", err)
	}
	printRuns(os.Stdout, runs, loc)
}

func printRuns(w io.Writer, runs []history.Run, loc *i18n.Localizer) {
	if len(runs) == 0 {
		fmt.Fprintln(w, loc.T("HistoryNone", nil))
		return
	}
	for _, r := range runs {
		fmt.Fprintln(w, loc.T("HistoryRun", map[string]any{
			"Time":  cyan(humanize.Time(r.Time)),
			"Style": bold(r.Style),
			"Size":  r.IconSize,
			"Icon":  r.IconPath,
		}))
		fmt.Fprintf(w, "  %s\n", dim(fmt.Sprintf("%d files, %s, %s -> %s",
			len(r.Files), humanize.Bytes(uint64(r.TotalBytes())), r.Background, r.OutputDir)))
	}
}

func historyClear(path string, loc *i18n.Localizer) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		fmt.Println(loc.T("HistoryCleared", nil))
		return
	}
	s, err := history.Open(path)
	if err != nil {
		fatal("%v", err)
	}
	defer s.Close()
	if err := s.Clear(); err != nil {
		fatal("%v", err)
	}
	fmt.Println(loc.T("HistoryCleared", nil))
}

func historyClean(path string, args []string, loc *i18n.Localizer) {
	if len(args) != 1 {
		fatal("history clean requires a number of days")
	}
	days, err := strconv.Atoi(args[0])
	if err != nil || days < 0 {
		fatal("days must be a non-negative number, got %q", args[0])
	}
	n, err := cleanHistory(path, days, time.Now())
	if err != nil {
		fatal("%v", err)
	}
	fmt.Println(loc.T("HistoryCleaned", map[string]any{"Count": n, "Days": days}))
}

// cleanHistory removes runs recorded more than days before now and returns
// how many were removed. A missing database removes nothing.
func cleanHistory(path string, days int, now time.Time) (int, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return 0, nil
	}
	s, err := history.Open(path)
	if err != nil {
		return 0, err
	}
	defer s.Close()
	return s.Clean(now.AddDate(0, 0, -days))
}

// --- ANSI color helpers (disabled when NO_COLOR is set or stdout is not a terminal) ---

var noColor = os.Getenv("NO_COLOR") != "" || !term.IsTerminal(int(os.Stdout.Fd()))

func ansi(code, s string) string {
	if noColor {
		return s
	}
	return code + s + "\033[0m"
}

func bold(s string) string  { return ansi("\033[1m", s) }
func dim(s string) string   { return ansi("\033[2m", s) }
func cyan(s string) string  { return ansi("\033[36m", s) }
func green(s string) string { return ansi("\033[32m", s) }
