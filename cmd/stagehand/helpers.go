package main

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"stagehand/internal/events"
)

const shortIDLength = 8

func shortID(id string) string {
	if len(id) <= shortIDLength {
		return id
	}
	return id[:shortIDLength]
}

func formatDuration(d time.Duration) string {
	if d <= 0 {
		return "-"
	}
	if d < time.Second {
		return d.Round(time.Millisecond).String()
	}
	return d.Round(100 * time.Millisecond).String()
}

func formatTimestamp(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format("2006-01-02 15:04:05")
}

func renderEventTable(out io.Writer, evts []events.Event) string {
	rows := make([][]string, 0, len(evts))
	for i, e := range evts {
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			e.Phase,
			string(e.Kind),
			e.Source,
			dashIfEmpty(e.Destination),
			dashIfEmpty(e.Reason),
		})
	}
	return renderTable(out,
		[]string{"#", "Phase", "Kind", "Source", "Destination", "Reason"},
		rows,
		[]columnAlignment{alignRight},
	)
}

func dashIfEmpty(value string) string {
	if value == "" {
		return "-"
	}
	return value
}

func pluralize(n int, singular, plural string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, singular)
	}
	return fmt.Sprintf("%d %s", n, plural)
}
