package cli

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/at-ishikawa/pobcards/internal/analytics"
	"github.com/at-ishikawa/pobcards/internal/study"
)

// WriteAnalyticsReport prints the summary and per-round chart of a chapter report.
func WriteAnalyticsReport(w io.Writer, report analytics.Report, loc *time.Location) {
	fmt.Fprintf(w, "Chapter %d progress (%s)\n", report.Chapter, report.Range)
	fmt.Fprintln(w, "=============================")

	if report.Summary.Count == 0 {
		fmt.Fprintln(w, "No rounds recorded for this period.")
		return
	}

	summary := report.Summary
	fmt.Fprintf(w, "%-16s %d\n", "Rounds:", summary.Count)
	if summary.Last != nil {
		fmt.Fprintf(w, "%-16s %s\n", "Last round:", formatRecord(*summary.Last, loc))
	}
	fmt.Fprintf(w, "%-16s %s\n", "Best accuracy:", percent(summary.BestAccuracy))
	if summary.BestTime != nil {
		fmt.Fprintf(w, "%-16s %s\n", "Best time:", study.FormatDuration(time.Duration(*summary.BestTime)*time.Millisecond))
	}
	fmt.Fprintf(w, "%-16s %s\n", fmt.Sprintf("Last %d avg:", analytics.RollingWindow), percent(summary.RollingAverage))

	fmt.Fprintln(w)
	fmt.Fprintf(w, "%-8s  %-8s  %s\n", "Date", "Accuracy", "Time")
	fmt.Fprintf(w, "%-8s  %-8s  %s\n", "----", "--------", "----")
	for _, point := range analytics.Points(report.Records, loc) {
		duration := "-"
		if point.DurationSeconds != nil {
			duration = study.FormatDuration(time.Duration(*point.DurationSeconds) * time.Second)
		}
		fmt.Fprintf(w, "%-8s  %-8s  %-8s  %s\n",
			point.Label,
			fmt.Sprintf("%d%%", point.AccuracyPercent),
			duration,
			strings.Repeat("#", point.AccuracyPercent/5),
		)
	}
}

func formatRecord(record analytics.Record, loc *time.Location) string {
	s := fmt.Sprintf("%d/%d correct, %s", record.Correct, record.Total, percent(record.Accuracy))
	if record.Date != 0 {
		s += " on " + record.Time().In(loc).Format("Jan 2 15:04")
	}
	return s
}

func percent(v float64) string {
	return fmt.Sprintf("%.0f%%", v*100)
}
