// Package analytics turns stored score history into per-chapter progress summaries.
package analytics

import (
	"cmp"
	"context"
	"fmt"
	"math"
	"slices"
	"strconv"
	"time"

	"github.com/samber/lo"

	"github.com/at-ishikawa/pobcards/internal/clock"
	"github.com/at-ishikawa/pobcards/internal/gateway"
)

const (
	// MaxHistory is how many of the most recent rounds are fetched.
	MaxHistory = 100
	// RollingWindow is how many of the latest rounds the rolling average covers.
	RollingWindow = 5
)

// Record is a normalized score history entry.
type Record struct {
	Key       string
	Date      float64 // epoch seconds
	Correct   int
	Incorrect int
	Total     int
	Accuracy  float64
	// DurationMs is nil for entries recorded without a duration.
	DurationMs *int64
}

// Time returns the completion time of the round.
func (r Record) Time() time.Time {
	return time.UnixMilli(int64(math.Round(r.Date * 1000)))
}

// Normalize converts stored entries into records ordered oldest first.
// Missing fields are derived: the date falls back to the numeric key, the total to
// correct+incorrect, and the accuracy to correct/total.
func Normalize(raw map[string]gateway.RawScore) []Record {
	records := make([]Record, 0, len(raw))
	for key, score := range raw {
		correct := int(value(score.Correct))
		incorrect := int(value(score.Incorrect))

		date := value(score.Date)
		if date == 0 {
			date, _ = strconv.ParseFloat(key, 64)
			if !isFinite(date) {
				date = 0
			}
		}

		total := int(value(score.Total))
		if total == 0 {
			total = correct + incorrect
		}

		var accuracy float64
		switch {
		case score.Accuracy != nil && isFinite(*score.Accuracy):
			accuracy = *score.Accuracy
		case total != 0:
			accuracy = float64(correct) / float64(total)
		}

		record := Record{
			Key:       key,
			Date:      date,
			Correct:   correct,
			Incorrect: incorrect,
			Total:     total,
			Accuracy:  accuracy,
		}
		if score.DurationMs != nil && isFinite(*score.DurationMs) {
			duration := int64(*score.DurationMs)
			record.DurationMs = &duration
		}
		records = append(records, record)
	}

	slices.SortFunc(records, func(a, b Record) int {
		return cmp.Or(cmp.Compare(a.Date, b.Date), cmp.Compare(a.Key, b.Key))
	})
	return records
}

func value(v *float64) float64 {
	if v == nil || !isFinite(*v) {
		return 0
	}
	return *v
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// Range limits the records a summary covers.
type Range int

const (
	RangeAll    Range = 0
	Range7Days  Range = 7
	Range30Days Range = 30
)

// ParseRange accepts "all", "7" and "30".
func ParseRange(s string) (Range, error) {
	switch s {
	case "", "all":
		return RangeAll, nil
	case "7":
		return Range7Days, nil
	case "30":
		return Range30Days, nil
	}
	return RangeAll, fmt.Errorf("unknown range %q: use all, 30 or 7", s)
}

func (r Range) String() string {
	if r == RangeAll {
		return "all"
	}
	return fmt.Sprintf("%d days", int(r))
}

// Filter keeps the records completed within the range ending at now.
func Filter(records []Record, r Range, now time.Time) []Record {
	if r == RangeAll {
		return records
	}
	cutoff := float64(now.UnixMilli())/1000 - float64(r)*24*60*60
	return lo.Filter(records, func(record Record, _ int) bool {
		return record.Date >= cutoff
	})
}

// Summary aggregates a chapter's records.
type Summary struct {
	Count          int
	Last           *Record
	BestAccuracy   float64
	BestTime       *int64
	RollingAverage float64
}

// Summarize aggregates records ordered oldest first.
func Summarize(records []Record) Summary {
	summary := Summary{Count: len(records)}
	if len(records) == 0 {
		return summary
	}

	last := records[len(records)-1]
	summary.Last = &last

	for _, record := range records {
		if record.Accuracy > summary.BestAccuracy {
			summary.BestAccuracy = record.Accuracy
		}
		if record.DurationMs != nil && (summary.BestTime == nil || *record.DurationMs < *summary.BestTime) {
			best := *record.DurationMs
			summary.BestTime = &best
		}
	}

	recent := records[max(0, len(records)-RollingWindow):]
	summary.RollingAverage = lo.SumBy(recent, func(record Record) float64 {
		return record.Accuracy
	}) / float64(len(recent))
	return summary
}

// Point is one row of a progress chart.
type Point struct {
	Label           string
	AccuracyPercent int
	// DurationSeconds is nil when the round has no recorded duration.
	DurationSeconds *int64
}

// Points converts records into chart rows labelled like "Jan 2" in loc.
func Points(records []Record, loc *time.Location) []Point {
	return lo.Map(records, func(record Record, _ int) Point {
		point := Point{AccuracyPercent: int(math.Round(record.Accuracy * 100))}
		if record.Date != 0 {
			point.Label = record.Time().In(loc).Format("Jan 2")
		}
		if record.DurationMs != nil && *record.DurationMs != 0 {
			seconds := int64(math.Round(float64(*record.DurationMs) / 1000))
			point.DurationSeconds = &seconds
		}
		return point
	})
}

// Report is the analytics view of one chapter.
type Report struct {
	Chapter int
	Range   Range
	Records []Record
	Summary Summary
}

// Service loads score history for reports.
type Service struct {
	scores gateway.ScoreStore
	clock  clock.Clock
}

func NewService(scores gateway.ScoreStore, c clock.Clock) *Service {
	if c == nil {
		c = clock.Real{}
	}
	return &Service{scores: scores, clock: c}
}

// ChapterReport summarizes the user's most recent rounds of a chapter within r.
func (s *Service) ChapterReport(ctx context.Context, user gateway.User, chapter int, r Range) (Report, error) {
	raw, err := s.scores.FetchScoreHistory(ctx, user.ID, chapter, MaxHistory)
	if err != nil {
		return Report{}, fmt.Errorf("scores.FetchScoreHistory(%d) > %w", chapter, err)
	}

	records := Filter(Normalize(raw), r, s.clock.Now())
	return Report{
		Chapter: chapter,
		Range:   r,
		Records: records,
		Summary: Summarize(records),
	}, nil
}
