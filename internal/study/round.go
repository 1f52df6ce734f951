// Package study runs timed, self-scored rounds over the terms of a chapter.
package study

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"sync"
	"time"

	"github.com/at-ishikawa/pobcards/internal/clock"
	"github.com/at-ishikawa/pobcards/internal/gateway"
	"github.com/at-ishikawa/pobcards/internal/shuffle"
)

// TickInterval is how often the displayed elapsed time is refreshed.
const TickInterval = time.Second

type State int

const (
	StateLoading State = iota
	StateActive
	StateComplete
	StateEmpty
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateActive:
		return "active"
	case StateComplete:
		return "complete"
	case StateEmpty:
		return "empty"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

var (
	ErrNotActive        = errors.New("round is not active")
	ErrNotComplete      = errors.New("round is not complete")
	ErrAlreadyCommitted = errors.New("score already committed")
)

// Backend is the part of the gateway a round needs.
type Backend interface {
	gateway.ContentStore
	gateway.ScoreStore
}

// Summary is the outcome of a round.
type Summary struct {
	Correct   int
	Incorrect int
	Duration  time.Duration
}

func (s Summary) Total() int {
	return s.Correct + s.Incorrect
}

// Accuracy is correct/total, or 0 when nothing was scored.
func (s Summary) Accuracy() float64 {
	return Accuracy(s.Correct, s.Incorrect)
}

// AccuracyPercent is the accuracy rounded to a whole percent.
func (s Summary) AccuracyPercent() int {
	return int(math.Round(s.Accuracy() * 100))
}

func Accuracy(correct, incorrect int) float64 {
	total := correct + incorrect
	if total <= 0 {
		return 0
	}
	return float64(correct) / float64(total)
}

// Round is one pass over a chapter's terms.
type Round struct {
	mu sync.Mutex

	backend   Backend
	user      gateway.User
	chapter   int
	clock     clock.Clock
	shuffle   shuffle.Func[gateway.Term]
	newTicker func() Ticker
	logger    *slog.Logger

	state     State
	err       error
	terms     []gateway.Term
	index     int
	revealed  bool
	correct   int
	incorrect int
	startedAt time.Time
	elapsed   time.Duration
	ticker    Ticker
	committed bool
}

type Option func(*Round)

func WithClock(c clock.Clock) Option {
	return func(r *Round) {
		r.clock = c
	}
}

func WithShuffler(fn shuffle.Func[gateway.Term]) Option {
	return func(r *Round) {
		r.shuffle = fn
	}
}

func WithTicker(newTicker func() Ticker) Option {
	return func(r *Round) {
		r.newTicker = newTicker
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(r *Round) {
		r.logger = logger
	}
}

func NewRound(backend Backend, user gateway.User, chapter int, opts ...Option) *Round {
	r := &Round{
		backend:   backend,
		user:      user,
		chapter:   chapter,
		clock:     clock.Real{},
		shuffle:   shuffle.Shuffle[gateway.Term],
		newTicker: NewCronTicker,
		logger:    slog.Default(),
		state:     StateLoading,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Load fetches the chapter's terms and starts the round.
// The terms are shuffled once; the timer starts when the first term is shown.
func (r *Round) Load(ctx context.Context) error {
	r.mu.Lock()
	r.stopTickerLocked()
	r.state = StateLoading
	r.err = nil
	r.mu.Unlock()

	terms, err := r.backend.FetchTerms(ctx, r.chapter)

	r.mu.Lock()
	defer r.mu.Unlock()
	if err != nil {
		r.state = StateFailed
		r.err = err
		r.logger.Warn("failed to load terms", "chapter", r.chapter, "error", err)
		return fmt.Errorf("backend.FetchTerms(%d) > %w", r.chapter, err)
	}

	chapterTerms := make([]gateway.Term, 0, len(terms))
	for _, term := range terms {
		if term.Chapter == r.chapter {
			chapterTerms = append(chapterTerms, term)
		}
	}
	if len(chapterTerms) == 0 {
		r.terms = nil
		r.state = StateEmpty
		return nil
	}

	r.terms = r.shuffle(chapterTerms)
	r.beginLocked()
	return nil
}

// Reload retries loading after a failure.
func (r *Round) Reload(ctx context.Context) error {
	return r.Load(ctx)
}

func (r *Round) beginLocked() {
	r.index = 0
	r.revealed = false
	r.correct = 0
	r.incorrect = 0
	r.committed = false
	r.startedAt = r.clock.Now()
	r.elapsed = 0
	r.state = StateActive

	r.ticker = r.newTicker()
	if err := r.ticker.Start(TickInterval, r.tick); err != nil {
		// the round still works without a live clock display
		r.logger.Warn("failed to start display ticker", "error", err)
		r.ticker = nil
	}
}

func (r *Round) tick() {
	// a user action holding the lock may be stopping this ticker; skip the update
	if !r.mu.TryLock() {
		return
	}
	defer r.mu.Unlock()
	if r.state != StateActive {
		return
	}
	r.elapsed = r.clock.Now().Sub(r.startedAt).Truncate(time.Second)
}

func (r *Round) stopTickerLocked() {
	if r.ticker == nil {
		return
	}
	r.ticker.Stop()
	r.ticker = nil
}

func (r *Round) ToggleReveal() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.state != StateActive {
		return ErrNotActive
	}
	r.revealed = !r.revealed
	return nil
}

// Score records the answer to the current term and moves on.
// Scoring the last term completes the round.
func (r *Round) Score(correct bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.state != StateActive {
		return ErrNotActive
	}

	if correct {
		r.correct++
	} else {
		r.incorrect++
	}
	r.revealed = false

	if r.index+1 < len(r.terms) {
		r.index++
		return nil
	}

	r.stopTickerLocked()
	r.elapsed = r.clock.Now().Sub(r.startedAt)
	r.state = StateComplete
	r.logger.Debug("round complete", "chapter", r.chapter, "correct", r.correct, "incorrect", r.incorrect)
	return nil
}

// Retry reshuffles the same terms and starts over.
func (r *Round) Retry() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.state != StateComplete && r.state != StateActive {
		return ErrNotComplete
	}
	r.stopTickerLocked()
	r.terms = r.shuffle(r.terms)
	r.beginLocked()
	return nil
}

// Commit writes the score of a completed round.
// On failure the round stays complete so the commit can be retried.
func (r *Round) Commit(ctx context.Context) (gateway.ScoreRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.state != StateComplete {
		return gateway.ScoreRecord{}, ErrNotComplete
	}
	if r.committed {
		return gateway.ScoreRecord{}, ErrAlreadyCommitted
	}

	completedAt := r.startedAt.Add(r.elapsed)
	record := newScoreRecord(r.chapter, r.correct, r.incorrect, completedAt, r.elapsed)
	key := strconv.FormatInt(completedAt.Unix(), 10)
	if err := r.backend.WriteScore(ctx, r.user.ID, r.chapter, key, record); err != nil {
		r.logger.Warn("failed to save score", "chapter", r.chapter, "key", key, "error", err)
		return record, fmt.Errorf("backend.WriteScore(%s) > %w", key, err)
	}
	r.committed = true
	return record, nil
}

func newScoreRecord(chapter, correct, incorrect int, completedAt time.Time, elapsed time.Duration) gateway.ScoreRecord {
	day := completedAt.Format("2006-01-02")
	return gateway.ScoreRecord{
		Chapter:            chapter,
		Correct:            correct,
		Incorrect:          incorrect,
		Total:              correct + incorrect,
		Accuracy:           Accuracy(correct, incorrect),
		Date:               float64(completedAt.UnixMilli()) / 1000,
		DurationMs:         elapsed.Milliseconds(),
		CorrectDateScore:   fmt.Sprintf("(%s,%d)", day, correct),
		IncorrectDateScore: fmt.Sprintf("(%s,%d)", day, incorrect),
	}
}

// Close stops the timer and discards the round.
func (r *Round) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stopTickerLocked()
	r.terms = nil
	r.index = 0
	r.revealed = false
	r.correct = 0
	r.incorrect = 0
	r.state = StateEmpty
}

func (r *Round) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Err returns the load failure while the round is in StateFailed.
func (r *Round) Err() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.err
}

func (r *Round) Chapter() int {
	return r.chapter
}

// Current returns the term being studied.
func (r *Round) Current() (gateway.Term, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.state != StateActive {
		return gateway.Term{}, false
	}
	return r.terms[r.index], true
}

// Position returns the zero-based index of the current term and the term count.
func (r *Round) Position() (int, int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.index, len(r.terms)
}

func (r *Round) Revealed() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.revealed
}

// Elapsed returns the time shown on the round clock.
func (r *Round) Elapsed() time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.elapsed
}

func (r *Round) Committed() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.committed
}

func (r *Round) Summary() Summary {
	r.mu.Lock()
	defer r.mu.Unlock()
	return Summary{Correct: r.correct, Incorrect: r.incorrect, Duration: r.elapsed}
}

// FormatDuration renders d as MM:SS. Negative durations render as 00:00.
func FormatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	seconds := int64(d / time.Second)
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}
