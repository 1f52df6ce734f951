package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/at-ishikawa/pobcards/internal/study"
)

// StudyCLI drives a timed study round from the terminal.
type StudyCLI struct {
	*InteractiveCLI
	round           *study.Round
	commitAttempted bool
}

func NewStudyCLI(round *study.Round, in io.Reader, out io.Writer) *StudyCLI {
	return &StudyCLI{
		InteractiveCLI: newInteractiveCLI(in, out),
		round:          round,
	}
}

func (s *StudyCLI) Session(ctx context.Context) error {
	switch s.round.State() {
	case study.StateLoading:
		// a failed load leaves the round in StateFailed, which offers a retry
		_ = s.round.Load(ctx)
		return nil
	case study.StateFailed:
		return s.failed(ctx)
	case study.StateEmpty:
		fmt.Fprintf(s.stdoutWriter, "No terms found for chapter %d.\n", s.round.Chapter())
		return errEnd
	case study.StateActive:
		return s.active()
	case study.StateComplete:
		return s.complete(ctx)
	}
	return errEnd
}

func (s *StudyCLI) failed(ctx context.Context) error {
	s.warn.Fprintf(s.stdoutWriter, "Could not load terms: %v\n", s.round.Err())
	command, err := s.readCommand("[r] retry  [q] quit: ")
	if err != nil {
		return err
	}
	switch command {
	case "r":
		_ = s.round.Reload(ctx)
		return nil
	case "q":
		return errEnd
	}
	return nil
}

func (s *StudyCLI) active() error {
	term, ok := s.round.Current()
	if !ok {
		return nil
	}
	index, total := s.round.Position()

	fmt.Fprintf(s.stdoutWriter, "\n[%d/%d] %s  ", index+1, total, study.FormatDuration(s.round.Elapsed()))
	s.bold.Fprintln(s.stdoutWriter, term.Term)
	if s.round.Revealed() {
		s.italic.Fprintln(s.stdoutWriter, term.Definition)
	}

	command, err := s.readCommand("[enter] flip  [y] correct  [n] incorrect  [s] restart  [q] quit: ")
	if err != nil {
		return err
	}
	switch command {
	case "":
		return s.round.ToggleReveal()
	case "y":
		return s.round.Score(true)
	case "n":
		return s.round.Score(false)
	case "s":
		s.resetCommit()
		return s.round.Retry()
	case "q":
		return errEnd
	}
	return nil
}

func (s *StudyCLI) complete(ctx context.Context) error {
	if !s.commitAttempted {
		s.commitAttempted = true
		s.printSummary(s.round.Summary())
		s.commit(ctx)
	}

	prompt := "[r] study again  [q] quit: "
	if !s.round.Committed() {
		prompt = "[c] save score again  [r] study again  [q] quit: "
	}
	command, err := s.readCommand(prompt)
	if err != nil {
		return err
	}
	switch command {
	case "c":
		if !s.round.Committed() {
			s.commit(ctx)
		}
	case "r":
		s.resetCommit()
		return s.round.Retry()
	case "q":
		return errEnd
	}
	return nil
}

func (s *StudyCLI) commit(ctx context.Context) {
	_, err := s.round.Commit(ctx)
	switch {
	case err == nil:
		fmt.Fprintln(s.stdoutWriter, "Score saved.")
	case errors.Is(err, study.ErrAlreadyCommitted):
	default:
		s.warn.Fprintf(s.stdoutWriter, "Could not save your score: %v\n", err)
	}
}

func (s *StudyCLI) resetCommit() {
	s.commitAttempted = false
}

func (s *StudyCLI) printSummary(summary study.Summary) {
	fmt.Fprintln(s.stdoutWriter)
	s.bold.Fprintf(s.stdoutWriter, "Chapter %d complete\n", s.round.Chapter())
	fmt.Fprintf(s.stdoutWriter, "Correct:   %d\n", summary.Correct)
	fmt.Fprintf(s.stdoutWriter, "Incorrect: %d\n", summary.Incorrect)
	fmt.Fprintf(s.stdoutWriter, "Accuracy:  %d%%\n", summary.AccuracyPercent())
	fmt.Fprintf(s.stdoutWriter, "Time:      %s\n", study.FormatDuration(summary.Duration))
}
