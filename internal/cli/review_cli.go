package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/at-ishikawa/pobcards/internal/deck"
	"github.com/at-ishikawa/pobcards/internal/review"
)

// ReviewCLI flips through a personal deck.
type ReviewCLI struct {
	*InteractiveCLI
	session *review.Session
	title   string
}

// NewReviewCLI selects d in session and prepares the terminal loop.
func NewReviewCLI(session *review.Session, d deck.Deck, in io.Reader, out io.Writer) *ReviewCLI {
	session.Select(&d)
	return &ReviewCLI{
		InteractiveCLI: newInteractiveCLI(in, out),
		session:        session,
		title:          d.Title,
	}
}

func (r *ReviewCLI) Session(ctx context.Context) error {
	card, ok := r.session.Current()
	if !ok {
		fmt.Fprintln(r.stdoutWriter, "This set has no cards.")
		return errEnd
	}
	index, total := r.session.Position()

	fmt.Fprintf(r.stdoutWriter, "\n%s [%d/%d]  ", r.title, index+1, total)
	r.bold.Fprintln(r.stdoutWriter, card.Term)
	if r.session.Revealed() {
		r.italic.Fprintln(r.stdoutWriter, card.Definition)
	}

	command, err := r.readCommand("[enter] flip  [n] next  [p] previous  [q] quit: ")
	if err != nil {
		r.session.Close()
		return err
	}
	switch command {
	case "":
		r.session.ToggleReveal()
	case "n":
		r.session.Advance()
	case "p":
		r.session.Retreat()
	case "q":
		r.session.Close()
		return errEnd
	}
	return nil
}
