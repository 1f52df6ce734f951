package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/at-ishikawa/pobcards/internal/deck"
	"github.com/at-ishikawa/pobcards/internal/review"
	"github.com/at-ishikawa/pobcards/internal/shuffle"
)

func TestReviewCLI_Session(t *testing.T) {
	bones := deck.Deck{
		ID:    "deck-1",
		Title: "Bones",
		Cards: []deck.Card{
			{Term: "femur", Definition: "thigh bone"},
			{Term: "tibia", Definition: "shin bone"},
		},
	}

	tests := []struct {
		name       string
		deck       deck.Deck
		input      string
		wantOutput []string
		wantAbsent []string
	}{
		{
			name:       "flip and move",
			deck:       bones,
			input:      "\nn\np\nq\n",
			wantOutput: []string{"Bones [1/2]", "femur", "thigh bone", "Bones [2/2]", "tibia"},
			wantAbsent: []string{"shin bone"},
		},
		{
			name:       "wraps after the last card",
			deck:       bones,
			input:      "n\nn\nq\n",
			wantOutput: []string{"Bones [2/2]", "Bones [1/2]"},
		},
		{
			name:       "end of input closes the session",
			deck:       bones,
			input:      "",
			wantOutput: []string{"Bones [1/2]"},
		},
		{
			name:       "deck without cards",
			deck:       deck.Deck{ID: "deck-2", Title: "Empty"},
			wantOutput: []string{"This set has no cards."},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			session := review.New(review.WithShuffler(shuffle.Identity[deck.Card]))

			var out bytes.Buffer
			cli := NewReviewCLI(session, tt.deck, strings.NewReader(tt.input), &out)
			require.NoError(t, cli.Run(context.Background(), cli))

			for _, want := range tt.wantOutput {
				assert.Contains(t, out.String(), want)
			}
			for _, absent := range tt.wantAbsent {
				assert.NotContains(t, out.String(), absent)
			}
			assert.Equal(t, review.StateEmpty, session.State())
		})
	}
}
