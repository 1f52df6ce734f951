package pdf

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/at-ishikawa/pobcards/internal/deck"
)

func TestRenderMarkdown(t *testing.T) {
	tests := []struct {
		name      string
		deck      deck.Deck
		shareLink string
		want      string
	}{
		{
			name: "title and cards",
			deck: deck.Deck{
				Title: "Bones",
				Cards: []deck.Card{{Term: "femur", Definition: "thigh bone"}},
			},
			want: "# Bones\n\nCards: 1\n\n| # | Term | Definition |\n|---|------|------------|\n| 1 | femur | thigh bone |\n",
		},
		{
			name: "description, link and escaped cells",
			deck: deck.Deck{
				Title:       "Logic",
				Description: "  Operators  ",
				Cards:       []deck.Card{{Term: "a | b", Definition: "or\nelse"}},
			},
			shareLink: "https://pobcards.example.com/safmeds?share_id=abc",
			want: "# Logic\n\nOperators\n\nImport this set: https://pobcards.example.com/safmeds?share_id=abc\n\n" +
				"Cards: 1\n\n| # | Term | Definition |\n|---|------|------------|\n| 1 | a \\| b | or<br>else |\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, string(RenderMarkdown(tt.deck, tt.shareLink)))
		})
	}
}

func TestExportDeck(t *testing.T) {
	d := deck.Deck{
		Title: "Bones",
		Cards: []deck.Card{{Term: "femur", Definition: "thigh bone"}, {Term: "tibia", Definition: "shin bone"}},
	}

	t.Run("writes pdf", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "bones.pdf")
		got, err := ExportDeck(d, path, "")
		require.NoError(t, err)
		assert.True(t, filepath.IsAbs(got))

		info, err := os.Stat(got)
		require.NoError(t, err)
		assert.Positive(t, info.Size())
	})

	t.Run("rejects other extensions", func(t *testing.T) {
		_, err := ExportDeck(d, filepath.Join(t.TempDir(), "bones.md"), "")
		require.Error(t, err)
		assert.Contains(t, err.Error(), ".pdf extension")
	})
}
