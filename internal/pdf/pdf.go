// Package pdf prints decks as PDF handouts.
package pdf

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/mandolyte/mdtopdf"

	"github.com/at-ishikawa/pobcards/internal/deck"
)

var cellEscaper = strings.NewReplacer(
	"|", `\|`,
	"\r\n", "<br>",
	"\n", "<br>",
)

// RenderMarkdown renders the deck title, description, and a term/definition table.
// shareLink is printed under the description when non-empty.
func RenderMarkdown(d deck.Deck, shareLink string) []byte {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "# %s\n\n", strings.TrimSpace(d.Title))
	if description := strings.TrimSpace(d.Description); description != "" {
		fmt.Fprintf(&buf, "%s\n\n", description)
	}
	if shareLink != "" {
		fmt.Fprintf(&buf, "Import this set: %s\n\n", shareLink)
	}

	fmt.Fprintf(&buf, "Cards: %d\n\n", len(d.Cards))
	buf.WriteString("| # | Term | Definition |\n")
	buf.WriteString("|---|------|------------|\n")
	for i, card := range d.Cards {
		fmt.Fprintf(&buf, "| %d | %s | %s |\n", i+1, cellEscaper.Replace(card.Term), cellEscaper.Replace(card.Definition))
	}
	return buf.Bytes()
}

// ExportDeck writes the deck to pdfPath and returns the absolute path.
func ExportDeck(d deck.Deck, pdfPath, shareLink string) (string, error) {
	if !strings.HasSuffix(pdfPath, ".pdf") {
		return "", fmt.Errorf("output file must have .pdf extension: %s", pdfPath)
	}

	renderer := mdtopdf.NewPdfRenderer("P", "A4", pdfPath, "", nil, mdtopdf.LIGHT)
	if err := renderer.Process(RenderMarkdown(d, shareLink)); err != nil {
		return "", fmt.Errorf("renderer.Process() > %w", err)
	}

	absPath, err := filepath.Abs(pdfPath)
	if err != nil {
		return pdfPath, nil
	}

	return absPath, nil
}
