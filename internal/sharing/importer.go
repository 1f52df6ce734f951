package sharing

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/at-ishikawa/pobcards/internal/deck"
	"github.com/at-ishikawa/pobcards/internal/gateway"
)

// ErrNoImport is returned by ImportLink when the link carries neither parameter.
var ErrNoImport = errors.New("link has no import or share_id parameter")

// Importer validates share payloads and adds them to a library.
// A failed import never changes the library.
type Importer struct {
	library *deck.Library
	shares  gateway.ShareStore
	logger  *slog.Logger
}

func NewImporter(library *deck.Library, shares gateway.ShareStore, logger *slog.Logger) *Importer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Importer{library: library, shares: shares, logger: logger}
}

// ImportInline imports the base64 payload of an inline share link.
func (im *Importer) ImportInline(encoded string) (deck.Deck, error) {
	raw, err := DecodeInline(encoded)
	if err != nil {
		return deck.Deck{}, err
	}
	payload, err := Validate(raw)
	if err != nil {
		return deck.Deck{}, err
	}
	return im.store(payload, "")
}

// ImportShared imports the deck published under code.
// A missing code surfaces as gateway.ErrNotFound.
func (im *Importer) ImportShared(ctx context.Context, code string) (deck.Deck, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return deck.Deck{}, deck.NewValidationError(deck.KindInvalidFormat, msgInvalidPayload)
	}
	if im.shares == nil {
		return deck.Deck{}, gateway.Unavailable("ReadSharedDeck", errors.New("no share store configured"))
	}

	record, err := im.shares.ReadSharedDeck(ctx, code)
	if err != nil {
		return deck.Deck{}, fmt.Errorf("shares.ReadSharedDeck(%s) > %w", code, err)
	}
	raw, err := RawPayloadOf(record)
	if err != nil {
		return deck.Deck{}, deck.NewValidationError(deck.KindInvalidFormat, msgInvalidPayload)
	}
	payload, err := Validate(raw)
	if err != nil {
		return deck.Deck{}, err
	}
	return im.store(payload, code)
}

// ImportLink runs the import a share link asks for and returns the link without
// the consumed parameter.
func (im *Importer) ImportLink(ctx context.Context, rawURL string) (deck.Deck, string, error) {
	link, err := ParseLink(rawURL)
	if err != nil {
		return deck.Deck{}, rawURL, err
	}

	var d deck.Deck
	switch link.Kind {
	case LinkInline:
		d, err = im.ImportInline(link.Value)
	case LinkShared:
		d, err = im.ImportShared(ctx, link.Value)
	default:
		return deck.Deck{}, link.Stripped, ErrNoImport
	}
	return d, link.Stripped, err
}

// store adds the payload as a new deck. A *deck.StorageError is returned together with
// the deck when only persisting failed.
func (im *Importer) store(p Payload, shareID string) (deck.Deck, error) {
	d := im.library.Build(p.Title, p.Description, p.Cards)
	importedAt := d.CreatedAt
	d.ImportedAt = &importedAt
	d.OriginalShareID = shareID

	err := im.library.Add(d)
	im.logger.Info("imported deck", "id", d.ID, "cards", len(d.Cards), "share_id", shareID)
	return d, err
}
