package sharing

import (
	"context"
	"errors"
	"fmt"

	"github.com/at-ishikawa/pobcards/internal/clock"
	"github.com/at-ishikawa/pobcards/internal/deck"
	"github.com/at-ishikawa/pobcards/internal/gateway"
)

// Publisher exports decks as share links.
type Publisher struct {
	shares gateway.ShareStore
	origin string
	clock  clock.Clock
}

func NewPublisher(shares gateway.ShareStore, origin string, c clock.Clock) *Publisher {
	if c == nil {
		c = clock.Real{}
	}
	return &Publisher{shares: shares, origin: origin, clock: c}
}

// InlineLink embeds the whole deck in the link.
func (p *Publisher) InlineLink(d deck.Deck) (string, error) {
	link, err := InlineLink(p.origin, PayloadOf(d))
	if err != nil {
		return "", fmt.Errorf("InlineLink(%s) > %w", d.ID, err)
	}
	return link, nil
}

// Publish stores the deck remotely under a new share code.
func (p *Publisher) Publish(ctx context.Context, d deck.Deck) (code string, link string, err error) {
	if p.shares == nil {
		return "", "", gateway.Unavailable("WriteSharedDeck", errors.New("no share store configured"))
	}

	now := p.clock.Now()
	code = NewShortCode(now)
	record := gateway.ShareRecord{
		Title:       d.Title,
		Description: d.Description,
		Cards:       append([]deck.Card(nil), d.Cards...),
		CreatedAt:   now.UnixMilli(),
	}
	if err := p.shares.WriteSharedDeck(ctx, code, record); err != nil {
		return "", "", fmt.Errorf("shares.WriteSharedDeck(%s) > %w", code, err)
	}
	return code, SharedLink(p.origin, code), nil
}
