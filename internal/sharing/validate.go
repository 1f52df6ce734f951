package sharing

import (
	"fmt"
	"math"

	"github.com/at-ishikawa/pobcards/internal/deck"
)

// Validate checks an untrusted payload and returns the cards that survive filtering.
func Validate(raw RawPayload) (Payload, error) {
	if raw.Title == "" || raw.Cards == nil {
		return Payload{}, deck.NewValidationError(deck.KindInvalidFormat, msgInvalidPayload)
	}

	cards := deck.FilterCards(raw.Cards)
	if len(cards) > deck.MaxCards {
		return Payload{}, deck.TooManyCardsError(len(cards))
	}

	payload := Payload{Title: raw.Title, Description: raw.Description, Cards: cards}
	data, err := marshal(payload)
	if err != nil {
		return Payload{}, deck.NewValidationError(deck.KindInvalidFormat, msgInvalidPayload)
	}
	if len(data) > MaxPayloadBytes {
		return Payload{}, deck.NewValidationError(deck.KindPayloadTooLarge,
			fmt.Sprintf("This set is too large (%dKB). Maximum allowed is %dKB.", kilobytes(len(data)), kilobytes(MaxPayloadBytes)))
	}

	if len(cards) == 0 {
		return Payload{}, deck.NewValidationError(deck.KindInvalidFormat, "Add at least one card to save your set.")
	}
	return payload, nil
}

func kilobytes(n int) int {
	return int(math.Round(float64(n) / 1024))
}
