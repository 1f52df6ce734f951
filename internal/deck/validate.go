package deck

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

const (
	msgMissingCardField  = "Add both a term and definition before saving."
	msgTermTooLong       = "Term must be 500 characters or less."
	msgDefinitionTooLong = "Definition must be 500 characters or less."
	msgMissingTitle      = "Please name your Safmeds set."
	msgNoCards           = "Add at least one card to save your set."
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// ValidateCard checks a single card against the field rules.
func ValidateCard(card Card) error {
	if err := validate.Struct(card); err != nil {
		return toValidationError(err)
	}
	return nil
}

// ValidateDeck checks a whole deck against the deck invariants.
func ValidateDeck(d Deck) error {
	if len(d.Cards) > MaxCards {
		return TooManyCardsError(len(d.Cards))
	}
	if err := validate.Struct(d); err != nil {
		return toValidationError(err)
	}
	return nil
}

func toValidationError(err error) error {
	var fieldErrors validator.ValidationErrors
	if !errors.As(err, &fieldErrors) || len(fieldErrors) == 0 {
		return NewValidationError(KindInvalidFormat, err.Error())
	}

	fe := fieldErrors[0]
	switch fe.Field() {
	case "term", "definition":
		if fe.Tag() == "required" {
			return NewValidationError(KindEmptyField, msgMissingCardField)
		}
		if fe.Field() == "term" {
			return NewValidationError(KindFieldTooLong, msgTermTooLong)
		}
		return NewValidationError(KindFieldTooLong, msgDefinitionTooLong)
	case "title":
		return NewValidationError(KindEmptyField, msgMissingTitle)
	case "cards":
		if fe.Tag() == "max" {
			return TooManyCardsError(reflect.ValueOf(fe.Value()).Len())
		}
		return NewValidationError(KindInvalidFormat, msgNoCards)
	}
	return NewValidationError(KindInvalidFormat, fmt.Sprintf("%s is invalid", fe.Namespace()))
}

// FilterCards keeps the elements that are objects with non-empty string term and definition.
// Other elements are dropped silently.
func FilterCards(raw []json.RawMessage) []Card {
	cards := make([]Card, 0, len(raw))
	for _, element := range raw {
		var fields struct {
			Term       any `json:"term"`
			Definition any `json:"definition"`
		}
		if err := json.Unmarshal(element, &fields); err != nil {
			continue
		}
		term, ok := fields.Term.(string)
		if !ok || term == "" {
			continue
		}
		definition, ok := fields.Definition.(string)
		if !ok || definition == "" {
			continue
		}
		cards = append(cards, Card{Term: term, Definition: definition})
	}
	return cards
}

type storedDeck struct {
	ID              string            `json:"id"`
	Title           string            `json:"title"`
	Description     string            `json:"description"`
	Cards           []json.RawMessage `json:"cards"`
	CreatedAt       float64           `json:"created_at"`
	ImportedAt      *float64          `json:"imported_at"`
	OriginalShareID string            `json:"original_share_id"`
}

// Coerce turns one persisted element into a Deck.
// Invalid cards are dropped; an element without an id, a title, or any valid card is rejected.
func Coerce(raw json.RawMessage) (Deck, error) {
	var stored storedDeck
	if err := json.Unmarshal(raw, &stored); err != nil {
		return Deck{}, NewValidationError(KindInvalidFormat, fmt.Sprintf("json.Unmarshal() > %v", err))
	}
	if stored.Cards == nil {
		return Deck{}, NewValidationError(KindInvalidFormat, "cards must be an array")
	}

	d := Deck{
		ID:              stored.ID,
		Title:           stored.Title,
		Description:     stored.Description,
		Cards:           FilterCards(stored.Cards),
		CreatedAt:       int64(stored.CreatedAt),
		OriginalShareID: stored.OriginalShareID,
	}
	if stored.ImportedAt != nil {
		importedAt := int64(*stored.ImportedAt)
		d.ImportedAt = &importedAt
	}
	if err := validateStructure(d); err != nil {
		return Deck{}, err
	}
	return d, nil
}

// validateStructure checks the shape of a persisted deck.
// Field lengths are not re-checked because imported decks may carry longer text.
func validateStructure(d Deck) error {
	switch {
	case d.ID == "":
		return NewValidationError(KindInvalidFormat, "id is required")
	case d.Title == "":
		return NewValidationError(KindEmptyField, msgMissingTitle)
	case len(d.Cards) == 0:
		return NewValidationError(KindInvalidFormat, msgNoCards)
	case len(d.Cards) > MaxCards:
		return TooManyCardsError(len(d.Cards))
	}
	return nil
}
