// Package sharing moves decks between the local library and share links or share codes.
package sharing

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/at-ishikawa/pobcards/internal/deck"
	"github.com/at-ishikawa/pobcards/internal/gateway"
)

const (
	// MaxPayloadBytes caps the serialized size of an imported deck.
	MaxPayloadBytes = 500000

	msgInvalidPayload = "Invalid share payload format."
	msgUnreadable     = "Unable to import this Safmeds set."
)

// Payload is the shareable content of a deck.
type Payload struct {
	Title       string      `json:"title"`
	Description string      `json:"description"`
	Cards       []deck.Card `json:"cards"`
}

// PayloadOf returns the shareable content of d.
func PayloadOf(d deck.Deck) Payload {
	return Payload{Title: d.Title, Description: d.Description, Cards: d.Cards}
}

// RawPayload is an untrusted payload before Validate.
type RawPayload struct {
	Title       string
	Description string
	// Cards is nil when the payload had no cards array.
	Cards []json.RawMessage
}

// ParsePayload reads the JSON of a share payload without judging its content.
func ParsePayload(data []byte) (RawPayload, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil || fields == nil {
		return RawPayload{}, deck.NewValidationError(deck.KindInvalidFormat, msgInvalidPayload)
	}

	var raw RawPayload
	// non-string titles or descriptions are treated as absent
	_ = json.Unmarshal(fields["title"], &raw.Title)
	_ = json.Unmarshal(fields["description"], &raw.Description)
	if cards, ok := fields["cards"]; ok {
		var elements []json.RawMessage
		if err := json.Unmarshal(cards, &elements); err == nil {
			raw.Cards = elements
		}
	}
	return raw, nil
}

// RawPayloadOf converts a stored share record for validation.
func RawPayloadOf(record gateway.ShareRecord) (RawPayload, error) {
	raw := RawPayload{Title: record.Title, Description: record.Description}
	if record.Cards == nil {
		return raw, nil
	}
	raw.Cards = make([]json.RawMessage, 0, len(record.Cards))
	for _, card := range record.Cards {
		element, err := json.Marshal(card)
		if err != nil {
			return RawPayload{}, fmt.Errorf("json.Marshal() > %w", err)
		}
		raw.Cards = append(raw.Cards, element)
	}
	return raw, nil
}

// marshal serializes without HTML escaping so the byte length matches what a browser would send.
func marshal(p Payload) ([]byte, error) {
	if p.Cards == nil {
		p.Cards = []deck.Card{}
	}
	var buf bytes.Buffer
	encoder := json.NewEncoder(&buf)
	encoder.SetEscapeHTML(false)
	if err := encoder.Encode(p); err != nil {
		return nil, fmt.Errorf("encoder.Encode() > %w", err)
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

// EncodeInline serializes p as standard base64 of its UTF-8 JSON.
func EncodeInline(p Payload) (string, error) {
	data, err := marshal(p)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(data), nil
}

var inlineEncodings = []*base64.Encoding{
	base64.StdEncoding,
	base64.RawStdEncoding,
	base64.URLEncoding,
	base64.RawURLEncoding,
}

// DecodeInline reverses EncodeInline. Both the standard and URL-safe alphabets are accepted,
// with or without padding.
func DecodeInline(encoded string) (RawPayload, error) {
	// a "+" that went through form decoding comes back as a space
	encoded = strings.ReplaceAll(strings.TrimSpace(encoded), " ", "+")
	if encoded == "" {
		return RawPayload{}, deck.NewValidationError(deck.KindInvalidFormat, msgInvalidPayload)
	}

	var data []byte
	var err error
	for _, encoding := range inlineEncodings {
		if data, err = encoding.DecodeString(encoded); err == nil {
			break
		}
	}
	if err != nil || !utf8.Valid(data) {
		return RawPayload{}, deck.NewValidationError(deck.KindInvalidFormat, msgUnreadable)
	}
	return ParsePayload(data)
}
