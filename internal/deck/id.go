package deck

import (
	"encoding/hex"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"

	"github.com/at-ishikawa/pobcards/internal/clock"
)

// IDGenerator creates deck identifiers.
type IDGenerator interface {
	NewID() string
}

// UUIDGenerator creates random UUIDs and falls back to a timestamped id
// when the random source fails.
type UUIDGenerator struct {
	fallback FallbackGenerator
}

func NewUUIDGenerator(c clock.Clock) UUIDGenerator {
	return UUIDGenerator{fallback: FallbackGenerator{Clock: c}}
}

func (g UUIDGenerator) NewID() string {
	id, err := uuid.NewRandom()
	if err != nil {
		return g.fallback.NewID()
	}
	return id.String()
}

// FallbackGenerator creates ids shaped safmeds_<unix millis>_<hex>.
type FallbackGenerator struct {
	Clock clock.Clock
}

func (g FallbackGenerator) NewID() string {
	return fallbackID(g.Clock.Now())
}

func fallbackID(now time.Time) string {
	suffix := make([]byte, 5)
	for i := range suffix {
		suffix[i] = byte(rand.IntN(256))
	}
	return fmt.Sprintf("safmeds_%d_%s", now.UnixMilli(), hex.EncodeToString(suffix))
}
