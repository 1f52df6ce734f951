// Package shuffle produces random orderings of cards and terms.
package shuffle

import "github.com/samber/lo"

// Func returns a permutation of the given items without modifying them.
type Func[T any] func(items []T) []T

// Shuffle returns a uniformly random permutation of items.
// The input slice is never mutated; nil or empty input yields an empty slice.
func Shuffle[T any](items []T) []T {
	out := make([]T, len(items))
	copy(out, items)
	return lo.Shuffle(out)
}

// Identity returns a copy of items in their original order.
func Identity[T any](items []T) []T {
	out := make([]T, len(items))
	copy(out, items)
	return out
}
