// Package batch groups translation items into request-sized batches for the
// translation backend, which enforces both item-count and payload-size
// limits per request.
package batch

import (
	"unicode/utf8"

	"doc-translator/internal/types"
)

// Default bounds, sized for one backend request.
const (
	DefaultMaxItems = 60
	DefaultMaxChars = 18000
)

// Chunk greedily groups items into batches holding at most maxItems items
// and maxChars cumulative text runes. An empty batch always accepts one
// item, so a single oversized item still travels alone instead of starving.
// Input order is preserved. Non-positive bounds fall back to the defaults.
func Chunk(items []types.TranslationItem, maxItems, maxChars int) [][]types.TranslationItem {
	if maxItems <= 0 {
		maxItems = DefaultMaxItems
	}
	if maxChars <= 0 {
		maxChars = DefaultMaxChars
	}

	var batches [][]types.TranslationItem
	var cur []types.TranslationItem
	curChars := 0

	for _, it := range items {
		tlen := utf8.RuneCountInString(it.Text)
		if len(cur) > 0 && (len(cur) >= maxItems || curChars+tlen > maxChars) {
			batches = append(batches, cur)
			cur = nil
			curChars = 0
		}
		cur = append(cur, it)
		curChars += tlen
	}
	if len(cur) > 0 {
		batches = append(batches, cur)
	}
	return batches
}
