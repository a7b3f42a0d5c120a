// Package protect shields non-translatable substrings behind placeholder
// tokens before translation and restores them verbatim afterward.
package protect

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"
)

// minSpanRunes is the shortest span worth protecting. Shorter matches stay
// translatable so fragments like "5%" or "12" are not shielded.
const minSpanRunes = 3

// Patterns for substrings that almost never want translation in business
// documents: product codes and SKUs, dimensions ("10 cm", "5 x 10 cm"),
// currency amounts, percentages, emails, URLs, and bare numbers. Ordered
// highest priority first; when two patterns claim the exact same span the
// earlier entry wins.
var defaultPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\bhttps?://\S+`),
	regexp.MustCompile(`(?i)\b[A-Z0-9._%+-]+@[A-Z0-9.-]+\.[A-Z]{2,}\b`),
	regexp.MustCompile(`(?:R\$|\$|€)\s?\d+(?:[.,]\d+)*`),
	regexp.MustCompile(`\b\d+(?:[.,]\d+)?\s?%`),
	regexp.MustCompile(`(?i)\b\d+(?:[.,]\d+)?\s?[x×]\s?\d+(?:[.,]\d+)?(?:\s?(?:mm|cm|m|in|inch))?\b`),
	regexp.MustCompile(`(?i)\b\d+(?:[.,]\d+)?\s?(?:mm|cm|m|in|inch|kg|g)\b`),
	regexp.MustCompile(`\b[A-Z]\d{4,}(?:\s?\d{2,}){0,6}\b`),
	regexp.MustCompile(`\b[A-Z0-9]{6,}\b`),
	regexp.MustCompile(`\b\d+(?:[.,]\d+)?\b`),
}

// span marks a half-open byte range of text claimed by one pattern.
type span struct {
	start, end int
	prio       int
}

// Codec replaces protected spans with sequential <KEEP_n> placeholders and
// maps each placeholder back to its original substring.
type Codec struct {
	minLen   int
	patterns []*regexp.Regexp
}

// NewCodec returns a codec with the default pattern set.
func NewCodec() *Codec {
	return &Codec{
		minLen:   minSpanRunes,
		patterns: defaultPatterns,
	}
}

// Protect replaces every protected span in text with a placeholder and
// returns the rewritten text plus the placeholder-to-original map needed by
// Restore. Empty input yields an empty string and an empty (non-nil) map.
func (c *Codec) Protect(text string) (string, map[string]string) {
	restore := make(map[string]string)
	if text == "" {
		return "", restore
	}

	var spans []span
	for prio, re := range c.patterns {
		for _, m := range re.FindAllStringIndex(text, -1) {
			if utf8.RuneCountInString(text[m[0]:m[1]]) < c.minLen {
				continue
			}
			spans = append(spans, span{start: m[0], end: m[1], prio: prio})
		}
	}
	if len(spans) == 0 {
		return text, restore
	}

	// The longest match at the earliest start wins; pattern priority breaks
	// exact-span ties. Anything overlapping a claimed span is discarded.
	sort.Slice(spans, func(i, j int) bool {
		if spans[i].start != spans[j].start {
			return spans[i].start < spans[j].start
		}
		if spans[i].end != spans[j].end {
			return spans[i].end > spans[j].end
		}
		return spans[i].prio < spans[j].prio
	})

	var kept []span
	lastEnd := -1
	for _, s := range spans {
		if s.start < lastEnd {
			continue
		}
		kept = append(kept, s)
		lastEnd = s.end
	}

	// Replace right to left so earlier byte offsets stay valid.
	out := text
	for i := len(kept) - 1; i >= 0; i-- {
		s := kept[i]
		ph := fmt.Sprintf("<KEEP_%d>", i)
		restore[ph] = text[s.start:s.end]
		out = out[:s.start] + ph + out[s.end:]
	}
	return out, restore
}

// Restore substitutes the original substrings back into text. The map must
// be the one produced by Protect for that same item.
func (c *Codec) Restore(text string, restore map[string]string) string {
	if len(restore) == 0 {
		return text
	}
	out := text
	for ph, original := range restore {
		out = strings.ReplaceAll(out, ph, original)
	}
	return out
}

// MissingPlaceholders reports which placeholders from restore no longer
// appear in text, sorted. A non-empty result usually means the translation
// backend rewrote or dropped a placeholder.
func MissingPlaceholders(text string, restore map[string]string) []string {
	var missing []string
	for ph := range restore {
		if !strings.Contains(text, ph) {
			missing = append(missing, ph)
		}
	}
	sort.Strings(missing)
	return missing
}
