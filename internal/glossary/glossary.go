// Package glossary parses user terminology lists and optionally hard-enforces
// them on translated text. The primary mechanism for glossary compliance is
// including the terms in the translation instructions; Enforce is a
// best-effort cleanup pass on the backend's output.
package glossary

import (
	"fmt"
	"os"
	"regexp"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"doc-translator/internal/logger"
	"doc-translator/internal/types"
)

// separators accepted between source and target term, checked in order so
// "=>" is never mis-split on its "=".
var separators = []string{"=>", "->", "="}

// Entry is one glossary pair.
type Entry struct {
	Source string
	Target string
}

type entry struct {
	source string
	target string
	re     *regexp.Regexp
}

// Glossary holds parsed term pairs ordered longest source first, so that
// "alça de ombro" is applied before "alça" and shorter keys cannot shadow
// longer ones.
type Glossary struct {
	entries []*entry
}

// Parse reads glossary pairs from raw text, one per line:
//
//	couro=leather
//	forro => lining
//	alça -> strap
//
// Blank lines and lines starting with "#" are ignored. Lines without a
// separator are skipped. Duplicate source terms keep their first position
// and take the last target.
func Parse(raw string) *Glossary {
	var ordered []*entry
	index := make(map[string]*entry)

	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		var source, target string
		for _, sep := range separators {
			if i := strings.Index(line, sep); i >= 0 {
				source = strings.TrimSpace(line[:i])
				target = strings.TrimSpace(line[i+len(sep):])
				break
			}
		}
		if source == "" || target == "" {
			continue
		}

		if e, ok := index[source]; ok {
			e.target = target
			continue
		}
		e := &entry{
			source: source,
			target: target,
			re:     regexp.MustCompile(`(?i)` + regexp.QuoteMeta(source)),
		}
		index[source] = e
		ordered = append(ordered, e)
	}

	sort.SliceStable(ordered, func(i, j int) bool {
		return utf8.RuneCountInString(ordered[i].source) > utf8.RuneCountInString(ordered[j].source)
	})

	return &Glossary{entries: ordered}
}

// Load reads and parses a glossary file.
func Load(path string) (*Glossary, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, types.NewAppErrorWithDetails(types.ErrFileNotFound,
			"cannot read glossary file", path, err)
	}
	g := Parse(string(raw))
	logger.Info("glossary loaded",
		logger.String("path", path),
		logger.Int("terms", g.Len()))
	return g, nil
}

// Len returns the number of term pairs.
func (g *Glossary) Len() int {
	if g == nil {
		return 0
	}
	return len(g.entries)
}

// Entries returns the pairs ordered longest source first.
func (g *Glossary) Entries() []Entry {
	if g == nil {
		return nil
	}
	out := make([]Entry, 0, len(g.entries))
	for _, e := range g.entries {
		out = append(out, Entry{Source: e.source, Target: e.target})
	}
	return out
}

// PromptLines renders the pairs for inclusion in translation instructions.
func (g *Glossary) PromptLines() []string {
	if g == nil {
		return nil
	}
	out := make([]string, 0, len(g.entries))
	for _, e := range g.entries {
		out = append(out, fmt.Sprintf("- %s => %s", e.source, e.target))
	}
	return out
}

// Enforce performs case-insensitive whole-word (whole-phrase for multi-word
// sources) replacement of every glossary source with its target, longest
// source first.
func (g *Glossary) Enforce(text string) string {
	if g == nil || len(g.entries) == 0 || text == "" {
		return text
	}
	out := text
	for _, e := range g.entries {
		out = e.replaceAll(out)
	}
	return out
}

func (e *entry) replaceAll(text string) string {
	matches := e.re.FindAllStringIndex(text, -1)
	if len(matches) == 0 {
		return text
	}
	// Splice right to left so earlier offsets stay valid. Boundary runes are
	// checked against this pass's input, which the splices never touch left
	// of the current match.
	out := text
	for i := len(matches) - 1; i >= 0; i-- {
		start, end := matches[i][0], matches[i][1]
		if !wholeMatch(text, start, end) {
			continue
		}
		out = out[:start] + e.target + out[end:]
	}
	return out
}

// wholeMatch reports whether the span [start,end) sits on word boundaries:
// no word rune directly adjoins a word rune at either edge of the match.
func wholeMatch(s string, start, end int) bool {
	if start > 0 {
		prev, _ := utf8.DecodeLastRuneInString(s[:start])
		first, _ := utf8.DecodeRuneInString(s[start:])
		if isWordRune(prev) && isWordRune(first) {
			return false
		}
	}
	if end < len(s) {
		last, _ := utf8.DecodeLastRuneInString(s[:end])
		next, _ := utf8.DecodeRuneInString(s[end:])
		if isWordRune(last) && isWordRune(next) {
			return false
		}
	}
	return true
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_'
}
