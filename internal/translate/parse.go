package translate

import (
	"encoding/json"
	"regexp"
	"strings"

	"doc-translator/internal/types"
)

// batchResult is one row of the backend's structured response.
type batchResult struct {
	ID         string `json:"id"`
	Translated string `json:"translated"`
}

var jsonFenceRe = regexp.MustCompile("```(?:json)?\\s*")

// cleanJSONResponse strips markdown code fences the model sometimes wraps
// around its JSON output.
func cleanJSONResponse(s string) string {
	s = strings.TrimSpace(s)
	s = jsonFenceRe.ReplaceAllString(s, "")
	s = strings.ReplaceAll(s, "```", "")
	return strings.TrimSpace(s)
}

// fixInvalidEscapes doubles the backslash of escape sequences that are not
// valid JSON, such as a literal "\(" coming back from PDF text, so the
// decoder does not reject the whole response.
func fixInvalidEscapes(s string) string {
	var result strings.Builder
	result.Grow(len(s))

	i := 0
	for i < len(s) {
		if i < len(s)-1 && s[i] == '\\' {
			next := s[i+1]
			switch next {
			case '"', '\\', '/', 'b', 'f', 'n', 'r', 't', 'u':
				result.WriteByte(s[i])
				result.WriteByte(next)
			default:
				result.WriteString(`\\`)
				result.WriteByte(next)
			}
			i += 2
			continue
		}
		result.WriteByte(s[i])
		i++
	}
	return result.String()
}

// parseBatchResponse extracts id-keyed translations from raw backend output.
// It accepts a bare array of {id, translated} rows or an object wrapping one
// under a known key. Rows without an id make the whole response invalid, so
// malformed output fails loudly instead of silently dropping items. Rows
// with an empty translation are omitted from the map; the caller falls back
// to the original text for those ids.
func parseBatchResponse(text string) (map[string]string, error) {
	cleaned := cleanJSONResponse(text)
	rows, err := extractResultRows(cleaned)
	if err != nil {
		return nil, types.NewAppErrorWithDetails(types.ErrBadResponse,
			"cannot parse translation response", truncateString(cleaned, 200), err)
	}

	out := make(map[string]string, len(rows))
	for _, r := range rows {
		if r.Translated == "" {
			continue
		}
		out[r.ID] = r.Translated
	}
	return out, nil
}

// extractResultRows scans for the first JSON value in text that decodes to a
// valid result set, tolerating prose before or after it.
func extractResultRows(text string) ([]batchResult, error) {
	text = fixInvalidEscapes(text)

	for i := 0; i < len(text); i++ {
		if text[i] != '[' && text[i] != '{' {
			continue
		}
		decoder := json.NewDecoder(strings.NewReader(text[i:]))
		var raw json.RawMessage
		if err := decoder.Decode(&raw); err != nil {
			continue
		}
		if rows, ok := tryExtractRows(raw); ok {
			return rows, nil
		}
	}
	return nil, types.NewAppError(types.ErrBadResponse,
		"no valid translation JSON found in response", nil)
}

// wrapperKeys are object fields the rows may hide under when the model wraps
// the array instead of returning it bare.
var wrapperKeys = []string{"translations", "results", "data", "items"}

func tryExtractRows(raw json.RawMessage) ([]batchResult, bool) {
	var rows []batchResult
	if err := json.Unmarshal(raw, &rows); err == nil && validRows(rows) {
		return rows, true
	}

	var wrapper map[string]json.RawMessage
	if err := json.Unmarshal(raw, &wrapper); err != nil {
		return nil, false
	}

	for _, key := range wrapperKeys {
		if fieldRaw, exists := wrapper[key]; exists {
			var fieldRows []batchResult
			if err := json.Unmarshal(fieldRaw, &fieldRows); err == nil && validRows(fieldRows) {
				return fieldRows, true
			}
		}
	}

	for _, fieldRaw := range wrapper {
		var fieldRows []batchResult
		if err := json.Unmarshal(fieldRaw, &fieldRows); err == nil && validRows(fieldRows) {
			return fieldRows, true
		}
	}

	return nil, false
}

// validRows requires a non-empty set where every row carries an id.
func validRows(rows []batchResult) bool {
	if len(rows) == 0 {
		return false
	}
	for _, r := range rows {
		if r.ID == "" {
			return false
		}
	}
	return true
}

func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
