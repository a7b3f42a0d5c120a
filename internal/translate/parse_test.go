package translate

import (
	"errors"
	"testing"

	"doc-translator/internal/types"
)

func TestParseBatchResponseBareArray(t *testing.T) {
	raw := `[{"id":"p1_b0","translated":"Genuine leather"},{"id":"p1_b1","translated":"Adjustable strap"}]`

	got, err := parseBatchResponse(raw)
	if err != nil {
		t.Fatalf("parseBatchResponse() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("parseBatchResponse() returned %d rows, want 2", len(got))
	}
	if got["p1_b0"] != "Genuine leather" {
		t.Errorf("got[p1_b0] = %q, want %q", got["p1_b0"], "Genuine leather")
	}
	if got["p1_b1"] != "Adjustable strap" {
		t.Errorf("got[p1_b1] = %q, want %q", got["p1_b1"], "Adjustable strap")
	}
}

func TestParseBatchResponseWrappedObject(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{
			name: "translations key",
			raw:  `{"translations":[{"id":"a","translated":"one"}]}`,
		},
		{
			name: "results key",
			raw:  `{"results":[{"id":"a","translated":"one"}]}`,
		},
		{
			name: "data key",
			raw:  `{"data":[{"id":"a","translated":"one"}]}`,
		},
		{
			name: "items key",
			raw:  `{"items":[{"id":"a","translated":"one"}]}`,
		},
		{
			name: "unknown wrapper key",
			raw:  `{"output":[{"id":"a","translated":"one"}]}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseBatchResponse(tt.raw)
			if err != nil {
				t.Fatalf("parseBatchResponse() error = %v", err)
			}
			if got["a"] != "one" {
				t.Errorf("got[a] = %q, want %q", got["a"], "one")
			}
		})
	}
}

func TestParseBatchResponseCodeFences(t *testing.T) {
	raw := "```json\n{\"translations\":[{\"id\":\"x\",\"translated\":\"fenced\"}]}\n```"

	got, err := parseBatchResponse(raw)
	if err != nil {
		t.Fatalf("parseBatchResponse() error = %v", err)
	}
	if got["x"] != "fenced" {
		t.Errorf("got[x] = %q, want %q", got["x"], "fenced")
	}
}

func TestParseBatchResponseProseAroundJSON(t *testing.T) {
	raw := `Here are the translations you asked for:

{"translations":[{"id":"x","translated":"ignored prose"}]}

Let me know if you need anything else.`

	got, err := parseBatchResponse(raw)
	if err != nil {
		t.Fatalf("parseBatchResponse() error = %v", err)
	}
	if got["x"] != "ignored prose" {
		t.Errorf("got[x] = %q, want %q", got["x"], "ignored prose")
	}
}

func TestParseBatchResponseInvalidEscapes(t *testing.T) {
	// A literal "\(" coming back from PDF text is not a valid JSON escape;
	// the parser repairs it instead of rejecting the response.
	raw := `{"translations":[{"id":"x","translated":"angle \(45 degrees\)"}]}`

	got, err := parseBatchResponse(raw)
	if err != nil {
		t.Fatalf("parseBatchResponse() error = %v", err)
	}
	if got["x"] != `angle \(45 degrees\)` {
		t.Errorf("got[x] = %q, want %q", got["x"], `angle \(45 degrees\)`)
	}
}

func TestParseBatchResponseEmptyTranslationOmitted(t *testing.T) {
	raw := `{"translations":[{"id":"a","translated":"kept"},{"id":"b","translated":""}]}`

	got, err := parseBatchResponse(raw)
	if err != nil {
		t.Fatalf("parseBatchResponse() error = %v", err)
	}
	if _, ok := got["b"]; ok {
		t.Errorf("empty translation for %q should be omitted", "b")
	}
	if got["a"] != "kept" {
		t.Errorf("got[a] = %q, want %q", got["a"], "kept")
	}
}

func TestParseBatchResponseMissingID(t *testing.T) {
	raw := `{"translations":[{"id":"a","translated":"one"},{"translated":"orphan"}]}`

	_, err := parseBatchResponse(raw)
	if err == nil {
		t.Fatal("parseBatchResponse() expected error for row without id")
	}
	var appErr *types.AppError
	if !errors.As(err, &appErr) || appErr.Code != types.ErrBadResponse {
		t.Errorf("error = %v, want AppError with code %s", err, types.ErrBadResponse)
	}
}

func TestParseBatchResponseGarbage(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{name: "empty", raw: ""},
		{name: "prose only", raw: "I cannot translate that."},
		{name: "wrong shape", raw: `{"translations":"not an array"}`},
		{name: "empty array", raw: `{"translations":[]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := parseBatchResponse(tt.raw); err == nil {
				t.Errorf("parseBatchResponse(%q) expected error", tt.raw)
			}
		})
	}
}

func TestFixInvalidEscapes(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "valid escapes untouched",
			input:    `line\nbreak \"quoted\" \\slash é`,
			expected: `line\nbreak \"quoted\" \\slash é`,
		},
		{
			name:     "invalid paren escape doubled",
			input:    `angle \(45\)`,
			expected: `angle \\(45\\)`,
		},
		{
			name:     "invalid letter escape doubled",
			input:    `bad \x escape`,
			expected: `bad \\x escape`,
		},
		{
			name:     "trailing backslash kept",
			input:    `ends with \`,
			expected: `ends with \`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := fixInvalidEscapes(tt.input); got != tt.expected {
				t.Errorf("fixInvalidEscapes(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestCleanJSONResponse(t *testing.T) {
	raw := "```json\n[1]\n```"
	if got := cleanJSONResponse(raw); got != "[1]" {
		t.Errorf("cleanJSONResponse(%q) = %q, want %q", raw, got, "[1]")
	}
}

func TestTruncateString(t *testing.T) {
	if got := truncateString("short", 10); got != "short" {
		t.Errorf("truncateString() = %q, want %q", got, "short")
	}
	if got := truncateString("abcdefghij", 4); got != "abcd..." {
		t.Errorf("truncateString() = %q, want %q", got, "abcd...")
	}
}
