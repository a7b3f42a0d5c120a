package translate

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"

	"doc-translator/internal/glossary"
	"doc-translator/internal/types"
)

// languageName turns a BCP 47 tag like "pt-BR" into a readable English name
// for the instructions. Unparseable tags pass through unchanged.
func languageName(tag string) string {
	t, err := language.Parse(tag)
	if err != nil {
		return tag
	}
	if name := display.English.Tags().Name(t); name != "" {
		return name
	}
	return tag
}

// buildSystemPrompt assembles the translator role, the hard rules, the
// glossary preference list, and any free-form extra instructions.
func buildSystemPrompt(sourceLang, targetLang string, gl *glossary.Glossary, extra string) string {
	source := languageName(sourceLang)
	target := languageName(targetLang)

	var sb strings.Builder
	sb.WriteString("You are a professional technical translator for product development and business documents.\n")
	fmt.Fprintf(&sb, "Translate from %s to %s.\n", source, target)
	sb.WriteString("Rules:\n")
	sb.WriteString("- Keep all placeholders like <KEEP_0> exactly unchanged.\n")
	sb.WriteString("- Do NOT change numbers, units, dimensions, percentages, SKUs, barcodes, or codes.\n")
	sb.WriteString("- Preserve line breaks and bullet structure.\n")
	sb.WriteString("- Keep brand names as-is.\n")
	fmt.Fprintf(&sb, "- Use clear, factory-friendly %s.\n", target)
	sb.WriteString("- If a source term is ambiguous, choose the most common manufacturing meaning.\n")
	sb.WriteString(`- Return ONLY a JSON object {"translations":[{"id":"...","translated":"..."}]} with one entry per input item, ids copied exactly, and no commentary or markdown.` + "\n")

	if gl.Len() > 0 {
		sb.WriteString("\nGlossary (must be respected as preferred translations):\n")
		for _, line := range gl.PromptLines() {
			sb.WriteString(line)
			sb.WriteString("\n")
		}
	}

	if extra = strings.TrimSpace(extra); extra != "" {
		sb.WriteString("\nAdditional instructions:\n")
		sb.WriteString(extra)
		sb.WriteString("\n")
	}

	return sb.String()
}

type payloadItem struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

type batchPayload struct {
	SourceLanguage string        `json:"source_language"`
	TargetLanguage string        `json:"target_language"`
	Items          []payloadItem `json:"items"`
}

// buildUserPayload renders the batch as JSON. HTML escaping is off so the
// <KEEP_n> placeholders reach the model literally instead of as <
// sequences.
func buildUserPayload(sourceLang, targetLang string, items []types.TranslationItem) (string, error) {
	payload := batchPayload{
		SourceLanguage: sourceLang,
		TargetLanguage: targetLang,
		Items:          make([]payloadItem, 0, len(items)),
	}
	for _, it := range items {
		payload.Items = append(payload.Items, payloadItem{ID: it.ID, Text: it.Text})
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(payload); err != nil {
		return "", err
	}

	var sb strings.Builder
	sb.WriteString("Input JSON:\n")
	sb.Write(bytes.TrimRight(buf.Bytes(), "\n"))
	sb.WriteString("\n\nOutput the translations JSON object only:")
	return sb.String(), nil
}
