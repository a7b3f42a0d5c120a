// Package pdf translates PDF documents in place: positioned text lines are
// extracted with ledongthuc/pdf, translated, and stamped back over their
// original spots with pdfcpu (background cover first, translated text second).
package pdf

import (
	"doc-translator/internal/geom"
)

// TextBlock is one extracted line of text with its position on the page.
// Rect is in PDF user space (origin bottom-left, points). BulletPrefix holds
// a leading bullet marker stripped from Text; the rewrite step puts it back.
type TextBlock struct {
	ID           string    `json:"id"`
	Page         int       `json:"page"`
	Text         string    `json:"text"`
	BulletPrefix string    `json:"bullet_prefix,omitempty"`
	Rect         geom.Rect `json:"rect"`
	FontSize     float64   `json:"font_size"`
	Bold         bool      `json:"bold"`
	Italic       bool      `json:"italic"`
}

// Document is a parsed PDF ready for rewrite. The original bytes are kept so
// an untranslatable document can be returned unchanged.
type Document struct {
	data     []byte
	blocks   []TextBlock
	pages    int
	renderer *Renderer
}

// Pages returns the page count.
func (d *Document) Pages() int { return d.pages }

// Blocks returns the extracted text blocks in reading order.
func (d *Document) Blocks() []TextBlock { return d.blocks }
