// Package pptx translates PowerPoint decks in place. Slides are scanned as
// zip + XML with byte offsets kept for every text run, so the rewrite can
// splice translations into the slide XML while every other part of the
// archive passes through byte-identical.
package pptx

import (
	"archive/zip"

	"doc-translator/internal/types"
)

// runSpan is the byte range of one run's <a:t> element inside its slide XML,
// plus the decoded text it held.
type runSpan struct {
	start int64
	end   int64
	text  string
}

// paragraph is one translatable unit: a shape or table-cell paragraph with
// the runs that carry its text.
type paragraph struct {
	id   string
	text string
	runs []runSpan
}

// slidePart is one parsed ppt/slides/slideN.xml part.
type slidePart struct {
	name  string
	data  []byte
	paras []paragraph
}

// Document is a parsed deck ready for rewrite.
type Document struct {
	data   []byte
	zr     *zip.Reader
	slides []slidePart
}

// Slides returns the number of slides in the deck.
func (d *Document) Slides() int { return len(d.slides) }

// Items returns the translatable paragraphs in slide order.
func (d *Document) Items() []types.TranslationItem {
	var items []types.TranslationItem
	for _, s := range d.slides {
		for _, p := range s.paras {
			items = append(items, types.TranslationItem{ID: p.id, Text: p.text})
		}
	}
	return items
}
