package pipeline

import (
	"context"

	"doc-translator/internal/pdf"
	"doc-translator/internal/pptx"
	"doc-translator/internal/types"
	"doc-translator/internal/xlsm"
)

// document is the shape every format adapter presents to the pipeline:
// extract items, rewrite bytes once translations are in, and explain an
// empty extraction.
type document interface {
	Items() []types.TranslationItem
	Rewrite(ctx context.Context, translations map[string]string) ([]byte, error)
	EmptyReason() string
	Close() error
}

type pdfDoc struct {
	doc     *pdf.Document
	scanned bool
}

// openPDF parses a PDF, or flags it as scanned when no text is extractable
// anywhere so the caller can pass the original through with a warning.
func (r *Runner) openPDF(data []byte) (document, error) {
	if !pdf.HasText(data) {
		return &pdfDoc{scanned: true}, nil
	}
	d, err := pdf.Parse(data)
	if err != nil {
		return nil, err
	}
	return &pdfDoc{doc: d}, nil
}

func (p *pdfDoc) Items() []types.TranslationItem {
	if p.scanned {
		return nil
	}
	return p.doc.Items()
}

func (p *pdfDoc) Rewrite(ctx context.Context, translations map[string]string) ([]byte, error) {
	return p.doc.Rewrite(ctx, translations)
}

func (p *pdfDoc) EmptyReason() string {
	if p.scanned {
		return "no extractable text, likely a scanned document"
	}
	return "no translatable text found"
}

func (p *pdfDoc) Close() error { return nil }

type pptxDoc struct {
	doc *pptx.Document
}

func openPPTX(data []byte) (document, error) {
	d, err := pptx.Parse(data)
	if err != nil {
		return nil, err
	}
	return &pptxDoc{doc: d}, nil
}

func (p *pptxDoc) Items() []types.TranslationItem { return p.doc.Items() }

func (p *pptxDoc) Rewrite(_ context.Context, translations map[string]string) ([]byte, error) {
	return p.doc.Rewrite(translations)
}

func (p *pptxDoc) EmptyReason() string { return "no translatable text found" }

func (p *pptxDoc) Close() error { return nil }

type workbookDoc struct {
	wb *xlsm.Workbook
}

func (r *Runner) openWorkbook(data []byte) (document, error) {
	wb, err := xlsm.Open(data)
	if err != nil {
		return nil, err
	}
	wb.Override = r.opts.XLSMOverride
	return &workbookDoc{wb: wb}, nil
}

func (w *workbookDoc) Items() []types.TranslationItem { return w.wb.Items() }

func (w *workbookDoc) Rewrite(_ context.Context, translations map[string]string) ([]byte, error) {
	return w.wb.Rewrite(translations)
}

func (w *workbookDoc) EmptyReason() string {
	if w.wb.Sheets() == 0 {
		return "no sheet declares a print area"
	}
	return "no translatable text found"
}

func (w *workbookDoc) Close() error { return w.wb.Close() }
