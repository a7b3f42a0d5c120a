package pdf

import (
	"bytes"
	"fmt"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	ledongthuc "github.com/ledongthuc/pdf"

	"doc-translator/internal/geom"
	"doc-translator/internal/logger"
	"doc-translator/internal/types"
)

const (
	// defaultFontSize stands in when the extractor reports no size.
	defaultFontSize = 10.0
	// lineYTolerance groups blocks whose baselines differ by less than this
	// into the same visual line when sorting.
	lineYTolerance = 5.0
)

// Parse extracts positioned text blocks from a PDF. The underlying reader
// panics on some malformed files; that surfaces as a document error instead
// of taking the process down.
func Parse(data []byte) (doc *Document, err error) {
	defer func() {
		if r := recover(); r != nil {
			doc = nil
			err = types.NewAppErrorWithDetails(types.ErrDocument,
				"cannot parse PDF", fmt.Sprint(r), nil)
		}
	}()

	reader, err := ledongthuc.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, types.NewAppError(types.ErrDocument, "cannot open PDF", err)
	}

	d := &Document{
		data:     data,
		pages:    reader.NumPage(),
		renderer: NewRenderer(),
	}

	for pageNum := 1; pageNum <= d.pages; pageNum++ {
		page := reader.Page(pageNum)
		if page.V.IsNull() {
			continue
		}
		if page.V.Key("Contents").Kind() == ledongthuc.Null {
			continue
		}

		rows, err := page.GetTextByRow()
		if err != nil {
			logger.Warn("cannot read text rows from page",
				logger.Int("page", pageNum),
				logger.Err(err))
			continue
		}

		for _, row := range rows {
			for _, seg := range splitRowSegments(row.Content) {
				if block, ok := buildBlock(pageNum, seg); ok {
					d.blocks = append(d.blocks, block)
				}
			}
		}
	}

	sortBlocks(d.blocks)

	// Ids carry the page and the block's position on it, assigned after
	// sorting so they follow reading order.
	perPage := make(map[int]int, d.pages)
	for i := range d.blocks {
		p := d.blocks[i].Page
		d.blocks[i].ID = fmt.Sprintf("p%d_b%d", p, perPage[p])
		perPage[p]++
	}

	logger.Debug("PDF parsed",
		logger.Int("pages", d.pages),
		logger.Int("blocks", len(d.blocks)))

	return d, nil
}

// HasText reports whether the PDF has any extractable text at all. A false
// result usually means a scanned document.
func HasText(data []byte) (found bool) {
	defer func() {
		if recover() != nil {
			found = false
		}
	}()

	reader, err := ledongthuc.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return false
	}

	for pageNum := 1; pageNum <= reader.NumPage(); pageNum++ {
		page := reader.Page(pageNum)
		if page.V.IsNull() {
			continue
		}
		content, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		for _, r := range content {
			if !unicode.IsSpace(r) {
				return true
			}
		}
	}
	return false
}

// Items returns the translatable units keyed by block id.
func (d *Document) Items() []types.TranslationItem {
	items := make([]types.TranslationItem, 0, len(d.blocks))
	for _, b := range d.blocks {
		items = append(items, types.TranslationItem{ID: b.ID, Text: b.Text})
	}
	return items
}

// splitRowSegments splits a row's text pieces at large horizontal gaps so
// side-by-side columns on the same baseline become separate blocks.
func splitRowSegments(content []ledongthuc.Text) [][]ledongthuc.Text {
	var segments [][]ledongthuc.Text
	var cur []ledongthuc.Text

	for _, t := range content {
		if t.S == "" {
			continue
		}
		if len(cur) > 0 {
			prev := cur[len(cur)-1]
			fs := prev.FontSize
			if fs <= 0 {
				fs = defaultFontSize
			}
			if t.X-pieceRight(prev) > 3*fs {
				segments = append(segments, cur)
				cur = nil
			}
		}
		cur = append(cur, t)
	}
	if len(cur) > 0 {
		segments = append(segments, cur)
	}
	return segments
}

// pieceRight returns the right edge of one text piece, estimating from the
// glyph count when the extractor reports no width.
func pieceRight(t ledongthuc.Text) float64 {
	if t.W > 0 {
		return t.X + t.W
	}
	fs := t.FontSize
	if fs <= 0 {
		fs = defaultFontSize
	}
	return t.X + estimateTextWidth(t.S, fs)
}

// buildBlock merges one row segment into a TextBlock. Returns false for
// segments with nothing translatable: empty text, bullet-only markers, or
// content-stream garbage the extractor sometimes leaks.
func buildBlock(pageNum int, seg []ledongthuc.Text) (TextBlock, bool) {
	var sb strings.Builder
	var minX, right, baseline float64
	var maxSize float64
	var bold, italic bool
	first := true

	for _, t := range seg {
		sb.WriteString(t.S)

		if first {
			minX = t.X
			baseline = t.Y
			first = false
		} else if t.X < minX {
			minX = t.X
		}
		if r := pieceRight(t); r > right {
			right = r
		}
		if t.FontSize > maxSize {
			maxSize = t.FontSize
		}

		fontLower := strings.ToLower(t.Font)
		if strings.Contains(fontLower, "bold") {
			bold = true
		}
		if strings.Contains(fontLower, "italic") || strings.Contains(fontLower, "oblique") {
			italic = true
		}
	}

	text := strings.TrimSpace(sb.String())
	if text == "" || isBulletOnly(text) {
		return TextBlock{}, false
	}
	if isPostScriptCode(text) || hasExcessiveNonPrintable(text) {
		return TextBlock{}, false
	}

	if maxSize <= 0 {
		maxSize = defaultFontSize
	}
	if right <= minX {
		right = minX + estimateTextWidth(text, maxSize)
	}

	prefix, rest := splitBulletPrefix(text)

	// The rect spans from just under the baseline to above the ascenders,
	// wide enough for the whole line.
	y1 := baseline - 0.25*maxSize
	return TextBlock{
		Page:         pageNum,
		Text:         rest,
		BulletPrefix: prefix,
		Rect:         geom.NewRect(minX, y1, right, y1+1.2*maxSize),
		FontSize:     maxSize,
		Bold:         bold,
		Italic:       italic,
	}, true
}

// sortBlocks orders blocks by page, then top-to-bottom (PDF y grows upward),
// then left-to-right within a line.
func sortBlocks(blocks []TextBlock) {
	sort.Slice(blocks, func(i, j int) bool {
		if blocks[i].Page != blocks[j].Page {
			return blocks[i].Page < blocks[j].Page
		}
		yi, yj := blocks[i].Rect.Y1, blocks[j].Rect.Y1
		if diff := yi - yj; diff < lineYTolerance && diff > -lineYTolerance {
			return blocks[i].Rect.X1 < blocks[j].Rect.X1
		}
		return yi > yj
	})
}

var bulletRunes = map[rune]bool{
	'•': true, '●': true, '◦': true, '▪': true, '▫': true,
	'○': true, '■': true, '□': true, '‣': true, '·': true,
	'-': true, '–': true, '—': true, '*': true,
}

func isBulletRune(r rune) bool { return bulletRunes[r] }

// isBulletOnly reports whether text is nothing but bullet markers and
// whitespace. Such lines are decoration and stay untouched.
func isBulletOnly(text string) bool {
	for _, r := range text {
		if !isBulletRune(r) && !unicode.IsSpace(r) {
			return false
		}
	}
	return len(text) > 0
}

// splitBulletPrefix splits a leading bullet marker (plus its spacing) off
// the translatable text. Text without a marker passes through whole.
func splitBulletPrefix(text string) (prefix, rest string) {
	i := 0
	sawBullet := false
	for i < len(text) {
		r, size := utf8.DecodeRuneInString(text[i:])
		if isBulletRune(r) {
			sawBullet = true
			i += size
			continue
		}
		if unicode.IsSpace(r) && sawBullet {
			i += size
			continue
		}
		break
	}
	if !sawBullet || i == 0 || i >= len(text) {
		return "", text
	}
	return text[:i], text[i:]
}

// isPostScriptCode spots content-stream operator text the row extractor
// occasionally returns instead of page text.
func isPostScriptCode(text string) bool {
	if text == "" {
		return false
	}
	textLower := strings.ToLower(text)

	if (strings.Contains(text, " def ") || strings.HasSuffix(text, " def")) &&
		strings.Contains(text, "/") {
		return true
	}
	if strings.Contains(textLower, "null def") {
		return true
	}

	for _, op := range []string{
		"currentpoint", "gsave", "grestore", "newpath", "closepath",
		"setrgbcolor", "setgray", "setlinewidth", "showpage",
		"moveto", "lineto", "curveto",
	} {
		if strings.Contains(textLower, op) {
			return true
		}
	}

	// Several /Name tokens in a row smell like operator code, unless the
	// slashes belong to a URL.
	if !strings.Contains(text, "://") {
		slashNames := 0
		for _, word := range strings.Fields(text) {
			if len(word) > 1 && word[0] == '/' && isNameToken(word[1:]) {
				slashNames++
			}
		}
		if slashNames >= 3 {
			return true
		}
	}
	return false
}

func isNameToken(s string) bool {
	for _, c := range s {
		if !unicode.IsLetter(c) && !unicode.IsDigit(c) && c != '_' && c != '@' {
			return false
		}
	}
	return s != ""
}

// hasExcessiveNonPrintable reports whether more than 10% of the text is
// control characters, another marker for extraction garbage.
func hasExcessiveNonPrintable(text string) bool {
	if text == "" {
		return false
	}
	bad := 0
	total := 0
	for _, r := range text {
		total++
		if r < 32 && r != '\n' && r != '\r' && r != '\t' {
			bad++
		} else if r >= 0x7F && r <= 0x9F {
			bad++
		}
	}
	return float64(bad)/float64(total) > 0.1
}
