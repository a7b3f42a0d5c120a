package pdf

import (
	"errors"
	"math"
	"testing"

	ledongthuc "github.com/ledongthuc/pdf"

	"doc-translator/internal/geom"
	"doc-translator/internal/types"
)

func floatEq(a, b float64) bool {
	return math.Abs(a-b) < 1e-6
}

// TestParseInvalidData tests that Parse rejects bytes that are not a PDF.
func TestParseInvalidData(t *testing.T) {
	_, err := Parse([]byte("this is not a PDF file"))
	if err == nil {
		t.Fatal("Parse() = nil error for invalid data, want error")
	}

	var appErr *types.AppError
	if !errors.As(err, &appErr) {
		t.Fatalf("Parse() error type = %T, want *types.AppError", err)
	}
	if appErr.Code != types.ErrDocument {
		t.Errorf("Parse() error code = %s, want %s", appErr.Code, types.ErrDocument)
	}
}

// TestHasTextInvalidData tests that HasText is false for non-PDF bytes.
func TestHasTextInvalidData(t *testing.T) {
	if HasText([]byte("not a PDF")) {
		t.Error("HasText() = true for invalid data, want false")
	}
	if HasText(nil) {
		t.Error("HasText() = true for empty data, want false")
	}
}

// TestDocumentItems tests the block-to-translation-item mapping.
func TestDocumentItems(t *testing.T) {
	doc := &Document{
		blocks: []TextBlock{
			{ID: "p1_b0", Text: "Couro legítimo"},
			{ID: "p1_b1", Text: "Alça de ombro ajustável"},
			{ID: "p2_b0", Text: "Forro em algodão"},
		},
	}

	items := doc.Items()
	if len(items) != 3 {
		t.Fatalf("Items() returned %d items, want 3", len(items))
	}
	for i, b := range doc.blocks {
		if items[i].ID != b.ID {
			t.Errorf("items[%d].ID = %q, want %q", i, items[i].ID, b.ID)
		}
		if items[i].Text != b.Text {
			t.Errorf("items[%d].Text = %q, want %q", i, items[i].Text, b.Text)
		}
	}
}

// TestSplitRowSegments tests column splitting at large horizontal gaps.
func TestSplitRowSegments(t *testing.T) {
	tests := []struct {
		name     string
		pieces   []ledongthuc.Text
		wantSegs int
	}{
		{
			name: "adjacent pieces stay in one segment",
			pieces: []ledongthuc.Text{
				{S: "Couro ", X: 10, Y: 700, W: 30, FontSize: 10},
				{S: "legítimo", X: 42, Y: 700, W: 40, FontSize: 10},
			},
			wantSegs: 1,
		},
		{
			name: "large gap splits side-by-side columns",
			pieces: []ledongthuc.Text{
				{S: "Material", X: 10, Y: 700, W: 40, FontSize: 10},
				{S: "Couro", X: 200, Y: 700, W: 30, FontSize: 10},
			},
			wantSegs: 2,
		},
		{
			name: "gap exactly at threshold stays together",
			pieces: []ledongthuc.Text{
				{S: "a", X: 10, Y: 700, W: 10, FontSize: 10},
				{S: "b", X: 50, Y: 700, W: 10, FontSize: 10},
			},
			wantSegs: 1,
		},
		{
			name: "empty pieces are dropped",
			pieces: []ledongthuc.Text{
				{S: "", X: 10, Y: 700, W: 5, FontSize: 10},
				{S: "texto", X: 20, Y: 700, W: 25, FontSize: 10},
			},
			wantSegs: 1,
		},
		{
			name:     "no pieces no segments",
			pieces:   nil,
			wantSegs: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			segs := splitRowSegments(tt.pieces)
			if len(segs) != tt.wantSegs {
				t.Errorf("splitRowSegments() returned %d segments, want %d", len(segs), tt.wantSegs)
			}
		})
	}
}

// TestPieceRight tests the right-edge calculation with and without widths.
func TestPieceRight(t *testing.T) {
	tests := []struct {
		name  string
		piece ledongthuc.Text
		want  float64
	}{
		{
			name:  "reported width wins",
			piece: ledongthuc.Text{S: "Hi", X: 10, W: 30, FontSize: 10},
			want:  40,
		},
		{
			name:  "missing width estimated from glyphs",
			piece: ledongthuc.Text{S: "Hi", X: 10, W: 0, FontSize: 10},
			want:  20,
		},
		{
			name:  "missing size falls back to default",
			piece: ledongthuc.Text{S: "Hi", X: 10, W: 0, FontSize: 0},
			want:  20,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := pieceRight(tt.piece)
			if !floatEq(got, tt.want) {
				t.Errorf("pieceRight() = %v, want %v", got, tt.want)
			}
		})
	}
}

// TestBuildBlockMergesSpans tests span merging, bbox union and style flags.
func TestBuildBlockMergesSpans(t *testing.T) {
	seg := []ledongthuc.Text{
		{S: "Couro ", X: 10, Y: 700, W: 30, Font: "ABCDEF+Helvetica", FontSize: 12},
		{S: "legítimo", X: 40, Y: 700, W: 48, Font: "ABCDEF+Helvetica-Bold", FontSize: 12},
	}

	block, ok := buildBlock(3, seg)
	if !ok {
		t.Fatal("buildBlock() not ok, want a block")
	}
	if block.Page != 3 {
		t.Errorf("Page = %d, want 3", block.Page)
	}
	if block.Text != "Couro legítimo" {
		t.Errorf("Text = %q, want %q", block.Text, "Couro legítimo")
	}
	if !block.Bold {
		t.Error("Bold = false, want true (one span uses a bold font)")
	}
	if block.Italic {
		t.Error("Italic = true, want false")
	}
	if block.FontSize != 12 {
		t.Errorf("FontSize = %v, want 12", block.FontSize)
	}

	wantY1 := 700 - 0.25*12.0
	wantY2 := wantY1 + 1.2*12.0
	if !floatEq(block.Rect.X1, 10) || !floatEq(block.Rect.X2, 88) {
		t.Errorf("Rect x span = [%v, %v], want [10, 88]", block.Rect.X1, block.Rect.X2)
	}
	if !floatEq(block.Rect.Y1, wantY1) || !floatEq(block.Rect.Y2, wantY2) {
		t.Errorf("Rect y span = [%v, %v], want [%v, %v]", block.Rect.Y1, block.Rect.Y2, wantY1, wantY2)
	}
}

// TestBuildBlockStyleFlags tests bold and italic detection from font names.
func TestBuildBlockStyleFlags(t *testing.T) {
	tests := []struct {
		name       string
		font       string
		wantBold   bool
		wantItalic bool
	}{
		{"plain font", "Helvetica", false, false},
		{"bold suffix", "Arial-Bold", true, false},
		{"italic suffix", "Times-Italic", false, true},
		{"oblique counts as italic", "Helvetica-Oblique", false, true},
		{"bold italic", "ABCDEF+Arial-BoldItalic", true, true},
		{"case insensitive", "ARIAL-BOLDMT", true, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seg := []ledongthuc.Text{
				{S: "Texto de teste", X: 10, Y: 700, W: 60, Font: tt.font, FontSize: 10},
			}
			block, ok := buildBlock(1, seg)
			if !ok {
				t.Fatal("buildBlock() not ok, want a block")
			}
			if block.Bold != tt.wantBold {
				t.Errorf("Bold = %v, want %v", block.Bold, tt.wantBold)
			}
			if block.Italic != tt.wantItalic {
				t.Errorf("Italic = %v, want %v", block.Italic, tt.wantItalic)
			}
		})
	}
}

// TestBuildBlockSkips tests that untranslatable segments produce no block.
func TestBuildBlockSkips(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{"empty text", "   "},
		{"bullet only", "• "},
		{"multiple bullets only", "• ● - "},
		{"content stream leak", "/burl@stx null def /BU.S def"},
		{"control character garbage", "ab\x00\x01\x02\x03\x04"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seg := []ledongthuc.Text{
				{S: tt.text, X: 10, Y: 700, W: 50, FontSize: 10},
			}
			if _, ok := buildBlock(1, seg); ok {
				t.Errorf("buildBlock(%q) produced a block, want skip", tt.text)
			}
		})
	}
}

// TestBuildBlockBulletPrefix tests that a leading bullet is carved off into
// BulletPrefix with the translatable remainder in Text.
func TestBuildBlockBulletPrefix(t *testing.T) {
	seg := []ledongthuc.Text{
		{S: "• Alça de ombro ajustável", X: 10, Y: 500, W: 120, FontSize: 11},
	}

	block, ok := buildBlock(1, seg)
	if !ok {
		t.Fatal("buildBlock() not ok, want a block")
	}
	if block.BulletPrefix != "• " {
		t.Errorf("BulletPrefix = %q, want %q", block.BulletPrefix, "• ")
	}
	if block.Text != "Alça de ombro ajustável" {
		t.Errorf("Text = %q, want %q", block.Text, "Alça de ombro ajustável")
	}
}

// TestBuildBlockDefaults tests fallbacks when the extractor reports no
// metrics.
func TestBuildBlockDefaults(t *testing.T) {
	seg := []ledongthuc.Text{
		{S: "Medidas", X: 10, Y: 300, W: 0, FontSize: 0},
	}

	block, ok := buildBlock(1, seg)
	if !ok {
		t.Fatal("buildBlock() not ok, want a block")
	}
	if block.FontSize != defaultFontSize {
		t.Errorf("FontSize = %v, want default %v", block.FontSize, defaultFontSize)
	}
	wantRight := 10 + estimateTextWidth("Medidas", defaultFontSize)
	if !floatEq(block.Rect.X2, wantRight) {
		t.Errorf("Rect.X2 = %v, want estimated %v", block.Rect.X2, wantRight)
	}
}

// TestSortBlocksReadingOrder tests page, top-to-bottom, left-to-right order.
func TestSortBlocksReadingOrder(t *testing.T) {
	blocks := []TextBlock{
		{Page: 1, Text: "lower line", Rect: rectAt(10, 600)},
		{Page: 1, Text: "right on top line", Rect: rectAt(50, 700)},
		{Page: 2, Text: "next page", Rect: rectAt(10, 800)},
		{Page: 1, Text: "left on top line", Rect: rectAt(10, 702)},
	}

	sortBlocks(blocks)

	want := []string{"left on top line", "right on top line", "lower line", "next page"}
	for i, w := range want {
		if blocks[i].Text != w {
			t.Errorf("blocks[%d].Text = %q, want %q", i, blocks[i].Text, w)
		}
	}
}

func rectAt(x, y float64) geom.Rect {
	return geom.NewRect(x, y, x+50, y+12)
}

// TestIsBulletOnly tests the decoration-line detector.
func TestIsBulletOnly(t *testing.T) {
	tests := []struct {
		text     string
		expected bool
	}{
		{"•", true},
		{"• ● -", true},
		{" – ", true},
		{"*", true},
		{"• Item", false},
		{"Item", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			if got := isBulletOnly(tt.text); got != tt.expected {
				t.Errorf("isBulletOnly(%q) = %v, want %v", tt.text, got, tt.expected)
			}
		})
	}
}

// TestSplitBulletPrefix tests bullet marker extraction.
func TestSplitBulletPrefix(t *testing.T) {
	tests := []struct {
		name       string
		text       string
		wantPrefix string
		wantRest   string
	}{
		{"bullet with space", "• Item um", "• ", "Item um"},
		{"dash bullet", "- Item dois", "- ", "Item dois"},
		{"star without space", "*Destaque", "*", "Destaque"},
		{"double marker", "–– traço duplo", "–– ", "traço duplo"},
		{"no bullet", "Texto normal", "", "Texto normal"},
		{"hyphenated word untouched", "Semi-acabado", "", "Semi-acabado"},
		{"bullet only keeps text whole", "•", "", "•"},
		{"empty", "", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prefix, rest := splitBulletPrefix(tt.text)
			if prefix != tt.wantPrefix || rest != tt.wantRest {
				t.Errorf("splitBulletPrefix(%q) = (%q, %q), want (%q, %q)",
					tt.text, prefix, rest, tt.wantPrefix, tt.wantRest)
			}
			if prefix+rest != tt.text {
				t.Errorf("splitBulletPrefix(%q) lost characters: %q + %q", tt.text, prefix, rest)
			}
		})
	}
}

// TestIsPostScriptCode tests the content-stream garbage detector.
func TestIsPostScriptCode(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		expected bool
	}{
		{
			name:     "null def marker",
			text:     "/burl@stx null def /BU.S /burl@stx null def def",
			expected: true,
		},
		{
			name:     "currentpoint operator",
			text:     "/BU.SS currentpoint /burl@",
			expected: true,
		},
		{
			name:     "path operators",
			text:     "gsave newpath moveto lineto grestore",
			expected: true,
		},
		{
			name:     "run of name tokens",
			text:     "/Name1 /Name2 /Name3 /Name4",
			expected: true,
		},
		{
			name:     "normal text",
			text:     "Bolsa em couro legítimo com acabamento premium.",
			expected: false,
		},
		{
			name:     "heading",
			text:     "Ficha Técnica",
			expected: false,
		},
		{
			name:     "url slashes are fine",
			text:     "Visite https://example.com/path/to/page para mais detalhes",
			expected: false,
		},
		{
			name:     "slash as separator",
			text:     "Cor: Preto / Marrom",
			expected: false,
		},
		{
			name:     "empty",
			text:     "",
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isPostScriptCode(tt.text); got != tt.expected {
				t.Errorf("isPostScriptCode(%q) = %v, want %v", tt.text, got, tt.expected)
			}
		})
	}
}

// TestHasExcessiveNonPrintable tests the control-character garbage detector.
func TestHasExcessiveNonPrintable(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		expected bool
	}{
		{"normal text", "Este é um texto normal.", false},
		{"newlines and tabs allowed", "Linha 1\n\tLinha 2", false},
		{"accented text", "dimensões: 30 × 20 cm", false},
		{"control characters", "Texto\x00\x01\x02\x03\x04\x05mais", true},
		{"c1 range", "cafe", true},
		{"empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := hasExcessiveNonPrintable(tt.text); got != tt.expected {
				t.Errorf("hasExcessiveNonPrintable(%q) = %v, want %v", tt.text, got, tt.expected)
			}
		})
	}
}
