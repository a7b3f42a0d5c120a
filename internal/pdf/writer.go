package pdf

import (
	"context"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/color"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	pdftypes "github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"

	"doc-translator/internal/geom"
	"doc-translator/internal/logger"
	"doc-translator/internal/types"
)

const (
	// minStampFontSize is the readability floor for shrunk text.
	minStampFontSize = 4.0
	fontShrinkStep   = 0.75
	maxShrinkSteps   = 18
)

// stampJob is one block scheduled for rewrite, with its final text and the
// sampled cover color.
type stampJob struct {
	block TextBlock
	text  string
	bg    color.SimpleColor
}

// Rewrite stamps the translations over their source blocks and returns the
// new PDF bytes. Blocks without a translation keep their original text.
// Covers for the whole document are applied before any text is inserted;
// inserting first would stamp text that the next cover erases.
func (d *Document) Rewrite(ctx context.Context, translations map[string]string) ([]byte, error) {
	byPage := d.stageBlocks(translations)
	if len(byPage) == 0 {
		return d.data, nil
	}

	pages := make([]int, 0, len(byPage))
	for p := range byPage {
		pages = append(pages, p)
	}
	sort.Ints(pages)

	tmpDir, err := os.MkdirTemp("", "doc-translate-*")
	if err != nil {
		return nil, types.NewAppError(types.ErrInternal, "cannot create temp directory", err)
	}
	defer os.RemoveAll(tmpDir)
	defer d.renderer.Cleanup()

	// work.pdf accumulates watermarks; original.pdf stays pristine so page
	// renders sample the source colors, not the covers.
	workPath := filepath.Join(tmpDir, "work.pdf")
	renderPath := filepath.Join(tmpDir, "original.pdf")
	for _, p := range []string{workPath, renderPath} {
		if err := os.WriteFile(p, d.data, 0644); err != nil {
			return nil, types.NewAppError(types.ErrInternal, "cannot stage PDF for rewrite", err)
		}
	}

	conf := model.NewDefaultConfiguration()

	for _, page := range pages {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		var img image.Image
		if d.renderer.Available() {
			img, err = d.renderer.RenderPage(renderPath, page)
			if err != nil {
				logger.Warn("page render failed, covering with white",
					logger.Int("page", page),
					logger.Err(err))
				img = nil
			}
		}

		jobs := byPage[page]
		for i := range jobs {
			jobs[i].bg = color.White
			if img != nil {
				jobs[i].bg = sampleBackground(img, jobs[i].block.Rect, d.renderer.Scale())
			}
			if err := addCover(workPath, page, jobs[i].block.Rect, jobs[i].bg, conf); err != nil {
				return nil, types.NewAppErrorWithDetails(types.ErrDocument,
					"cannot cover source text", fmt.Sprintf("page %d", page), err)
			}
		}
	}

	for _, page := range pages {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		for _, job := range byPage[page] {
			if err := addText(workPath, page, job, conf); err != nil {
				return nil, types.NewAppErrorWithDetails(types.ErrDocument,
					"cannot stamp translated text", fmt.Sprintf("page %d", page), err)
			}
		}
	}

	if err := api.ValidateFile(workPath, conf); err != nil {
		return nil, types.NewAppError(types.ErrDocument, "rewritten PDF failed validation", err)
	}

	out, err := os.ReadFile(workPath)
	if err != nil {
		return nil, types.NewAppError(types.ErrInternal, "cannot read rewritten PDF", err)
	}

	logger.Info("PDF rewritten",
		logger.Int("pages", d.pages),
		logger.Int("stamped", countJobs(byPage)))

	return out, nil
}

// stageBlocks pairs blocks with their translations, grouped by page. Blocks
// the translator skipped are left alone.
func (d *Document) stageBlocks(translations map[string]string) map[int][]stampJob {
	byPage := make(map[int][]stampJob)
	for _, b := range d.blocks {
		translated, ok := translations[b.ID]
		if !ok || strings.TrimSpace(translated) == "" {
			continue
		}
		byPage[b.Page] = append(byPage[b.Page], stampJob{
			block: b,
			text:  b.BulletPrefix + translated,
		})
	}
	return byPage
}

func countJobs(byPage map[int][]stampJob) int {
	n := 0
	for _, jobs := range byPage {
		n += len(jobs)
	}
	return n
}

// addCover paints the sampled background color over one block's rect.
func addCover(path string, page int, r geom.Rect, bg color.SimpleColor, conf *model.Configuration) error {
	wm := &model.Watermark{
		Mode:       model.WMText,
		TextString: " ",
		BgColor:    &bg,
		Opacity:    1.0,
		OnTop:      true,
		Pos:        pdftypes.BottomLeft,
		Dx:         r.X1,
		Dy:         r.Y1,
		Width:      int(r.Width()),
		Height:     int(r.Height()),
	}
	return api.AddWatermarksFile(path, "", []string{fmt.Sprintf("%d", page)}, wm, conf)
}

// addText stamps one translated block at its source position.
func addText(path string, page int, job stampJob, conf *model.Configuration) error {
	text := prepareStampText(job.text)
	if text == "" {
		return nil
	}

	fs := fitFontSize(text, job.block.FontSize, job.block.Rect.Width())
	wm := &model.Watermark{
		Mode:           model.WMText,
		TextString:     text,
		FontName:       pickFontName(job.block.Bold, job.block.Italic),
		FontSize:       int(fs),
		ScaledFontSize: int(fs),
		Color:          color.Black,
		Opacity:        1.0,
		OnTop:          true,
		Pos:            pdftypes.BottomLeft,
		Dx:             job.block.Rect.X1,
		Dy:             job.block.Rect.Y1,
		Width:          int(job.block.Rect.Width()),
		Height:         int(job.block.Rect.Height()),
	}
	return api.AddWatermarksFile(path, "", []string{fmt.Sprintf("%d", page)}, wm, conf)
}

// prepareStampText flattens the text to one line and escapes the characters
// that terminate PDF string literals. Backslashes go first so the escapes
// themselves are not re-escaped.
func prepareStampText(text string) string {
	text = strings.TrimSpace(text)
	text = strings.ReplaceAll(text, "\r", "")
	text = strings.ReplaceAll(text, "\n", " ")
	text = strings.ReplaceAll(text, "\\", "\\\\")
	text = strings.ReplaceAll(text, "(", "\\(")
	text = strings.ReplaceAll(text, ")", "\\)")
	return text
}

// fitFontSize shrinks from the extracted size in fixed steps until the
// estimated line width fits the block, bottoming out at the floor. Text
// still too wide at the floor is stamped anyway; a slight overflow beats
// dropping content.
func fitFontSize(text string, extracted, maxWidth float64) float64 {
	fs := extracted
	if fs <= 0 {
		fs = defaultFontSize
	}
	if fs < minStampFontSize {
		fs = minStampFontSize
	}
	if maxWidth <= 0 {
		return fs
	}

	for i := 0; i < maxShrinkSteps; i++ {
		if estimateTextWidth(text, fs) <= maxWidth {
			return fs
		}
		fs -= fontShrinkStep
		if fs < minStampFontSize {
			return minStampFontSize
		}
	}
	return fs
}

// estimateTextWidth approximates rendered width: Latin glyphs run about half
// the font size, CJK and fullwidth glyphs the full size.
func estimateTextWidth(text string, fontSize float64) float64 {
	var w float64
	for _, r := range text {
		if isWideRune(r) {
			w += fontSize
		} else {
			w += 0.5 * fontSize
		}
	}
	return w
}

func isWideRune(r rune) bool {
	return (r >= 0x2E80 && r <= 0x9FFF) ||
		(r >= 0xAC00 && r <= 0xD7AF) ||
		(r >= 0xFF00 && r <= 0xFFEF)
}

// pickFontName maps style flags onto the base-14 Helvetica family, which
// needs no font embedding.
func pickFontName(bold, italic bool) string {
	switch {
	case bold && italic:
		return "Helvetica-BoldOblique"
	case bold:
		return "Helvetica-Bold"
	case italic:
		return "Helvetica-Oblique"
	default:
		return "Helvetica"
	}
}
