package pdf

import (
	"fmt"
	"image"
	_ "image/png"
	"os"
	"os/exec"
	"path/filepath"

	"doc-translator/internal/logger"
)

// renderDPI doubles the 72dpi base so color sampling has pixels to spare.
const renderDPI = 144

// Renderer rasterizes PDF pages through poppler's pdftoppm for background
// color sampling. Availability is probed once; without the tool the rewrite
// falls back to white covers.
type Renderer struct {
	dpi       int
	available bool
	tempDir   string
}

// NewRenderer probes for pdftoppm and returns a page renderer.
func NewRenderer() *Renderer {
	return &Renderer{
		dpi:       renderDPI,
		available: checkPdftoppmAvailable(),
	}
}

func checkPdftoppmAvailable() bool {
	cmd := exec.Command("pdftoppm", "-v")
	return cmd.Run() == nil
}

// Available reports whether pages can be rendered.
func (r *Renderer) Available() bool { return r.available }

// Scale returns pixels per PDF point at the render DPI.
func (r *Renderer) Scale() float64 { return float64(r.dpi) / 72.0 }

// RenderPage rasterizes one page (1-based) to an image.
func (r *Renderer) RenderPage(pdfPath string, pageNum int) (image.Image, error) {
	if !r.available {
		return nil, fmt.Errorf("pdftoppm not found, install poppler-utils for background sampling")
	}

	if r.tempDir == "" {
		tempDir, err := os.MkdirTemp("", "pdfrender_*")
		if err != nil {
			return nil, fmt.Errorf("failed to create temp dir: %w", err)
		}
		r.tempDir = tempDir
	}

	outputPrefix := filepath.Join(r.tempDir, fmt.Sprintf("page_%d", pageNum))
	args := []string{
		"-f", fmt.Sprintf("%d", pageNum),
		"-l", fmt.Sprintf("%d", pageNum),
		"-png",
		"-r", fmt.Sprintf("%d", r.dpi),
		"-singlefile",
		pdfPath,
		outputPrefix,
	}

	cmd := exec.Command("pdftoppm", args...)
	hideWindowOnWindows(cmd)

	output, err := cmd.CombinedOutput()
	if err != nil {
		return nil, fmt.Errorf("pdftoppm failed: %w, output: %s", err, string(output))
	}

	imgPath := outputPrefix + ".png"
	img, err := loadImage(imgPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load rendered page: %w", err)
	}
	os.Remove(imgPath)

	logger.Debug("page rendered",
		logger.Int("page", pageNum),
		logger.Int("width", img.Bounds().Dx()),
		logger.Int("height", img.Bounds().Dy()))

	return img, nil
}

func loadImage(path string) (image.Image, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	img, _, err := image.Decode(file)
	if err != nil {
		return nil, err
	}
	return img, nil
}

// Cleanup removes the renderer's temporary files.
func (r *Renderer) Cleanup() {
	if r.tempDir != "" {
		os.RemoveAll(r.tempDir)
		r.tempDir = ""
	}
}
