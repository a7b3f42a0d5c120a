// Package convert shells out to LibreOffice for office format conversion,
// used to bring legacy formats into ones the adapters can read.
package convert

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"

	"doc-translator/internal/logger"
	"doc-translator/internal/types"
)

// Converter turns document bytes from one format into another.
type Converter interface {
	Convert(ctx context.Context, data []byte, srcExt, dstExt string) ([]byte, error)
}

// SofficeConverter converts through a headless LibreOffice run. The
// soffice binary is probed once at construction.
type SofficeConverter struct {
	available bool
}

// NewSofficeConverter probes PATH for soffice and returns the converter.
func NewSofficeConverter() *SofficeConverter {
	_, err := exec.LookPath("soffice")
	return &SofficeConverter{available: err == nil}
}

// Available reports whether LibreOffice was found.
func (c *SofficeConverter) Available() bool { return c.available }

// Convert stages data in a temp dir, runs soffice --convert-to and reads
// the produced file back.
func (c *SofficeConverter) Convert(ctx context.Context, data []byte, srcExt, dstExt string) ([]byte, error) {
	if !c.available {
		return nil, types.NewAppError(types.ErrConvert,
			"LibreOffice (soffice) not found, install it and make sure soffice is on PATH", nil)
	}
	srcExt = normalizeExt(srcExt)
	dstExt = normalizeExt(dstExt)

	tempDir, err := os.MkdirTemp("", "doc-convert-*")
	if err != nil {
		return nil, types.NewAppError(types.ErrInternal, "cannot create temp directory", err)
	}
	defer os.RemoveAll(tempDir)

	inPath := filepath.Join(tempDir, "input."+srcExt)
	if err := os.WriteFile(inPath, data, 0o644); err != nil {
		return nil, types.NewAppError(types.ErrInternal, "cannot stage input file", err)
	}

	args := []string{
		"--headless", "--nologo", "--norestore", "--nolockcheck", "--nodefault",
		"--convert-to", dstExt,
		"--outdir", tempDir,
		inPath,
	}
	cmd := exec.CommandContext(ctx, "soffice", args...)
	hideWindowOnWindows(cmd)
	if output, err := cmd.CombinedOutput(); err != nil {
		return nil, types.NewAppErrorWithDetails(types.ErrConvert,
			"LibreOffice conversion failed", strings.TrimSpace(string(output)), err)
	}

	outPath, err := findOutput(tempDir, dstExt)
	if err != nil {
		return nil, err
	}
	converted, err := os.ReadFile(outPath)
	if err != nil {
		return nil, types.NewAppError(types.ErrConvert, "cannot read converted file", err)
	}

	logger.Debug("file converted",
		logger.String("from", srcExt),
		logger.String("to", dstExt),
		logger.Int("bytes", len(converted)))
	return converted, nil
}

// findOutput locates the produced file: input.<ext> normally, any .<ext>
// when LibreOffice renames the basename.
func findOutput(dir, ext string) (string, error) {
	direct := filepath.Join(dir, "input."+ext)
	if _, err := os.Stat(direct); err == nil {
		return direct, nil
	}
	matches, err := filepath.Glob(filepath.Join(dir, "*."+ext))
	if err != nil || len(matches) == 0 {
		return "", types.NewAppError(types.ErrConvert, "converted file not found", err)
	}
	sort.Strings(matches)
	return matches[0], nil
}

// normalizeExt lowercases an extension and strips the leading dot.
func normalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}
