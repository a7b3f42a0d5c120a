// Package pipeline orchestrates per-file translation: read, extract,
// translate in batches, rewrite, write the output next to the input. Every
// file is processed independently; one failure never aborts the run.
package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"doc-translator/internal/batch"
	"doc-translator/internal/config"
	"doc-translator/internal/convert"
	"doc-translator/internal/logger"
	"doc-translator/internal/translate"
	"doc-translator/internal/types"
	"doc-translator/internal/xlsm"
)

// Options tunes a Runner. Zero values fall back to the config defaults.
type Options struct {
	BatchMaxItems int
	BatchMaxChars int
	Concurrency   int
	// OutputSuffix is appended to the base name of translated files.
	OutputSuffix string
	// OutputDir, when set, receives the outputs instead of each input's
	// directory.
	OutputDir string
	// XLSMOverride is installed on every opened workbook (nil = off).
	XLSMOverride xlsm.Override
}

// Runner drives the translation pipeline over input files.
type Runner struct {
	client    *translate.Client
	converter convert.Converter
	progress  types.ProgressFunc
	opts      Options
}

// NewRunner wires a pipeline. converter may be nil when legacy formats are
// not needed; progress may be nil.
func NewRunner(client *translate.Client, converter convert.Converter, progress types.ProgressFunc, opts Options) *Runner {
	if opts.Concurrency <= 0 {
		opts.Concurrency = config.DefaultConcurrency
	}
	if opts.OutputSuffix == "" {
		opts.OutputSuffix = config.DefaultOutputSuffix
	}
	return &Runner{
		client:    client,
		converter: converter,
		progress:  progress,
		opts:      opts,
	}
}

// SupportedExt reports whether files with this extension can be processed.
func SupportedExt(ext string) bool {
	switch strings.ToLower(ext) {
	case ".pdf", ".pptx", ".xlsm", ".xlsx", ".xls":
		return true
	}
	return false
}

// Run processes every input path and returns one result per path, in input
// order.
func (r *Runner) Run(ctx context.Context, paths []string) []types.FileResult {
	results := make([]types.FileResult, 0, len(paths))
	for i, path := range paths {
		r.report("files", i, len(paths))
		logger.Info("processing file", logger.String("path", path))

		res := r.processFile(ctx, path)
		if res.Failed() {
			logger.Error("file failed", res.Err,
				logger.String("path", path))
		} else {
			logger.Info("file done",
				logger.String("path", path),
				logger.String("output", res.Output),
				logger.Int("items", res.Items),
				logger.Duration("took", res.Duration))
		}
		results = append(results, res)
	}
	r.report("files", len(paths), len(paths))
	return results
}

// processFile handles one input end to end. A panic in an adapter is
// contained here so the remaining files still run.
func (r *Runner) processFile(ctx context.Context, path string) (res types.FileResult) {
	start := time.Now()
	res.Input = path
	defer func() {
		res.Duration = time.Since(start)
		if p := recover(); p != nil {
			res.Err = types.NewAppErrorWithDetails(types.ErrInternal,
				"unexpected failure", fmt.Sprint(p), nil)
		}
	}()

	data, err := os.ReadFile(path)
	if err != nil {
		res.Err = types.NewAppError(types.ErrFileNotFound, "cannot read input file", err)
		return res
	}

	ext := strings.ToLower(filepath.Ext(path))
	outExt := ext

	var doc document
	switch ext {
	case ".pdf":
		doc, err = r.openPDF(data)
	case ".pptx":
		doc, err = openPPTX(data)
	case ".xlsm", ".xlsx":
		doc, err = r.openWorkbook(data)
	case ".xls":
		if r.converter == nil {
			res.Err = types.NewAppError(types.ErrConvert, "no converter configured for legacy formats", nil)
			return res
		}
		r.report(string(types.PhaseConverting), 0, 1)
		var converted []byte
		converted, err = r.converter.Convert(ctx, data, ext, ".xlsx")
		r.report(string(types.PhaseConverting), 1, 1)
		if err == nil {
			outExt = ".xlsx"
			data = converted
			doc, err = r.openWorkbook(data)
		}
	default:
		res.Err = types.NewAppErrorWithDetails(types.ErrUnsupportedFormat,
			"unsupported file type", ext, nil)
		return res
	}
	if err != nil {
		res.Err = err
		return res
	}
	defer doc.Close()

	items := doc.Items()
	res.Items = len(items)
	if len(items) == 0 {
		res.Warning = doc.EmptyReason()
		logger.Warn("nothing to translate, copying input unchanged",
			logger.String("path", path),
			logger.String("reason", res.Warning))
		res.Output, res.Err = r.writeOutput(path, outExt, data)
		return res
	}

	translations, cached, err := r.translateAll(ctx, items)
	if err != nil {
		res.Err = err
		return res
	}
	res.Cached = cached

	r.report(string(types.PhaseWriting), 0, 1)
	out, err := doc.Rewrite(ctx, translations)
	if err != nil {
		res.Err = err
		return res
	}
	r.report(string(types.PhaseWriting), 1, 1)

	res.Output, res.Err = r.writeOutput(path, outExt, out)
	return res
}

// translateAll chunks items and translates the batches with bounded
// concurrency, merging the id-keyed results. Any batch failure fails the
// document; partially translated output is never written.
func (r *Runner) translateAll(ctx context.Context, items []types.TranslationItem) (map[string]string, int, error) {
	cached := r.countCached(items)
	batches := batch.Chunk(items, r.opts.BatchMaxItems, r.opts.BatchMaxChars)
	r.report(string(types.PhaseTranslating), 0, len(batches))

	type batchOut struct {
		translations map[string]string
		err          error
	}
	outs := make([]batchOut, len(batches))

	sem := make(chan struct{}, r.opts.Concurrency)
	var wg sync.WaitGroup
	var mu sync.Mutex
	done := 0

	for i, b := range batches {
		wg.Add(1)
		go func(idx int, items []types.TranslationItem) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			translations, err := r.client.TranslateBatch(ctx, items)

			mu.Lock()
			outs[idx] = batchOut{translations: translations, err: err}
			done++
			r.report(string(types.PhaseTranslating), done, len(batches))
			mu.Unlock()
		}(i, b)
	}
	wg.Wait()

	merged := make(map[string]string, len(items))
	for _, o := range outs {
		if o.err != nil {
			return nil, 0, types.NewAppError(types.ErrTranslation, "batch translation failed", o.err)
		}
		for id, text := range o.translations {
			merged[id] = text
		}
	}
	return merged, cached, nil
}

// countCached reports how many items the translation cache already holds.
func (r *Runner) countCached(items []types.TranslationItem) int {
	cache := r.client.Cache()
	if cache == nil {
		return 0
	}
	n := 0
	for _, it := range items {
		if _, ok := cache.Get(it.Text); ok {
			n++
		}
	}
	return n
}

// writeOutput writes the translated bytes next to the input (or into
// OutputDir) as base + suffix + ext.
func (r *Runner) writeOutput(input, ext string, data []byte) (string, error) {
	path := r.outputPath(input, ext)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", types.NewAppError(types.ErrInternal, "cannot write output file", err)
	}
	return path, nil
}

func (r *Runner) outputPath(input, ext string) string {
	dir := filepath.Dir(input)
	if r.opts.OutputDir != "" {
		dir = r.opts.OutputDir
	}
	base := strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))
	return filepath.Join(dir, base+r.opts.OutputSuffix+ext)
}

func (r *Runner) report(label string, done, total int) {
	if r.progress != nil {
		r.progress(label, done, total)
	}
}
