package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"doc-translator/internal/config"
	"doc-translator/internal/convert"
	"doc-translator/internal/glossary"
	"doc-translator/internal/logger"
	"doc-translator/internal/pipeline"
	"doc-translator/internal/translate"
	"doc-translator/internal/types"
	"doc-translator/internal/xlsm"
)

var translateCmd = &cobra.Command{
	Use:   "translate <file|dir>...",
	Short: "Translate documents, writing suffixed copies next to the originals",
	Long: `Translate one or more documents through an LLM backend.

Supported inputs are .pdf, .pptx, .xlsm, .xlsx and .xls (the last needs
LibreOffice installed). Directory arguments expand to their supported
files, non-recursively. Each file is processed independently; one
failure never stops the rest.

Examples:
  doc-translator translate catalogo.pdf
  doc-translator translate docs/ --glossary termos.txt --enforce-glossary
  doc-translator translate precos.xlsm --provider anthropic --concurrency 5
  doc-translator translate deck.pptx --provider compat --base-url http://localhost:11434/v1 --model llama3`,
	Args: cobra.MinimumNArgs(1),
	RunE: runTranslate,
}

func init() {
	rootCmd.AddCommand(translateCmd)

	translateCmd.Flags().
		String("provider", "", "Translation provider (openai, anthropic, gemini, compat)")
	translateCmd.Flags().
		StringP("api-key", "k", "", "API key (or set OPENAI_API_KEY/ANTHROPIC_API_KEY/GEMINI_API_KEY)")
	translateCmd.Flags().
		String("model", "", "Model name (provider-specific default)")
	translateCmd.Flags().
		String("base-url", "", "OpenAI-compatible endpoint URL (required for compat)")
	translateCmd.Flags().
		StringP("source", "s", "", "Source language tag (default pt-BR)")
	translateCmd.Flags().
		StringP("target", "t", "", "Target language tag (default en-US)")
	translateCmd.Flags().
		StringP("glossary", "g", "", "Glossary file with source=target lines")
	translateCmd.Flags().
		Bool("enforce-glossary", false, "Rewrite glossary terms in the output even when the model ignores them")
	translateCmd.Flags().
		String("extra", "", "Extra instructions appended to the translation prompt")
	translateCmd.Flags().
		String("suffix", "", `Output file suffix (default " — EN")`)
	translateCmd.Flags().
		Int("batch-items", 0, "Max items per translation request")
	translateCmd.Flags().
		Int("batch-chars", 0, "Max total characters per translation request")
	translateCmd.Flags().
		Int("concurrency", 0, "Parallel translation requests")
	translateCmd.Flags().
		Bool("no-cache", false, "Disable the translation cache")
	translateCmd.Flags().
		StringP("output-dir", "o", "", "Write translated files here instead of next to the inputs")
	translateCmd.Flags().
		String("keep-columns", "", "Spreadsheet header whose columns keep their original text (case-insensitive)")
}

func runTranslate(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	manager, err := config.NewManager(configPath)
	if err != nil {
		return err
	}
	if err := manager.Load(); err != nil {
		return err
	}
	cfg := manager.Config()

	// Flags override the config file, which overrides the environment.
	providerStr, _ := cmd.Flags().GetString("provider")
	if providerStr == "" {
		providerStr = manager.Provider()
	}
	apiKey, _ := cmd.Flags().GetString("api-key")
	if apiKey == "" {
		apiKey = manager.APIKey(providerStr)
	}
	model, _ := cmd.Flags().GetString("model")
	if model == "" {
		model = manager.Model(providerStr)
	}
	baseURL, _ := cmd.Flags().GetString("base-url")
	if baseURL == "" {
		baseURL = manager.BaseURL()
	}
	source, _ := cmd.Flags().GetString("source")
	if source == "" {
		source = cfg.SourceLang
	}
	target, _ := cmd.Flags().GetString("target")
	if target == "" {
		target = cfg.TargetLang
	}
	suffix, _ := cmd.Flags().GetString("suffix")
	if suffix == "" {
		suffix = cfg.OutputSuffix
	}
	batchItems, _ := cmd.Flags().GetInt("batch-items")
	if batchItems <= 0 {
		batchItems = cfg.BatchMaxItems
	}
	batchChars, _ := cmd.Flags().GetInt("batch-chars")
	if batchChars <= 0 {
		batchChars = cfg.BatchMaxChars
	}
	concurrency, _ := cmd.Flags().GetInt("concurrency")
	if concurrency <= 0 {
		concurrency = manager.Concurrency()
	}
	extra, _ := cmd.Flags().GetString("extra")
	if extra == "" {
		extra = cfg.ExtraInstructions
	}
	glossaryPath, _ := cmd.Flags().GetString("glossary")
	if glossaryPath == "" {
		glossaryPath = cfg.GlossaryPath
	}
	enforce, _ := cmd.Flags().GetBool("enforce-glossary")
	noCache, _ := cmd.Flags().GetBool("no-cache")
	outputDir, _ := cmd.Flags().GetString("output-dir")
	keepHeader, _ := cmd.Flags().GetString("keep-columns")

	if strings.EqualFold(strings.TrimSpace(source), strings.TrimSpace(target)) {
		return fmt.Errorf(
			"source language %q and target language %q cannot be the same",
			source, target,
		)
	}
	if apiKey == "" && providerStr != string(translate.ProviderCompat) {
		return fmt.Errorf(
			"API key is required: use --api-key or set %s",
			apiKeyEnvVar(providerStr),
		)
	}

	paths, err := expandInputs(args)
	if err != nil {
		return err
	}
	if len(paths) == 0 {
		return fmt.Errorf(
			"no supported files found (looking for .pdf, .pptx, .xlsm, .xlsx, .xls)",
		)
	}
	if outputDir != "" {
		if err := os.MkdirAll(outputDir, 0o755); err != nil {
			return fmt.Errorf("cannot create output directory: %w", err)
		}
	}

	var gloss *glossary.Glossary
	if glossaryPath != "" {
		gloss, err = glossary.Load(glossaryPath)
		if err != nil {
			return err
		}
	}

	backend, err := translate.NewBackend(ctx, translate.Provider(providerStr), apiKey, translate.Options{
		Model:   model,
		BaseURL: baseURL,
	})
	if err != nil {
		return err
	}

	var cache *translate.Cache
	if cfg.CacheEnabled && !noCache {
		scope := backend.Name() + "|" + source + "|" + target
		cache = translate.NewCache(manager.CachePath(), scope)
		if err := cache.Load(); err != nil {
			logger.Warn("cannot load translation cache, starting empty", logger.Err(err))
		}
	}

	client := translate.NewClient(backend, translate.ClientOptions{
		SourceLang:        source,
		TargetLang:        target,
		Glossary:          gloss,
		EnforceGlossary:   enforce,
		ExtraInstructions: extra,
		Cache:             cache,
	})

	converter := convert.NewSofficeConverter()
	if !converter.Available() && hasLegacy(paths) {
		fmt.Fprintln(os.Stderr,
			"warning: LibreOffice (soffice) not found, .xls inputs will fail")
	}

	var override xlsm.Override
	if keepHeader != "" {
		override = xlsm.KeepColumnsByHeader(keepHeader)
	}

	runner := pipeline.NewRunner(client, converter, consoleProgress(os.Stdout), pipeline.Options{
		BatchMaxItems: batchItems,
		BatchMaxChars: batchChars,
		Concurrency:   concurrency,
		OutputSuffix:  suffix,
		OutputDir:     outputDir,
		XLSMOverride:  override,
	})

	fmt.Printf("Translating %d file(s) from %s to %s via %s\n",
		len(paths), source, target, backend.Name())

	results := runner.Run(ctx, paths)
	fmt.Println()

	if cache != nil {
		if err := cache.Save(); err != nil {
			logger.Warn("cannot save translation cache", logger.Err(err))
		}
	}

	printResults(os.Stdout, results)

	failed := 0
	for _, res := range results {
		if res.Failed() {
			failed++
		}
	}
	if failed == len(results) {
		return fmt.Errorf("all %d file(s) failed", failed)
	}
	return nil
}

// expandInputs expands directory arguments into their supported files,
// non-recursively. Plain file arguments pass through untouched so a
// missing or unsupported file fails on its own in the pipeline.
func expandInputs(args []string) ([]string, error) {
	var paths []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil || !info.IsDir() {
			paths = append(paths, arg)
			continue
		}
		entries, err := os.ReadDir(arg)
		if err != nil {
			return nil, fmt.Errorf("cannot read directory %s: %w", arg, err)
		}
		var found []string
		for _, e := range entries {
			if e.IsDir() {
				continue
			}
			if pipeline.SupportedExt(filepath.Ext(e.Name())) {
				found = append(found, filepath.Join(arg, e.Name()))
			}
		}
		sort.Strings(found)
		paths = append(paths, found...)
	}
	return paths, nil
}

func hasLegacy(paths []string) bool {
	for _, p := range paths {
		if strings.EqualFold(filepath.Ext(p), ".xls") {
			return true
		}
	}
	return false
}

// consoleProgress reports each update on one overwritten status line.
func consoleProgress(w io.Writer) types.ProgressFunc {
	return func(label string, done, total int) {
		fmt.Fprintf(w, "\r%-14s %d/%d    ", label, done, total)
	}
}

func printResults(w io.Writer, results []types.FileResult) {
	ok := 0
	fmt.Fprintln(w, "Results:")
	for _, res := range results {
		name := filepath.Base(res.Input)
		switch {
		case res.Failed():
			fmt.Fprintf(w, "  FAIL  %s: %v\n", name, res.Err)
		case res.Warning != "":
			ok++
			fmt.Fprintf(w, "  WARN  %s -> %s (%s)\n",
				name, filepath.Base(res.Output), res.Warning)
		default:
			ok++
			fmt.Fprintf(w, "  OK    %s -> %s (%d items, %d cached, %s)\n",
				name, filepath.Base(res.Output), res.Items, res.Cached,
				res.Duration.Round(time.Millisecond))
		}
	}
	fmt.Fprintf(w, "%d/%d file(s) translated\n", ok, len(results))
}

func apiKeyEnvVar(provider string) string {
	switch provider {
	case string(translate.ProviderAnthropic):
		return config.EnvAnthropicAPIKey
	case string(translate.ProviderGemini):
		return config.EnvGeminiAPIKey
	default:
		return config.EnvOpenAIAPIKey
	}
}
