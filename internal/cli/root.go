// Package cli wires the cobra command tree for the document translator.
package cli

import (
	"github.com/spf13/cobra"

	"doc-translator/internal/logger"
)

var (
	verbose    bool
	configPath string
)

var rootCmd = &cobra.Command{
	Use:   "doc-translator",
	Short: "Translate business documents in place, keeping their layout",
	Long: `doc-translator translates PDF, PPTX and Excel documents between
languages (Portuguese to English by default) while preserving layout.

Text is extracted with stable anchors, translated in batches through an
LLM backend, and written back where it came from. Product codes, URLs,
emails and measurements are protected from the translator and restored
verbatim. Translated copies are written next to the originals with a
suffix; inputs are never modified.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg := logger.DefaultConfig()
		if verbose {
			cfg.Level = logger.LevelDebug
			cfg.EnableConsole = true
		}
		return logger.Init(cfg)
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Close()
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().
		BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().
		StringVar(&configPath, "config", "", "Config file path (default ~/.config/doc-translator/doc-translator-config.json)")
}
