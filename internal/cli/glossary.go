package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"doc-translator/internal/glossary"
)

var glossaryCmd = &cobra.Command{
	Use:   "glossary",
	Short: "Work with glossary files",
}

var glossaryCheckCmd = &cobra.Command{
	Use:   "check <file>",
	Short: "Parse a glossary file and report what it contains",
	Long: `Parse a glossary file the same way the translate command does and
report how many term pairs it yields. Lines that do not produce an
entry (no separator, an empty side, or a duplicate source term) are
counted as skipped. With --verbose every parsed pair is listed in
application order, longest source first.`,
	Args: cobra.ExactArgs(1),
	RunE: runGlossaryCheck,
}

func init() {
	rootCmd.AddCommand(glossaryCmd)
	glossaryCmd.AddCommand(glossaryCheckCmd)
}

func runGlossaryCheck(cmd *cobra.Command, args []string) error {
	raw, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("cannot read glossary file: %w", err)
	}
	g := glossary.Parse(string(raw))

	candidates := 0
	for _, line := range strings.Split(string(raw), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		candidates++
	}
	skipped := candidates - g.Len()

	fmt.Printf("%s: %d term(s)\n", args[0], g.Len())
	if skipped > 0 {
		fmt.Printf("%d line(s) skipped (no separator, empty term, or duplicate source)\n", skipped)
	}
	if verbose {
		for _, e := range g.Entries() {
			fmt.Printf("  %s -> %s\n", e.Source, e.Target)
		}
	}
	return nil
}
