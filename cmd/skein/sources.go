package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/harpergrove/skein/internal/extract"
	"github.com/harpergrove/skein/internal/merge"
	"github.com/harpergrove/skein/internal/statement"
)

func sourcesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sources",
		Short: "List the source files a reconcile run would consume",
		Long: `Sources lists every statement document and bank export discovered under
the source directory. With --coverage, each document's period header is
resolved and the months it would claim are shown.`,
		RunE: runSources,
	}

	cmd.Flags().String("source-dir", "", "Override the configured source directory")
	cmd.Flags().Bool("coverage", false, "Resolve and show each document's covered months")
	cmd.Flags().String("pdftotext", "pdftotext", "Text extraction binary for PDF documents")

	return cmd
}

func runSources(cmd *cobra.Command, _ []string) error {
	sourceDir, _ := cmd.Flags().GetString("source-dir")
	showCoverage, _ := cmd.Flags().GetBool("coverage")
	pdftotext, _ := cmd.Flags().GetString("pdftotext")

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if sourceDir != "" {
		cfg.SourceDir = sourceDir
	}

	sources, err := merge.DiscoverSources(cfg.SourceDir)
	if err != nil {
		return err
	}

	fmt.Printf("Source directory: %s\n\n", cfg.SourceDir)

	fmt.Printf("Statement documents (%d):\n", len(sources.Documents))
	extractor := extract.NewCommandExtractor(pdftotext)
	for _, name := range sources.Documents {
		if !showCoverage {
			fmt.Printf("  %s\n", name)
			continue
		}
		fmt.Printf("  %s  %s\n", name, documentCoverage(cmd, extractor, cfg.SourceDir, name))
	}
	fmt.Println()

	printSourceGroup("CSV exports", sources.CSVs)
	printSourceGroup("OFX/QFX exports", sources.OFX)
	fmt.Printf("%d files total\n", sources.Total())
	return nil
}

// documentCoverage resolves one document's period header and renders the
// months it would claim, or the reason it can't.
func documentCoverage(cmd *cobra.Command, extractor *extract.CommandExtractor, dir, name string) string {
	text, err := extractor.ExtractText(cmd.Context(), filepath.Join(dir, name))
	if err != nil {
		return fmt.Sprintf("(unreadable: %v)", err)
	}
	period, err := statement.ResolvePeriod(text)
	if err != nil {
		return fmt.Sprintf("(no period header: %v)", err)
	}
	return strings.Join(period.Covered.Strings(), ", ")
}

func printSourceGroup(label string, names []string) {
	fmt.Printf("%s (%d):\n", label, len(names))
	for _, name := range names {
		fmt.Printf("  %s\n", name)
	}
	fmt.Println()
}
