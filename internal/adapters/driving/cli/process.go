package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Kunze-Ritter/Manual2Vector-sub000/internal/core/domain"
)

var processCmd = &cobra.Command{
	Use:   "process [pdf-or-directory]",
	Short: "Process service manuals into the knowledge base",
	Long: `Runs the extraction pipeline for a single PDF, or for every PDF
in a directory. Re-processing the same file is idempotent: entities are
upserted by their natural keys, never duplicated.`,
	Args: cobra.ExactArgs(1),
	RunE: runProcess,
}

func init() {
	rootCmd.AddCommand(processCmd)
}

func runProcess(cmd *cobra.Command, args []string) error {
	if pipelineFactory == nil {
		return errors.New("pipeline not configured")
	}

	pipeline, closer, err := pipelineFactory()
	if err != nil {
		return fmt.Errorf("initialise pipeline: %w", err)
	}
	defer func() { _ = closer() }()

	paths, err := collectPDFs(args[0])
	if err != nil {
		return err
	}
	if len(paths) == 0 {
		return fmt.Errorf("no PDF files found at %s", args[0])
	}

	failed := 0
	for _, path := range paths {
		result, err := pipeline.Process(cmd.Context(), path)
		if err != nil {
			failed++
			cmd.PrintErrf("FAILED %s: %v\n", filepath.Base(path), err)
			continue
		}
		printResult(cmd, filepath.Base(path), result)
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d documents failed", failed, len(paths))
	}
	return nil
}

// collectPDFs expands a path argument into the list of PDFs to process.
func collectPDFs(path string) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	if !info.IsDir() {
		return []string{path}, nil
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, fmt.Errorf("read directory %s: %w", path, err)
	}

	var paths []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if strings.EqualFold(filepath.Ext(entry.Name()), ".pdf") {
			paths = append(paths, filepath.Join(path, entry.Name()))
		}
	}
	return paths, nil
}

func printResult(cmd *cobra.Command, name string, result *domain.ProcessingResult) {
	stats := result.Statistics
	cmd.Printf("OK %s (%s)\n", name, result.Manufacturer)
	cmd.Printf("  pages: %d  chunks: %d  error codes: %d  parts: %d  products: %d  versions: %d\n",
		stats.Pages, stats.Chunks, stats.ErrorCodes, stats.Parts, stats.Products, stats.Versions)
	if stats.Images > 0 || stats.Links > 0 {
		cmd.Printf("  images: %d  links: %d\n", stats.Images, stats.Links)
	}
	for _, issue := range result.ValidationErrors {
		cmd.Printf("  %s\n", issue)
	}
}
