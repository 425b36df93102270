package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var indexText string

func newIndexCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "index [path...]",
		Short: "Index files or directories into the vector store",
		Long: `Index documents into the vector store. Each path may be a file
(.txt, .md, .pdf) or a directory, which is walked recursively.

Examples:
  ragpipe index docs/
  ragpipe index notes.md paper.pdf
  ragpipe index --text "a fact worth remembering"`,
		RunE: runIndex,
	}

	cmd.Flags().StringVar(&indexText, "text", "", "index a literal text instead of files")
	return cmd
}

func runIndex(cmd *cobra.Command, args []string) error {
	if indexText == "" && len(args) == 0 {
		return fmt.Errorf("nothing to index: pass paths or --text")
	}

	engine, _, err := buildEngine()
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	total := 0
	if indexText != "" {
		n, err := engine.IndexDocuments(ctx, []string{indexText}, nil)
		if err != nil {
			return err
		}
		total += n
	}

	for _, path := range args {
		info, err := os.Stat(path)
		if err != nil {
			return fmt.Errorf("failed to stat %s: %w", path, err)
		}
		var n int
		if info.IsDir() {
			n, err = engine.IngestDirectory(ctx, path)
		} else {
			n, err = engine.IngestFile(ctx, path)
		}
		if err != nil {
			return err
		}
		total += n
	}

	fmt.Printf("Indexed %d chunks (%d vectors total)\n", total, engine.Stats().TotalVectors)
	return nil
}
