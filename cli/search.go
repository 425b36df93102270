package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var searchJSON bool

func newSearchCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search the vector store without generating an answer",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runSearch,
	}

	cmd.Flags().BoolVar(&searchJSON, "json", false, "print results as JSON")
	return cmd
}

func runSearch(cmd *cobra.Command, args []string) error {
	query := strings.Join(args, " ")

	engine, cfg, err := buildEngine()
	if err != nil {
		return err
	}

	results, err := engine.SearchSimilar(cmd.Context(), query, cfg.Retrieval.TopK)
	if err != nil {
		return err
	}

	if searchJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}

	if len(results) == 0 {
		fmt.Println("No results.")
		return nil
	}
	for _, r := range results {
		score := 1 / (1 + r.Distance)
		fmt.Printf("[%d] score=%.2f distance=%.4f\n", r.Ordinal, score, r.Distance)
		fmt.Printf("    %s\n", r.Text)
	}
	return nil
}
