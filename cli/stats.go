package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

func newStatsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show vector store statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, _, err := buildEngine()
			if err != nil {
				return err
			}
			stats := engine.Stats()
			fmt.Printf("Path:       %s\n", stats.Path)
			fmt.Printf("Index type: %s\n", stats.IndexType)
			fmt.Printf("Dimension:  %d\n", stats.Dimension)
			fmt.Printf("Vectors:    %d\n", stats.TotalVectors)
			return nil
		},
	}
}

var clearYes bool

func newClearCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove everything from the vector store",
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, cfg, err := buildEngine()
			if err != nil {
				return err
			}

			if !clearYes {
				fmt.Printf("This will remove all %d vectors from %s. Continue? [y/N] ",
					engine.Stats().TotalVectors, cfg.Store.Path)
				reader := bufio.NewReader(os.Stdin)
				line, _ := reader.ReadString('\n')
				if answer := strings.ToLower(strings.TrimSpace(line)); answer != "y" && answer != "yes" {
					fmt.Println("Aborted.")
					return nil
				}
			}

			engine.Clear()
			fmt.Println("Vector store cleared.")
			return nil
		},
	}

	cmd.Flags().BoolVarP(&clearYes, "yes", "y", false, "skip confirmation")
	return cmd
}
