package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var chatRephrase bool

func newChatCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Ask questions interactively",
		Long: `Start an interactive loop that answers each question against the
indexed documents. Type "exit" or press Ctrl-D to leave.`,
		RunE: runChat,
	}

	cmd.Flags().BoolVar(&chatRephrase, "rephrase", false, "rephrase questions before retrieval")
	return cmd
}

func runChat(cmd *cobra.Command, args []string) error {
	engine, cfg, err := buildEngine()
	if err != nil {
		return err
	}

	stats := engine.Stats()
	fmt.Printf("Chatting over %d vectors in %s. Type \"exit\" to quit.\n", stats.TotalVectors, stats.Path)

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			fmt.Println()
			return scanner.Err()
		}
		question := strings.TrimSpace(scanner.Text())
		if question == "" {
			continue
		}
		if question == "exit" || question == "quit" {
			return nil
		}

		answer, err := engine.AnswerQuestion(cmd.Context(), question, cfg.Retrieval.TopK, chatRephrase)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			continue
		}
		fmt.Println(answer)
	}
}
