package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var askRephrase bool

func newAskCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ask <question>",
		Short: "Answer a question using the indexed documents",
		Long: `Retrieve the most relevant chunks for the question and generate an
answer grounded in them.

Examples:
  ragpipe ask "what does the design doc say about retries?"
  ragpipe ask -k 10 --rephrase "retries?"`,
		Args: cobra.MinimumNArgs(1),
		RunE: runAsk,
	}

	cmd.Flags().BoolVar(&askRephrase, "rephrase", false, "rephrase the question before retrieval")
	return cmd
}

func runAsk(cmd *cobra.Command, args []string) error {
	question := strings.Join(args, " ")

	engine, cfg, err := buildEngine()
	if err != nil {
		return err
	}

	answer, err := engine.AnswerQuestion(cmd.Context(), question, cfg.Retrieval.TopK, askRephrase)
	if err != nil {
		return err
	}
	fmt.Println(answer)
	return nil
}
