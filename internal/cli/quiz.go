// internal/cli/quiz.go
package recall

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/mwiater/recall/cli"
)

var startGUI = cli.StartGUI

// quizCmd represents the 'quiz' command.
var quizCmd = &cobra.Command{
	Use:   "quiz",
	Short: "Start an interactive quiz session",
	Long: `The 'quiz' command starts the interactive quiz: it checks dependencies,
generates a question from a random article, and grades your answer.`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := context.WithCancel(context.Background())
		startGUI(ctx, getConfig(), cancel)
	},
}

func init() {
	rootCmd.AddCommand(quizCmd)
}
