// internal/cli/pull.go
package recall

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/mwiater/recall/internal/providers/ollama"
)

// pullCmd represents the 'pull' command.
var pullCmd = &cobra.Command{
	Use:   "pull [model]",
	Short: "Pull a model to the Ollama server",
	Long: `The 'pull' command downloads a model to the local Ollama server. With no
argument it pulls the configured MODEL_NAME. The call blocks until the
download completes.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := getConfig()
		name := cfg.ModelName
		if len(args) == 1 {
			name = args[0]
		}

		client := ollama.New(cfg)
		fmt.Printf("Pulling %s (this may take a while)...\n", name)
		if err := client.PullModel(cmd.Context(), name); err != nil {
			return err
		}
		color.Green("✓ %s pulled", name)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(pullCmd)
}
