// internal/cli/models_list.go
package recall

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/mwiater/recall/internal/providers/ollama"
)

// modelsCmd represents the 'models' command.
var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "List models installed on the Ollama server",
	RunE: func(cmd *cobra.Command, args []string) error {
		client := ollama.New(getConfig())
		names, err := client.ListModels(cmd.Context())
		if err != nil {
			return err
		}
		if len(names) == 0 {
			fmt.Println("No models installed.")
			return nil
		}
		color.Cyan("Installed models:")
		for _, name := range names {
			fmt.Printf("  %s\n", name)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(modelsCmd)
}
