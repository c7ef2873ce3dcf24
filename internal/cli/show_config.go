// internal/cli/show_config.go
package recall

import (
	"github.com/k0kubun/pp"
	"github.com/spf13/cobra"
)

// configCmd represents the 'config' command.
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show the effective configuration",
	Run: func(cmd *cobra.Command, args []string) {
		// Copy so the credential never reaches the terminal.
		cfg := *getConfig()
		if cfg.OpenAIAPIKey != "" {
			cfg.OpenAIAPIKey = "********"
		}
		pp.Println(cfg)
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
}
