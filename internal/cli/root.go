// internal/cli/root.go
package recall

import (
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mwiater/recall/internal/appconfig"
	"github.com/mwiater/recall/internal/logging"
)

var currentConfig *appconfig.Config

var rootCmd = &cobra.Command{
	Use:   "recall",
	Short: "Terminal quiz over local and cloud LLM backends",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// 1) Load config from the environment (merging a local .env file).
		cfg, err := appconfig.Load()
		if err != nil {
			return err
		}

		// 2) Flags override the environment.
		if cmd.Flags().Changed("provider") {
			value, _ := cmd.Flags().GetString("provider")
			cfg.DefaultProvider = strings.ToLower(strings.TrimSpace(value))
		}
		if cmd.Flags().Changed("model") {
			cfg.ModelName, _ = cmd.Flags().GetString("model")
		}
		if cmd.Flags().Changed("articles-dir") {
			cfg.ArticlesDir, _ = cmd.Flags().GetString("articles-dir")
		}
		if cmd.Flags().Changed("debug") {
			cfg.Debug, _ = cmd.Flags().GetBool("debug")
		}

		// 3) Re-validate the merged result so a flag cannot bypass the
		//    provider/credential check.
		if err := cfg.Validate(); err != nil {
			return err
		}
		currentConfig = cfg

		return logging.Init(cfg.LogFilePath())
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logging.Close()
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("provider", "", "override DEFAULT_PROVIDER (ollama or openai)")
	rootCmd.PersistentFlags().String("model", "", "override MODEL_NAME")
	rootCmd.PersistentFlags().String("articles-dir", "", "override ARTICLES_DIR")
	rootCmd.PersistentFlags().Bool("debug", false, "enable request/response payload logging")
}

// getConfig returns the loaded application configuration for other commands.
func getConfig() *appconfig.Config {
	return currentConfig
}
