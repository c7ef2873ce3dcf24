// internal/cli/check.go
package recall

import (
	"context"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/mwiater/recall/internal/appconfig"
	"github.com/mwiater/recall/internal/providers/ollama"
	"github.com/mwiater/recall/internal/readiness"
)

// checkCmd represents the 'check' command, a headless run of the readiness
// probe.
var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Verify the active provider, model, and articles are ready",
	Long: `The 'check' command runs the same readiness sequence the quiz performs at
startup: reach the Ollama server (starting it if needed), confirm the
configured model is installed (pulling it if needed), and confirm the
articles directory is not empty.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runCheck(cmd.Context(), getConfig())
	},
}

func runCheck(ctx context.Context, cfg *appconfig.Config) error {
	if cfg.DefaultProvider == appconfig.ProviderOllama {
		prober := readiness.NewProber(ollama.New(cfg), cfg.ModelName)
		prober.Notify = func(state readiness.State, message string) {
			switch state {
			case readiness.StateFailed:
				color.Red("✗ [%s] %s", state, message)
			case readiness.StateReady:
				color.Green("✓ [%s] %s", state, message)
			default:
				color.White("• [%s] %s", state, message)
			}
		}
		if err := prober.EnsureLocal(ctx); err != nil {
			return err
		}
	} else {
		color.Green("✓ OpenAI credential configured")
	}

	if err := readiness.EnsureCorpus(cfg.ArticlesDir); err != nil {
		color.Red("✗ %v", err)
		return err
	}
	color.Green("✓ Articles present in %s", cfg.ArticlesDir)
	return nil
}

func init() {
	rootCmd.AddCommand(checkCmd)
}
