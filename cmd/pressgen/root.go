package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/nao1215/pressgen/internal/config"
)

// NewRootCmd creates the root command for pressgen.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pressgen",
		Short: "Generate and publish WordPress content with an LLM",
		Long: `pressgen writes a post with a completion API, picks a featured image from
Pexels and creates or updates the post on a WordPress site, matched by slug.

Credentials are read from the environment or a .env file:
  GROQ_KEY (or GEMINI_API_KEY), PEXELS_KEY, WP_SITE, WP_USER, WP_APP_PASS

Everything else can be set in .pressgen.yaml (see "pressgen init").`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")
	cmd.PersistentFlags().Bool("log-json", false, "Write logs as JSON")
	cmd.PersistentFlags().StringP("config", "c", "",
		"Configuration file path (default: "+config.DefaultConfigFile+" in current or home directory)")
	cmd.PersistentFlags().String("env-file", config.DefaultEnvFile, "dotenv file with credentials")

	cmd.AddCommand(NewPublishCmd())
	cmd.AddCommand(NewPagesCmd())
	cmd.AddCommand(NewHistoryCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
