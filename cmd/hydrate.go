package cmd

import (
	"context"
	"fmt"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"
)

// hydrateCmd downloads every configured threat feed once and prints the summary
var hydrateCmd = &cobra.Command{
	Use:   "hydrate",
	Short: "download the configured threat feeds",
	Run: func(cmd *cobra.Command, _ []string) {
		err := hydrate(cmd.Context(), cmd)
		cobra.CheckErr(err)
	},
}

func init() {
	rootCmd.AddCommand(hydrateCmd)
}

func hydrate(ctx context.Context, cmd *cobra.Command) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	manager, err := setupIntel(cfg)
	if err != nil {
		return fmt.Errorf("setting up intel: %w", err)
	}

	summary, err := manager.Hydrate(ctx)
	if err != nil {
		return fmt.Errorf("hydrating feeds: %w", err)
	}

	out, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(cmd.OutOrStdout(), string(out))

	return err
}
