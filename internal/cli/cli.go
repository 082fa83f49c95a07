// Package cli provides the command-line interface for Recall.
package cli

import (
	"context"
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/asteroid-belt/recall/internal/config"
	"github.com/asteroid-belt/recall/internal/repo"
	"github.com/asteroid-belt/recall/internal/store"
	"github.com/asteroid-belt/recall/pkg/version"
)

var headerStyle = lipgloss.NewStyle().Bold(true)

var rootCmd = &cobra.Command{
	Use:   "recall",
	Short: "Local-first quiz platform data layer",
	Long: `Local-first quiz platform data layer

Stores quizzes, questions, mastery scores and purchases in an embedded
local database, and reconciles them with a remote replica when one is
configured (RECALL_REMOTE_URL).`,
	SilenceUsage: true,
	Version:      version.Short(),
}

func init() {
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(syncCmd)
	rootCmd.AddCommand(seedCmd)
}

// Execute runs the CLI.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

// openRepo loads config and opens the store and repository for a command.
// The returned closer must be deferred.
func openRepo() (*repo.Repo, *config.Config, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, nil, fmt.Errorf("load config: %w", err)
	}
	paths := config.GetPaths(cfg)
	st, err := store.Open(store.Config{
		Path:        paths.Database,
		Schema:      repo.Schema(),
		Debug:       cfg.Debug,
		MaxIdleConn: 1,
		MaxOpenConn: 1,
	})
	if err != nil {
		return nil, nil, nil, fmt.Errorf("open store: %w", err)
	}
	return repo.New(st), cfg, func() { _ = st.Close() }, nil
}
