package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/asteroid-belt/recall/internal/config"
	"github.com/asteroid-belt/recall/internal/log"
	"github.com/asteroid-belt/recall/internal/merge"
	"github.com/asteroid-belt/recall/internal/repo"
	"github.com/asteroid-belt/recall/internal/syncer"
)

var (
	syncUserEmail string
	syncForce     bool
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Reconcile the local store with the remote replica",
	Long: `Reconcile the local store with the remote replica.

Pushes every local record to the remote configured via RECALL_REMOTE_URL,
resolving divergent copies per-field where safe. Records whose conflicts
need a human decision are skipped and reported, not overwritten.

Examples:
  recall sync --user alice@example.com
  recall sync --user alice@example.com --force`,
	Args: cobra.NoArgs,
	RunE: runSync,
}

func init() {
	syncCmd.Flags().StringVar(&syncUserEmail, "user", "", "email of the syncing user (required)")
	syncCmd.Flags().BoolVar(&syncForce, "force", false, "run even if the last cycle completed")
	_ = syncCmd.MarkFlagRequired("user")
}

func runSync(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	r, cfg, closer, err := openRepo()
	if err != nil {
		return err
	}
	defer closer()

	if cfg.Remote.BaseURL == "" {
		return fmt.Errorf("no remote configured; set RECALL_REMOTE_URL")
	}

	// Sync output goes to the log file too, so a failed overnight cycle can
	// be diagnosed after the terminal is gone.
	if err := log.Init(config.GetPaths(cfg).LogDir); err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Close()

	user, err := r.GetUserByEmail(ctx, syncUserEmail)
	if err != nil {
		return fmt.Errorf("lookup user: %w", err)
	}
	sess := repo.Session{UserID: user.ID, TenantID: user.TenantID, Role: user.Role}

	mergeCfg := merge.DefaultConfig()
	mergeCfg.Strategies[repo.CollectionQuizzes] = merge.AutoMerge
	mergeCfg.MergeableFields[repo.CollectionQuizzes] = []string{"answers", "score", "correctAnswers", "totalQuestions", "isPassing", "completedAt"}

	driver := syncer.New(r, syncer.NewHTTPRemote(cfg.Remote.BaseURL), mergeCfg)

	if !syncForce {
		needed, err := driver.NeedsMigration(ctx, user.ID)
		if err != nil {
			return err
		}
		if !needed {
			fmt.Println("Already in sync; use --force to push anyway.")
			return nil
		}
	}

	log.Println(headerStyle.Render("SYNCING to " + cfg.Remote.BaseURL))
	log.Println(strings.Repeat("─", 50))

	results, err := driver.Migrate(ctx, sess)
	if err != nil {
		return err
	}
	for name, res := range results {
		line := fmt.Sprintf("  %-20s %d/%d synced", name, res.Synced, res.Total)
		if res.Skipped > 0 {
			line += fmt.Sprintf(", %d need review", res.Skipped)
		}
		if res.Errors > 0 {
			line += fmt.Sprintf(", %d failed", res.Errors)
		}
		log.Println(line)
	}

	st, err := r.GetSyncState(ctx)
	if err != nil {
		return err
	}
	log.Printf("Status: %s\n", st.Status)
	if st.ErrorMessage != "" {
		log.Errorf("%s", st.ErrorMessage)
	}
	return nil
}
