package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/asteroid-belt/recall/internal/repo"
)

var statsUserEmail string

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show store statistics",
	Long: `Show record counts per collection, or a user's derived statistics
when --user is given.

Examples:
  recall stats
  recall stats --user alice@example.com`,
	Args: cobra.NoArgs,
	RunE: runStats,
}

func init() {
	statsCmd.Flags().StringVar(&statsUserEmail, "user", "", "show stats for this user email")
}

func runStats(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	r, _, closer, err := openRepo()
	if err != nil {
		return err
	}
	defer closer()

	if statsUserEmail == "" {
		fmt.Println(headerStyle.Render("STORE CONTENTS"))
		fmt.Println(strings.Repeat("─", 50))
		for _, coll := range r.Store().Schema().Collections {
			n, err := r.Store().Count(ctx, coll.Name)
			if err != nil {
				return err
			}
			fmt.Printf("  %-20s %d\n", coll.Name, n)
		}
		return nil
	}

	user, err := r.GetUserByEmail(ctx, statsUserEmail)
	if err != nil {
		return fmt.Errorf("lookup user: %w", err)
	}
	sess := repo.Session{UserID: user.ID, TenantID: user.TenantID, Role: user.Role}
	stats, err := r.UserStats(ctx, sess, user.ID)
	if err != nil {
		return err
	}

	fmt.Printf("%s (%s)\n", headerStyle.Render(user.DisplayName), user.Email)
	fmt.Println(strings.Repeat("─", 50))
	fmt.Printf("  Quizzes:   %d total, %d completed, %d passed\n",
		stats.TotalQuizzes, stats.CompletedQuizzes, stats.PassedQuizzes)
	fmt.Printf("  Average:   %.2f%%\n", stats.AverageScore)
	fmt.Printf("  Streak:    %d day(s)\n", stats.CurrentStreak)
	fmt.Printf("  Tokens:    %d\n", user.TokenBalance)
	for _, b := range stats.Breakdown {
		fmt.Printf("  %-20s %3d%% (%d answered)\n",
			b.CategoryID+"/"+b.Subcategory, b.RollingAverage, b.TotalAnswers)
	}
	return nil
}
