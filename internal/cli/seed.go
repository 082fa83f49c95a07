package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/asteroid-belt/recall/internal/models"
	"github.com/asteroid-belt/recall/internal/repo"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed a demo tenant with categories, questions and a user",
	Args:  cobra.NoArgs,
	RunE:  runSeed,
}

func runSeed(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	r, _, closer, err := openRepo()
	if err != nil {
		return err
	}
	defer closer()

	tenant, err := r.CreateTenant(ctx, models.Tenant{Name: "Demo Academy", IsActive: true})
	if err != nil {
		return err
	}
	admin := repo.Session{TenantID: tenant.ID, Role: models.RoleAdmin}

	user, err := r.CreateUser(ctx, models.User{
		Email:        "alice@example.com",
		DisplayName:  "Alice",
		TenantID:     tenant.ID,
		Role:         models.RoleStudent,
		TokenBalance: 100,
	})
	if err != nil {
		return err
	}

	cat, err := r.CreateCategory(ctx, admin, models.Category{
		Name:          "Security",
		Subcategories: []string{"networking", "crypto"},
	})
	if err != nil {
		return err
	}

	questions := []models.Question{
		{
			CategoryID:    cat.ID,
			Subcategory:   "networking",
			Text:          "Which port does HTTPS use by default?",
			Options:       []string{"80", "443", "22", "8080"},
			CorrectAnswer: 1,
			Difficulty:    models.DifficultyBeginner,
		},
		{
			CategoryID:    cat.ID,
			Subcategory:   "crypto",
			Text:          "Which of these is an asymmetric algorithm?",
			Options:       []string{"AES", "RSA", "ChaCha20", "Blowfish"},
			CorrectAnswer: 1,
			Difficulty:    models.DifficultyIntermediate,
		},
		{
			CategoryID:    cat.ID,
			Subcategory:   "networking",
			Text:          "What does TLS primarily provide?",
			Options:       []string{"Compression", "Routing", "Encryption in transit", "Load balancing"},
			CorrectAnswer: 2,
			Difficulty:    models.DifficultyBeginner,
		},
	}
	for _, q := range questions {
		if _, err := r.CreateQuestion(ctx, admin, q); err != nil {
			return err
		}
	}

	if _, err := r.CreateItem(ctx, admin, models.MarketplaceItem{
		Title:      "Security study notes",
		TokensCost: 25,
	}); err != nil {
		return err
	}

	fmt.Printf("Seeded tenant %s with user %s and %d questions\n",
		tenant.Name, user.Email, len(questions))
	return nil
}
