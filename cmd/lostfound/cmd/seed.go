package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/vbonduro/lostfound/internal/domain"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load demo users and items into an empty store",
	RunE:  runSeed,
}

func runSeed(cmd *cobra.Command, args []string) error {
	a, err := newApp(cfg, logger)
	if err != nil {
		return err
	}
	defer a.close()

	seeded, err := seedDemo(cmd.Context(), a)
	if err != nil {
		return err
	}
	if !seeded {
		fmt.Fprintln(cmd.OutOrStdout(), "store already has users, nothing seeded")
		return nil
	}
	fmt.Fprintln(cmd.OutOrStdout(), "demo data loaded")
	return nil
}

type demoItem struct {
	kind  domain.Kind
	owner int
	item  domain.NewItem
}

var (
	demoAdmin = domain.NewUser{Name: "Admin User", Email: "admin@university.test", UniversityID: "ADMIN-001", Password: "Admin@123"}

	demoStudents = []domain.NewUser{
		{Name: "Ali Smith", Email: "ali@university.test", UniversityID: "U2025-001", Password: "Student@123"},
		{Name: "Sara Martinez", Email: "sara@university.test", UniversityID: "U2025-002", Password: "Student@123"},
		{Name: "Bilal Khan", Email: "bilal@university.test", UniversityID: "U2025-003", Password: "Student@123"},
	}

	// Found items are reported by a different student than the matching lost
	// item so the iPhone pair produces a proposal.
	demoItems = []demoItem{
		{domain.KindLost, 0, domain.NewItem{
			Title: "iPhone 13 Pro", Category: "Electronics", Location: "Main Library", Date: demoDate(15),
			Description: "Black iPhone with blue case, lost near library",
		}},
		{domain.KindLost, 1, domain.NewItem{
			Title: "Black Backpack", Category: "Bags & Accessories", Location: "Student Center", Date: demoDate(12),
			Description: "Nike backpack with laptop inside",
		}},
		{domain.KindLost, 2, domain.NewItem{
			Title: "Calculus Textbook", Category: "Books & Documents", Location: "Engineering Building", Date: demoDate(10),
			Description: "Red cover, name written inside",
		}},
		{domain.KindFound, 1, domain.NewItem{
			Title: "Black iPhone", Category: "Electronics", Location: "Main Library", Date: demoDate(15),
			Description: "Found near library entrance, has blue case",
		}},
		{domain.KindFound, 2, domain.NewItem{
			Title: "Denim Jacket", Category: "Clothing", Location: "Cafeteria", Date: demoDate(14),
			Description: "Light blue denim jacket, size M",
		}},
		{domain.KindFound, 0, domain.NewItem{
			Title: "Student ID Card", Category: "Keys & Cards", Location: "Student Center", Date: demoDate(11),
			Description: "University ID with blue lanyard",
		}},
	}
)

func demoDate(day int) time.Time {
	return time.Date(2024, time.December, day, 0, 0, 0, 0, time.UTC)
}

// seedDemo loads the demo accounts and items through the services, so
// matching and notifications run as they would for real reports. It does
// nothing when any user exists.
func seedDemo(ctx context.Context, a *app) (bool, error) {
	existing, err := a.services.Users.List(ctx)
	if err != nil {
		return false, err
	}
	if len(existing) > 0 {
		a.logger.Info("store already seeded, skipping")
		return false, nil
	}

	if _, err := a.services.Users.Provision(ctx, demoAdmin, domain.RoleAdmin); err != nil {
		return false, fmt.Errorf("failed to seed admin: %w", err)
	}
	students := make([]*domain.User, 0, len(demoStudents))
	for _, n := range demoStudents {
		u, err := a.services.Users.Provision(ctx, n, domain.RoleStudent)
		if err != nil {
			return false, fmt.Errorf("failed to seed %s: %w", n.Email, err)
		}
		students = append(students, u)
	}

	for _, d := range demoItems {
		if _, err := a.services.Items.Report(ctx, d.kind, students[d.owner].ID, d.item, nil); err != nil {
			return false, fmt.Errorf("failed to seed %q: %w", d.item.Title, err)
		}
	}
	a.logger.Info("demo data seeded", "users", len(students)+1, "items", len(demoItems))
	return true, nil
}
