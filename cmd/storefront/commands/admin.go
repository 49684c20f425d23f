package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"storefront-backend/internal/auth"
)

var promoteEmail string

var promoteAdminCmd = &cobra.Command{
	Use:   "promote-admin",
	Short: "Grant admin rights to an existing user",
	Long: `Set isAdmin on the user with the given email. Admins may create,
update and delete products, categories and vendors.

Examples:
  storefront promote-admin --email ada@example.com`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runPromoteAdmin(cmd.Context())
	},
}

var ensureIndexesCmd = &cobra.Command{
	Use:   "ensure-indexes",
	Short: "Create the MongoDB indexes",
	Long: `Create the unique indexes on user email and username, category and
vendor names, and the TTL index on refresh tokens. serve does this on start.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runEnsureIndexes(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(promoteAdminCmd)
	rootCmd.AddCommand(ensureIndexesCmd)

	promoteAdminCmd.Flags().StringVar(&promoteEmail, "email", "", "Email of the user to promote")
	_ = promoteAdminCmd.MarkFlagRequired("email")
}

func runPromoteAdmin(ctx context.Context) error {
	cfg, err := loadConfig("")
	if err != nil {
		return err
	}
	st, err := connectMongo(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() { _ = st.Close(context.Background()) }()

	// Password settings are irrelevant here; only the users collection is touched.
	svc := auth.NewService(st.Users(), auth.NewTokens(cfg.JWTSecret, cfg.TokenTTL), cfg.BcryptCost)
	if err := svc.PromoteAdmin(ctx, promoteEmail); err != nil {
		return fmt.Errorf("promote %s: %w", promoteEmail, err)
	}
	fmt.Printf("%s is now an admin\n", promoteEmail)
	return nil
}

func runEnsureIndexes(ctx context.Context) error {
	cfg, err := loadConfig("")
	if err != nil {
		return err
	}
	st, err := connectMongo(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() { _ = st.Close(context.Background()) }()

	if err := st.EnsureIndexes(ctx); err != nil {
		return err
	}
	fmt.Println("indexes are up to date")
	return nil
}
