package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"storefront-backend/internal/config"
	"storefront-backend/internal/store/mongostore"
)

var rootCmd = &cobra.Command{
	Use:   "storefront",
	Short: "Storefront backend - users, cart, catalog and checkout over HTTP",
	Long: `storefront runs the e-commerce REST API and its maintenance tasks.

Configuration is read from .env.local, .env and the environment
(MONGO_URI, JWT_SECRET, STRIPE_SECRET_KEY, FRONTEND_URL, PORT, ...).

Examples:
  storefront serve                          # Serve on $PORT against MongoDB
  storefront serve --store memory           # Serve with an in-memory store
  storefront promote-admin --email a@b.com  # Grant admin rights
  storefront ensure-indexes                 # Create MongoDB indexes`,
	SilenceUsage: true,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadConfig reads the environment and applies a store override from flags.
func loadConfig(storeFlag string) (config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return config.Config{}, err
	}
	if storeFlag != "" {
		cfg.Store = storeFlag
	}
	return cfg, nil
}

// connectMongo opens the document store for maintenance commands.
func connectMongo(ctx context.Context, cfg config.Config) (*mongostore.Store, error) {
	if cfg.Store != config.StoreMongo {
		return nil, fmt.Errorf("this command needs the mongo store, got %q", cfg.Store)
	}
	if cfg.MongoURI == "" {
		return nil, fmt.Errorf("MONGO_URI is required")
	}
	return mongostore.Connect(ctx, cfg.MongoURI, cfg.MongoDatabase)
}
