package commands

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"storefront-backend/internal/auth"
	"storefront-backend/internal/cart"
	"storefront-backend/internal/catalog"
	"storefront-backend/internal/config"
	"storefront-backend/internal/httpapi"
	"storefront-backend/internal/logging"
	"storefront-backend/internal/metrics"
	"storefront-backend/internal/payment"
	"storefront-backend/internal/store"
	"storefront-backend/internal/store/memstore"
)

const (
	serviceName     = "storefront"
	shutdownTimeout = 10 * time.Second
)

var (
	// Serve flags
	servePort  string
	serveStore string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	Long: `Run the HTTP API until SIGINT or SIGTERM, then drain in-flight
requests for up to 10 seconds.

Examples:
  storefront serve
  storefront serve --port 8080
  storefront serve --store memory`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&servePort, "port", "", "Listen port (overrides PORT)")
	serveCmd.Flags().StringVar(&serveStore, "store", "", "Document store: mongo or memory (overrides STORE)")
}

func runServe(ctx context.Context) error {
	cfg, err := loadConfig(serveStore)
	if err != nil {
		return err
	}
	if servePort != "" {
		cfg.Port = servePort
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger, err := logging.New(serviceName, cfg.Env, cfg.LogLevel)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()
	zap.ReplaceGlobals(logger)

	if cfg.Production() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := openStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := st.Close(context.Background()); err != nil {
			logger.Warn("store_close_failed", zap.Error(err))
		}
	}()

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(reg)

	var gateway payment.Gateway
	if cfg.StripeSecretKey != "" {
		gateway = payment.NewStripeGateway(cfg.StripeSecretKey)
	} else {
		logger.Warn("payment_gateway_disabled", zap.String("reason", "STRIPE_SECRET_KEY is not set"))
	}

	router := httpapi.NewRouter(httpapi.Deps{
		Auth:           auth.NewService(st.Users(), auth.NewTokens(cfg.JWTSecret, cfg.TokenTTL), cfg.BcryptCost),
		Catalog:        catalog.NewService(st),
		Cart:           cart.NewService(st, m, cart.Options{RemoveAtFloor: cfg.CartRemoveAtFloor}),
		Payment:        payment.NewService(gateway, cfg.FrontendURL, m),
		Store:          st,
		Metrics:        m,
		Gatherer:       reg,
		Logger:         logger,
		FrontendURL:    cfg.FrontendURL,
		RequestTimeout: cfg.RequestTimeout,
	})

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server_starting", zap.String("addr", srv.Addr), zap.String("store", cfg.Store))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("server_stopping")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	logger.Info("server_stopped")
	return nil
}

func openStore(ctx context.Context, cfg config.Config, logger *zap.Logger) (store.Store, error) {
	if cfg.Store == config.StoreMemory {
		logger.Warn("using_memory_store", zap.String("reason", "data is lost on exit"))
		return memstore.New(), nil
	}

	st, err := connectMongo(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if err := st.EnsureIndexes(ctx); err != nil {
		_ = st.Close(context.Background())
		return nil, err
	}
	logger.Info("mongo_connected", zap.String("database", cfg.MongoDatabase))
	return st, nil
}
