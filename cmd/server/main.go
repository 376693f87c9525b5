package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/hongminglow/industico-be/internal/auth"
	"github.com/hongminglow/industico-be/internal/config"
	"github.com/hongminglow/industico-be/internal/payments"
	"github.com/hongminglow/industico-be/internal/server"
	"github.com/hongminglow/industico-be/internal/storage"
	"github.com/hongminglow/industico-be/internal/storage/memory"
	"github.com/hongminglow/industico-be/internal/storage/mongodb"
	"github.com/hongminglow/industico-be/internal/storage/postgres"
)

var configPath string

func main() {
	loadLocalEnv()

	rootCmd := &cobra.Command{
		Use:          "industico",
		Short:        "Industico storefront backend",
		SilenceUsage: true,
		RunE:         runServe,
	}
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "optional config file (yaml, json, toml or .env)")

	rootCmd.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		RunE:  runServe,
	})
	rootCmd.AddCommand(&cobra.Command{
		Use:   "migrate",
		Short: "Create indexes or tables for the configured store",
		RunE:  runMigrate,
	})
	rootCmd.AddCommand(&cobra.Command{
		Use:   "token [email]",
		Short: "Issue an access token for email",
		Args:  cobra.ExactArgs(1),
		RunE:  runToken,
	})

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	ctx := cmd.Context()
	docs, err := openStore(ctx, cfg)
	if err != nil {
		return fmt.Errorf("init store: %w", err)
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := docs.Close(closeCtx); err != nil {
			log.Printf("close store: %v", err)
		}
	}()

	if cfg.StripeSecretKey == "" {
		log.Println("STRIPE_SECURE_KEY not set; payment intents are disabled")
	}
	repo := storage.NewRepository(docs, cfg.StoreTransactions)
	srv := server.New(cfg, repo, payments.NewStripeProcessor(cfg.StripeSecretKey))

	errCh := make(chan error, 1)
	go func() {
		log.Printf("Industico backend listening on %s (store: %s)", cfg.HTTPAddress(), cfg.StoreDriver)
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sigCh:
	case err := <-errCh:
		return fmt.Errorf("http server error: %w", err)
	}

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctxShutdown); err != nil {
		log.Printf("graceful shutdown error: %v", err)
	}
	return nil
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	docs, err := openStore(cmd.Context(), cfg)
	if err != nil {
		return fmt.Errorf("init store: %w", err)
	}
	defer docs.Close(context.Background())

	if err := docs.Migrate(cmd.Context()); err != nil {
		return err
	}
	log.Printf("migrations applied to %s store", cfg.StoreDriver)
	return nil
}

func runToken(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	token, err := auth.NewTokenManager(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTTTL).Generate(args[0])
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), token)
	return nil
}

func openStore(ctx context.Context, cfg config.Config) (storage.DocumentStore, error) {
	switch cfg.StoreDriver {
	case config.DriverMongo:
		return mongodb.NewStore(ctx, cfg.MongoURI, cfg.DatabaseName)
	case config.DriverPostgres:
		return postgres.NewStore(ctx, cfg.DatabaseURL)
	case config.DriverMemory:
		return memory.NewStore(), nil
	default:
		return nil, fmt.Errorf("%w: %s", storage.ErrUnknownDriver, cfg.StoreDriver)
	}
}

func loadLocalEnv() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found; relying on existing environment")
	}
}
