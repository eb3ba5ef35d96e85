package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/satheeshds/invoicer/auth"
	"github.com/satheeshds/invoicer/config"
	"github.com/satheeshds/invoicer/db"
	"github.com/satheeshds/invoicer/filestore"
	"github.com/satheeshds/invoicer/handlers"
	"github.com/satheeshds/invoicer/store"
	"github.com/spf13/cobra"
)

var skipMigrations bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long: `Start the HTTP server. Pending migrations are applied first unless
--skip-migrations is given.

Required environment variables:
  DATABASE_URL - Postgres connection string
  JWT_SECRET   - signing key for login tokens`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	for _, c := range []*cobra.Command{rootCmd, serveCmd} {
		c.Flags().BoolVar(&skipMigrations, "skip-migrations", false, "do not apply pending migrations at startup")
	}
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := cfg.ValidateServe(); err != nil {
		return err
	}
	ctx := cmd.Context()

	pool, err := db.Open(ctx, cfg.DatabaseURL, cfg.DBMaxConns)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer pool.Close()

	if !skipMigrations {
		if err := db.Migrate(ctx, pool, db.MigrateUp); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}
	}

	files, images, err := openFileStore(ctx, cfg)
	if err != nil {
		return err
	}

	h := handlers.New(handlers.Options{
		Store:   store.New(store.NewPgxPool(pool)),
		Files:   files,
		Tokens:  auth.NewTokens(cfg.JWTSecret, cfg.JWTExpiresIn),
		APIKeys: cfg.APIKeys(),
		Images:  images,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           h.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	slog.Info("server starting", "address", srv.Addr, "storage", cfg.StorageDriver)
	return srv.ListenAndServe()
}

// openFileStore returns the upload store and, for the local driver, the handler serving it.
func openFileStore(ctx context.Context, cfg *config.Config) (filestore.Store, http.Handler, error) {
	switch cfg.StorageDriver {
	case filestore.DriverS3:
		s, err := filestore.NewS3(ctx, filestore.S3Config{
			Bucket:          cfg.S3Bucket,
			Region:          cfg.S3Region,
			Prefix:          cfg.S3Prefix,
			AccessKeyID:     cfg.S3AccessKeyID,
			SecretAccessKey: cfg.S3SecretAccessKey,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open S3 file store: %w", err)
		}
		return s, nil, nil
	default:
		l, err := filestore.NewLocal(cfg.ImagesDir)
		if err != nil {
			return nil, nil, err
		}
		return l, l.Handler(), nil
	}
}
