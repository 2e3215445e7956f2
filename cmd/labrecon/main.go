package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/labrecon/labrecon/internal/config"
	"github.com/labrecon/labrecon/internal/domain/audit"
	"github.com/labrecon/labrecon/internal/domain/documents"
	"github.com/labrecon/labrecon/internal/domain/encounter"
	"github.com/labrecon/labrecon/internal/domain/facility"
	"github.com/labrecon/labrecon/internal/domain/order"
	"github.com/labrecon/labrecon/internal/domain/patient"
	"github.com/labrecon/labrecon/internal/platform/auth"
	"github.com/labrecon/labrecon/internal/platform/db"
	"github.com/labrecon/labrecon/internal/platform/middleware"
	"github.com/labrecon/labrecon/internal/platform/notification"
	"github.com/labrecon/labrecon/internal/recon"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "labrecon",
		Short: "Laboratory result reconciliation engine",
	}

	rootCmd.AddCommand(runCmd())
	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(tokenCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newLogger(verbose bool) zerolog.Logger {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if os.Getenv("ENV") == "development" {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}
	if !verbose {
		logger = logger.Level(zerolog.InfoLevel)
	}
	return logger
}

// buildCoordinator wires the engine against a live database pool.
func buildCoordinator(cfg *config.Config, pool *pgxpool.Pool, logger zerolog.Logger) *recon.Coordinator {
	patientRepo := patient.NewRepoPG(pool)
	orderRepo := order.NewRepoPG(pool)
	orphanRepo := order.NewOrphanRepoPG(pool)
	itemRepo := order.NewItemRepoPG(pool)
	reportRepo := order.NewReportRepoPG(pool)
	encounterSvc := encounter.NewService(encounter.NewRepoPG(pool))

	return recon.NewCoordinator(recon.Deps{
		Patients:      patient.NewResolver(patientRepo),
		PatientStore:  patientRepo,
		OrderResolver: order.NewResolver(orderRepo),
		Factory:       order.NewPlaceholderFactory(orderRepo, orphanRepo, encounterSvc),
		Merger:        order.NewMerger(&db.PoolTxRunner{Pool: pool}, itemRepo, reportRepo),
		Status:        order.NewStatusManager(orderRepo),
		Facilities:    facility.NewService(facility.NewRepoPG(pool)),
		Publisher:     documents.NewPublisher(cfg.DocumentRoot, documents.NewRepoPG(pool), logger),
		Notifier:      notification.NewDispatcher(&notification.LogChannel{Log: logger}, notification.NewTemplateEngine(), logger),
		Trail:         audit.NewRepoPG(pool),
		Log:           logger,
	})
}

func runCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Process one batch of result messages from the inbox",
		RunE: func(cmd *cobra.Command, args []string) error {
			lab, _ := cmd.Flags().GetString("lab")
			from, _ := cmd.Flags().GetString("from")
			thru, _ := cmd.Flags().GetString("thru")
			max, _ := cmd.Flags().GetInt("max")
			input, _ := cmd.Flags().GetString("input")
			operator, _ := cmd.Flags().GetString("operator")
			verbose, _ := cmd.Flags().GetBool("verbose")

			logger := newLogger(verbose)
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			ctx := context.Background()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return fmt.Errorf("connect to database: %w", err)
			}
			defer pool.Close()

			inbox := cfg.InboxDir
			if input != "" {
				inbox = input
			}
			src := recon.NewFileSource(inbox, logger)
			coord := buildCoordinator(cfg, pool, logger)

			sum, err := coord.Run(ctx, src, recon.RunContext{
				Operator:        operator,
				DefaultFacility: cfg.DefaultFacility,
				Lab:             lab,
				From:            from,
				Thru:            thru,
				MaxMessages:     max,
			})
			if sum != nil {
				fmt.Printf("batch %s: merged=%d orphans=%d skipped=%d aborted=%d documents=%d results=%d abnormal=%d\n",
					sum.BatchID, sum.Merged, sum.Orphans, sum.Skipped, sum.Aborted, sum.Documents, sum.Results, sum.Abnormal)
			}
			return err
		},
	}
	cmd.Flags().String("lab", "", "Lab processor to fetch from (empty = all labs)")
	cmd.Flags().String("from", "", "Start of the requested result window (passed to the source)")
	cmd.Flags().String("thru", "", "End of the requested result window (passed to the source)")
	cmd.Flags().Int("max", 0, "Maximum messages to process (0 = no limit)")
	cmd.Flags().String("input", "", "Inbox directory (overrides INBOX_DIR)")
	cmd.Flags().String("operator", "scheduler", "Operator name recorded in the audit trail")
	cmd.Flags().Bool("verbose", false, "Enable debug logging")
	return cmd
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the admin trigger server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

func runServer() error {
	logger := newLogger(true)

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("invalid config")
	}

	ctx := context.Background()
	pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()
	logger.Info().Msg("connected to database")

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":  "ok",
			"version": "0.1.0",
		})
	})

	apiV1 := e.Group("/api/v1")
	if cfg.IsDev() && cfg.AdminTokenSecret == "" {
		logger.Warn().Msg("no admin token secret set; using dev identity")
		apiV1.Use(auth.DevMiddleware())
	} else {
		apiV1.Use(auth.TokenMiddleware([]byte(cfg.AdminTokenSecret)))
	}

	coord := buildCoordinator(cfg, pool, logger)
	newSource := func() recon.Source {
		return recon.NewFileSource(cfg.InboxDir, logger)
	}
	handler := recon.NewHandler(coord, newSource, recon.RunContext{
		Operator:        "admin-api",
		DefaultFacility: cfg.DefaultFacility,
	}, logger)
	handler.RegisterRoutes(apiV1)

	// Graceful shutdown
	go func() {
		if err := e.Start(":" + cfg.Port); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()
	logger.Info().Str("port", cfg.Port).Msg("admin trigger server started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("shutdown error")
	}
	logger.Info().Msg("server stopped")
	return nil
}

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
	}

	upCmd := &cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")

			cfg, err := config.Load()
			if err != nil {
				return err
			}

			ctx := context.Background()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			migrator := db.NewMigrator(pool, dir)
			count, err := migrator.Up(ctx)
			if err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}

			fmt.Printf("Applied %d migration(s) successfully.\n", count)
			return nil
		},
	}
	upCmd.Flags().String("dir", "./migrations", "Path to migrations directory")
	cmd.AddCommand(upCmd)

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show migration status",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")

			cfg, err := config.Load()
			if err != nil {
				return err
			}

			ctx := context.Background()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			migrator := db.NewMigrator(pool, dir)
			statuses, err := migrator.Status(ctx)
			if err != nil {
				return fmt.Errorf("failed to get migration status: %w", err)
			}

			fmt.Printf("%-10s %-40s %-10s %s\n", "VERSION", "NAME", "STATUS", "APPLIED AT")
			fmt.Println("---------- ---------------------------------------- ---------- --------------------")
			for _, s := range statuses {
				status := "pending"
				appliedAt := ""
				if s.Applied {
					status = "applied"
					if s.AppliedAt != nil {
						appliedAt = s.AppliedAt.Format("2006-01-02 15:04:05")
					}
				}
				fmt.Printf("%-10d %-40s %-10s %s\n", s.Version, s.Name, status, appliedAt)
			}
			return nil
		},
	}
	statusCmd.Flags().String("dir", "./migrations", "Path to migrations directory")
	cmd.AddCommand(statusCmd)

	return cmd
}

func tokenCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint an admin API token",
		RunE: func(cmd *cobra.Command, args []string) error {
			operator, _ := cmd.Flags().GetString("operator")
			ttl, _ := cmd.Flags().GetDuration("ttl")
			if operator == "" {
				return fmt.Errorf("--operator is required")
			}

			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if cfg.AdminTokenSecret == "" {
				return fmt.Errorf("ADMIN_TOKEN_SECRET is not configured")
			}

			token, err := auth.IssueToken([]byte(cfg.AdminTokenSecret), operator, ttl)
			if err != nil {
				return err
			}
			fmt.Println(token)
			return nil
		},
	}
	cmd.Flags().String("operator", "", "Operator name embedded in the token")
	cmd.Flags().Duration("ttl", 24*time.Hour, "Token lifetime")
	return cmd
}
