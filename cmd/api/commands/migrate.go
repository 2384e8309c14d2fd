package commands

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/spf13/cobra"

	"github.com/biofert/core/internal/adapters/repository"
	"github.com/biofert/core/internal/infrastructure/config"
	"github.com/biofert/core/internal/infrastructure/database"
	"github.com/biofert/core/internal/infrastructure/logger"
	"github.com/biofert/core/migrations"
)

// NewMigrateCommand creates the migrate command with subcommands
func NewMigrateCommand() *cobra.Command {
	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Database migration commands",
		Long:  "Manage the postgres event store schema (up, down, version, seed)",
	}

	var steps int

	upCmd := &cobra.Command{
		Use:   "up",
		Short: "Run all up migrations",
		Run: func(cmd *cobra.Command, args []string) {
			runMigration(cmd.Context(), "up", steps)
		},
	}
	upCmd.Flags().IntVar(&steps, "steps", 0, "Number of migrations to apply (0 = all)")
	migrateCmd.AddCommand(upCmd)

	downCmd := &cobra.Command{
		Use:   "down",
		Short: "Run all down migrations",
		Run: func(cmd *cobra.Command, args []string) {
			runMigration(cmd.Context(), "down", steps)
		},
	}
	downCmd.Flags().IntVar(&steps, "steps", 0, "Number of migrations to revert (0 = all)")
	migrateCmd.AddCommand(downCmd)

	migrateCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print current migration version",
		Run: func(cmd *cobra.Command, args []string) {
			showMigrationVersion(cmd.Context())
		},
	})

	migrateCmd.AddCommand(&cobra.Command{
		Use:   "seed",
		Short: "Copy events from the content file into postgres",
		Run: func(cmd *cobra.Command, args []string) {
			seedEvents(cmd.Context())
		},
	})

	return migrateCmd
}

func newMigrator(db *database.DB) (*migrate.Migrate, error) {
	src, err := iofs.New(migrations.FS, ".")
	if err != nil {
		return nil, fmt.Errorf("failed to open embedded migrations: %w", err)
	}

	driver, err := postgres.WithInstance(db.DB.DB, &postgres.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to create migration driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, "postgres", driver)
	if err != nil {
		return nil, fmt.Errorf("failed to create migration instance: %w", err)
	}
	return m, nil
}

func openDatabase(ctx context.Context) *database.DB {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.New(ctx, cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	return db
}

func runMigration(ctx context.Context, direction string, steps int) {
	db := openDatabase(ctx)
	defer db.Close()

	m, err := newMigrator(db)
	if err != nil {
		log.Fatalf("%v", err)
	}

	switch direction {
	case "up":
		if steps > 0 {
			err = m.Steps(steps)
		} else {
			err = m.Up()
		}
	case "down":
		if steps > 0 {
			err = m.Steps(-steps)
		} else {
			err = m.Down()
		}
	}

	if errors.Is(err, migrate.ErrNoChange) {
		fmt.Println("No migrations to run")
		return
	}
	if err != nil {
		log.Fatalf("Migration failed: %v", err)
	}

	fmt.Printf("Migration %s completed successfully\n", direction)
}

func showMigrationVersion(ctx context.Context) {
	db := openDatabase(ctx)
	defer db.Close()

	m, err := newMigrator(db)
	if err != nil {
		log.Fatalf("%v", err)
	}

	version, dirty, err := m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		fmt.Println("No migrations applied")
		return
	}
	if err != nil {
		log.Fatalf("Failed to get migration version: %v", err)
	}

	fmt.Printf("Current migration version: %d\n", version)
	fmt.Printf("Dirty: %t\n", dirty)
}

func seedEvents(ctx context.Context) {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	store := repository.NewContentStore(cfg.Content.File, logger.NewNop())
	if err := store.Load(); err != nil {
		log.Fatalf("Failed to load content file %s: %v", cfg.Content.File, err)
	}

	db, err := database.New(ctx, cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	events := store.Events()
	if err := repository.NewSQLEventRepository(db).ReplaceAll(ctx, events); err != nil {
		log.Fatalf("Failed to seed events: %v", err)
	}

	fmt.Printf("Seeded %d events from %s\n", len(events), cfg.Content.File)
}
