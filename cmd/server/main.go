package main

import (
	"database/sql"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/studymatch/backend/internal/config"
	"github.com/studymatch/backend/internal/database"
	"github.com/studymatch/backend/internal/logger"
)

var (
	configFile string

	cfg config.Config
	log *logger.Logger
)

var rootCmd = &cobra.Command{
	Use:   "studymatch",
	Short: "StudyMatch backend: quiz profiles, group aggregates and group matching",
	Long: `StudyMatch turns a short working-style quiz into a role profile per student,
keeps an aggregate profile per study group, and recommends groups whose gaps a
student fills.

Run without a subcommand to start the HTTP server.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if configFile != "" {
			os.Setenv("CONFIG_FILE", configFile)
		}
		var err error
		cfg, err = config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		log, err = logger.New(cfg.Env)
		if err != nil {
			return fmt.Errorf("init logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if log != nil {
			log.Sync()
		}
	},
	RunE: runServe,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Apply migrations, start the recompute pool and serve the HTTP API",
	RunE:  runServe,
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply database migrations and exit",
	RunE:  runMigrate,
}

var recomputeGroup int64

var recomputeCmd = &cobra.Command{
	Use:   "recompute",
	Short: "Rebuild group aggregates synchronously",
	Long: `Rebuild the aggregate profile of one group (--group) or of every group.
Useful after bulk imports or after changing quiz weights.`,
	RunE: runRecompute,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "YAML config file (or set CONFIG_FILE)")
	recomputeCmd.Flags().Int64Var(&recomputeGroup, "group", 0, "Only rebuild this group")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(recomputeCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// openDB connects and applies pending migrations.
func openDB(cmd *cobra.Command) (*sql.DB, error) {
	db, err := database.Connect(cfg.DB)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	if err := database.Migrate(cmd.Context(), db); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return db, nil
}
