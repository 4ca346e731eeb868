package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/studymatch/backend/internal/database"
	"github.com/studymatch/backend/internal/groups"
	"github.com/studymatch/backend/internal/models"
)

func runMigrate(cmd *cobra.Command, args []string) error {
	db, err := database.Connect(cfg.DB)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer db.Close()

	if err := database.Migrate(cmd.Context(), db); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}
	log.Info("Migrations applied")
	return nil
}

func runRecompute(cmd *cobra.Command, args []string) error {
	db, err := openDB(cmd)
	if err != nil {
		return err
	}
	defer db.Close()

	maintainer := groups.NewMaintainer(groups.NewStore(db), log)

	var summary *models.RecomputeSummary
	if recomputeGroup > 0 {
		summary = maintainer.RecomputeGroups([]int64{recomputeGroup})
	} else {
		summary, err = maintainer.RecomputeAll()
		if err != nil {
			return err
		}
	}

	out, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(out))

	if summary.Failed > 0 {
		return fmt.Errorf("%d of %d group recomputes failed", summary.Failed, summary.Groups)
	}
	return nil
}
