package main

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/iliyamo/propconsole/internal/config"
	"github.com/iliyamo/propconsole/internal/database"
)

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the console's tables if they do not exist",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := openDB(config.Load())
			if err != nil {
				return err
			}
			defer db.Close()
			ctx, cancel := context.WithTimeout(cmd.Context(), time.Minute)
			defer cancel()
			return database.Migrate(ctx, db)
		},
	}
}
