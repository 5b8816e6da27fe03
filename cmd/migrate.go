package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/xenocrm/crm-gateway/internal/config"
	"github.com/xenocrm/crm-gateway/internal/db"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Ensure database indexes",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cfgPath)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}

		database, err := db.NewMongoDatabase(db.MongoOpts{
			URI:            cfg.Mongo.URI,
			Database:       cfg.Mongo.Database,
			ConnectTimeout: cfg.Mongo.ConnectTimeout,
			PingTimeout:    cfg.Mongo.PingTimeout,
		})
		if err != nil {
			return fmt.Errorf("mongo connect: %w", err)
		}
		defer func() { _ = database.Client().Disconnect(context.Background()) }()

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := db.EnsureIndexes(ctx, database); err != nil {
			return fmt.Errorf("ensure indexes: %w", err)
		}

		fmt.Println(">> Indexes ensured ✅")
		return nil
	},
}
