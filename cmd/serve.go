package cmd

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/xenocrm/crm-gateway/internal/config"
	"github.com/xenocrm/crm-gateway/internal/db"
	httpSrv "github.com/xenocrm/crm-gateway/internal/http"
	"github.com/xenocrm/crm-gateway/internal/kafka"
	"github.com/xenocrm/crm-gateway/internal/logger"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cfgPath)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}

		logger.Init(cfg.Log.Level)
		defer func() { _ = logger.L().Sync() }()

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

		redisClient, err := db.NewRedisClient(db.RedisOpts{
			Addr:        cfg.Redis.Addr,
			Password:    cfg.Redis.Password,
			DB:          cfg.Redis.DB,
			DialTimeout: cfg.Redis.DialTimeout,
		})
		if err != nil {
			return fmt.Errorf("redis connect: %w", err)
		}
		defer func() { _ = redisClient.Close() }()

		var pub *kafka.Publisher
		if cfg.Kafka.PublishEnabled {
			pub = kafka.NewPublisher(kafka.PublisherConfig{
				Brokers:        cfg.Kafka.Brokers,
				CustomersTopic: cfg.Kafka.CustomersTopic,
				OrdersTopic:    cfg.Kafka.OrdersTopic,
			})
			defer func() { _ = pub.Close() }()
		}

		server := httpSrv.NewServer(cfg, database, redisClient, pub)

		errCh := make(chan error, 1)
		go func() {
			errCh <- server.Start(cfg.HTTP.Addr)
		}()

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

		select {
		case sig := <-sigCh:
			log.Printf("signal received: %s, shutting down...", sig)
		case err := <-errCh:
			if err != nil {
				log.Printf("http server exited: %v", err)
			}
		}

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(ctx)

		return nil
	},
}
