package worker

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
	"github.com/xenocrm/crm-gateway/internal/kafka"
	"github.com/xenocrm/crm-gateway/internal/logger"
	"github.com/xenocrm/crm-gateway/internal/repository"
	"github.com/xenocrm/crm-gateway/internal/worker"
)

// NewWorkerCmd groups the ingestion workers: one per topic.
func NewWorkerCmd() *cobra.Command {
	workerCmd := &cobra.Command{
		Use:   "worker",
		Short: "Run background workers",
	}

	ingestCmd := &cobra.Command{
		Use:   "ingest",
		Short: "Start ingestion worker (customers | orders)",
	}

	ingestCustomersCmd := &cobra.Command{
		Use:   "customers",
		Short: "Consume customer events and upsert them into the store",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runIngest(cmd, worker.KindCustomers)
		},
	}

	ingestOrdersCmd := &cobra.Command{
		Use:   "orders",
		Short: "Consume order events and upsert them into the store",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runIngest(cmd, worker.KindOrders)
		},
	}

	ingestCmd.AddCommand(ingestCustomersCmd)
	ingestCmd.AddCommand(ingestOrdersCmd)
	workerCmd.AddCommand(ingestCmd)

	return workerCmd
}

func runIngest(cmd *cobra.Command, kind worker.Kind) error {
	cfgPath, _ := cmd.Root().PersistentFlags().GetString("config")
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

	topic := cfg.Kafka.CustomersTopic
	if kind == worker.KindOrders {
		topic = cfg.Kafka.OrdersTopic
	}
	groupID := cfg.Kafka.GroupID
	if groupID == "" {
		groupID = "crmgw-ingest"
	}
	groupID = groupID + "-" + string(kind)

	consumer := kafka.NewConsumer(kafka.ConsumerConfig{
		Brokers:        cfg.Kafka.Brokers,
		Topic:          topic,
		GroupID:        groupID,
		MinBytes:       cfg.Kafka.MinBytes,
		MaxBytes:       cfg.Kafka.MaxBytes,
		CommitInterval: time.Duration(cfg.Kafka.CommitInterval) * time.Millisecond,
	})
	defer func() { _ = consumer.Close() }()

	ing := worker.NewIngestor(
		consumer,
		repository.NewCustomersRepository(database),
		repository.NewOrdersRepository(database),
		kind,
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		log.Printf("signal received: %s, shutting down...", sig)
		cancel()
	}()

	log.Printf("ingest-%s: consuming topic %s", kind, topic)
	if err := ing.Run(ctx); err != nil && err != context.Canceled {
		return err
	}
	return nil
}
