package cmd

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/spf13/cobra"
	"github.com/xenocrm/crm-gateway/internal/config"
	"github.com/xenocrm/crm-gateway/internal/db"
	"github.com/xenocrm/crm-gateway/internal/model"
	"github.com/xenocrm/crm-gateway/internal/repository"
	"github.com/xenocrm/crm-gateway/internal/util"
)

var seedCustomerCount int

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the database with a demo user, customers and orders",
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

		ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
		defer cancel()

		gofakeit.Seed(42) // deterministic demo data

		users := repository.NewUsersRepository(database)
		customers := repository.NewCustomersRepository(database)
		orders := repository.NewOrdersRepository(database)

		log.Println(">> Seeding demo user...")
		demoUser := &model.User{
			ID:     util.NewID(),
			Name:   "Demo Marketer",
			Email:  "demo@crm-gateway.local",
			Avatar: gofakeit.ImageURL(96, 96),
		}
		if err := users.Insert(ctx, demoUser); err != nil {
			return fmt.Errorf("insert demo user: %w", err)
		}

		log.Printf(">> Seeding %d customers with orders...", seedCustomerCount)
		for i := 0; i < seedCustomerCount; i++ {
			lastActive := gofakeit.DateRange(time.Now().AddDate(0, -6, 0), time.Now())
			c := &model.Customer{
				ID:         util.NewID(),
				Name:       gofakeit.Name(),
				Email:      gofakeit.Email(),
				Phone:      util.NormalizePhone(gofakeit.Phone()),
				JoinedAt:   gofakeit.DateRange(time.Now().AddDate(-2, 0, 0), time.Now()),
				VisitCount: gofakeit.Number(0, 40),
				LastActive: &lastActive,
			}
			if err := customers.Insert(ctx, c); err != nil {
				return fmt.Errorf("insert customer %q: %w", c.Email, err)
			}

			for j := 0; j < gofakeit.Number(0, 4); j++ {
				o := &model.Order{
					ID:         util.NewID(),
					CustomerID: c.ID,
					OrderID:    gofakeit.UUID(),
					Amount:     gofakeit.Price(100, 20000),
					Items:      []string{gofakeit.ProductName(), gofakeit.ProductName()},
				}
				if err := orders.Insert(ctx, o); err != nil {
					return fmt.Errorf("insert order for %q: %w", c.Email, err)
				}
				if err := customers.IncTotalSpend(ctx, c.ID, o.Amount); err != nil {
					return fmt.Errorf("bump totalSpend for %q: %w", c.Email, err)
				}
			}
		}

		log.Printf(">> Seed completed, demo user id: %s", demoUser.ID)
		return nil
	},
}

func init() {
	seedCmd.Flags().IntVar(&seedCustomerCount, "customers", 25, "number of demo customers to create")
	rootCmd.AddCommand(seedCmd)
}
