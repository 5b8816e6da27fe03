package http

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	echoMid "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/xenocrm/crm-gateway/internal/config"
	"github.com/xenocrm/crm-gateway/internal/dispatch"
	"github.com/xenocrm/crm-gateway/internal/genai"
	"github.com/xenocrm/crm-gateway/internal/http/middleware"
	"github.com/xenocrm/crm-gateway/internal/kafka"
	"github.com/xenocrm/crm-gateway/internal/metrics"
	"github.com/xenocrm/crm-gateway/internal/repository"
	campaignSvc "github.com/xenocrm/crm-gateway/internal/service/campaign"
	segmentSvc "github.com/xenocrm/crm-gateway/internal/service/segment"
	"github.com/xenocrm/crm-gateway/internal/vender"
	"go.mongodb.org/mongo-driver/mongo"
)

type Server struct {
	e   *echo.Echo
	sim *vender.Simulator
}

func NewServer(cfg config.Config, database *mongo.Database, rds *redis.Client, pub *kafka.Publisher) *Server {
	// repos
	customersRepo := repository.NewCustomersRepository(database)
	ordersRepo := repository.NewOrdersRepository(database)
	segmentsRepo := repository.NewSegmentsRepository(database)
	campaignsRepo := repository.NewCampaignsRepository(database)
	logsRepo := repository.NewCommunicationLogsRepository(database)
	usersRepo := repository.NewUsersRepository(database)

	// external collaborators
	gen := genai.NewClient(cfg.GenAI.BaseURL, cfg.GenAI.APIKey, cfg.GenAI.TimeoutMs)
	vendorClient := dispatch.NewHTTPVendor(
		cfg.Vendor.BaseURL,
		cfg.Vendor.SendPath,
		cfg.Vendor.TimeoutMs,
		cfg.Vendor.Breaker.FailThreshold,
		cfg.Vendor.Breaker.OpenForMs,
	)
	sim := vender.NewSimulator(vender.Config{
		SuccessRate: cfg.Vendor.SuccessRate,
		Delay:       cfg.Vendor.Delay,
		CallbackURL: cfg.Vendor.CallbackURL,
		TimeoutMs:   cfg.Vendor.TimeoutMs,
	})

	// services
	segments := segmentSvc.New(gen, customersRepo, segmentsRepo, usersRepo)
	campaigns := campaignSvc.New(
		campaignSvc.Config{
			Personalization: cfg.Campaign.Personalization,
			WorkerCount:     cfg.Campaign.WorkerCount,
		},
		gen,
		vendorClient,
		segmentsRepo,
		customersRepo,
		campaignsRepo,
		logsRepo,
		usersRepo,
	)

	// echo
	e := echo.New()
	e.HideBanner = true
	e.Use(echoMid.Recover(), echoMid.Logger())

	metrics.MustRegister(prometheus.DefaultRegisterer)

	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	// health
	e.GET("/healthz", func(c echo.Context) error { return c.String(http.StatusOK, "ok") })

	// middlewares
	rlMW := middleware.RateLimitMiddleware(middleware.RateLimitConfig{
		Redis:          rds,
		RPS:            cfg.RateLimit.RPS,
		KeyPrefix:      "rl:ip:",
		Window:         time.Second,
		RetryAfterHint: true,
	})

	// routes
	seg := e.Group("/segments", rlMW)
	seg.POST("/preview", previewSegmentHandler(segments))
	seg.POST("/save", saveSegmentHandler(segments))
	seg.GET("/fetch", fetchSegmentsHandler(segments))

	camp := e.Group("/campaign", rlMW)
	camp.POST("/create", createCampaignHandler(campaigns))
	camp.GET("/history", campaignHistoryHandler(campaigns))
	camp.GET("/logs/:campaignId", campaignLogsHandler(campaigns))
	camp.POST("/messageTemplete", suggestTemplateHandler(campaigns))
	camp.PUT("/receipt", receiptHandler(campaigns))

	e.POST("/vender/send", vendorSendHandler(sim))

	cust := e.Group("/customers", rlMW)
	cust.POST("/create", createCustomerHandler(customersRepo, pub))
	cust.GET("/fetch", fetchCustomersHandler(customersRepo))
	cust.GET("/fetch/:id", fetchCustomerHandler(customersRepo))
	cust.DELETE("/delete/:id", deleteCustomerHandler(customersRepo))

	ord := e.Group("/orders", rlMW)
	ord.POST("/create", createOrderHandler(ordersRepo, customersRepo, pub))
	ord.GET("/fetch", fetchOrdersHandler(ordersRepo, customersRepo))
	ord.GET("/fetch/:id", fetchOrderHandler(ordersRepo, customersRepo))
	ord.DELETE("/delete/:id", deleteOrderHandler(ordersRepo, customersRepo))

	e.GET("/communicationLog/fetch", fetchCommunicationLogsHandler(logsRepo, customersRepo, segmentsRepo, campaignsRepo))
	e.GET("/user/:userId", fetchUserHandler(usersRepo))

	return &Server{e: e, sim: sim}
}

func (s *Server) Start(addr string) error {
	log.Printf("http: listening on %s", addr)
	return s.e.Start(addr)
}

// Shutdown stops the listener, then drains any receipt callbacks the vendor
// simulator still has in flight.
func (s *Server) Shutdown(ctx context.Context) error {
	err := s.e.Shutdown(ctx)
	s.sim.Wait()
	return err
}
