// Package worker runs the asynchronous ingestion consumers: customer and
// order events arrive on Kafka, get validated, and are upserted into the
// document store. The HTTP API stays fast because heavy writes can flow
// through here instead.
package worker

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/xenocrm/crm-gateway/internal/kafka"
	"github.com/xenocrm/crm-gateway/internal/model"
	"github.com/xenocrm/crm-gateway/internal/repository"
	"github.com/xenocrm/crm-gateway/internal/util"
)

// Kind selects which event stream an Ingestor processes.
type Kind string

const (
	KindCustomers Kind = "customers"
	KindOrders    Kind = "orders"
)

func (k Kind) Valid() bool { return k == KindCustomers || k == KindOrders }

var errInvalidKind = errors.New("ingest: invalid kind")

// customerEvent is the wire shape of a customer ingestion message.
type customerEvent struct {
	Name       string     `json:"name"`
	Email      string     `json:"email"`
	Phone      string     `json:"phone"`
	TotalSpend float64    `json:"totalSpend"`
	VisitCount int        `json:"visitCount"`
	LastActive *time.Time `json:"lastActive"`
}

// orderEvent is the wire shape of an order ingestion message.
type orderEvent struct {
	CustomerID string   `json:"customerId"`
	OrderID    string   `json:"orderId"`
	Amount     float64  `json:"amount"`
	Items      []string `json:"items"`
}

// Ingestor consumes one topic and applies each event idempotently: customers
// dedupe on email, orders on orderId, so a replayed partition is harmless.
type Ingestor struct {
	Consumer  *kafka.Consumer
	Customers repository.CustomersRepository
	Orders    repository.OrdersRepository

	Kind    Kind
	Workers int
}

func NewIngestor(
	consumer *kafka.Consumer,
	customersRepo repository.CustomersRepository,
	ordersRepo repository.OrdersRepository,
	kind Kind,
) *Ingestor {
	return &Ingestor{
		Consumer:  consumer,
		Customers: customersRepo,
		Orders:    ordersRepo,
		Kind:      kind,
		Workers:   8,
	}
}

// Run blocks until ctx is cancelled. Malformed or invalid events are logged
// and committed anyway: a poison message must never wedge the partition.
func (w *Ingestor) Run(ctx context.Context) error {
	if !w.Kind.Valid() {
		return errInvalidKind
	}
	if w.Workers <= 0 {
		w.Workers = 8
	}

	msgCh := make(chan kafka.Message, w.Workers*2)

	// Fetcher goroutine
	go func() {
		defer close(msgCh)
		for {
			select {
			case <-ctx.Done():
				return
			default:
				m, err := w.Consumer.Fetch(ctx)
				if err != nil {
					if ctx.Err() != nil {
						return
					}
					log.Printf("[ingest-%s] kafka fetch err: %v", w.Kind, err)
					time.Sleep(200 * time.Millisecond)
					continue
				}
				msgCh <- m
			}
		}
	}()

	done := make(chan struct{}, w.Workers)
	for i := 0; i < w.Workers; i++ {
		go func() {
			defer func() { done <- struct{}{} }()
			for m := range msgCh {
				w.handle(ctx, m)
				if err := w.Consumer.Commit(ctx, m); err != nil && ctx.Err() == nil {
					log.Printf("[ingest-%s] commit err: %v", w.Kind, err)
				}
			}
		}()
	}

	for i := 0; i < w.Workers; i++ {
		<-done
	}
	return ctx.Err()
}

func (w *Ingestor) handle(ctx context.Context, m kafka.Message) {
	switch w.Kind {
	case KindCustomers:
		w.handleCustomer(ctx, m)
	case KindOrders:
		w.handleOrder(ctx, m)
	}
}

func (w *Ingestor) handleCustomer(ctx context.Context, m kafka.Message) {
	var ev customerEvent
	if err := json.Unmarshal(m.Value, &ev); err != nil {
		log.Printf("[ingest-customers] drop malformed event offset=%d: %v", m.Offset, err)
		return
	}
	if strings.TrimSpace(ev.Name) == "" || strings.TrimSpace(ev.Email) == "" {
		log.Printf("[ingest-customers] drop invalid event offset=%d: name and email required", m.Offset)
		return
	}

	c := &model.Customer{
		ID:         util.NewID(),
		Name:       ev.Name,
		Email:      ev.Email,
		Phone:      util.NormalizePhone(ev.Phone),
		TotalSpend: ev.TotalSpend,
		VisitCount: ev.VisitCount,
		LastActive: ev.LastActive,
	}
	if err := w.Customers.UpsertByEmail(ctx, c); err != nil {
		log.Printf("[ingest-customers] upsert failed email=%s: %v", ev.Email, err)
	}
}

func (w *Ingestor) handleOrder(ctx context.Context, m kafka.Message) {
	var ev orderEvent
	if err := json.Unmarshal(m.Value, &ev); err != nil {
		log.Printf("[ingest-orders] drop malformed event offset=%d: %v", m.Offset, err)
		return
	}
	if ev.CustomerID == "" || ev.OrderID == "" || ev.Amount == 0 {
		log.Printf("[ingest-orders] drop invalid event offset=%d: customerId, orderId and amount required", m.Offset)
		return
	}

	o := &model.Order{
		ID:         util.NewID(),
		CustomerID: ev.CustomerID,
		OrderID:    ev.OrderID,
		Amount:     ev.Amount,
		Items:      ev.Items,
	}
	inserted, err := w.Orders.UpsertByOrderID(ctx, o)
	if err != nil {
		log.Printf("[ingest-orders] upsert failed orderId=%s: %v", ev.OrderID, err)
		return
	}
	if !inserted {
		// replayed event, totalSpend already counted
		return
	}
	if err := w.Customers.IncTotalSpend(ctx, ev.CustomerID, ev.Amount); err != nil {
		log.Printf("[ingest-orders] totalSpend bump failed customerId=%s: %v", ev.CustomerID, err)
	}
}
