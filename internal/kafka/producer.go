package kafka

import (
	"context"
	"encoding/json"

	"github.com/segmentio/kafka-go"
	"github.com/xenocrm/crm-gateway/internal/model"
)

type PublisherConfig struct {
	Brokers        []string
	CustomersTopic string
	OrdersTopic    string
}

// Publisher streams created customers and orders to Kafka. Connection state
// lives in this struct and is released by Close; there is no package-level
// "connected" flag.
type Publisher struct {
	customers *kafka.Writer
	orders    *kafka.Writer
}

func NewPublisher(cfg PublisherConfig) *Publisher {
	newWriter := func(topic string) *kafka.Writer {
		return &kafka.Writer{
			Addr:     kafka.TCP(cfg.Brokers...),
			Topic:    topic,
			Balancer: &kafka.Hash{},
		}
	}

	return &Publisher{
		customers: newWriter(cfg.CustomersTopic),
		orders:    newWriter(cfg.OrdersTopic),
	}
}

func (p *Publisher) PublishCustomer(ctx context.Context, c *model.Customer) error {
	payload, err := json.Marshal(c)
	if err != nil {
		return err
	}
	return p.customers.WriteMessages(ctx, kafka.Message{
		Key:   []byte(c.Email),
		Value: payload,
	})
}

func (p *Publisher) PublishOrder(ctx context.Context, o *model.Order) error {
	payload, err := json.Marshal(o)
	if err != nil {
		return err
	}
	return p.orders.WriteMessages(ctx, kafka.Message{
		Key:   []byte(o.OrderID),
		Value: payload,
	})
}

func (p *Publisher) Close() error {
	if err := p.customers.Close(); err != nil {
		_ = p.orders.Close()
		return err
	}
	return p.orders.Close()
}
