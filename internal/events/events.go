// Package events publishes domain events to Kafka.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"storefront/internal/domain"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/twmb/franz-go/pkg/kgo"
)

const (
	DefaultOrderTopic = `storefront.order-placed`
	EventOrderPlaced  = `order.placed`
)

// OrderPlaced is the payload written for every completed checkout.
type OrderPlaced struct {
	Event       string          `json:"event"`
	OrderID     string          `json:"order_id"`
	UserID      string          `json:"user_id"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	Status      string          `json:"status"`
	Items       []OrderLine     `json:"items"`
	CreatedAt   time.Time       `json:"created_at"`
}

type OrderLine struct {
	ProductID string          `json:"product_id"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
}

func NewOrderPlaced(order domain.Order) OrderPlaced {
	ev := OrderPlaced{
		Event:       EventOrderPlaced,
		OrderID:     order.ID.String(),
		UserID:      order.UserID.String(),
		TotalAmount: order.TotalAmount,
		Status:      string(order.Status),
		Items:       make([]OrderLine, 0, len(order.Items)),
		CreatedAt:   order.CreatedAt,
	}
	for _, it := range order.Items {
		ev.Items = append(ev.Items, OrderLine{
			ProductID: it.ProductID.String(),
			Quantity:  it.Quantity,
			Price:     it.Price,
		})
	}
	return ev
}

// OrderRecord builds the Kafka record for an order, keyed by user so one
// user's orders stay on one partition.
func OrderRecord(order domain.Order) (*kgo.Record, error) {
	value, err := json.Marshal(NewOrderPlaced(order))
	if err != nil {
		return nil, fmt.Errorf("encode %s event: %w", EventOrderPlaced, err)
	}
	return &kgo.Record{
		Key:   []byte(order.UserID.String()),
		Value: value,
		Headers: []kgo.RecordHeader{
			{Key: "event", Value: []byte(EventOrderPlaced)},
		},
	}, nil
}

type KafkaPublisher struct {
	client *kgo.Client
	log    *logrus.Logger
}

func NewKafkaPublisher(brokers []string, topic string, logger *logrus.Logger) (*KafkaPublisher, error) {
	if len(brokers) == 0 {
		return nil, fmt.Errorf("kafka publisher: no brokers configured")
	}
	if topic == "" {
		topic = DefaultOrderTopic
	}
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.DefaultProduceTopic(topic),
		kgo.ClientID("storefront"),
		kgo.AllowAutoTopicCreation(),
	)
	if err != nil {
		return nil, fmt.Errorf("create kafka client: %w", err)
	}
	logger.Infof("Kafka publisher ready (brokers: %v, topic: %s)", brokers, topic)
	return &KafkaPublisher{client: client, log: logger}, nil
}

func (p *KafkaPublisher) PublishOrderPlaced(ctx context.Context, order domain.Order) error {
	rec, err := OrderRecord(order)
	if err != nil {
		return err
	}
	if err := p.client.ProduceSync(ctx, rec).FirstErr(); err != nil {
		return fmt.Errorf("produce %s for order %s: %w", EventOrderPlaced, order.ID, err)
	}
	p.log.Debugf("Published %s for order %s", EventOrderPlaced, order.ID)
	return nil
}

func (p *KafkaPublisher) Close() {
	p.client.Close()
}

// NopPublisher drops every event. Used when no brokers are configured.
type NopPublisher struct{}

func (NopPublisher) PublishOrderPlaced(context.Context, domain.Order) error { return nil }

func (NopPublisher) Close() {}
