package producer

import (
	"cancellation-service/internal/service"
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"
)

// CancellationProducer publishes cancellation lifecycle events for the
// notification collaborator. Implements service.EventBus.
type CancellationProducer struct {
	writer *kafka.Writer
}

func NewCancellationProducer(brokers []string, topic string) *CancellationProducer {
	return &CancellationProducer{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.LeastBytes{},
			RequiredAcks: kafka.RequireAll,
		},
	}
}

type envelope struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

func (p *CancellationProducer) publish(ctx context.Context, key string, e envelope) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	value, err := json.Marshal(e)
	if err != nil {
		return err
	}
	return p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(key),
		Value: value,
	})
}

func (p *CancellationProducer) PublishOrderCancelled(ctx context.Context, e service.OrderCancelledEvent) error {
	return p.publish(ctx, e.OrderID.String(), envelope{Type: "order.cancelled", Payload: e})
}

func (p *CancellationProducer) PublishRefundCompleted(ctx context.Context, e service.RefundCompletedEvent) error {
	return p.publish(ctx, e.OrderID.String(), envelope{Type: "refund.completed", Payload: e})
}

func (p *CancellationProducer) PublishRefundFailed(ctx context.Context, e service.RefundFailedEvent) error {
	return p.publish(ctx, e.OrderID.String(), envelope{Type: "refund.failed", Payload: e})
}

func (p *CancellationProducer) Close() error {
	return p.writer.Close()
}
