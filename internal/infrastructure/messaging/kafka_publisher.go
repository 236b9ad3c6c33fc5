package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"

	"github.com/yuzvak/resale-backoffice/internal/config"
	"github.com/yuzvak/resale-backoffice/internal/domain/inventory"
	"github.com/yuzvak/resale-backoffice/internal/domain/sale"
	"github.com/yuzvak/resale-backoffice/internal/pkg/logger"
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher writes domain events as JSON. The topic is chosen per
// message, so one writer serves both streams.
type KafkaPublisher struct {
	writer         messageWriter
	saleTopic      string
	inventoryTopic string
	log            *logger.Logger
}

func NewKafkaPublisher(cfg config.KafkaConfig, log *logger.Logger) *KafkaPublisher {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Balancer:     &kafka.LeastBytes{},
		BatchTimeout: 10 * time.Millisecond,
		BatchSize:    100,
		RequiredAcks: kafka.RequireAll,
	}
	return newKafkaPublisher(writer, cfg, log)
}

func newKafkaPublisher(writer messageWriter, cfg config.KafkaConfig, log *logger.Logger) *KafkaPublisher {
	return &KafkaPublisher{
		writer:         writer,
		saleTopic:      cfg.SaleTopic,
		inventoryTopic: cfg.InventoryTopic,
		log:            log,
	}
}

func (p *KafkaPublisher) PublishItemsProcured(ctx context.Context, items []*inventory.Item) error {
	if len(items) == 0 {
		return nil
	}
	return p.publish(ctx, p.inventoryTopic, items[0].Serial, newItemsProcuredEvent(items))
}

func (p *KafkaPublisher) PublishSaleConfirmed(ctx context.Context, s *sale.Sale) error {
	return p.publish(ctx, p.saleTopic, s.ID, newSaleConfirmedEvent(s))
}

func (p *KafkaPublisher) publish(ctx context.Context, topic, key string, event interface{}) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to encode event: %w", err)
	}

	msg := kafka.Message{
		Topic:   topic,
		Key:     []byte(key),
		Value:   payload,
		Headers: traceHeaders(ctx),
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to write to %s: %w", topic, err)
	}

	p.log.Debug("Event published", "topic", topic, "key", key)
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

// traceHeaders carries the active trace context to consumers.
func traceHeaders(ctx context.Context) []kafka.Header {
	carrier := propagation.MapCarrier{}
	otel.GetTextMapPropagator().Inject(ctx, carrier)

	headers := make([]kafka.Header, 0, len(carrier))
	for _, k := range carrier.Keys() {
		headers = append(headers, kafka.Header{Key: k, Value: []byte(carrier.Get(k))})
	}
	return headers
}
