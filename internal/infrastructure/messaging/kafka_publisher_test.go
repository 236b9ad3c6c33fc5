package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"github.com/yuzvak/resale-backoffice/internal/config"
	"github.com/yuzvak/resale-backoffice/internal/domain/inventory"
	"github.com/yuzvak/resale-backoffice/internal/domain/sale"
	"github.com/yuzvak/resale-backoffice/internal/pkg/logger"
)

type recordingWriter struct {
	msgs []kafka.Message
	err  error
}

func (w *recordingWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *recordingWriter) Close() error { return nil }

var testKafkaConfig = config.KafkaConfig{SaleTopic: "sales", InventoryTopic: "inventory"}

func TestPublishSaleConfirmed(t *testing.T) {
	otel.SetTextMapPropagator(propagation.TraceContext{})

	traceID, _ := trace.TraceIDFromHex("4bf92f3577b34da6a3ce929d0e0e4736")
	spanID, _ := trace.SpanIDFromHex("00f067aa0ba902b7")
	ctx := trace.ContextWithSpanContext(context.Background(), trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    traceID,
		SpanID:     spanID,
		TraceFlags: trace.FlagsSampled,
	}))

	w := &recordingWriter{}
	p := newKafkaPublisher(w, testKafkaConfig, logger.NewNopLogger())

	s := &sale.Sale{
		ID:        "S-20240611-abc",
		StationID: "front",
		Lines: []sale.Line{
			{Position: 1, ItemID: "i1", Serial: "SN1", ItemName: "Pixel 7", SalePrice: decimal.NewFromInt(300)},
		},
		Total:       decimal.NewFromInt(300),
		ConfirmedAt: time.Date(2024, 6, 11, 10, 0, 0, 0, time.UTC),
	}
	if err := p.PublishSaleConfirmed(ctx, s); err != nil {
		t.Fatalf("PublishSaleConfirmed: %v", err)
	}

	if len(w.msgs) != 1 {
		t.Fatalf("wrote %d messages, want 1", len(w.msgs))
	}
	msg := w.msgs[0]
	if msg.Topic != "sales" || string(msg.Key) != s.ID {
		t.Errorf("topic/key = %s/%s", msg.Topic, msg.Key)
	}

	var event SaleConfirmedEvent
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if event.Type != EventSaleConfirmed || event.LineCount != 1 || event.Lines[0].Serial != "SN1" {
		t.Errorf("unexpected event: %+v", event)
	}

	var traceparent string
	for _, h := range msg.Headers {
		if h.Key == "traceparent" {
			traceparent = string(h.Value)
		}
	}
	if traceparent == "" {
		t.Error("traceparent header missing")
	}
}

func TestPublishItemsProcured(t *testing.T) {
	w := &recordingWriter{}
	p := newKafkaPublisher(w, testKafkaConfig, logger.NewNopLogger())

	now := time.Date(2024, 6, 11, 9, 0, 0, 0, time.UTC)
	var items []*inventory.Item
	for _, serial := range []string{"LOT-001", "LOT-002"} {
		item, err := inventory.NewItem(serial, serial, inventory.Attributes{
			Name: "Galaxy A54", ReleaseModel: "SM-A546", Price: decimal.NewFromInt(150), SourceName: "Ng",
		}, now)
		if err != nil {
			t.Fatalf("NewItem: %v", err)
		}
		items = append(items, item)
	}

	if err := p.PublishItemsProcured(context.Background(), items); err != nil {
		t.Fatalf("PublishItemsProcured: %v", err)
	}

	var event ItemsProcuredEvent
	if err := json.Unmarshal(w.msgs[0].Value, &event); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if w.msgs[0].Topic != "inventory" || len(event.Items) != 2 || !event.Total.Equal(decimal.NewFromInt(300)) {
		t.Errorf("unexpected event on %s: %+v", w.msgs[0].Topic, event)
	}

	if err := p.PublishItemsProcured(context.Background(), nil); err != nil || len(w.msgs) != 1 {
		t.Errorf("empty batch should publish nothing, err=%v msgs=%d", err, len(w.msgs))
	}
}

func TestPublishWrapsWriterError(t *testing.T) {
	boom := errors.New("broker down")
	p := newKafkaPublisher(&recordingWriter{err: boom}, testKafkaConfig, logger.NewNopLogger())

	err := p.PublishSaleConfirmed(context.Background(), &sale.Sale{ID: "S-1"})
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want wrapped broker error", err)
	}
}
