// Package events writes every realtime chat event to a Kafka topic as a
// durable stream for downstream consumers (notification fan-out,
// analytics). The websocket path never depends on it.
package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/surya16122114/roomies-radar/internal/realtime"
)

type record struct {
	Event   string `json:"event"`
	ChatID  string `json:"chatId"`
	Payload any    `json:"payload"`
	Emitted int64  `json:"emittedAt"`
}

type Publisher struct {
	writer *kafka.Writer
	log    *zap.SugaredLogger
}

func NewPublisher(brokers []string, topic string, log *zap.SugaredLogger) *Publisher {
	w := kafka.NewWriter(kafka.WriterConfig{
		Brokers:  brokers,
		Topic:    topic,
		Balancer: &kafka.LeastBytes{},
	})
	return &Publisher{writer: w, log: log}
}

// Publish appends the event to the topic, keyed by chatId so one chat's
// events stay ordered within a partition. Best-effort: failures are logged,
// never surfaced to the originating request. Nil receiver is a no-op so
// Kafka stays optional in dev.
func (p *Publisher) Publish(ctx context.Context, chatID string, ev realtime.Event) {
	if p == nil || p.writer == nil {
		return
	}
	value, err := json.Marshal(record{
		Event:   ev.Name,
		ChatID:  chatID,
		Payload: ev.Payload,
		Emitted: time.Now().UnixMilli(),
	})
	if err != nil {
		p.log.Errorw("event marshal", "event", ev.Name, "err", err)
		return
	}
	msg := kafka.Message{
		Key:   []byte(chatID),
		Value: value,
		Time:  time.Now(),
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.log.Errorw("event publish", "event", ev.Name, "chat", chatID, "err", err)
	}
}

func (p *Publisher) Close() error {
	if p == nil || p.writer == nil {
		return nil
	}
	return p.writer.Close()
}
