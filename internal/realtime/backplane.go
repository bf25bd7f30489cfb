package realtime

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// frame is the backplane wire format. Origin lets an instance skip events
// it published itself (they were already delivered locally).
type frame struct {
	Origin  string          `json:"origin"`
	Topic   string          `json:"topic"`
	Name    string          `json:"event"`
	Payload json.RawMessage `json:"payload"`
}

func encodeFrame(origin, topic string, ev Event) ([]byte, error) {
	payload, err := json.Marshal(ev.Payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(frame{Origin: origin, Topic: topic, Name: ev.Name, Payload: payload})
}

func decodeFrame(data []byte) (frame, error) {
	var f frame
	err := json.Unmarshal(data, &f)
	return f, err
}

// RedisBackplane relays room events across server instances over a Redis
// pub/sub channel, so a client connected to any instance sees events for
// chats mutated on another.
type RedisBackplane struct {
	rdb     *redis.Client
	channel string
	origin  string
	hub     *Hub
	log     *zap.SugaredLogger
}

func NewRedisBackplane(rdb *redis.Client, channel string, hub *Hub, log *zap.SugaredLogger) *RedisBackplane {
	b := &RedisBackplane{
		rdb:     rdb,
		channel: channel,
		origin:  uuid.NewString(),
		hub:     hub,
		log:     log,
	}
	hub.SetRelay(b)
	return b
}

// Relay publishes a locally-emitted event to the shared channel.
// Best-effort: a backplane failure never fails the originating request.
func (b *RedisBackplane) Relay(topic string, ev Event) {
	data, err := encodeFrame(b.origin, topic, ev)
	if err != nil {
		b.log.Errorw("backplane encode", "err", err)
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := b.rdb.Publish(ctx, b.channel, data).Err(); err != nil {
		b.log.Errorw("backplane publish", "err", err)
	}
}

// Run consumes the shared channel until ctx is cancelled, delivering
// foreign events to local rooms.
func (b *RedisBackplane) Run(ctx context.Context) error {
	sub := b.rdb.Subscribe(ctx, b.channel)
	defer sub.Close()
	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			f, err := decodeFrame([]byte(msg.Payload))
			if err != nil {
				b.log.Warnw("backplane decode", "err", err)
				continue
			}
			if f.Origin == b.origin {
				continue
			}
			payload, err := DecodePayload(f.Name, f.Payload)
			if err != nil {
				b.log.Warnw("backplane payload decode", "event", f.Name, "err", err)
				continue
			}
			b.hub.DeliverLocal(f.Topic, Event{Name: f.Name, Payload: payload})
		}
	}
}
