// Package realtime is the publish/subscribe channel that fans chat events
// out to connected clients. Rooms are keyed by chatId; a connection sees a
// chat's events only after an explicit joinChat. Delivery is best-effort
// and at-most-once: there is no backlog, a reconnecting client re-reads
// state over HTTP.
package realtime

import (
	"encoding/json"

	"github.com/surya16122114/roomies-radar/internal/models"
)

// Event names carried on the channel. These are the only four kinds.
const (
	EventMessageSent    = "messageSent"
	EventMessageRead    = "messageRead"
	EventMessageDeleted = "messageDeleted"
	EventChatDeleted    = "chatDeleted"
)

// Event is the wire envelope sent to subscribers.
type Event struct {
	Name    string `json:"event"`
	Payload any    `json:"payload"`
}

type MessageSentPayload struct {
	ChatID  string         `json:"chatId"`
	Message models.Message `json:"message"`
}

type MessageReadPayload struct {
	ChatID    string               `json:"chatId"`
	MessageID string               `json:"messageId"`
	Status    models.MessageStatus `json:"status"`
}

type MessageDeletedPayload struct {
	ChatID    string `json:"chatId"`
	MessageID string `json:"messageId"`
}

type ChatDeletedPayload struct {
	ChatID string `json:"chatId"`
}

// Subscriber is a sink for events. Deliver must not block; slow consumers
// drop events rather than stall the room.
type Subscriber interface {
	Deliver(ev Event)
}

// Broker is the room registry the chat core publishes through. It is
// constructed once at startup and injected; nothing reaches for a global.
type Broker interface {
	Join(connID, topic string)
	Leave(connID, topic string)
	Publish(topic string, ev Event)
}

// DecodePayload unmarshals a relayed or client-received payload into the
// typed payload struct for the given event name.
func DecodePayload(name string, raw []byte) (any, error) {
	var (
		payload any
		err     error
	)
	switch name {
	case EventMessageSent:
		var p MessageSentPayload
		err = json.Unmarshal(raw, &p)
		payload = p
	case EventMessageRead:
		var p MessageReadPayload
		err = json.Unmarshal(raw, &p)
		payload = p
	case EventMessageDeleted:
		var p MessageDeletedPayload
		err = json.Unmarshal(raw, &p)
		payload = p
	case EventChatDeleted:
		var p ChatDeletedPayload
		err = json.Unmarshal(raw, &p)
		payload = p
	default:
		var p json.RawMessage
		err = json.Unmarshal(raw, &p)
		payload = p
	}
	return payload, err
}
