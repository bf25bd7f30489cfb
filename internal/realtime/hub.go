package realtime

import (
	"sync"

	"go.uber.org/zap"

	"github.com/surya16122114/roomies-radar/internal/metrics"
)

// Relay forwards published events to other server instances. Attached only
// when a backplane is configured.
type Relay interface {
	Relay(topic string, ev Event)
}

// Hub is the in-process room registry. Membership is process-local and
// transient: it ends on Leave or when the connection unregisters.
type Hub struct {
	log *zap.SugaredLogger

	mu    sync.RWMutex
	subs  map[string]Subscriber
	rooms map[string]map[string]struct{}
	relay Relay
}

func NewHub(log *zap.SugaredLogger) *Hub {
	return &Hub{
		log:   log,
		subs:  make(map[string]Subscriber),
		rooms: make(map[string]map[string]struct{}),
	}
}

// SetRelay attaches a cross-instance relay. Call before serving traffic.
func (h *Hub) SetRelay(r Relay) {
	h.mu.Lock()
	h.relay = r
	h.mu.Unlock()
}

// Register makes a connection known to the hub. A connection receives no
// events until it joins a room.
func (h *Hub) Register(connID string, s Subscriber) {
	h.mu.Lock()
	h.subs[connID] = s
	h.mu.Unlock()
	metrics.WSConnections.Inc()
	h.log.Debugw("connection registered", "conn", connID)
}

// Unregister drops the connection and its room memberships.
func (h *Hub) Unregister(connID string) {
	h.mu.Lock()
	if _, ok := h.subs[connID]; !ok {
		h.mu.Unlock()
		return
	}
	delete(h.subs, connID)
	for topic, members := range h.rooms {
		delete(members, connID)
		if len(members) == 0 {
			delete(h.rooms, topic)
		}
	}
	h.mu.Unlock()
	metrics.WSConnections.Dec()
	h.log.Debugw("connection unregistered", "conn", connID)
}

func (h *Hub) Join(connID, topic string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.subs[connID]; !ok {
		return
	}
	if _, ok := h.rooms[topic]; !ok {
		h.rooms[topic] = make(map[string]struct{})
	}
	h.rooms[topic][connID] = struct{}{}
	metrics.RoomJoins.Inc()
}

func (h *Hub) Leave(connID, topic string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if members, ok := h.rooms[topic]; ok {
		delete(members, connID)
		if len(members) == 0 {
			delete(h.rooms, topic)
		}
	}
}

// Publish delivers ev to every member of topic's room, and hands it to the
// relay for other instances. An empty room is a no-op, not an error.
func (h *Hub) Publish(topic string, ev Event) {
	h.DeliverLocal(topic, ev)

	h.mu.RLock()
	relay := h.relay
	h.mu.RUnlock()
	if relay != nil {
		relay.Relay(topic, ev)
	}
	metrics.EventsPublished.WithLabelValues(ev.Name).Inc()
}

// DeliverLocal fans ev out to local room members only. The relay calls this
// for events that originated on another instance.
func (h *Hub) DeliverLocal(topic string, ev Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	members, ok := h.rooms[topic]
	if !ok {
		return
	}
	for connID := range members {
		if sub, ok := h.subs[connID]; ok {
			sub.Deliver(ev)
		}
	}
}
