// Package feed pushes listing change events to connected browsers so they
// refetch posts instead of reloading the page.
package feed

import (
	"encoding/json"
	"sync"

	"go.uber.org/zap"

	"github.com/foodshare/foodshare/pkg/logging"
)

// Event tells subscribers that a post's listing changed
type Event struct {
	Type   string                 `json:"type"`
	Entity string                 `json:"entity"`
	Action string                 `json:"action"`
	PostID int64                  `json:"post_id,omitempty"`
	Extra  map[string]interface{} `json:"extra,omitempty"`
}

// NewEvent builds an event whose Type is "<entity>_<action>", e.g. claim_created
func NewEvent(entity, action string, postID int64, extra map[string]interface{}) Event {
	return Event{
		Type:   entity + "_" + action,
		Entity: entity,
		Action: action,
		PostID: postID,
		Extra:  extra,
	}
}

// Hub tracks feed subscribers and fans events out to them
type Hub struct {
	mu          sync.RWMutex
	subscribers map[*Subscriber]struct{}
	logger      *zap.Logger
}

// NewHub creates an empty hub
func NewHub() *Hub {
	return &Hub{
		subscribers: make(map[*Subscriber]struct{}),
		logger:      logging.WithComponent("feed"),
	}
}

func (h *Hub) add(s *Subscriber) {
	h.mu.Lock()
	h.subscribers[s] = struct{}{}
	n := len(h.subscribers)
	h.mu.Unlock()
	h.logger.Debug("Feed subscriber joined", zap.Int("subscribers", n))
}

// remove drops s and closes its queue. Safe to call twice.
func (h *Hub) remove(s *Subscriber) {
	h.mu.Lock()
	if _, ok := h.subscribers[s]; ok {
		delete(h.subscribers, s)
		close(s.queue)
	}
	h.mu.Unlock()
}

// Publish delivers ev to every subscriber. A subscriber whose queue is full
// misses the event; it will catch up on the next one.
func (h *Hub) Publish(ev Event) {
	data, err := json.Marshal(ev)
	if err != nil {
		h.logger.Error("Encoding feed event failed", zap.String("type", ev.Type), zap.Error(err))
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	dropped := 0
	for s := range h.subscribers {
		select {
		case s.queue <- data:
		default:
			dropped++
		}
	}
	if dropped > 0 {
		h.logger.Warn("Feed event dropped for slow subscribers",
			zap.String("type", ev.Type),
			zap.Int("dropped", dropped))
	}
}

// Notify publishes a committed mutation. It satisfies donation.Notifier.
func (h *Hub) Notify(entity, action string, postID int64, extra map[string]interface{}) {
	h.Publish(NewEvent(entity, action, postID, extra))
}

// Subscribers returns the number of connected subscribers
func (h *Hub) Subscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers)
}
