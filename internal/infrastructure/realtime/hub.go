// Package realtime pushes notifications to connected websocket clients.
package realtime

import (
	"sync"
	"time"

	json "github.com/goccy/go-json"
	"github.com/google/uuid"
	"go.uber.org/zap"

	appnotification "github.com/t1tandr/uevent/internal/application/notification"
	"github.com/t1tandr/uevent/internal/domain/notification"
)

// Subscriber abstracts a streaming client
type Subscriber interface {
	Send([]byte) error
	Close()
}

// Message is the JSON frame pushed for a new notification
type Message struct {
	ID        uuid.UUID  `json:"id"`
	Type      string     `json:"type"`
	Title     string     `json:"title"`
	Message   string     `json:"message"`
	IsRead    bool       `json:"isRead"`
	EventID   *uuid.UUID `json:"eventId,omitempty"`
	CompanyID *uuid.UUID `json:"companyId,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
}

// HubOption configures the hub
type HubOption func(*Hub)

// WithConnectionGauge reports connection count changes
func WithConnectionGauge(fn func(delta int)) HubOption {
	return func(h *Hub) {
		h.onConnChange = fn
	}
}

// Hub tracks open clients per user
type Hub struct {
	mu           sync.RWMutex
	clients      map[uuid.UUID]map[Subscriber]struct{}
	logger       *zap.Logger
	onConnChange func(int)
}

// NewHub creates an empty hub
func NewHub(logger *zap.Logger, opts ...HubOption) *Hub {
	h := &Hub{
		clients: make(map[uuid.UUID]map[Subscriber]struct{}),
		logger:  logger,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Register adds a client for userID
func (h *Hub) Register(userID uuid.UUID, client Subscriber) {
	h.mu.Lock()
	set, ok := h.clients[userID]
	if !ok {
		set = make(map[Subscriber]struct{})
		h.clients[userID] = set
	}
	_, exists := set[client]
	set[client] = struct{}{}
	h.mu.Unlock()
	if !exists {
		h.connChanged(1)
	}
}

// Unregister removes a client; unknown clients are ignored
func (h *Hub) Unregister(userID uuid.UUID, client Subscriber) {
	h.mu.Lock()
	removed := h.removeLocked(userID, client)
	h.mu.Unlock()
	if removed {
		h.connChanged(-1)
	}
}

func (h *Hub) removeLocked(userID uuid.UUID, client Subscriber) bool {
	set, ok := h.clients[userID]
	if !ok {
		return false
	}
	if _, ok := set[client]; !ok {
		return false
	}
	delete(set, client)
	if len(set) == 0 {
		delete(h.clients, userID)
	}
	return true
}

// Connections returns the number of open clients for userID
func (h *Hub) Connections(userID uuid.UUID) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[userID])
}

// Push sends n to every client of userID
func (h *Hub) Push(userID uuid.UUID, n *notification.Notification) {
	payload, err := json.Marshal(Message{
		ID:        n.ID,
		Type:      string(n.Type),
		Title:     n.Title,
		Message:   n.Message,
		IsRead:    n.IsRead,
		EventID:   n.EventID,
		CompanyID: n.CompanyID,
		CreatedAt: n.CreatedAt,
	})
	if err != nil {
		h.logger.Error("failed to encode notification", zap.Error(err))
		return
	}
	h.Broadcast(userID, payload)
}

// Broadcast sends payload to every client of userID. Clients that fail
// are closed and dropped.
func (h *Hub) Broadcast(userID uuid.UUID, payload []byte) {
	h.mu.RLock()
	targets := make([]Subscriber, 0, len(h.clients[userID]))
	for c := range h.clients[userID] {
		targets = append(targets, c)
	}
	h.mu.RUnlock()

	for _, c := range targets {
		if err := c.Send(payload); err != nil {
			h.logger.Debug("dropping websocket client",
				zap.String("user_id", userID.String()),
				zap.Error(err),
			)
			c.Close()
			h.Unregister(userID, c)
		}
	}
}

// CloseAll closes every client
func (h *Hub) CloseAll() {
	h.mu.Lock()
	all := h.clients
	h.clients = make(map[uuid.UUID]map[Subscriber]struct{})
	h.mu.Unlock()

	n := 0
	for _, set := range all {
		for c := range set {
			c.Close()
			n++
		}
	}
	if n > 0 {
		h.connChanged(-n)
	}
}

func (h *Hub) connChanged(delta int) {
	if h.onConnChange != nil {
		h.onConnChange(delta)
	}
}

var _ appnotification.Pusher = (*Hub)(nil)
