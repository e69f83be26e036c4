package http

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"
)

// ChangeType names what happened to a stored service.
type ChangeType string

const (
	ChangeCreated ChangeType = "created"
	ChangeUpdated ChangeType = "updated"
	ChangeDeleted ChangeType = "deleted"
)

// ChangeEvent is pushed to SSE subscribers of a service.
type ChangeEvent struct {
	Type      ChangeType `json:"type"`
	ServiceID string     `json:"service_id"`
	VersionID string     `json:"version_id,omitempty"`
	Timestamp time.Time  `json:"timestamp"`
}

// StreamManager handles active SSE connections
type StreamManager struct {
	mu          sync.RWMutex
	subscribers map[string]map[chan<- string]struct{} // ServiceID -> Set of Channels
	logger      *slog.Logger
}

func NewStreamManager() *StreamManager {
	return &StreamManager{
		subscribers: make(map[string]map[chan<- string]struct{}),
		logger:      slog.Default(),
	}
}

func (sm *StreamManager) Subscribe(serviceID string) (chan string, func()) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	ch := make(chan string, 10)
	if _, ok := sm.subscribers[serviceID]; !ok {
		sm.subscribers[serviceID] = make(map[chan<- string]struct{})
	}
	sm.subscribers[serviceID][ch] = struct{}{}

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			sm.mu.Lock()
			defer sm.mu.Unlock()
			if subs, ok := sm.subscribers[serviceID]; ok {
				delete(subs, ch)
				close(ch)
				if len(subs) == 0 {
					delete(sm.subscribers, serviceID)
				}
			}
		})
	}
}

// Subscribers returns the number of open subscriptions for a service.
func (sm *StreamManager) Subscribers(serviceID string) int {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return len(sm.subscribers[serviceID])
}

func (sm *StreamManager) Broadcast(serviceID string, msg string) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	sm.logger.Debug("StreamManager: Broadcasting", "service_id", serviceID, "payload_size", len(msg))

	for ch := range sm.subscribers[serviceID] {
		select {
		case ch <- msg:
		default:
			// Drop message if channel is full (slow client)
			sm.logger.Warn("SSE: Client buffer full, dropping message", "service_id", serviceID)
		}
	}
}

// Publish broadcasts a ChangeEvent for serviceID.
func (sm *StreamManager) Publish(serviceID string, change ChangeType, versionID string) {
	data, err := json.Marshal(ChangeEvent{
		Type:      change,
		ServiceID: serviceID,
		VersionID: versionID,
		Timestamp: time.Now().UTC(),
	})
	if err != nil {
		sm.logger.Error("SSE: encode change failed", "error", err)
		return
	}
	sm.Broadcast(serviceID, string(data))
}

// SubscribeEvents handles GET /services/{serviceID}/events (SSE).
// The service does not need to exist yet: subscribers see it being created.
func (s *Server) SubscribeEvents(w http.ResponseWriter, r *http.Request) {
	serviceID, err := pathParam(r, "serviceID")
	if err != nil {
		s.fail(w, r, http.StatusBadRequest, err)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		s.fail(w, r, http.StatusInternalServerError, fmt.Errorf("streaming not supported"))
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	s.logger.Info("SSE: Subscribing to service changes", "service_id", serviceID)
	ch, cancel := s.Streams.Subscribe(serviceID)
	defer cancel()

	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			s.logger.Info("SSE Client Disconnected", "service_id", serviceID)
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			fmt.Fprintf(w, "event: change\ndata: %s\n\n", msg)
			flusher.Flush()
		}
	}
}
