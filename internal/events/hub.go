package events

import (
	"context"
	"encoding/json"
	"sync"
	"sync/atomic"
	"time"

	"github.com/binhbb2204/BookHub/pkg/logger"
	"github.com/binhbb2204/BookHub/pkg/metrics"
	"github.com/binhbb2204/BookHub/pkg/utils"
)

const publishBuffer = 256

// Hub fans book events out to the websocket clients watching that book.
// Membership is only mutated by the Run goroutine.
type Hub struct {
	clients    map[*Client]struct{}
	rooms      map[string]map[*Client]struct{}
	register   chan *Client
	unregister chan *Client
	publish    chan Event
	done       chan struct{}
	running    atomic.Bool
	mu         sync.RWMutex
	log        *logger.Logger
}

func NewHub(log *logger.Logger) *Hub {
	if log == nil {
		log = logger.GetLogger()
	}
	return &Hub{
		clients:    make(map[*Client]struct{}),
		rooms:      make(map[string]map[*Client]struct{}),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		publish:    make(chan Event, publishBuffer),
		done:       make(chan struct{}),
		log:        log.WithContext("component", "events_hub"),
	}
}

// Run serves the hub until ctx is cancelled, then disconnects every client.
func (h *Hub) Run(ctx context.Context) {
	h.running.Store(true)
	h.log.Info("events_hub_started")
	defer func() {
		h.running.Store(false)
		close(h.done)
		h.shutdown()
		h.log.Info("events_hub_stopped")
	}()

	for {
		select {
		case <-ctx.Done():
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = struct{}{}
			room, ok := h.rooms[client.BookID]
			if !ok {
				room = make(map[*Client]struct{})
				h.rooms[client.BookID] = room
			}
			room[client] = struct{}{}
			metrics.SetActiveConnections(int64(len(h.clients)))
			h.mu.Unlock()
			h.log.Debug("live_client_joined", "client_id", client.ID, "book_id", client.BookID, "user_id", client.UserID)

		case client := <-h.unregister:
			h.mu.Lock()
			h.remove(client)
			metrics.SetActiveConnections(int64(len(h.clients)))
			h.mu.Unlock()

		case ev := <-h.publish:
			data, err := json.Marshal(ev)
			if err != nil {
				h.log.Error("failed_to_marshal_event", "error", err, "type", string(ev.Type))
				continue
			}
			h.mu.Lock()
			for c := range h.rooms[ev.BookID] {
				select {
				case c.Send <- data:
				default:
					h.log.Warn("live_client_too_slow", "client_id", c.ID)
					h.remove(c)
				}
			}
			metrics.SetActiveConnections(int64(len(h.clients)))
			h.mu.Unlock()
		}
	}
}

// remove must be called with mu held.
func (h *Hub) remove(c *Client) {
	if _, ok := h.clients[c]; !ok {
		return
	}
	delete(h.clients, c)
	close(c.Send)
	if room, ok := h.rooms[c.BookID]; ok {
		delete(room, c)
		if len(room) == 0 {
			delete(h.rooms, c.BookID)
		}
	}
}

func (h *Hub) shutdown() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		h.remove(c)
	}
	metrics.SetActiveConnections(0)
}

func (h *Hub) Running() bool {
	return h.running.Load()
}

// Publish queues an event for the subscribers of bookID. It never blocks;
// events are dropped when the hub is stopped or its queue is full.
func (h *Hub) Publish(bookID string, eventType EventType, data interface{}) {
	if !h.Running() {
		return
	}
	id, _ := utils.GenerateID(16)
	ev := Event{ID: id, Type: eventType, BookID: bookID, Timestamp: time.Now().UTC(), Data: data}

	select {
	case h.publish <- ev:
	default:
		h.log.Warn("event_dropped", "book_id", bookID, "type", string(eventType))
	}
}

func (h *Hub) join(c *Client) bool {
	select {
	case h.register <- c:
		return true
	case <-h.done:
		return false
	}
}

func (h *Hub) leave(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}

func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) RoomClientCount(bookID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[bookID])
}
