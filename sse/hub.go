package sse

import (
	"path/filepath"
	"sync"
	"time"

	"github.com/kbukum/subtitler/logger"
)

const (
	clientBuffer      = 64
	broadcastBuffer   = 256
	DefaultKeepAlive  = 30 * time.Second
	defaultTopicMatch = "*"
)

// Client is one connected stream.
type Client struct {
	id     string
	filter string
	events chan Event
}

// NewClient creates a client receiving events whose topic matches filter.
// An empty filter matches every topic.
func NewClient(id, filter string) *Client {
	if filter == "" {
		filter = defaultTopicMatch
	}
	return &Client{id: id, filter: filter, events: make(chan Event, clientBuffer)}
}

func (c *Client) ID() string           { return c.id }
func (c *Client) Filter() string       { return c.filter }
func (c *Client) Events() <-chan Event { return c.events }

func (c *Client) matches(topic string) bool {
	ok, err := filepath.Match(c.filter, topic)
	return err == nil && ok
}

// send reports false when the client buffer is full.
func (c *Client) send(e Event) bool {
	select {
	case c.events <- e:
		return true
	default:
		return false
	}
}

// Hub owns the client set. All mutation happens on the Run goroutine.
type Hub struct {
	log       *logger.Logger
	keepAlive time.Duration

	register   chan *Client
	unregister chan *Client
	broadcast  chan Event
	done       chan struct{}
	stopOnce   sync.Once

	mu      sync.RWMutex
	clients map[string]*Client
}

// HubOption configures a Hub.
type HubOption func(*Hub)

// WithKeepAlive sets the comment interval that keeps idle streams open
// through proxies.
func WithKeepAlive(d time.Duration) HubOption {
	return func(h *Hub) {
		if d > 0 {
			h.keepAlive = d
		}
	}
}

// NewHub returns a stopped hub. Call Run to start delivery.
func NewHub(log *logger.Logger, opts ...HubOption) *Hub {
	if log == nil {
		log = logger.NewNop()
	}
	h := &Hub{
		log:        log,
		keepAlive:  DefaultKeepAlive,
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan Event, broadcastBuffer),
		done:       make(chan struct{}),
		clients:    make(map[string]*Client),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Run routes events until Stop. Clients still connected are closed.
func (h *Hub) Run() {
	for {
		select {
		case <-h.done:
			h.closeAll()
			return
		case c := <-h.register:
			h.mu.Lock()
			h.clients[c.id] = c
			n := len(h.clients)
			h.mu.Unlock()
			h.log.Debug("stream client registered", logger.Fields("client_id", c.id, "filter", c.filter, "clients", n))
		case c := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[c.id]; ok {
				delete(h.clients, c.id)
				close(c.events)
			}
			n := len(h.clients)
			h.mu.Unlock()
			h.log.Debug("stream client unregistered", logger.Fields("client_id", c.id, "clients", n))
		case e := <-h.broadcast:
			h.deliver(e)
		}
	}
}

// Stop ends Run. Safe to call more than once.
func (h *Hub) Stop() {
	h.stopOnce.Do(func() { close(h.done) })
}

// Done is closed once Stop has been called.
func (h *Hub) Done() <-chan struct{} { return h.done }

// Register adds c. It returns false when the hub has stopped.
func (h *Hub) Register(c *Client) bool {
	select {
	case h.register <- c:
		return true
	case <-h.done:
		return false
	}
}

// Unregister removes c and closes its channel.
func (h *Hub) Unregister(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}

// Publish queues an event for every matching client.
func (h *Hub) Publish(topic, name string, data []byte) bool {
	select {
	case <-h.done:
		return false
	default:
	}
	select {
	case h.broadcast <- Event{Topic: topic, Name: name, Data: data}:
		return true
	default:
		h.log.Warn("event queue full, dropping event", logger.Fields("topic", topic, "event", name))
		return false
	}
}

func (h *Hub) deliver(e Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for id, c := range h.clients {
		if !c.matches(e.Topic) {
			continue
		}
		if !c.send(e) {
			h.log.Warn("stream client too slow, dropping event", logger.Fields("client_id", id, "topic", e.Topic))
		}
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for id, c := range h.clients {
		close(c.events)
		delete(h.clients, id)
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

var _ Publisher = (*Hub)(nil)
