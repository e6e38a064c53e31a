package ws

import (
	"sync"

	"github.com/bytedance/sonic"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/tabterm/internal/domain/terminal"
	"github.com/GriffinCanCode/tabterm/internal/shared/id"
)

// DefaultBuffer is the per-client send queue length.
const DefaultBuffer = 256

// Recorder receives stream metrics. monitoring.Metrics implements it.
type Recorder interface {
	RecordWSMessage(direction, msgType string)
	IncWSConnections()
	DecWSConnections()
	IncWSDropped()
}

type nopRecorder struct{}

func (nopRecorder) RecordWSMessage(string, string) {}
func (nopRecorder) IncWSConnections()              {}
func (nopRecorder) DecWSConnections()              {}
func (nopRecorder) IncWSDropped()                  {}

// client is one connection's outgoing queue.
type client struct {
	id id.ClientID

	mu     sync.Mutex
	closed bool
	send   chan []byte
}

// offer queues msg without blocking. It reports false when the queue is
// full or already closed.
func (c *client) offer(msg []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return false
	}
	select {
	case c.send <- msg:
		return true
	default:
		return false
	}
}

func (c *client) close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.closed {
		c.closed = true
		close(c.send)
	}
}

// Hub broadcasts terminal events to every connected client.
type Hub struct {
	buffer int
	rec    Recorder
	log    *zap.Logger

	mu      sync.RWMutex
	clients map[id.ClientID]*client
}

// NewHub creates an empty hub. rec and log may be nil.
func NewHub(buffer int, rec Recorder, log *zap.Logger) *Hub {
	if buffer <= 0 {
		buffer = DefaultBuffer
	}
	if rec == nil {
		rec = nopRecorder{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Hub{
		buffer:  buffer,
		rec:     rec,
		log:     log,
		clients: make(map[id.ClientID]*client),
	}
}

// TerminalData implements terminal.Sink.
func (h *Hub) TerminalData(ev terminal.TerminalData) {
	h.broadcast(Outbound{Type: TypeTerminalData, TabID: ev.TabID, Data: ev.Data})
}

// TabClosed implements terminal.Sink.
func (h *Hub) TabClosed(ev terminal.TabClosed) {
	h.broadcast(Outbound{Type: TypeTabClosed, TabID: ev.TabID})
}

// Len returns the number of connected clients.
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Close disconnects every client.
func (h *Hub) Close() {
	h.mu.Lock()
	clients := h.clients
	h.clients = make(map[id.ClientID]*client)
	h.mu.Unlock()

	for _, c := range clients {
		c.close()
		h.rec.DecWSConnections()
	}
}

func (h *Hub) register() *client {
	c := &client{
		id:   id.NewClientID(),
		send: make(chan []byte, h.buffer),
	}

	h.mu.Lock()
	h.clients[c.id] = c
	h.mu.Unlock()

	h.rec.IncWSConnections()
	h.log.Info("Stream client connected", zap.String("client_id", c.id.String()))
	return c
}

// unregister is safe to call more than once.
func (h *Hub) unregister(c *client) bool {
	h.mu.Lock()
	_, ok := h.clients[c.id]
	delete(h.clients, c.id)
	h.mu.Unlock()

	c.close()
	if ok {
		h.rec.DecWSConnections()
	}
	return ok
}

// reply queues a message for one client.
func (h *Hub) reply(c *client, msg Outbound) {
	b, err := sonic.ConfigStd.Marshal(msg)
	if err != nil {
		h.log.Error("Failed to encode stream message", zap.String("type", msg.Type), zap.Error(err))
		return
	}
	if c.offer(b) {
		h.rec.RecordWSMessage("out", msg.Type)
		return
	}
	h.drop(c)
}

func (h *Hub) broadcast(msg Outbound) {
	b, err := sonic.ConfigStd.Marshal(msg)
	if err != nil {
		h.log.Error("Failed to encode stream message", zap.String("type", msg.Type), zap.Error(err))
		return
	}

	var slow []*client
	h.mu.RLock()
	for _, c := range h.clients {
		if c.offer(b) {
			h.rec.RecordWSMessage("out", msg.Type)
		} else {
			slow = append(slow, c)
		}
	}
	h.mu.RUnlock()

	for _, c := range slow {
		h.drop(c)
	}
}

func (h *Hub) drop(c *client) {
	if h.unregister(c) {
		h.rec.IncWSDropped()
		h.log.Warn("Dropped slow stream client", zap.String("client_id", c.id.String()))
	}
}
