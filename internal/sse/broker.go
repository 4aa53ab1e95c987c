// Package sse implements the Server-Sent Events stream behind live reload.
package sse

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"
)

// Event types sent to browsers.
const (
	EventDocCreated = "doc.created"
	EventDocUpdated = "doc.updated"
	EventDocDeleted = "doc.deleted"
	EventReload     = "reload"
)

// retryMillis tells EventSource how long to wait before reconnecting after
// the server restarts.
const retryMillis = 1000

// clientBuffer is the per-client queue; a client that falls further behind
// misses events instead of stalling the others.
const clientBuffer = 64

var docEvents = map[string]string{
	"created": EventDocCreated,
	"updated": EventDocUpdated,
	"deleted": EventDocDeleted,
}

// Broker fans document change notifications out to connected browsers.
type Broker struct {
	throttle time.Duration

	mu         sync.Mutex
	clients    map[chan []byte]struct{}
	lastReload time.Time
	closed     bool
}

// NewBroker creates a broker that emits at most one reload event per
// throttle interval.
func NewBroker(throttle time.Duration) *Broker {
	if throttle <= 0 {
		throttle = 500 * time.Millisecond
	}
	return &Broker{
		throttle: throttle,
		clients:  make(map[chan []byte]struct{}),
	}
}

// Notify reports a change to the document at logicalPath. kind is one of
// "created", "updated" or "deleted"; other kinds are ignored. Every change is
// sent as a doc.* event, followed by a reload event unless one went out
// within the throttle interval.
func (b *Broker) Notify(kind, logicalPath string) {
	typ, ok := docEvents[kind]
	if !ok {
		return
	}
	data := map[string]string{"path": logicalPath}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.broadcast(typ, data)

	now := time.Now()
	if now.Sub(b.lastReload) >= b.throttle {
		b.lastReload = now
		b.broadcast(EventReload, data)
	}
}

// broadcast must be called with b.mu held.
func (b *Broker) broadcast(typ string, data any) {
	payload, err := json.Marshal(data)
	if err != nil {
		return
	}
	frame := []byte(fmt.Sprintf("event: %s\ndata: %s\n\n", typ, payload))
	for ch := range b.clients {
		select {
		case ch <- frame:
		default:
		}
	}
}

// Close disconnects every client. Later Notify calls are no-ops and new
// streams end immediately.
func (b *Broker) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	for ch := range b.clients {
		close(ch)
		delete(b.clients, ch)
	}
}

func (b *Broker) subscribe() (chan []byte, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil, false
	}
	ch := make(chan []byte, clientBuffer)
	b.clients[ch] = struct{}{}
	return ch, true
}

func (b *Broker) unsubscribe(ch chan []byte) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.clients[ch]; ok {
		delete(b.clients, ch)
		close(ch)
	}
}

// ServeHTTP streams events until the client disconnects or the broker
// closes.
func (b *Broker) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	ch, ok := b.subscribe()
	if !ok {
		http.Error(w, "shutting down", http.StatusServiceUnavailable)
		return
	}
	defer b.unsubscribe(ch)

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	_, _ = fmt.Fprintf(w, "retry: %d\n\n", retryMillis)
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case frame, ok := <-ch:
			if !ok {
				return
			}
			_, _ = w.Write(frame)
			flusher.Flush()
		}
	}
}
