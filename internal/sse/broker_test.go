package sse

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// syncRecorder guards the recorder body, which the handler goroutine writes
// while the test reads it.
type syncRecorder struct {
	mu sync.Mutex
	*httptest.ResponseRecorder
}

func (r *syncRecorder) Write(p []byte) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.ResponseRecorder.Write(p)
}

func (r *syncRecorder) Flush() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ResponseRecorder.Flush()
}

func (r *syncRecorder) body() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.ResponseRecorder.Body.String()
}

func clientCount(b *Broker) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.clients)
}

func drain(ch chan []byte) []string {
	var out []string
	for {
		select {
		case msg, ok := <-ch:
			if !ok {
				return out
			}
			out = append(out, string(msg))
		case <-time.After(100 * time.Millisecond):
			return out
		}
	}
}

func subscribe(t *testing.T, b *Broker) chan []byte {
	t.Helper()
	ch, ok := b.subscribe()
	require.True(t, ok)
	t.Cleanup(func() { b.unsubscribe(ch) })
	return ch
}

func TestNotify_FrameFormat(t *testing.T) {
	b := NewBroker(time.Minute)
	defer b.Close()
	ch := subscribe(t, b)

	b.Notify("created", "intro")

	msgs := drain(ch)
	require.Len(t, msgs, 2)
	assert.Equal(t, "event: doc.created\ndata: {\"path\":\"intro\"}\n\n", msgs[0])
	assert.Equal(t, "event: reload\ndata: {\"path\":\"intro\"}\n\n", msgs[1])
}

func TestNotify_ReloadThrottled(t *testing.T) {
	b := NewBroker(time.Minute)
	defer b.Close()
	ch := subscribe(t, b)

	b.Notify("created", "a")
	b.Notify("updated", "b")
	b.Notify("deleted", "c")

	var docEvents, reloads int
	for _, msg := range drain(ch) {
		if strings.HasPrefix(msg, "event: reload") {
			reloads++
		} else {
			docEvents++
		}
	}
	assert.Equal(t, 3, docEvents)
	assert.Equal(t, 1, reloads)
}

func TestNotify_ReloadAfterThrottleElapses(t *testing.T) {
	b := NewBroker(time.Millisecond)
	defer b.Close()
	ch := subscribe(t, b)

	b.Notify("updated", "a")
	time.Sleep(5 * time.Millisecond)
	b.Notify("updated", "a")

	var reloads int
	for _, msg := range drain(ch) {
		if strings.HasPrefix(msg, "event: reload") {
			reloads++
		}
	}
	assert.Equal(t, 2, reloads)
}

func TestNotify_UnknownKindIgnored(t *testing.T) {
	b := NewBroker(time.Millisecond)
	defer b.Close()
	ch := subscribe(t, b)

	b.Notify("renamed", "a")
	assert.Empty(t, drain(ch))
}

func TestNotify_SlowClientDoesNotBlock(t *testing.T) {
	b := NewBroker(time.Hour)
	defer b.Close()
	_ = subscribe(t, b)

	done := make(chan struct{})
	go func() {
		for i := 0; i < 2*clientBuffer; i++ {
			b.Notify("updated", "x")
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Notify blocked on a full client buffer")
	}
}

func TestServeHTTP_StreamsUntilDisconnect(t *testing.T) {
	b := NewBroker(time.Millisecond)
	defer b.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	req := httptest.NewRequest(http.MethodGet, "/_live/events", nil).WithContext(ctx)
	w := &syncRecorder{ResponseRecorder: httptest.NewRecorder()}

	done := make(chan struct{})
	go func() {
		b.ServeHTTP(w, req)
		close(done)
	}()

	require.Eventually(t, func() bool { return clientCount(b) == 1 }, time.Second, 10*time.Millisecond)

	b.Notify("updated", "guide")
	require.Eventually(t, func() bool {
		return strings.Contains(w.body(), "event: reload")
	}, time.Second, 10*time.Millisecond)

	cancel()
	<-done

	assert.Equal(t, "text/event-stream", w.Header().Get("Content-Type"))
	assert.True(t, strings.HasPrefix(w.body(), "retry: 1000\n\n"))
	assert.Contains(t, w.body(), "event: doc.updated")
	assert.Equal(t, 0, clientCount(b))
}

func TestClose_EndsStreams(t *testing.T) {
	b := NewBroker(time.Millisecond)

	req := httptest.NewRequest(http.MethodGet, "/_live/events", nil)
	w := &syncRecorder{ResponseRecorder: httptest.NewRecorder()}
	done := make(chan struct{})
	go func() {
		b.ServeHTTP(w, req)
		close(done)
	}()
	require.Eventually(t, func() bool { return clientCount(b) == 1 }, time.Second, 10*time.Millisecond)

	b.Close()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("stream did not end after Close")
	}

	// No-ops once closed.
	b.Notify("updated", "x")
	b.Close()

	rec := httptest.NewRecorder()
	b.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/_live/events", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
