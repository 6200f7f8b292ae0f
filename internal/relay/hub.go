package relay

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/framecast/framecast/internal/domain"
	"github.com/framecast/framecast/internal/metrics"
)

// Hub owns the most recently published frame and drives delivery: fan-out
// on publish, cached-frame delivery at join time, and eviction of
// connections whose sends fail. A failed send is conclusive proof of a dead
// connection; nothing is retried.
type Hub struct {
	registry  *Registry
	clock     clockwork.Clock
	published atomic.Uint64

	// publishMu serializes publishes so every viewer observes frames in
	// publish order.
	publishMu sync.Mutex

	frameMu sync.RWMutex
	frame   domain.Frame
	present bool
}

// Delivery summarizes one publish fan-out.
type Delivery struct {
	Delivered int `json:"delivered"`
	Evicted   int `json:"evicted"`
}

// frameMessage is the wire envelope sent to viewers. Data is base64 in the
// JSON encoding, so browser clients can render it as a data URL directly.
type frameMessage struct {
	MediaType   string    `json:"mediaType"`
	Data        []byte    `json:"data"`
	PublishedAt time.Time `json:"publishedAt"`
}

// NewHub creates a hub broadcasting to connections in registry.
func NewHub(registry *Registry, clock clockwork.Clock) *Hub {
	return &Hub{
		registry: registry,
		clock:    clock,
	}
}

// Publish replaces the cached frame and fans it out to every registered
// connection. Connections that report themselves closed, or whose send
// fails, are deregistered and closed after the pass. Per-viewer failures
// never fail the publish; only an empty payload does.
func (h *Hub) Publish(frame domain.Frame) (Delivery, error) {
	if frame.IsEmpty() {
		return Delivery{}, domain.ErrEmptyFrame
	}

	h.publishMu.Lock()
	defer h.publishMu.Unlock()

	frame.PublishedAt = h.clock.Now()
	payload, err := encodeFrame(frame)
	if err != nil {
		return Delivery{}, fmt.Errorf("failed to encode frame: %w", err)
	}

	h.frameMu.Lock()
	h.frame = frame
	h.present = true
	h.frameMu.Unlock()

	h.published.Add(1)
	metrics.FramesPublishedTotal.Inc()
	metrics.FrameBytes.Observe(float64(len(frame.Data)))

	start := h.clock.Now()
	result := h.fanOut(payload)
	metrics.PublishFanoutDuration.Observe(h.clock.Since(start).Seconds())

	slog.Debug("frame published",
		"media_type", frame.MediaType,
		"bytes", len(frame.Data),
		"delivered", result.Delivered,
		"evicted", result.Evicted,
	)
	return result, nil
}

func (h *Hub) fanOut(payload []byte) Delivery {
	type eviction struct {
		conn   domain.Connection
		reason string
	}

	var result Delivery
	var dead []eviction

	for _, conn := range h.registry.Snapshot() {
		if conn.IsClosed() {
			dead = append(dead, eviction{conn, "closed"})
			continue
		}
		if err := conn.Send(payload); err != nil {
			slog.Debug("send failed during broadcast", "connection_id", conn.ID(), "error", err)
			dead = append(dead, eviction{conn, "send_failed"})
			continue
		}
		result.Delivered++
		metrics.DeliveriesTotal.Inc()
	}

	for _, e := range dead {
		h.evict(e.conn, e.reason)
	}
	result.Evicted = len(dead)
	return result
}

// OnJoin delivers the cached frame to a freshly registered connection. If
// no frame has ever been published this is a no-op. A failed join-time send
// is treated like a broadcast failure: the connection is evicted rather
// than left half-alive.
func (h *Hub) OnJoin(conn domain.Connection) {
	frame, ok := h.CurrentFrame()
	if !ok {
		return
	}

	payload, err := encodeFrame(frame)
	if err != nil {
		slog.Error("failed to encode frame for join delivery", "error", err)
		return
	}

	if err := conn.Send(payload); err != nil {
		slog.Debug("join-time send failed", "connection_id", conn.ID(), "error", err)
		h.evict(conn, "join_send_failed")
		return
	}
	metrics.JoinDeliveriesTotal.Inc()
}

// CurrentFrame returns the cached frame and whether one is present.
func (h *Hub) CurrentFrame() (domain.Frame, bool) {
	h.frameMu.RLock()
	defer h.frameMu.RUnlock()
	return h.frame, h.present
}

// ViewerCount returns the number of registered connections.
func (h *Hub) ViewerCount() int {
	return h.registry.Len()
}

// FramesPublished returns the number of successful publishes.
func (h *Hub) FramesPublished() uint64 {
	return h.published.Load()
}

// Stop deregisters and closes every connection. Used during shutdown.
func (h *Hub) Stop() {
	conns := h.registry.Snapshot()
	for _, conn := range conns {
		h.registry.Deregister(conn)
		conn.Close("server shutting down")
	}
	metrics.ConnectedViewers.Set(0)
	slog.Info("hub stopped", "disconnected_viewers", len(conns))
}

func (h *Hub) evict(conn domain.Connection, reason string) {
	h.registry.Deregister(conn)
	conn.Close("evicted: " + reason)
	metrics.ViewersEvictedTotal.WithLabelValues(reason).Inc()
	metrics.ConnectedViewers.Set(float64(h.registry.Len()))
}

func encodeFrame(frame domain.Frame) ([]byte, error) {
	return json.Marshal(frameMessage{
		MediaType:   frame.MediaType,
		Data:        frame.Data,
		PublishedAt: frame.PublishedAt,
	})
}
