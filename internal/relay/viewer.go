package relay

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/jonboulle/clockwork"

	"github.com/framecast/framecast/internal/domain"
	"github.com/framecast/framecast/internal/metrics"
)

const (
	writeDeadline     = 5 * time.Second
	pingInterval      = 30 * time.Second
	pongDeadline      = 60 * time.Second
	sendBufferSize    = 16
	maxInboundMessage = 512
)

// Viewer adapts a gorilla websocket connection to domain.Connection.
//
// All socket writes happen on a dedicated goroutine fed by a buffered
// channel, so Send never blocks on a stalled peer: when the buffer is full
// the send fails immediately and the hub evicts the viewer. The write
// goroutine also drives ping keepalives; a missed pong trips the read
// deadline and the read pump notices the death.
type Viewer struct {
	id     string
	conn   *websocket.Conn
	clock  clockwork.Clock
	sendCh chan []byte
	done   chan struct{}

	closed   atomic.Bool
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// NewViewer wraps conn and starts its write goroutine.
func NewViewer(conn *websocket.Conn, clock clockwork.Clock) *Viewer {
	v := &Viewer{
		id:     uuid.NewString(),
		conn:   conn,
		clock:  clock,
		sendCh: make(chan []byte, sendBufferSize),
		done:   make(chan struct{}),
	}
	v.configureRead()
	v.wg.Add(1)
	go v.writePump()
	return v
}

// ID returns the connection's unique identity.
func (v *Viewer) ID() string {
	return v.id
}

// Send queues data for delivery. It fails when the viewer is closed or its
// buffer is full; either way the viewer should be evicted.
func (v *Viewer) Send(data []byte) error {
	if v.closed.Load() {
		return domain.ErrConnectionClosed
	}
	select {
	case v.sendCh <- data:
		return nil
	default:
		return domain.ErrSendBufferFull
	}
}

// IsClosed reports whether the transport is known dead.
func (v *Viewer) IsClosed() bool {
	return v.closed.Load()
}

// Close stops the write goroutine, sends a close frame with reason, and
// closes the socket. Safe to call multiple times.
func (v *Viewer) Close(reason string) {
	v.stopOnce.Do(func() {
		v.closed.Store(true)
		close(v.done)

		// The write goroutine must exit before the close frame goes out;
		// gorilla connections do not support concurrent writers.
		v.wg.Wait()

		msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, reason)
		_ = v.conn.SetWriteDeadline(v.clock.Now().Add(writeDeadline))
		_ = v.conn.WriteMessage(websocket.CloseMessage, msg)
		_ = v.conn.Close()
	})
}

// ReadUntilClosed blocks reading (and discarding) inbound messages until
// the transport dies. Viewers send nothing meaningful upstream; the read
// pump exists purely to detect closure and keep pong handling alive.
func (v *Viewer) ReadUntilClosed() {
	for {
		if _, _, err := v.conn.ReadMessage(); err != nil {
			v.closed.Store(true)
			return
		}
	}
}

func (v *Viewer) writePump() {
	ticker := v.clock.NewTicker(pingInterval)
	defer ticker.Stop()
	defer v.wg.Done()

	for {
		select {
		case msg := <-v.sendCh:
			_ = v.conn.SetWriteDeadline(v.clock.Now().Add(writeDeadline))
			if err := v.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				v.closed.Store(true)
				return
			}
		case <-ticker.Chan():
			_ = v.conn.SetWriteDeadline(v.clock.Now().Add(writeDeadline))
			if err := v.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				metrics.PingFailuresTotal.Inc()
				v.closed.Store(true)
				return
			}
		case <-v.done:
			return
		}
	}
}

func (v *Viewer) configureRead() {
	v.conn.SetReadLimit(maxInboundMessage)
	_ = v.conn.SetReadDeadline(v.clock.Now().Add(pongDeadline))
	v.conn.SetPongHandler(func(string) error {
		return v.conn.SetReadDeadline(v.clock.Now().Add(pongDeadline))
	})
}
