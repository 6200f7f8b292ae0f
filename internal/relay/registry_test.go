package relay

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_RegisterAndSnapshot(t *testing.T) {
	registry := NewRegistry()
	c1 := &stubConn{id: "a"}
	c2 := &stubConn{id: "b"}

	registry.Register(c1)
	registry.Register(c2)

	snapshot := registry.Snapshot()
	assert.Len(t, snapshot, 2)
	assert.Equal(t, 2, registry.Len())

	ids := map[string]bool{}
	for _, conn := range snapshot {
		ids[conn.ID()] = true
	}
	assert.True(t, ids["a"])
	assert.True(t, ids["b"])
}

func TestRegistry_RegisterSameIDOverwrites(t *testing.T) {
	registry := NewRegistry()
	first := &stubConn{id: "a"}
	second := &stubConn{id: "a"}

	registry.Register(first)
	registry.Register(second)

	require.Equal(t, 1, registry.Len())
	assert.Same(t, second, registry.Snapshot()[0].(*stubConn))
}

func TestRegistry_DeregisterIdempotent(t *testing.T) {
	registry := NewRegistry()
	conn := &stubConn{id: "a"}

	registry.Register(conn)
	registry.Deregister(conn)
	assert.Equal(t, 0, registry.Len())

	// Second deregister is a no-op, not an error.
	registry.Deregister(conn)
	assert.Equal(t, 0, registry.Len())
}

func TestRegistry_DeregisterUnknownConnection(t *testing.T) {
	registry := NewRegistry()
	registry.Deregister(&stubConn{id: "ghost"})
	assert.Equal(t, 0, registry.Len())
}

func TestRegistry_SnapshotIsACopy(t *testing.T) {
	registry := NewRegistry()
	conn := &stubConn{id: "a"}
	registry.Register(conn)

	snapshot := registry.Snapshot()
	registry.Deregister(conn)

	// The snapshot still holds the connection from before the deregister.
	assert.Len(t, snapshot, 1)
	assert.Equal(t, 0, registry.Len())
}

func TestRegistry_ConcurrentAccess(t *testing.T) {
	registry := NewRegistry()
	var wg sync.WaitGroup

	for i := 0; i < 50; i++ {
		conn := &stubConn{id: fmt.Sprintf("conn-%d", i)}
		wg.Add(3)
		go func() {
			defer wg.Done()
			registry.Register(conn)
		}()
		go func() {
			defer wg.Done()
			registry.Deregister(conn)
		}()
		go func() {
			defer wg.Done()
			for _, c := range registry.Snapshot() {
				_ = c.ID()
			}
		}()
	}

	wg.Wait()

	// Every connection was either left registered or removed; the
	// registry must be internally consistent either way.
	assert.Equal(t, registry.Len(), len(registry.Snapshot()))
}
