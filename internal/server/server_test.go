package server

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/require"

	"github.com/framecast/framecast/internal/config"
	"github.com/framecast/framecast/internal/relay"
)

func testConfig() *config.Config {
	return &config.Config{
		AppEnv:             "development",
		Port:               "0",
		LogLevel:           "info",
		LogFormat:          "text",
		MaxViewers:         100,
		MaxViewersPerIP:    10,
		ViewerConnectRate:  1000,
		ViewerConnectBurst: 1000,
		MaxFrameBytes:      1 << 20,
		PublishRate:        1000,
		PublishBurst:       1000,
		ShutdownTimeout:    time.Second,
	}
}

type testEnv struct {
	server   *Server
	hub      *relay.Hub
	registry *relay.Registry
	http     *httptest.Server
}

func newTestEnv(t *testing.T, mutate func(*config.Config)) *testEnv {
	t.Helper()

	cfg := testConfig()
	if mutate != nil {
		mutate(cfg)
	}

	registry := relay.NewRegistry()
	hub := relay.NewHub(registry, clockwork.NewRealClock())

	srv, err := NewServer(cfg, registry, hub, clockwork.NewRealClock())
	require.NoError(t, err)

	ts := httptest.NewServer(srv.echo)
	t.Cleanup(ts.Close)
	t.Cleanup(hub.Stop)

	return &testEnv{server: srv, hub: hub, registry: registry, http: ts}
}

func waitForViewerCount(registry *relay.Registry, expected int) bool {
	for i := 0; i < 200; i++ {
		if registry.Len() == expected {
			return true
		}
		time.Sleep(5 * time.Millisecond)
	}
	return false
}

// wireFrame mirrors the JSON envelope viewers receive.
type wireFrame struct {
	MediaType string `json:"mediaType"`
	Data      []byte `json:"data"`
}
