package client_test

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/aleksandarhr/kvs/internal/client"
	"github.com/aleksandarhr/kvs/internal/kvstore"
	"github.com/aleksandarhr/kvs/internal/server"
	"github.com/aleksandarhr/kvs/pkg/config"
)

func TestClientSetGetRemove(t *testing.T) {
	addr := startServerOnAddr(t)

	c, err := client.Connect(addr)
	require.NoError(t, err)
	defer c.Close()

	require.NoError(t, c.Set("key", "value"))

	value, ok, err := c.Get("key")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "value", value)

	require.NoError(t, c.Remove("key"))

	_, ok, err = c.Get("key")
	require.NoError(t, err)
	require.False(t, ok)

	err = c.Remove("key")
	require.Error(t, err)
}

func TestClientPersistsAcrossServerRestart(t *testing.T) {
	dir, err := os.MkdirTemp("", "client-restart-test")
	require.NoError(t, err)
	defer os.RemoveAll(dir)

	store, err := kvstore.Open(dir, zap.NewNop().Sugar(), config.Default())
	require.NoError(t, err)
	srv := server.New(store, zap.NewNop().Sugar())

	addr := "127.0.0.1:14777"
	go srv.Run(addr)
	waitForDial(t, addr)

	c, err := client.Connect(addr)
	require.NoError(t, err)
	require.NoError(t, c.Set("durable", "yes"))
	require.NoError(t, c.Close())
	require.NoError(t, store.Close())

	reopened, err := kvstore.Open(dir, zap.NewNop().Sugar(), config.Default())
	require.NoError(t, err)
	defer reopened.Close()

	value, ok, err := reopened.Get("durable")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "yes", value)
}

// startServerOnAddr opens a kvstore-backed server on a fixed loopback
// port and returns its address, grounded on the original
// implementation's end-to-end client/server scenarios (§8, S1-S4: the
// CLI-facing S5/S6 exit-code scenarios are out of scope).
func startServerOnAddr(t *testing.T) string {
	t.Helper()
	dir, err := os.MkdirTemp("", "client-test")
	require.NoError(t, err)
	t.Cleanup(func() { os.RemoveAll(dir) })

	store, err := kvstore.Open(dir, zap.NewNop().Sugar(), config.Default())
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	srv := server.New(store, zap.NewNop().Sugar())
	addr := "127.0.0.1:14778"
	go srv.Run(addr)
	waitForDial(t, addr)
	return addr
}

func waitForDial(t *testing.T, addr string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		c, err := client.Connect(addr)
		if err == nil {
			c.Close()
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("server at %s never became reachable", addr)
}
