package kvstore

import (
	"fmt"
	"os"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/aleksandarhr/kvs/pkg/config"
	"github.com/aleksandarhr/kvs/pkg/kvserrors"
)

func TestStore(t *testing.T) {
	for scenario, fn := range map[string]func(t *testing.T, dir string){
		"set then get round trips the value":          testSetGetRoundTrip,
		"set overwrites a prior value":                testLastWriteWins,
		"get on a missing key reports absent":          testGetMissing,
		"remove on a missing key errors":               testRemoveMissing,
		"remove then get reports absent":               testRemoveThenGet,
		"data survives a close and reopen":             testPersistAcrossReopen,
		"compaction keeps only live keys readable":     testCompactionPreservesSemantics,
		"compaction reclaims space from stale writes":  testCompactionReclaimsSpace,
	} {
		t.Run(scenario, func(t *testing.T) {
			dir, err := os.MkdirTemp("", "kvstore-test")
			require.NoError(t, err)
			defer os.RemoveAll(dir)
			fn(t, dir)
		})
	}
}

func mustOpen(t *testing.T, dir string, cfg config.Config) *Store {
	t.Helper()
	s, err := Open(dir, zap.NewNop().Sugar(), cfg)
	require.NoError(t, err)
	return s
}

func testSetGetRoundTrip(t *testing.T, dir string) {
	s := mustOpen(t, dir, config.Default())
	defer s.Close()

	require.NoError(t, s.Set("key", "value"))
	value, ok, err := s.Get("key")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "value", value)
}

func testLastWriteWins(t *testing.T, dir string) {
	s := mustOpen(t, dir, config.Default())
	defer s.Close()

	require.NoError(t, s.Set("key", "first"))
	require.NoError(t, s.Set("key", "second"))

	value, ok, err := s.Get("key")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "second", value)
}

func testGetMissing(t *testing.T, dir string) {
	s := mustOpen(t, dir, config.Default())
	defer s.Close()

	_, ok, err := s.Get("nope")
	require.NoError(t, err)
	require.False(t, ok)
}

func testRemoveMissing(t *testing.T, dir string) {
	s := mustOpen(t, dir, config.Default())
	defer s.Close()

	err := s.Remove("nope")
	require.True(t, kvserrors.IsKeyNotFound(err))
}

func testRemoveThenGet(t *testing.T, dir string) {
	s := mustOpen(t, dir, config.Default())
	defer s.Close()

	require.NoError(t, s.Set("key", "value"))
	require.NoError(t, s.Remove("key"))

	_, ok, err := s.Get("key")
	require.NoError(t, err)
	require.False(t, ok)
}

func testPersistAcrossReopen(t *testing.T, dir string) {
	cfg := config.Default()
	s := mustOpen(t, dir, cfg)

	require.NoError(t, s.Set("a", "1"))
	require.NoError(t, s.Set("b", "2"))
	require.NoError(t, s.Remove("a"))
	require.NoError(t, s.Close())

	reopened := mustOpen(t, dir, cfg)
	defer reopened.Close()

	_, ok, err := reopened.Get("a")
	require.NoError(t, err)
	require.False(t, ok)

	value, ok, err := reopened.Get("b")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "2", value)
}

func testCompactionPreservesSemantics(t *testing.T, dir string) {
	cfg := config.New(config.WithCompactionThreshold(1))
	s := mustOpen(t, dir, cfg)
	defer s.Close()

	// every Set after the first pushes uncompacted past the tiny
	// threshold, forcing a compaction pass inline with the call.
	for i := 0; i < 50; i++ {
		require.NoError(t, s.Set("key", fmt.Sprintf("value-%d", i)))
	}
	require.NoError(t, s.Set("other", "x"))
	require.NoError(t, s.Remove("other"))

	value, ok, err := s.Get("key")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "value-49", value)

	_, ok, err = s.Get("other")
	require.NoError(t, err)
	require.False(t, ok)
}

func testCompactionReclaimsSpace(t *testing.T, dir string) {
	cfg := config.New(config.WithCompactionThreshold(1 << 20))
	s := mustOpen(t, dir, cfg)

	for i := 0; i < 200; i++ {
		require.NoError(t, s.Set("key", fmt.Sprintf("padded-value-%d", i)))
	}
	require.NoError(t, s.Close())

	sizeBefore, err := dirSize(dir)
	require.NoError(t, err)

	reopened := mustOpen(t, dir, config.New(config.WithCompactionThreshold(1)))
	require.NoError(t, reopened.Set("trigger", "compaction"))
	require.NoError(t, reopened.Close())

	sizeAfter, err := dirSize(dir)
	require.NoError(t, err)
	require.Less(t, sizeAfter, sizeBefore)
}

func dirSize(dir string) (int64, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, err
	}
	var total int64
	for _, e := range entries {
		info, err := e.Info()
		if err != nil {
			return 0, err
		}
		total += info.Size()
	}
	return total, nil
}
