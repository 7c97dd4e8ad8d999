package coordinator

import (
	"context"
	"errors"
	"testing"

	"github.com/keyscope/keyscope/internal/logging"
	"github.com/keyscope/keyscope/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newScanCoordinator(store *fakeStore, topo *fakeTopology) *ScanCoordinator {
	return NewScanCoordinator(logging.Nop(), store, topo, ScanOptions{DefaultCount: 200, Threshold: 10000})
}

// scanAll pages until the composite cursor is exhausted.
func scanAll(t *testing.T, sc *ScanCoordinator, req ScanRequest) ([]models.KeyDescriptor, []*ScanResult) {
	t.Helper()
	var keys []models.KeyDescriptor
	var pages []*ScanResult
	for i := 0; i < 1000; i++ {
		res, err := sc.Scan(context.Background(), req)
		require.NoError(t, err)
		pages = append(pages, res)
		for _, shard := range res.Shards {
			keys = append(keys, shard.Keys...)
		}
		if res.Cursor == CursorDone {
			return keys, pages
		}
		req.Cursor = res.Cursor
	}
	t.Fatal("scan did not terminate")
	return nil, nil
}

func mixedStandalone() (*fakeStore, *fakeTopology) {
	store := newFakeStore()
	n := node(6379)
	store.addKeys(n, "string", keyNames("str", 500)...)
	store.addKeys(n, "hash", keyNames("hash", 500)...)
	store.addKeys(n, "list", keyNames("list", 500)...)
	return store, standaloneTopology(n)
}

func TestScanStandaloneFirstPage(t *testing.T) {
	store, topo := mixedStandalone()
	sc := newScanCoordinator(store, topo)

	res, err := sc.Scan(context.Background(), ScanRequest{Cursor: "0"})
	require.NoError(t, err)
	require.Len(t, res.Shards, 1)

	page := res.Shards[0]
	assert.Equal(t, int64(1500), page.Total)
	assert.Equal(t, int64(200), page.Scanned)
	assert.Len(t, page.Keys, 200)
	assert.Equal(t, "127.0.0.1", page.Host)
	assert.Equal(t, 6379, page.Port)
	assert.Equal(t, "127.0.0.1:6379@200", res.Cursor)
}

func TestScanTypeFilterCoversEveryMatchingKey(t *testing.T) {
	store, topo := mixedStandalone()
	sc := newScanCoordinator(store, topo)

	keys, pages := scanAll(t, sc, ScanRequest{Type: "string", Count: 200})

	assert.Len(t, keys, 500)
	seen := make(map[string]bool)
	for _, k := range keys {
		assert.Equal(t, "string", k.Type)
		seen[k.Name] = true
	}
	assert.Len(t, seen, 500)

	first := pages[0].Shards[0]
	assert.Zero(t, first.Scanned%200)
	assert.GreaterOrEqual(t, len(first.Keys), 200)
	assert.Less(t, len(first.Keys), 300)
}

func TestScanClusterCoverage(t *testing.T) {
	store := newFakeStore()
	topo := &fakeTopology{cluster: true, masters: []models.NodeAddress{node(7000), node(7001), node(7002)}}
	store.addKeys(node(7000), "string", keyNames("a", 450)...)
	store.addKeys(node(7001), "hash", keyNames("b", 120)...)
	store.addKeys(node(7002), "string", keyNames("c", 999)...)
	sc := newScanCoordinator(store, topo)

	keys, pages := scanAll(t, sc, ScanRequest{Count: 100})

	seen := make(map[string]int)
	for _, k := range keys {
		seen[k.Name]++
	}
	assert.Len(t, seen, 450+120+999)

	// shards finish independently and fall out of the cursor
	assert.Len(t, pages[0].Shards, 3)
	last := pages[len(pages)-1]
	assert.Len(t, last.Shards, 1)
	assert.Equal(t, 7002, last.Shards[0].Port)
}

func TestScanClusterCursorFormat(t *testing.T) {
	store := newFakeStore()
	topo := &fakeTopology{cluster: true, masters: []models.NodeAddress{node(7000), node(7001)}}
	store.addKeys(node(7000), "string", keyNames("a", 300)...)
	store.addKeys(node(7001), "string", keyNames("b", 50)...)
	sc := newScanCoordinator(store, topo)

	res, err := sc.Scan(context.Background(), ScanRequest{Count: 100})
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:7000@100", res.Cursor)
}

func TestScanThresholdPolicy(t *testing.T) {
	store := newFakeStore()
	topo := &fakeTopology{cluster: true, masters: []models.NodeAddress{node(7000), node(7001)}}
	store.addKeys(node(7000), "string", keyNames("a", 5000)...)
	store.addKeys(node(7001), "string", keyNames("b", 5000)...)
	sc := newScanCoordinator(store, topo)

	res, err := sc.Scan(context.Background(), ScanRequest{Match: "nomatch*", Count: 100, Threshold: 500})
	require.NoError(t, err)

	for _, shard := range res.Shards {
		assert.GreaterOrEqual(t, shard.Scanned, int64(500))
		assert.Less(t, shard.Scanned, int64(600))
		assert.Empty(t, shard.Keys)
		assert.NotZero(t, shard.Cursor)
	}
}

func TestScanGlobFilter(t *testing.T) {
	store := newFakeStore()
	n := node(6379)
	store.addKeys(n, "string", keyNames("user", 300)...)
	store.addKeys(n, "string", keyNames("order", 300)...)
	sc := newScanCoordinator(store, standaloneTopology(n))

	keys, _ := scanAll(t, sc, ScanRequest{Match: "user:1*"})
	// user:1, user:10-19, user:100-199
	assert.Len(t, keys, 111)
	for _, k := range keys {
		assert.Regexp(t, `^user:1`, k.Name)
	}
}

func TestScanExactMatch(t *testing.T) {
	store := newFakeStore()
	topo := &fakeTopology{cluster: true, masters: []models.NodeAddress{node(7000), node(7001)}}
	store.addKeys(node(7000), "string", keyNames("a", 40)...)
	store.addKeys(node(7001), "hash", "user:7")
	sc := newScanCoordinator(store, topo)

	res, err := sc.Scan(context.Background(), ScanRequest{Match: "user:7"})
	require.NoError(t, err)
	assert.Equal(t, CursorDone, res.Cursor)
	assert.Equal(t, 0, store.scanCalls)

	require.Len(t, res.Shards, 2)
	assert.Empty(t, res.Shards[0].Keys)
	assert.Equal(t, res.Shards[0].Total, res.Shards[0].Scanned)
	require.Len(t, res.Shards[1].Keys, 1)
	assert.Equal(t, "user:7", res.Shards[1].Keys[0].Name)
	assert.Zero(t, res.Shards[1].Cursor)

	res, err = sc.Scan(context.Background(), ScanRequest{Match: "user:7", Type: "string"})
	require.NoError(t, err)
	assert.Empty(t, res.Shards[1].Keys)
}

func TestScanExactMatchClusterRedirects(t *testing.T) {
	store := newFakeStore()
	store.redirectLookups = true
	topo := &fakeTopology{cluster: true, masters: []models.NodeAddress{node(7000), node(7001), node(7002)}}
	store.addKeys(node(7000), "string", keyNames("a", 5)...)
	store.addKeys(node(7001), "string", "foo")
	store.addKeys(node(7002), "list", keyNames("b", 3)...)
	sc := newScanCoordinator(store, topo)

	res, err := sc.Scan(context.Background(), ScanRequest{Match: "foo"})
	require.NoError(t, err)
	assert.Equal(t, CursorDone, res.Cursor)
	require.Len(t, res.Shards, 3)

	for i, shard := range res.Shards {
		assert.Equal(t, shard.Total, shard.Scanned, "shard %d", i)
		assert.Zero(t, shard.Cursor, "shard %d", i)
	}
	assert.Empty(t, res.Shards[0].Keys)
	assert.Empty(t, res.Shards[2].Keys)
	require.Len(t, res.Shards[1].Keys, 1)
	assert.Equal(t, "foo", res.Shards[1].Keys[0].Name)

	t.Run("standalone redirect is an error", func(t *testing.T) {
		store := newFakeStore()
		store.redirectLookups = true
		store.addKeys(node(7001), "string", "foo")
		sc := newScanCoordinator(store, standaloneTopology(node(7000)))

		_, err := sc.Scan(context.Background(), ScanRequest{Match: "foo"})
		var se *ShardError
		assert.ErrorAs(t, err, &se)
	})
}

func TestScanDropsVanishedKeys(t *testing.T) {
	store := newFakeStore()
	n := node(6379)
	store.addKeys(n, "string", "a", "b")
	store.shards[n] = append(store.shards[n], models.KeyDescriptor{Name: "gone", Type: "none", TTL: -2})
	sc := newScanCoordinator(store, standaloneTopology(n))

	keys, _ := scanAll(t, sc, ScanRequest{})
	require.Len(t, keys, 2)
	for _, k := range keys {
		assert.NotEqual(t, "gone", k.Name)
	}
}

func TestScanTypeFilterIgnoresCase(t *testing.T) {
	store := newFakeStore()
	n := node(6379)
	store.addKeys(n, "ReJSON-RL", keyNames("doc", 5)...)
	store.addKeys(n, "string", keyNames("str", 5)...)
	sc := newScanCoordinator(store, standaloneTopology(n))

	keys, _ := scanAll(t, sc, ScanRequest{Type: "rejson-rl"})
	require.Len(t, keys, 5)
	for _, k := range keys {
		assert.Equal(t, "ReJSON-RL", k.Type)
	}
}

func TestScanExactMatchUnescapes(t *testing.T) {
	store := newFakeStore()
	n := node(6379)
	store.addKeys(n, "string", "what*ever")
	sc := newScanCoordinator(store, standaloneTopology(n))

	res, err := sc.Scan(context.Background(), ScanRequest{Match: `what\*ever`})
	require.NoError(t, err)
	require.Len(t, res.Shards[0].Keys, 1)
	assert.Equal(t, "what*ever", res.Shards[0].Keys[0].Name)
}

func TestScanStaleCursorTerminates(t *testing.T) {
	store := newFakeStore()
	topo := &fakeTopology{cluster: true, masters: []models.NodeAddress{node(7000)}}
	store.addKeys(node(7000), "string", keyNames("a", 10)...)
	sc := newScanCoordinator(store, topo)

	res, err := sc.Scan(context.Background(), ScanRequest{Cursor: "127.0.0.1:7005@10"})
	require.NoError(t, err)
	assert.Empty(t, res.Shards)
	assert.Equal(t, CursorDone, res.Cursor)
}

func TestScanErrors(t *testing.T) {
	t.Run("malformed cursor", func(t *testing.T) {
		store, topo := mixedStandalone()
		_, err := newScanCoordinator(store, topo).Scan(context.Background(), ScanRequest{Cursor: "x@y"})
		assert.True(t, IsInputError(err))
	})

	t.Run("topology", func(t *testing.T) {
		topo := &fakeTopology{cluster: true, err: errors.New("CLUSTERDOWN")}
		_, err := newScanCoordinator(newFakeStore(), topo).Scan(context.Background(), ScanRequest{})
		var te *TopologyError
		assert.ErrorAs(t, err, &te)
	})

	t.Run("shard", func(t *testing.T) {
		store := newFakeStore()
		topo := &fakeTopology{cluster: true, masters: []models.NodeAddress{node(7000), node(7001)}}
		store.addKeys(node(7000), "string", "a")
		store.scanErr[node(7001)] = errors.New("connection refused")

		_, err := newScanCoordinator(store, topo).Scan(context.Background(), ScanRequest{})
		var se *ShardError
		require.ErrorAs(t, err, &se)
		assert.Equal(t, node(7001), se.Node)
	})
}
