package coordinator

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/keyscope/keyscope/internal/glob"
	"github.com/keyscope/keyscope/internal/models"
)

// fakeStore serves SCAN from ordered in-memory key lists; the cursor is an
// offset into the list.
type fakeStore struct {
	mu        sync.Mutex
	shards    map[models.NodeAddress][]models.KeyDescriptor
	scanErr   map[models.NodeAddress]error
	execute   func(ctx context.Context, node models.NodeAddress, argv []string, asking bool) (interface{}, error)
	calls     []executeCall
	scanCalls int
	// redirectLookups makes Describe answer MOVED for keys another node
	// holds, as a cluster master does for slots it does not own.
	redirectLookups bool
}

type executeCall struct {
	node   models.NodeAddress
	argv   []string
	asking bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		shards:  make(map[models.NodeAddress][]models.KeyDescriptor),
		scanErr: make(map[models.NodeAddress]error),
	}
}

func (f *fakeStore) addKeys(node models.NodeAddress, typ string, names ...string) {
	for _, n := range names {
		f.shards[node] = append(f.shards[node], models.KeyDescriptor{Name: n, Type: typ, TTL: -1})
	}
}

func (f *fakeStore) Scan(_ context.Context, node models.NodeAddress, args ScanArgs) (*ScanReply, error) {
	f.mu.Lock()
	f.scanCalls++
	err := f.scanErr[node]
	f.mu.Unlock()
	if err != nil {
		return nil, err
	}

	keys := f.shards[node]
	start := int(args.Cursor)
	end := start + int(args.Count)
	if end > len(keys) {
		end = len(keys)
	}

	pattern := glob.Compile(args.Match)
	reply := &ScanReply{}
	for _, k := range keys[start:end] {
		if !pattern.Match(k.Name) {
			continue
		}
		if args.Type != "" && !strings.EqualFold(k.Type, args.Type) {
			continue
		}
		reply.Keys = append(reply.Keys, k)
	}
	if end < len(keys) {
		reply.Cursor = uint64(end)
	}
	return reply, nil
}

func (f *fakeStore) Describe(_ context.Context, node models.NodeAddress, names []string) ([]models.KeyDescriptor, error) {
	out := make([]models.KeyDescriptor, 0, len(names))
	for _, name := range names {
		desc, ok := f.find(node, name)
		if !ok && f.redirectLookups {
			if owner, found := f.owner(name); found {
				moved := fmt.Errorf("MOVED %d %s", KeySlot(name), owner)
				return nil, fmt.Errorf("type %q: %w", name, moved)
			}
		}
		out = append(out, desc)
	}
	return out, nil
}

func (f *fakeStore) find(node models.NodeAddress, name string) (models.KeyDescriptor, bool) {
	for _, k := range f.shards[node] {
		if k.Name == name {
			return k, true
		}
	}
	return models.KeyDescriptor{Name: name, Type: "none", TTL: -2}, false
}

func (f *fakeStore) owner(name string) (models.NodeAddress, bool) {
	for n := range f.shards {
		if _, ok := f.find(n, name); ok {
			return n, true
		}
	}
	return models.NodeAddress{}, false
}

func (f *fakeStore) DBSize(_ context.Context, node models.NodeAddress) (int64, error) {
	return int64(len(f.shards[node])), nil
}

func (f *fakeStore) Execute(ctx context.Context, node models.NodeAddress, argv []string, asking bool) (interface{}, error) {
	f.mu.Lock()
	f.calls = append(f.calls, executeCall{node: node, argv: argv, asking: asking})
	f.mu.Unlock()
	if f.execute != nil {
		return f.execute(ctx, node, argv, asking)
	}
	return "OK", nil
}

func (f *fakeStore) executeCalls() []executeCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]executeCall(nil), f.calls...)
}

type fakeTopology struct {
	cluster  bool
	masters  []models.NodeAddress
	replicas []models.NodeAddress
	err      error
}

func standaloneTopology(node models.NodeAddress) *fakeTopology {
	return &fakeTopology{masters: []models.NodeAddress{node}}
}

func (t *fakeTopology) IsCluster() bool { return t.cluster }

func (t *fakeTopology) ListNodes(_ context.Context, role models.NodeRole) ([]models.NodeAddress, error) {
	if t.err != nil {
		return nil, t.err
	}
	switch role {
	case models.RoleMaster:
		return t.masters, nil
	case models.RoleReplica:
		return t.replicas, nil
	default:
		return append(append([]models.NodeAddress{}, t.masters...), t.replicas...), nil
	}
}

func node(port int) models.NodeAddress {
	return models.NodeAddress{Host: "127.0.0.1", Port: port}
}

func keyNames(prefix string, n int) []string {
	names := make([]string, n)
	for i := range names {
		names[i] = fmt.Sprintf("%s:%d", prefix, i)
	}
	return names
}
