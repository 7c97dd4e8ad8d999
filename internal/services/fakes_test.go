package services

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/keyscope/keyscope/internal/config"
	"github.com/keyscope/keyscope/internal/coordinator"
	"github.com/keyscope/keyscope/internal/glob"
	"github.com/keyscope/keyscope/internal/models"
)

var standaloneNode = models.NodeAddress{Host: "127.0.0.1", Port: 6379}

// memStore is a single-node key/value store answering SCAN in one call.
type memStore struct {
	mu      sync.Mutex
	keys    map[string]string // name -> type
	values  map[string]string
	scanErr error
}

func newMemStore() *memStore {
	return &memStore{keys: make(map[string]string), values: make(map[string]string)}
}

func (m *memStore) Scan(_ context.Context, _ models.NodeAddress, args coordinator.ScanArgs) (*coordinator.ScanReply, error) {
	if m.scanErr != nil {
		return nil, m.scanErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	reply := &coordinator.ScanReply{}
	for name, typ := range m.keys {
		if glob.Match(args.Match, name) && (args.Type == "" || args.Type == typ) {
			reply.Keys = append(reply.Keys, models.KeyDescriptor{Name: name, Type: typ, TTL: -1})
		}
	}
	return reply, nil
}

func (m *memStore) Describe(_ context.Context, _ models.NodeAddress, names []string) ([]models.KeyDescriptor, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]models.KeyDescriptor, len(names))
	for i, n := range names {
		if typ, ok := m.keys[n]; ok {
			out[i] = models.KeyDescriptor{Name: n, Type: typ, TTL: -1}
		} else {
			out[i] = models.KeyDescriptor{Name: n, Type: "none", TTL: -2}
		}
	}
	return out, nil
}

func (m *memStore) DBSize(context.Context, models.NodeAddress) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.keys)), nil
}

func (m *memStore) Execute(_ context.Context, _ models.NodeAddress, argv []string, _ bool) (interface{}, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	switch strings.ToLower(argv[0]) {
	case "set":
		m.keys[argv[1]] = "string"
		m.values[argv[1]] = argv[2]
		return "OK", nil
	case "get":
		if v, ok := m.values[argv[1]]; ok {
			return v, nil
		}
		return nil, nil
	default:
		return nil, errors.New("ERR unknown command '" + argv[0] + "'")
	}
}

type staticTopology struct {
	nodes []models.NodeAddress
	err   error
}

func (t staticTopology) IsCluster() bool { return false }

func (t staticTopology) ListNodes(context.Context, models.NodeRole) ([]models.NodeAddress, error) {
	return t.nodes, t.err
}

func testDeployment(id string, store coordinator.StoreClient, topo coordinator.Topology) Deployment {
	return Deployment{
		Config:   config.DatabaseConfig{ID: id, Host: standaloneNode.Host, Port: standaloneNode.Port},
		Client:   store,
		Topology: topo,
	}
}

// failingPublisher rejects every message.
type failingPublisher struct {
	mu    sync.Mutex
	calls int
}

func (p *failingPublisher) Publish(context.Context, string, []byte) error {
	p.mu.Lock()
	p.calls++
	p.mu.Unlock()
	return errors.New("broker down")
}

func (p *failingPublisher) Close() error { return nil }

// failingRecorder fails every write.
type failingRecorder struct{}

func (failingRecorder) Create(context.Context, *models.CommandExecution) (*models.CommandExecution, error) {
	return nil, errors.New("etcd unavailable")
}

func (failingRecorder) GetList(context.Context, string) ([]*models.CommandExecution, error) {
	return nil, errors.New("etcd unavailable")
}

func (failingRecorder) GetOne(context.Context, string, string) (*models.CommandExecution, error) {
	return nil, errors.New("etcd unavailable")
}

func (failingRecorder) Delete(context.Context, string, string) error {
	return errors.New("etcd unavailable")
}

func (failingRecorder) Close() error { return nil }
