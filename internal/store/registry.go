package store

import (
	"github.com/keyscope/keyscope/internal/config"
	"github.com/keyscope/keyscope/internal/logging"
	"github.com/keyscope/keyscope/internal/models"
)

// Backend bundles the handles of one configured database.
type Backend struct {
	Config   config.DatabaseConfig
	Client   *Client
	Topology *Topology
	pool     *Pool
}

// Registry holds a Backend per configured database. Connections are opened
// lazily on first use.
type Registry struct {
	backends map[string]*Backend
	order    []string
}

// NewRegistry creates backends for every configured database.
func NewRegistry(dbs []config.DatabaseConfig, storeCfg config.StoreConfig, logger *logging.Logger) *Registry {
	r := &Registry{backends: make(map[string]*Backend, len(dbs))}
	for _, db := range dbs {
		pool := NewPool(db, storeCfg, logger.With("database_id", db.ID))
		seed := models.NodeAddress{Host: db.Host, Port: db.Port}
		r.backends[db.ID] = &Backend{
			Config:   db,
			Client:   NewClient(pool),
			Topology: NewTopology(pool, seed, db.Cluster),
			pool:     pool,
		}
		r.order = append(r.order, db.ID)
	}
	return r
}

// Get returns the backend of a database.
func (r *Registry) Get(id string) (*Backend, bool) {
	b, ok := r.backends[id]
	return b, ok
}

// List returns backends in configuration order.
func (r *Registry) List() []*Backend {
	out := make([]*Backend, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.backends[id])
	}
	return out
}

// Close closes every pool.
func (r *Registry) Close() {
	for _, b := range r.backends {
		b.pool.Close()
	}
}
