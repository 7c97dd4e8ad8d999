// Package store connects to Redis-compatible nodes with go-redis and
// implements the coordinator's StoreClient and Topology.
package store

import (
	"context"
	"sync"
	"time"

	"github.com/keyscope/keyscope/internal/config"
	"github.com/keyscope/keyscope/internal/logging"
	"github.com/keyscope/keyscope/internal/models"
	"github.com/keyscope/keyscope/internal/utils"
	"github.com/redis/go-redis/v9"
)

// Pool manages one go-redis client per node address of a deployment.
// Every client shares the deployment credentials.
type Pool struct {
	mu      sync.RWMutex
	clients map[models.NodeAddress]*redis.Client
	base    redis.Options
	logger  *logging.Logger

	healthCheckInterval time.Duration
	stopCh              chan struct{}
	wg                  sync.WaitGroup
	closeOnce           sync.Once
}

// NewPool creates a pool for one database and starts its health checker.
func NewPool(db config.DatabaseConfig, storeCfg config.StoreConfig, logger *logging.Logger) *Pool {
	p := &Pool{
		clients: make(map[models.NodeAddress]*redis.Client),
		base: redis.Options{
			Username:              db.Username,
			Password:              db.Password,
			DB:                    db.DB,
			DialTimeout:           storeCfg.DialTimeout,
			PoolSize:              storeCfg.PoolSize,
			Protocol:              2,
			DisableIdentity:       true,
			ContextTimeoutEnabled: true,
		},
		logger:              logger,
		healthCheckInterval: utils.StoreHealthCheckInterval,
		stopCh:              make(chan struct{}),
	}

	p.wg.Add(1)
	go p.healthCheckLoop()

	return p
}

// Client gets or creates the client for node.
func (p *Pool) Client(node models.NodeAddress) *redis.Client {
	p.mu.RLock()
	c, ok := p.clients[node]
	p.mu.RUnlock()
	if ok {
		return c
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	// double-check after acquiring write lock
	if c, ok := p.clients[node]; ok {
		return c
	}

	opts := p.base
	opts.Addr = node.String()
	c = redis.NewClient(&opts)
	p.clients[node] = c
	p.logger.Debug("Created store client", "address", opts.Addr)

	return c
}

func (p *Pool) remove(node models.NodeAddress) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if c, ok := p.clients[node]; ok {
		_ = c.Close()
		delete(p.clients, node)
	}
}

func (p *Pool) healthCheckLoop() {
	defer p.wg.Done()

	ticker := time.NewTicker(p.healthCheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-p.stopCh:
			return
		case <-ticker.C:
			p.checkClients()
		}
	}
}

// checkClients drops clients whose node no longer answers PING; a later
// request recreates them.
func (p *Pool) checkClients() {
	p.mu.RLock()
	snapshot := make(map[models.NodeAddress]*redis.Client, len(p.clients))
	for n, c := range p.clients {
		snapshot[n] = c
	}
	p.mu.RUnlock()

	for node, c := range snapshot {
		ctx, cancel := context.WithTimeout(context.Background(), p.base.DialTimeout+time.Second)
		err := c.Ping(ctx).Err()
		cancel()
		if err != nil {
			p.logger.Warn("Removed unhealthy store client", "address", node.String(), "error", err)
			p.remove(node)
		}
	}
}

// Len returns the number of open clients.
func (p *Pool) Len() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.clients)
}

// Close closes all clients and stops the health checker.
func (p *Pool) Close() {
	p.closeOnce.Do(func() {
		close(p.stopCh)
		p.wg.Wait()

		p.mu.Lock()
		defer p.mu.Unlock()
		for node, c := range p.clients {
			if err := c.Close(); err != nil {
				p.logger.Warn("Failed to close store client", "address", node.String(), "error", err)
			}
		}
		p.clients = make(map[models.NodeAddress]*redis.Client)
	})
}
