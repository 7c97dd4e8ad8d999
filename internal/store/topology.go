package store

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/keyscope/keyscope/internal/models"
	"github.com/redis/go-redis/v9"
)

// Topology implements coordinator.Topology. Cluster layouts are read with
// CLUSTER SLOTS on every call; the seed is tried first, then the masters
// seen by the last successful lookup.
type Topology struct {
	pool    *Pool
	seed    models.NodeAddress
	cluster bool

	mu    sync.Mutex
	known []models.NodeAddress
}

// NewTopology creates the topology of the deployment reachable at seed.
func NewTopology(pool *Pool, seed models.NodeAddress, cluster bool) *Topology {
	return &Topology{pool: pool, seed: seed, cluster: cluster}
}

func (t *Topology) IsCluster() bool { return t.cluster }

func (t *Topology) ListNodes(ctx context.Context, role models.NodeRole) ([]models.NodeAddress, error) {
	if !t.cluster {
		return []models.NodeAddress{t.seed}, nil
	}

	slots, err := t.clusterSlots(ctx)
	if err != nil {
		return nil, err
	}

	masters, replicas := nodesFromSlots(slots)
	t.mu.Lock()
	t.known = masters
	t.mu.Unlock()

	switch role {
	case models.RoleMaster:
		return masters, nil
	case models.RoleReplica:
		return replicas, nil
	default:
		all := make([]models.NodeAddress, 0, len(masters)+len(replicas))
		return append(append(all, masters...), replicas...), nil
	}
}

func (t *Topology) clusterSlots(ctx context.Context) ([]redis.ClusterSlot, error) {
	t.mu.Lock()
	candidates := append([]models.NodeAddress{t.seed}, t.known...)
	t.mu.Unlock()

	var lastErr error
	seen := make(map[models.NodeAddress]bool, len(candidates))
	for _, n := range candidates {
		if seen[n] {
			continue
		}
		seen[n] = true

		slots, err := t.pool.Client(n).ClusterSlots(ctx).Result()
		if err == nil && len(slots) > 0 {
			return slots, nil
		}
		if err == nil {
			err = fmt.Errorf("node %s reports no slots", n)
		}
		lastErr = err
		if ctx.Err() != nil {
			break
		}
	}
	return nil, fmt.Errorf("cluster slots: %w", lastErr)
}

// nodesFromSlots orders shards by their lowest slot. Masters owning several
// ranges are listed once.
func nodesFromSlots(slots []redis.ClusterSlot) (masters, replicas []models.NodeAddress) {
	sorted := append([]redis.ClusterSlot(nil), slots...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Start < sorted[j].Start })

	seen := make(map[models.NodeAddress]bool)
	masters = []models.NodeAddress{}
	replicas = []models.NodeAddress{}
	for _, s := range sorted {
		for i, n := range s.Nodes {
			addr, err := models.ParseNodeAddress(n.Addr)
			if err != nil || seen[addr] {
				continue
			}
			seen[addr] = true
			if i == 0 {
				masters = append(masters, addr)
			} else {
				replicas = append(replicas, addr)
			}
		}
	}
	return masters, replicas
}
