package coordinator

import (
	"context"

	"github.com/keyscope/keyscope/internal/models"
)

// ScanArgs are the arguments of one SCAN call on one node.
type ScanArgs struct {
	Cursor uint64
	Match  string
	Count  int64
	// Type filters server-side when non-empty.
	Type string
}

// ScanReply is the result of one SCAN call with key metadata resolved.
type ScanReply struct {
	Cursor uint64
	Keys   []models.KeyDescriptor
}

// StoreClient talks to individual store nodes.
type StoreClient interface {
	// Scan runs one SCAN iteration and describes the returned keys.
	Scan(ctx context.Context, node models.NodeAddress, args ScanArgs) (*ScanReply, error)
	// Describe looks keys up directly. Missing keys are returned with type
	// "none" and ttl -2.
	Describe(ctx context.Context, node models.NodeAddress, keys []string) ([]models.KeyDescriptor, error)
	// DBSize returns the number of keys held by the node.
	DBSize(ctx context.Context, node models.NodeAddress) (int64, error)
	// Execute sends argv to the node. A MOVED or ASK reply is returned as
	// an error whose text is the raw reply. With asking set, ASKING is sent
	// first on the same connection.
	Execute(ctx context.Context, node models.NodeAddress, argv []string, asking bool) (interface{}, error)
}

// Topology enumerates the nodes of one deployment.
type Topology interface {
	// IsCluster reports whether the deployment is sharded.
	IsCluster() bool
	// ListNodes returns the nodes with the given role in a stable order.
	// Standalone deployments always return their single node.
	ListNodes(ctx context.Context, role models.NodeRole) ([]models.NodeAddress, error)
}
