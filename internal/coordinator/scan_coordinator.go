package coordinator

import (
	"context"
	"strings"
	"sync"

	"github.com/keyscope/keyscope/internal/glob"
	"github.com/keyscope/keyscope/internal/logging"
	"github.com/keyscope/keyscope/internal/models"
	"github.com/keyscope/keyscope/internal/utils"
)

// ScanRequest asks for one page of a (possibly multi-shard) key scan.
type ScanRequest struct {
	// Cursor is the composite cursor returned by the previous page.
	Cursor string
	// Match is a glob; empty means "*".
	Match string
	// Type restricts results to one key type.
	Type string
	// Count is the per-call SCAN hint and the per-shard page target.
	Count int
	// Threshold caps the keys examined per shard for this page.
	Threshold int64
}

// ScanResult is one page across shards.
type ScanResult struct {
	Shards []models.ShardPage
	// Cursor resumes the scan; CursorDone once every shard is exhausted.
	Cursor string
}

// ScanOptions are the defaults applied to requests that leave them unset.
type ScanOptions struct {
	DefaultCount int
	Threshold    int64
}

// ScanCoordinator pages through keys on every master of a deployment.
type ScanCoordinator struct {
	logger   *logging.Logger
	client   StoreClient
	topology Topology
	opts     ScanOptions
}

// NewScanCoordinator creates a scan coordinator for one deployment.
func NewScanCoordinator(logger *logging.Logger, client StoreClient, topology Topology, opts ScanOptions) *ScanCoordinator {
	if opts.DefaultCount <= 0 {
		opts.DefaultCount = utils.DefaultScanCount
	}
	if opts.Threshold <= 0 {
		opts.Threshold = utils.DefaultScanThreshold
	}
	return &ScanCoordinator{
		logger:   logger,
		client:   client,
		topology: topology,
		opts:     opts,
	}
}

// Scan returns one page. Shards are scanned concurrently; any shard failure
// fails the whole page.
func (sc *ScanCoordinator) Scan(ctx context.Context, req ScanRequest) (*ScanResult, error) {
	req = sc.normalize(req)

	members, err := sc.topology.ListNodes(ctx, models.RoleMaster)
	if err != nil {
		return nil, &TopologyError{Err: err}
	}

	set, fresh, err := ParseCursor(req.Cursor, members, !sc.topology.IsCluster())
	if err != nil {
		return nil, err
	}
	if len(set) == 0 {
		return &ScanResult{Shards: []models.ShardPage{}, Cursor: CursorDone}, nil
	}

	exact := !glob.IsGlob(req.Match)

	sc.logger.Debug("Scan request received",
		"shards", len(set),
		"fresh", fresh,
		"match", req.Match,
		"type", req.Type,
		"count", req.Count,
		"exact", exact)

	pages := make([]models.ShardPage, len(set))
	errs := make([]error, len(set))

	var wg sync.WaitGroup
	for i, shard := range set {
		wg.Add(1)
		go func(i int, shard ShardCursor) {
			defer wg.Done()
			if exact {
				pages[i], errs[i] = sc.lookupShard(ctx, shard.Node, req)
			} else {
				pages[i], errs[i] = sc.scanShard(ctx, shard, req)
			}
		}(i, shard)
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			sc.logger.Warn("Shard scan failed", "node", set[i].Node.String(), "error", err)
			return nil, &ShardError{Node: set[i].Node, Err: err}
		}
	}

	next := make(CursorSet, len(pages))
	for i, p := range pages {
		next[i] = ShardCursor{Node: p.Node(), Cursor: p.Cursor}
	}

	return &ScanResult{Shards: pages, Cursor: next.Encode()}, nil
}

func (sc *ScanCoordinator) normalize(req ScanRequest) ScanRequest {
	if req.Count <= 0 {
		req.Count = sc.opts.DefaultCount
	}
	if req.Threshold <= 0 {
		req.Threshold = sc.opts.Threshold
	}
	if req.Match == "" {
		req.Match = "*"
	}
	req.Type = strings.TrimSpace(req.Type)
	return req
}

// keep drops keys deleted since they were listed and applies the type
// filter. Module types are mixed-case, so the filter ignores case.
func keep(k models.KeyDescriptor, typ string) bool {
	if k.Type == "none" || k.TTL == -2 {
		return false
	}
	return typ == "" || strings.EqualFold(k.Type, typ)
}

// scanShard issues SCAN calls on one shard until it is exhausted, the
// threshold is reached or a full page of keys has been found.
func (sc *ScanCoordinator) scanShard(ctx context.Context, shard ShardCursor, req ScanRequest) (models.ShardPage, error) {
	page := models.ShardPage{
		Host:   shard.Node.Host,
		Port:   shard.Node.Port,
		Cursor: shard.Cursor,
		Keys:   []models.KeyDescriptor{},
	}

	total, err := sc.client.DBSize(ctx, shard.Node)
	if err != nil {
		return page, err
	}
	page.Total = total

	count := int64(req.Count)
	for {
		reply, err := sc.client.Scan(ctx, shard.Node, ScanArgs{
			Cursor: page.Cursor,
			Match:  req.Match,
			Count:  count,
			Type:   req.Type,
		})
		if err != nil {
			return page, err
		}

		page.Cursor = reply.Cursor
		page.Scanned += count
		for _, k := range reply.Keys {
			if keep(k, req.Type) {
				page.Keys = append(page.Keys, k)
			}
		}

		if page.Cursor == 0 || page.Scanned >= req.Threshold || int64(len(page.Keys)) >= count {
			break
		}
		if err := ctx.Err(); err != nil {
			return page, err
		}
	}

	sc.logger.Debug("Shard scan completed",
		"node", shard.Node.String(),
		"scanned", page.Scanned,
		"keys", len(page.Keys),
		"cursor", page.Cursor)

	return page, nil
}

// lookupShard serves a pattern without glob metacharacters: it can only
// name one key, so the key is looked up instead of scanned for. A cluster
// master that does not own the key's slot answers with a redirect, which
// means the key is not on this shard.
func (sc *ScanCoordinator) lookupShard(ctx context.Context, node models.NodeAddress, req ScanRequest) (models.ShardPage, error) {
	page := models.ShardPage{
		Host: node.Host,
		Port: node.Port,
		Keys: []models.KeyDescriptor{},
	}

	total, err := sc.client.DBSize(ctx, node)
	if err != nil {
		return page, err
	}
	page.Total = total
	page.Scanned = total

	keys, err := sc.client.Describe(ctx, node, []string{glob.Unescape(req.Match)})
	if err != nil {
		if sc.topology.IsCluster() && IsRedirect(err) {
			return page, nil
		}
		return page, err
	}
	for _, k := range keys {
		if keep(k, req.Type) {
			page.Keys = append(page.Keys, k)
		}
	}
	return page, nil
}
