package store

import (
	"context"
	"fmt"
	"time"

	"github.com/keyscope/keyscope/internal/coordinator"
	"github.com/keyscope/keyscope/internal/models"
	"github.com/redis/go-redis/v9"
)

// Client implements coordinator.StoreClient on a Pool.
type Client struct {
	pool *Pool
}

// NewClient creates a store client backed by pool.
func NewClient(pool *Pool) *Client {
	return &Client{pool: pool}
}

func (c *Client) Scan(ctx context.Context, node models.NodeAddress, args coordinator.ScanArgs) (*coordinator.ScanReply, error) {
	rdb := c.pool.Client(node)

	var cmd *redis.ScanCmd
	if args.Type != "" {
		cmd = rdb.ScanType(ctx, args.Cursor, args.Match, args.Count, args.Type)
	} else {
		cmd = rdb.Scan(ctx, args.Cursor, args.Match, args.Count)
	}
	names, next, err := cmd.Result()
	if err != nil {
		return nil, fmt.Errorf("scan: %w", err)
	}

	keys, err := describe(ctx, rdb, names)
	if err != nil {
		return nil, err
	}
	return &coordinator.ScanReply{Cursor: next, Keys: keys}, nil
}

func (c *Client) Describe(ctx context.Context, node models.NodeAddress, names []string) ([]models.KeyDescriptor, error) {
	return describe(ctx, c.pool.Client(node), names)
}

// describe pipelines TYPE, TTL and MEMORY USAGE for every key. TYPE is
// always asked so descriptors carry the store's own spelling of module
// types. Deleted keys come back as type "none" with ttl -2.
func describe(ctx context.Context, rdb *redis.Client, names []string) ([]models.KeyDescriptor, error) {
	if len(names) == 0 {
		return []models.KeyDescriptor{}, nil
	}

	types := make([]*redis.StatusCmd, len(names))
	ttls := make([]*redis.DurationCmd, len(names))
	sizes := make([]*redis.IntCmd, len(names))

	pipe := rdb.Pipeline()
	for i, name := range names {
		types[i] = pipe.Type(ctx, name)
		ttls[i] = pipe.TTL(ctx, name)
		sizes[i] = pipe.MemoryUsage(ctx, name)
	}
	// per-command errors are inspected below; MEMORY USAGE may be denied
	_, _ = pipe.Exec(ctx)

	keys := make([]models.KeyDescriptor, len(names))
	for i, name := range names {
		typ, err := types[i].Result()
		if err != nil {
			return nil, fmt.Errorf("type %q: %w", name, err)
		}
		k := models.KeyDescriptor{Name: name, Type: typ}

		ttl, err := ttls[i].Result()
		if err != nil {
			return nil, fmt.Errorf("ttl %q: %w", name, err)
		}
		k.TTL = ttlSeconds(ttl)

		if size, err := sizes[i].Result(); err == nil {
			k.Size = &size
		}
		keys[i] = k
	}
	return keys, nil
}

// ttlSeconds maps the go-redis TTL reply, which keeps -1 and -2 as raw
// durations, to seconds.
func ttlSeconds(d time.Duration) int64 {
	if d < 0 {
		return int64(d)
	}
	return int64(d / time.Second)
}

func (c *Client) DBSize(ctx context.Context, node models.NodeAddress) (int64, error) {
	n, err := c.pool.Client(node).DBSize(ctx).Result()
	if err != nil {
		return 0, fmt.Errorf("dbsize: %w", err)
	}
	return n, nil
}

func (c *Client) Execute(ctx context.Context, node models.NodeAddress, argv []string, asking bool) (interface{}, error) {
	rdb := c.pool.Client(node)

	args := make([]interface{}, len(argv))
	for i, a := range argv {
		args[i] = a
	}

	if !asking {
		return normalizeReply(rdb.Do(ctx, args...).Result())
	}

	var cmd *redis.Cmd
	_, _ = rdb.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Do(ctx, "asking")
		cmd = pipe.Do(ctx, args...)
		return nil
	})
	return normalizeReply(cmd.Result())
}
