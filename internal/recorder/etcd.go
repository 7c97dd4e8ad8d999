package recorder

import (
	"context"
	"encoding/json"
	"fmt"
	"path"
	"time"

	"github.com/keyscope/keyscope/internal/compression"
	"github.com/keyscope/keyscope/internal/logging"
	"github.com/keyscope/keyscope/internal/models"
	"github.com/keyscope/keyscope/internal/utils"
	clientv3 "go.etcd.io/etcd/client/v3"
)

const executionsDir = "executions"

// EtcdOptions configures an EtcdRecorder.
type EtcdOptions struct {
	Endpoints   []string
	DialTimeout time.Duration
	Username    string
	Password    string
	// Prefix is the key namespace, "/keyscope" by default.
	Prefix      string
	Compression compression.Algorithm
	MaxHistory  int
}

// EtcdRecorder stores executions in etcd under
// <prefix>/executions/<database>/<id>. Values are framed, optionally
// snappy-compressed JSON. History order follows etcd create revisions.
type EtcdRecorder struct {
	client     *clientv3.Client
	ownsClient bool
	logger     *logging.Logger
	prefix     string
	compressor compression.Compressor
	maxHistory int
}

// NewEtcdRecorder connects to etcd and creates a recorder.
func NewEtcdRecorder(opts EtcdOptions, logger *logging.Logger) (*EtcdRecorder, error) {
	if opts.DialTimeout <= 0 {
		opts.DialTimeout = 5 * time.Second
	}
	client, err := clientv3.New(clientv3.Config{
		Endpoints:   opts.Endpoints,
		DialTimeout: opts.DialTimeout,
		Username:    opts.Username,
		Password:    opts.Password,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to etcd: %w", err)
	}

	r, err := NewEtcdRecorderWithClient(client, opts, logger)
	if err != nil {
		_ = client.Close()
		return nil, err
	}
	r.ownsClient = true
	return r, nil
}

// NewEtcdRecorderWithClient creates a recorder on an existing client. The
// client is not closed by Close.
func NewEtcdRecorderWithClient(client *clientv3.Client, opts EtcdOptions, logger *logging.Logger) (*EtcdRecorder, error) {
	compressor, err := compression.GetCompressor(opts.Compression)
	if err != nil {
		return nil, err
	}
	if opts.Prefix == "" {
		opts.Prefix = "/keyscope"
	}
	if opts.MaxHistory <= 0 {
		opts.MaxHistory = utils.DefaultMaxHistory
	}
	return &EtcdRecorder{
		client:     client,
		logger:     logger,
		prefix:     opts.Prefix,
		compressor: compressor,
		maxHistory: opts.MaxHistory,
	}, nil
}

func (r *EtcdRecorder) databaseDir(databaseID string) string {
	return path.Join(r.prefix, executionsDir, databaseID) + "/"
}

func (r *EtcdRecorder) key(databaseID, id string) string {
	return r.databaseDir(databaseID) + id
}

func (r *EtcdRecorder) Create(ctx context.Context, exec *models.CommandExecution) (*models.CommandExecution, error) {
	stored, err := prepare(exec)
	if err != nil {
		return nil, err
	}

	data, err := json.Marshal(stored)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal command execution: %w", err)
	}
	frame, err := compression.Frame(r.compressor, data)
	if err != nil {
		return nil, fmt.Errorf("failed to compress command execution: %w", err)
	}

	if _, err := r.client.Put(ctx, r.key(stored.DatabaseID, stored.ID), string(frame)); err != nil {
		return nil, fmt.Errorf("failed to store command execution in etcd: %w", err)
	}

	if err := r.trim(ctx, stored.DatabaseID); err != nil {
		// the record itself is stored; an oversized history is retried on the next create
		r.logger.Warn("Failed to trim command history", "database_id", stored.DatabaseID, "error", err)
	}

	return stored, nil
}

// trim deletes the oldest executions beyond maxHistory.
func (r *EtcdRecorder) trim(ctx context.Context, databaseID string) error {
	resp, err := r.client.Get(ctx, r.databaseDir(databaseID),
		clientv3.WithPrefix(),
		clientv3.WithKeysOnly(),
		clientv3.WithSort(clientv3.SortByCreateRevision, clientv3.SortAscend))
	if err != nil {
		return err
	}

	excess := len(resp.Kvs) - r.maxHistory
	for i := 0; i < excess; i++ {
		if _, err := r.client.Delete(ctx, string(resp.Kvs[i].Key)); err != nil {
			return err
		}
	}
	return nil
}

func (r *EtcdRecorder) decode(value []byte) (*models.CommandExecution, error) {
	data, err := compression.Unframe(value)
	if err != nil {
		return nil, err
	}
	var exec models.CommandExecution
	if err := json.Unmarshal(data, &exec); err != nil {
		return nil, fmt.Errorf("failed to unmarshal command execution: %w", err)
	}
	return &exec, nil
}

func (r *EtcdRecorder) GetList(ctx context.Context, databaseID string) ([]*models.CommandExecution, error) {
	resp, err := r.client.Get(ctx, r.databaseDir(databaseID),
		clientv3.WithPrefix(),
		clientv3.WithSort(clientv3.SortByCreateRevision, clientv3.SortDescend))
	if err != nil {
		return nil, fmt.Errorf("failed to list command executions from etcd: %w", err)
	}

	list := make([]*models.CommandExecution, 0, len(resp.Kvs))
	for _, kv := range resp.Kvs {
		exec, err := r.decode(kv.Value)
		if err != nil {
			r.logger.Warn("Skipping unreadable command execution", "key", string(kv.Key), "error", err)
			continue
		}
		list = append(list, exec.Short())
	}
	return list, nil
}

func (r *EtcdRecorder) GetOne(ctx context.Context, databaseID, id string) (*models.CommandExecution, error) {
	resp, err := r.client.Get(ctx, r.key(databaseID, id))
	if err != nil {
		return nil, fmt.Errorf("failed to get command execution from etcd: %w", err)
	}
	if len(resp.Kvs) == 0 {
		return nil, ErrNotFound
	}
	return r.decode(resp.Kvs[0].Value)
}

func (r *EtcdRecorder) Delete(ctx context.Context, databaseID, id string) error {
	resp, err := r.client.Delete(ctx, r.key(databaseID, id))
	if err != nil {
		return fmt.Errorf("failed to delete command execution from etcd: %w", err)
	}
	if resp.Deleted == 0 {
		return ErrNotFound
	}
	return nil
}

// Close closes the etcd client when the recorder created it.
func (r *EtcdRecorder) Close() error {
	if r.ownsClient {
		return r.client.Close()
	}
	return nil
}
