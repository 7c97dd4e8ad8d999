// Package recorder persists workbench command executions per database.
package recorder

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/keyscope/keyscope/internal/compression"
	"github.com/keyscope/keyscope/internal/config"
	"github.com/keyscope/keyscope/internal/logging"
	"github.com/keyscope/keyscope/internal/models"
)

// ErrNotFound is returned when no execution has the requested id.
var ErrNotFound = errors.New("command execution not found")

// Recorder stores command executions.
type Recorder interface {
	// Create stores exec, assigning an id when it has none, and returns
	// the stored record.
	Create(ctx context.Context, exec *models.CommandExecution) (*models.CommandExecution, error)
	// GetList returns the database's executions newest first, without results.
	GetList(ctx context.Context, databaseID string) ([]*models.CommandExecution, error)
	// GetOne returns one full execution or ErrNotFound.
	GetOne(ctx context.Context, databaseID, id string) (*models.CommandExecution, error)
	// Delete removes one execution or returns ErrNotFound.
	Delete(ctx context.Context, databaseID, id string) error
	Close() error
}

// New builds the recorder selected by configuration.
func New(cfg *config.Config, logger *logging.Logger) (Recorder, error) {
	switch cfg.Recorder.Backend {
	case "memory":
		return NewMemoryRecorder(cfg.Workbench.MaxHistory), nil
	case "etcd":
		algo, err := compression.ParseAlgorithm(cfg.Recorder.Compression)
		if err != nil {
			return nil, err
		}
		return NewEtcdRecorder(EtcdOptions{
			Endpoints:   cfg.Etcd.Endpoints,
			DialTimeout: cfg.Etcd.DialTimeout,
			Username:    cfg.Etcd.Username,
			Password:    cfg.Etcd.Password,
			Prefix:      cfg.Recorder.Prefix,
			Compression: algo,
			MaxHistory:  cfg.Workbench.MaxHistory,
		}, logger)
	default:
		return nil, fmt.Errorf("unsupported recorder backend: %s", cfg.Recorder.Backend)
	}
}

func prepare(exec *models.CommandExecution) (*models.CommandExecution, error) {
	if exec == nil {
		return nil, errors.New("command execution is nil")
	}
	if exec.DatabaseID == "" {
		return nil, errors.New("command execution has no database id")
	}
	stored := *exec
	if stored.ID == "" {
		stored.ID = uuid.New().String()
	}
	return &stored, nil
}
