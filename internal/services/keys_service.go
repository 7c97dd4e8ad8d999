package services

import (
	"context"
	"fmt"
	"time"

	"github.com/keyscope/keyscope/internal/coordinator"
	"github.com/keyscope/keyscope/internal/logging"
	"github.com/keyscope/keyscope/internal/models"
	"github.com/keyscope/keyscope/internal/utils"
)

// KeysService pages through the keys of a database.
type KeysService struct {
	logger    *logging.Logger
	databases *DatabaseService
	scanners  map[string]*coordinator.ScanCoordinator
}

// NewKeysService creates a scan coordinator per database.
func NewKeysService(logger *logging.Logger, databases *DatabaseService, opts coordinator.ScanOptions) *KeysService {
	scanners := make(map[string]*coordinator.ScanCoordinator, len(databases.deployments))
	for _, d := range databases.deployments {
		scanners[d.Config.ID] = coordinator.NewScanCoordinator(
			logger.With("database_id", d.Config.ID), d.Client, d.Topology, opts)
	}
	return &KeysService{logger: logger, databases: databases, scanners: scanners}
}

// Scan returns one page of keys.
func (s *KeysService) Scan(ctx context.Context, databaseID string, input *models.ScanKeysRequest) (*coordinator.ScanResult, error) {
	ctx = logging.WithDatabaseID(ctx, databaseID)
	log := s.logger.WithContext(ctx)

	if _, err := s.databases.lookup(databaseID); err != nil {
		return nil, err
	}
	if input.Count < 0 || input.Count > utils.MaxScanCount {
		return nil, NewServiceErrorWithDetails(CodeInvalidRequest,
			fmt.Sprintf("count must be between 0 and %d", utils.MaxScanCount),
			map[string]interface{}{"count": input.Count})
	}

	start := time.Now()
	result, err := s.scanners[databaseID].Scan(ctx, coordinator.ScanRequest{
		Cursor: input.Cursor,
		Match:  input.Match,
		Type:   input.Type,
		Count:  input.Count,
	})
	if err != nil {
		log.Warn("Scan failed", "error", err)
		return nil, translateError(err, CodeScanFailed)
	}

	found := 0
	for _, p := range result.Shards {
		found += len(p.Keys)
	}
	log.Info("Scan completed",
		"shards", len(result.Shards),
		"keys", found,
		"done", result.Cursor == coordinator.CursorDone,
		"latency_ms", time.Since(start).Milliseconds())

	return result, nil
}
