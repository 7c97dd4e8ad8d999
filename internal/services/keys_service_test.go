package services

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/keyscope/keyscope/internal/coordinator"
	"github.com/keyscope/keyscope/internal/logging"
	"github.com/keyscope/keyscope/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newKeysService(deployments ...Deployment) *KeysService {
	return NewKeysService(logging.Nop(), NewDatabaseService(deployments), coordinator.ScanOptions{})
}

func TestKeysService_Scan(t *testing.T) {
	store := newMemStore()
	for i := 0; i < 30; i++ {
		store.keys[fmt.Sprintf("user:%d", i)] = "hash"
		store.keys[fmt.Sprintf("session:%d", i)] = "string"
	}
	svc := newKeysService(testDeployment("local", store, staticTopology{nodes: []models.NodeAddress{standaloneNode}}))

	result, err := svc.Scan(context.Background(), "local", &models.ScanKeysRequest{Match: "user:*"})
	require.NoError(t, err)
	require.Len(t, result.Shards, 1)
	assert.Len(t, result.Shards[0].Keys, 30)
	assert.Equal(t, coordinator.CursorDone, result.Cursor)

	result, err = svc.Scan(context.Background(), "local", &models.ScanKeysRequest{Type: "string"})
	require.NoError(t, err)
	assert.Len(t, result.Shards[0].Keys, 30)
}

func TestKeysService_ScanErrors(t *testing.T) {
	topo := staticTopology{nodes: []models.NodeAddress{standaloneNode}}
	broken := newMemStore()
	broken.scanErr = errors.New("connection refused")

	svc := newKeysService(
		testDeployment("local", newMemStore(), topo),
		testDeployment("broken", broken, topo),
		testDeployment("offline", newMemStore(), staticTopology{err: errors.New("dial tcp: refused")}),
	)

	tests := []struct {
		name     string
		database string
		req      models.ScanKeysRequest
		code     string
	}{
		{"unknown database", "nope", models.ScanKeysRequest{}, CodeDatabaseNotFound},
		{"negative count", "local", models.ScanKeysRequest{Count: -1}, CodeInvalidRequest},
		{"malformed cursor", "local", models.ScanKeysRequest{Cursor: "not-a-cursor"}, CodeInvalidRequest},
		{"shard failure", "broken", models.ScanKeysRequest{}, CodeScanFailed},
		{"topology failure", "offline", models.ScanKeysRequest{}, CodeTopologyUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Scan(context.Background(), tt.database, &tt.req)
			var svcErr *ServiceError
			require.ErrorAs(t, err, &svcErr)
			assert.Equal(t, tt.code, svcErr.Code)
		})
	}
}

func TestKeysService_ExactMatch(t *testing.T) {
	store := newMemStore()
	store.keys["config"] = "hash"
	svc := newKeysService(testDeployment("local", store, staticTopology{nodes: []models.NodeAddress{standaloneNode}}))

	result, err := svc.Scan(context.Background(), "local", &models.ScanKeysRequest{Match: "config"})
	require.NoError(t, err)
	require.Len(t, result.Shards[0].Keys, 1)
	assert.Equal(t, "hash", result.Shards[0].Keys[0].Type)
	assert.Equal(t, coordinator.CursorDone, result.Cursor)
}
