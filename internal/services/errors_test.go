package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/keyscope/keyscope/internal/coordinator"
	"github.com/keyscope/keyscope/internal/models"
	"github.com/keyscope/keyscope/internal/recorder"
	"github.com/stretchr/testify/assert"
)

func TestServiceError_Error(t *testing.T) {
	err := NewServiceError("TEST_ERROR", "Test error message")
	if err.Error() != "Test error message" {
		t.Errorf("Expected 'Test error message', got '%s'", err.Error())
	}
	if err.Details != nil {
		t.Errorf("Expected nil details, got %v", err.Details)
	}
}

func TestServiceError_JSON(t *testing.T) {
	err := NewServiceErrorWithDetails(CodeInvalidRequest, "bad", map[string]interface{}{"count": -1})

	data, marshalErr := json.Marshal(err)
	assert.NoError(t, marshalErr)
	assert.JSONEq(t, `{"code":"INVALID_REQUEST","message":"bad","details":{"count":-1}}`, string(data))

	data, _ = json.Marshal(NewServiceError(CodeNotFound, "missing"))
	assert.NotContains(t, string(data), "details")
}

func TestServiceError_HTTPStatus(t *testing.T) {
	tests := []struct {
		code   string
		status int
	}{
		{CodeInvalidRequest, http.StatusBadRequest},
		{CodeDatabaseNotFound, http.StatusNotFound},
		{CodeTopologyUnavailable, http.StatusServiceUnavailable},
		{CodeScanFailed, http.StatusBadGateway},
		{CodePersistenceFailed, http.StatusInternalServerError},
		{CodeNotFound, http.StatusNotFound},
		{"SOMETHING_ELSE", http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			assert.Equal(t, tt.status, NewServiceError(tt.code, "").HTTPStatus())
		})
	}
}

func TestTranslateError(t *testing.T) {
	node := models.NodeAddress{Host: "10.0.0.1", Port: 7000}

	tests := []struct {
		name string
		err  error
		code string
	}{
		{"input", &coordinator.InputError{Err: coordinator.ErrMalformedCursor}, CodeInvalidRequest},
		{"wrapped input", fmt.Errorf("scan: %w", &coordinator.InputError{Err: coordinator.ErrNoTargets}), CodeInvalidRequest},
		{"not found", fmt.Errorf("get: %w", recorder.ErrNotFound), CodeNotFound},
		{"topology", &coordinator.TopologyError{Err: errors.New("refused")}, CodeTopologyUnavailable},
		{"shard", &coordinator.ShardError{Node: node, Err: errors.New("timeout")}, CodeScanFailed},
		{"persistence", &coordinator.PersistenceError{Err: errors.New("etcd down")}, CodePersistenceFailed},
		{"service", NewServiceError(CodeDatabaseNotFound, "x"), CodeDatabaseNotFound},
		{"other", errors.New("boom"), CodeInternal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.code, translateError(tt.err, CodeInternal).Code)
		})
	}

	shard := translateError(&coordinator.ShardError{Node: node, Err: errors.New("timeout")}, CodeInternal)
	assert.Equal(t, "10.0.0.1:7000", shard.Details["node"])
}
