// Package services provides the business logic layer between handlers and
// coordinators.
package services

import (
	"errors"
	"net/http"

	"github.com/keyscope/keyscope/internal/coordinator"
	"github.com/keyscope/keyscope/internal/recorder"
)

// Error codes returned to API clients
const (
	CodeInvalidRequest      = "INVALID_REQUEST"
	CodeDatabaseNotFound    = "DATABASE_NOT_FOUND"
	CodeTopologyUnavailable = "TOPOLOGY_UNAVAILABLE"
	CodeScanFailed          = "SCAN_FAILED"
	CodePersistenceFailed   = "PERSISTENCE_FAILED"
	CodeNotFound            = "NOT_FOUND"
	CodeInternal            = "INTERNAL_ERROR"
)

var codeStatus = map[string]int{
	CodeInvalidRequest:      http.StatusBadRequest,
	CodeDatabaseNotFound:    http.StatusNotFound,
	CodeTopologyUnavailable: http.StatusServiceUnavailable,
	CodeScanFailed:          http.StatusBadGateway,
	CodePersistenceFailed:   http.StatusInternalServerError,
	CodeNotFound:            http.StatusNotFound,
}

// ServiceError represents a service layer error
type ServiceError struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

func (e *ServiceError) Error() string {
	return e.Message
}

// HTTPStatus maps the error code to a response status.
func (e *ServiceError) HTTPStatus() int {
	if status, ok := codeStatus[e.Code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// NewServiceError creates a new ServiceError
func NewServiceError(code, message string) *ServiceError {
	return &ServiceError{
		Code:    code,
		Message: message,
	}
}

// NewServiceErrorWithDetails creates a new ServiceError with details
func NewServiceErrorWithDetails(code, message string, details map[string]interface{}) *ServiceError {
	return &ServiceError{
		Code:    code,
		Message: message,
		Details: details,
	}
}

// translateError converts coordinator and recorder errors into ServiceErrors.
// fallback is the code used for anything unrecognised.
func translateError(err error, fallback string) *ServiceError {
	var (
		svcErr     *ServiceError
		topoErr    *coordinator.TopologyError
		shardErr   *coordinator.ShardError
		persistErr *coordinator.PersistenceError
	)

	switch {
	case errors.As(err, &svcErr):
		return svcErr
	case coordinator.IsInputError(err):
		return NewServiceError(CodeInvalidRequest, err.Error())
	case errors.Is(err, recorder.ErrNotFound):
		return NewServiceError(CodeNotFound, err.Error())
	case errors.As(err, &topoErr):
		return NewServiceErrorWithDetails(CodeTopologyUnavailable, "Failed to resolve database topology",
			map[string]interface{}{"error": topoErr.Err.Error()})
	case errors.As(err, &shardErr):
		return NewServiceErrorWithDetails(CodeScanFailed, "Failed to scan node "+shardErr.Node.String(),
			map[string]interface{}{"node": shardErr.Node.String(), "error": shardErr.Err.Error()})
	case errors.As(err, &persistErr):
		return NewServiceErrorWithDetails(CodePersistenceFailed, "Failed to record command execution",
			map[string]interface{}{"error": persistErr.Err.Error()})
	default:
		return NewServiceErrorWithDetails(fallback, err.Error(), nil)
	}
}
