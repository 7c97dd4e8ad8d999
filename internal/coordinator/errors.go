package coordinator

import (
	"errors"
	"fmt"

	"github.com/keyscope/keyscope/internal/command"
	"github.com/keyscope/keyscope/internal/models"
)

var (
	// ErrEmptyCommand is returned for a command line with no tokens.
	ErrEmptyCommand = command.ErrEmptyCommand
	// ErrNoTargets is returned when role selection resolves to no node.
	ErrNoTargets = errors.New("no nodes match the requested role")
	// ErrMalformedCursor is returned for an unparseable composite cursor.
	ErrMalformedCursor = errors.New("malformed cursor")
	// ErrUnknownNode is returned when a pinned node is not part of the topology.
	ErrUnknownNode = errors.New("node is not part of the topology")
)

// InputError marks a request the caller must fix before retrying.
type InputError struct {
	Err error
}

func (e *InputError) Error() string { return e.Err.Error() }
func (e *InputError) Unwrap() error { return e.Err }

func inputErrorf(sentinel error, format string, args ...interface{}) error {
	return &InputError{Err: fmt.Errorf("%w: %s", sentinel, fmt.Sprintf(format, args...))}
}

// TopologyError reports that the node list could not be resolved.
type TopologyError struct {
	Err error
}

func (e *TopologyError) Error() string { return "topology unavailable: " + e.Err.Error() }
func (e *TopologyError) Unwrap() error { return e.Err }

// ShardError reports a failed scan on one shard.
type ShardError struct {
	Node models.NodeAddress
	Err  error
}

func (e *ShardError) Error() string {
	return fmt.Sprintf("scan failed on %s: %v", e.Node, e.Err)
}

func (e *ShardError) Unwrap() error { return e.Err }

// PersistenceError reports that an execution could not be recorded.
type PersistenceError struct {
	Err error
}

func (e *PersistenceError) Error() string { return "failed to record execution: " + e.Err.Error() }
func (e *PersistenceError) Unwrap() error { return e.Err }

// IsInputError reports whether err is caused by invalid input.
func IsInputError(err error) bool {
	var ie *InputError
	return errors.As(err, &ie)
}
