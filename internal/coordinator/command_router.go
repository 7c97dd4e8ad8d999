package coordinator

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/keyscope/keyscope/internal/command"
	"github.com/keyscope/keyscope/internal/logging"
	"github.com/keyscope/keyscope/internal/models"
	"github.com/keyscope/keyscope/internal/recorder"
	"github.com/keyscope/keyscope/internal/utils"
)

// ExecuteRequest is a command line to run against one deployment.
type ExecuteRequest struct {
	DatabaseID  string
	Command     string
	Role        models.NodeRole
	NodeOptions *models.NodeOptions
}

// CommandRouter classifies command lines, fans them out to the selected
// nodes and records the outcome.
type CommandRouter struct {
	logger     *logging.Logger
	client     StoreClient
	topology   Topology
	classifier *command.Classifier
	recorder   recorder.Recorder
	timeout    time.Duration
	now        func() time.Time
}

// NewCommandRouter creates a router for one deployment. commandTimeout
// bounds each per-node dispatch.
func NewCommandRouter(
	logger *logging.Logger,
	client StoreClient,
	topology Topology,
	classifier *command.Classifier,
	rec recorder.Recorder,
	commandTimeout time.Duration,
) *CommandRouter {
	if commandTimeout <= 0 {
		commandTimeout = utils.StoreCommandTimeout
	}
	return &CommandRouter{
		logger:     logger,
		client:     client,
		topology:   topology,
		classifier: classifier,
		recorder:   rec,
		timeout:    commandTimeout,
		now:        time.Now,
	}
}

// Execute runs req and returns the recorded execution. Rejected commands
// are recorded with a single Fail result without touching the store.
// Per-node failures are reported in the results; only input, topology and
// persistence problems are returned as errors.
func (r *CommandRouter) Execute(ctx context.Context, req ExecuteRequest) (*models.CommandExecution, error) {
	if req.Role == "" {
		req.Role = models.RoleAll
	}

	cls, err := r.classifier.Classify(req.Command)
	if err != nil {
		return nil, &InputError{Err: err}
	}

	exec := &models.CommandExecution{
		ID:          uuid.New().String(),
		DatabaseID:  req.DatabaseID,
		Command:     req.Command,
		Role:        req.Role,
		NodeOptions: req.NodeOptions,
		CreatedAt:   r.now().UTC(),
	}

	if cls.Rejected() {
		r.logger.Info("Command rejected", "database_id", req.DatabaseID, "verb", cls.Verb, "kind", cls.Kind.String())
		exec.Result = []models.CommandExecutionResult{{
			Status:   models.StatusFail,
			Response: cls.RejectionMessage(),
		}}
	} else {
		targets, err := r.resolveTargets(ctx, req)
		if err != nil {
			return nil, err
		}
		redirect := req.NodeOptions != nil && req.NodeOptions.EnableRedirection
		exec.Result = r.dispatchAll(ctx, targets, cls, redirect)

		r.logger.Debug("Command executed",
			"database_id", req.DatabaseID,
			"verb", cls.Verb,
			"nodes", len(targets),
			"failed", exec.Failed())
	}

	saved, err := r.recorder.Create(ctx, exec)
	if err != nil {
		return nil, &PersistenceError{Err: err}
	}
	return saved, nil
}

// resolveTargets picks the nodes a command is sent to: the single node of a
// standalone deployment, the pinned node, or every node with the role.
func (r *CommandRouter) resolveTargets(ctx context.Context, req ExecuteRequest) ([]models.NodeAddress, error) {
	if !r.topology.IsCluster() {
		nodes, err := r.topology.ListNodes(ctx, models.RoleAll)
		if err != nil {
			return nil, &TopologyError{Err: err}
		}
		if len(nodes) == 0 {
			return nil, &InputError{Err: ErrNoTargets}
		}
		return nodes[:1], nil
	}

	if opts := req.NodeOptions; opts != nil && opts.Host != "" {
		pinned := opts.Address()
		nodes, err := r.topology.ListNodes(ctx, models.RoleAll)
		if err != nil {
			return nil, &TopologyError{Err: err}
		}
		for _, n := range nodes {
			if n == pinned {
				return []models.NodeAddress{pinned}, nil
			}
		}
		return nil, inputErrorf(ErrUnknownNode, "%s", pinned)
	}

	nodes, err := r.topology.ListNodes(ctx, req.Role)
	if err != nil {
		return nil, &TopologyError{Err: err}
	}
	if len(nodes) == 0 {
		return nil, inputErrorf(ErrNoTargets, "role %s", req.Role)
	}
	return nodes, nil
}

func (r *CommandRouter) dispatchAll(ctx context.Context, targets []models.NodeAddress, cls command.Classification, redirect bool) []models.CommandExecutionResult {
	results := make([]models.CommandExecutionResult, len(targets))

	var wg sync.WaitGroup
	for i, node := range targets {
		wg.Add(1)
		go func(i int, node models.NodeAddress) {
			defer wg.Done()
			results[i] = r.dispatch(ctx, node, cls, redirect)
		}(i, node)
	}
	wg.Wait()

	return results
}

// dispatch runs the command on one node, following at most one redirect.
func (r *CommandRouter) dispatch(ctx context.Context, node models.NodeAddress, cls command.Classification, redirect bool) models.CommandExecutionResult {
	var slot *int
	if r.topology.IsCluster() && cls.Key != "" {
		s := KeySlot(cls.Key)
		slot = &s
	}

	reply, err := r.send(ctx, node, cls.Args, false)
	if err == nil {
		return success(node, slot, reply)
	}

	rd, ok := ParseRedirect(err)
	if !ok || !redirect {
		if !ok {
			r.logger.Debug("Node dispatch failed", "node", node.String(), "verb", cls.Verb, "error", err)
		}
		return failure(node, slot, err)
	}

	s := rd.Slot
	target := rd.Target(node)
	reply, err = r.send(ctx, target, cls.Args, rd.Kind == RedirectAsk)
	if err != nil {
		return failure(target, &s, err)
	}
	return success(target, &s, reply)
}

func (r *CommandRouter) send(ctx context.Context, node models.NodeAddress, argv []string, asking bool) (interface{}, error) {
	nodeCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()
	return r.client.Execute(nodeCtx, node, argv, asking)
}

func success(node models.NodeAddress, slot *int, reply interface{}) models.CommandExecutionResult {
	return models.CommandExecutionResult{
		Status:   models.StatusSuccess,
		Response: reply,
		Node:     &models.ResultNode{Host: node.Host, Port: node.Port, Slot: slot},
	}
}

func failure(node models.NodeAddress, slot *int, err error) models.CommandExecutionResult {
	return models.CommandExecutionResult{
		Status:   models.StatusFail,
		Response: err.Error(),
		Node:     &models.ResultNode{Host: node.Host, Port: node.Port, Slot: slot},
	}
}
