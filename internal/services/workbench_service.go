package services

import (
	"context"
	"time"

	"github.com/keyscope/keyscope/internal/command"
	"github.com/keyscope/keyscope/internal/coordinator"
	"github.com/keyscope/keyscope/internal/logging"
	"github.com/keyscope/keyscope/internal/models"
	"github.com/keyscope/keyscope/internal/recorder"
)

// WorkbenchService runs workbench commands and serves their history.
type WorkbenchService struct {
	logger    *logging.Logger
	databases *DatabaseService
	recorder  recorder.Recorder
	events    *EventPublisher
	routers   map[string]*coordinator.CommandRouter
}

// NewWorkbenchService creates a command router per database.
func NewWorkbenchService(
	logger *logging.Logger,
	databases *DatabaseService,
	classifier *command.Classifier,
	rec recorder.Recorder,
	events *EventPublisher,
	commandTimeout time.Duration,
) *WorkbenchService {
	routers := make(map[string]*coordinator.CommandRouter, len(databases.deployments))
	for _, d := range databases.deployments {
		routers[d.Config.ID] = coordinator.NewCommandRouter(
			logger.With("database_id", d.Config.ID), d.Client, d.Topology, classifier, rec, commandTimeout)
	}
	return &WorkbenchService{
		logger:    logger,
		databases: databases,
		recorder:  rec,
		events:    events,
		routers:   routers,
	}
}

// Execute runs one command line and returns the recorded execution.
func (s *WorkbenchService) Execute(ctx context.Context, databaseID string, input *models.CreateCommandExecutionRequest) (*models.CommandExecution, error) {
	ctx = logging.WithDatabaseID(ctx, databaseID)
	log := s.logger.WithContext(ctx)

	if _, err := s.databases.lookup(databaseID); err != nil {
		return nil, err
	}

	role, err := models.ParseNodeRole(input.Role)
	if err != nil {
		return nil, NewServiceErrorWithDetails(CodeInvalidRequest, err.Error(),
			map[string]interface{}{"role": input.Role})
	}
	if opts := input.NodeOptions; opts != nil && opts.Host != "" && (opts.Port < 1 || opts.Port > 65535) {
		return nil, NewServiceErrorWithDetails(CodeInvalidRequest, "nodeOptions.port is out of range",
			map[string]interface{}{"port": opts.Port})
	}

	start := time.Now()
	exec, err := s.routers[databaseID].Execute(ctx, coordinator.ExecuteRequest{
		DatabaseID:  databaseID,
		Command:     input.Command,
		Role:        role,
		NodeOptions: input.NodeOptions,
	})
	if err != nil {
		log.Warn("Command execution failed", "error", err)
		return nil, translateError(err, CodeInternal)
	}

	log.Info("Command executed",
		"id", exec.ID,
		"results", len(exec.Result),
		"failed", exec.Failed(),
		"latency_ms", time.Since(start).Milliseconds())

	s.events.CommandExecuted(ctx, exec)
	return exec, nil
}

// List returns the short execution history of a database, newest first.
func (s *WorkbenchService) List(ctx context.Context, databaseID string) ([]*models.CommandExecution, error) {
	if _, err := s.databases.lookup(databaseID); err != nil {
		return nil, err
	}
	list, err := s.recorder.GetList(ctx, databaseID)
	if err != nil {
		return nil, translateError(err, CodeInternal)
	}
	return list, nil
}

// Get returns one full execution.
func (s *WorkbenchService) Get(ctx context.Context, databaseID, id string) (*models.CommandExecution, error) {
	if _, err := s.databases.lookup(databaseID); err != nil {
		return nil, err
	}
	exec, err := s.recorder.GetOne(ctx, databaseID, id)
	if err != nil {
		return nil, translateError(err, CodeInternal)
	}
	return exec, nil
}

// Delete removes one execution from the history.
func (s *WorkbenchService) Delete(ctx context.Context, databaseID, id string) error {
	if _, err := s.databases.lookup(databaseID); err != nil {
		return err
	}
	if err := s.recorder.Delete(ctx, databaseID, id); err != nil {
		return translateError(err, CodeInternal)
	}
	s.logger.WithContext(logging.WithDatabaseID(ctx, databaseID)).Info("Command execution deleted", "id", id)
	return nil
}
