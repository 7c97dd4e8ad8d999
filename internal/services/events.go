package services

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/keyscope/keyscope/internal/command"
	"github.com/keyscope/keyscope/internal/logging"
	"github.com/keyscope/keyscope/internal/models"
	"github.com/keyscope/keyscope/internal/queue"
	"github.com/keyscope/keyscope/internal/utils"
)

// EventPublisher announces recorded executions on the queue. Failures are
// logged and never reach the caller.
type EventPublisher struct {
	logger    *logging.Logger
	publisher queue.Publisher
	subject   string
}

// NewEventPublisher creates an EventPublisher. A nil publisher disables
// events.
func NewEventPublisher(logger *logging.Logger, publisher queue.Publisher, subjectPrefix string) *EventPublisher {
	return &EventPublisher{
		logger:    logger,
		publisher: publisher,
		subject:   queue.Subject(subjectPrefix, utils.ExecutedEventSubject),
	}
}

// Subject returns the subject events are published on.
func (p *EventPublisher) Subject() string {
	return p.subject
}

// CommandExecuted publishes the event of exec.
func (p *EventPublisher) CommandExecuted(ctx context.Context, exec *models.CommandExecution) {
	if p == nil || p.publisher == nil {
		return
	}

	data, err := json.Marshal(NewCommandExecutedEvent(exec))
	if err != nil {
		p.logger.Error("Failed to encode execution event", "id", exec.ID, "error", err)
		return
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), utils.EventPublishTimeout)
	defer cancel()

	if err := p.publisher.Publish(ctx, p.subject, data); err != nil {
		p.logger.WithContext(ctx).Warn("Failed to publish execution event",
			"id", exec.ID,
			"subject", p.subject,
			"error", err)
	}
}

// NewCommandExecutedEvent summarises exec.
func NewCommandExecutedEvent(exec *models.CommandExecution) models.CommandExecutedEvent {
	event := models.CommandExecutedEvent{
		ID:         exec.ID,
		DatabaseID: exec.DatabaseID,
		Role:       exec.Role,
		Failed:     exec.Failed(),
		CreatedAt:  exec.CreatedAt,
	}
	if args, err := command.Tokenize(exec.Command); err == nil && len(args) > 0 {
		event.Verb = strings.ToUpper(args[0])
	}
	for _, r := range exec.Result {
		if r.Node != nil {
			event.Nodes++
		}
	}
	return event
}
