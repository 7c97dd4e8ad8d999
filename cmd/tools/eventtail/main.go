// eventtail prints workbench execution events as they are published.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/keyscope/keyscope/internal/config"
	"github.com/keyscope/keyscope/internal/logging"
	"github.com/keyscope/keyscope/internal/models"
	"github.com/keyscope/keyscope/internal/queue"
	"github.com/keyscope/keyscope/internal/utils"
)

func main() {
	configPath := flag.String("config", "", "Path to configuration file")
	database := flag.String("db", "", "Only show events of this database")
	failedOnly := flag.Bool("failed", false, "Only show executions with failed results")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logging.SetGlobal(logging.NewDevelopment())

	sub, err := queue.NewSubscriber(cfg.Queue)
	if err != nil {
		logging.Fatal("Failed to connect to Queue", "type", cfg.Queue.Type, "error", err)
	}
	defer func() { _ = sub.Close() }()

	subject := queue.Subject(cfg.Queue.SubjectPrefix, utils.ExecutedEventSubject)
	logger := logging.With("subject", subject)
	err = sub.Subscribe(subject, func(data []byte) error {
		var event models.CommandExecutedEvent
		if err := json.Unmarshal(data, &event); err != nil {
			logging.Warn("Skipping malformed event", "error", err)
			return nil
		}
		if (*database != "" && event.DatabaseID != *database) || (*failedOnly && event.Failed == 0) {
			logging.Debug("Filtered event", "id", event.ID, "database_id", event.DatabaseID)
			return nil
		}

		logger.Info("Command executed",
			"id", event.ID,
			"database_id", event.DatabaseID,
			"verb", event.Verb,
			"role", string(event.Role),
			"nodes", event.Nodes,
			"failed", event.Failed,
			"created_at", event.CreatedAt)
		return nil
	})
	if err != nil {
		logger.Fatal("Failed to subscribe", "error", err)
	}
	logger.Info("Tailing execution events", "type", cfg.Queue.Type)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
}
