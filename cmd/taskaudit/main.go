// Command taskaudit consumes task lifecycle events from RabbitMQ and appends
// them to an audit log file.
package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/iliyamo/todo-api/internal/config"
	"github.com/iliyamo/todo-api/internal/queue"
)

func main() {
	cfg := config.LoadAudit()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Printf("taskaudit: consuming %s into %s", queue.TaskEventsQueue, cfg.AuditLogPath)
	if err := queue.StartTaskEventConsumer(ctx, cfg.RabbitMQURL, cfg.AuditLogPath); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatalf("taskaudit: %v", err)
	}
	log.Printf("taskaudit: stopped")
}
