package executor

import (
	"context"
	"fmt"

	"github.com/caasmo/authrelay/db"
)

// JobExecutor dispatches a claimed job to the handler registered for
// its type.
type JobExecutor interface {
	Execute(ctx context.Context, job db.Job) error
}

// JobHandler processes a specific type of job.
type JobHandler interface {
	Handle(ctx context.Context, job db.Job) error
}

// DefaultExecutor is our concrete implementation of JobExecutor.
type DefaultExecutor struct {
	registry map[string]JobHandler
}

// NewExecutor creates an executor with the given handlers. A nil map is
// accepted; handlers can be added later with Register.
func NewExecutor(handlers map[string]JobHandler) *DefaultExecutor {
	if handlers == nil {
		handlers = make(map[string]JobHandler)
	}
	return &DefaultExecutor{
		registry: handlers,
	}
}

// Register adds or replaces the handler for a job type.
func (e *DefaultExecutor) Register(jobType string, handler JobHandler) {
	e.registry[jobType] = handler
}

// Execute implements the JobExecutor interface.
func (e *DefaultExecutor) Execute(ctx context.Context, job db.Job) error {
	handler, exists := e.registry[job.JobType]
	if !exists {
		return fmt.Errorf("no handler registered for job type: %s", job.JobType)
	}

	return handler.Handle(ctx, job)
}
