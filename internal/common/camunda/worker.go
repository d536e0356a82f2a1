package camunda

import (
	"findvax-notifier/internal/common/config"
	"findvax-notifier/internal/common/logger"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"
)

// JobHandler processes one activated job and is responsible for completing
// or failing it.
type JobHandler interface {
	Handle(client worker.JobClient, job entities.Job)
}

// Worker is an open job worker for one task type.
type Worker struct {
	worker   worker.JobWorker
	taskType string
	logger   logger.Logger
}

// NewWorker opens a job worker for taskType.
func NewWorker(client zbc.Client, taskType string, cfg config.WorkerConfig, handler JobHandler, log logger.Logger) *Worker {
	builder := client.NewJobWorker().
		JobType(taskType).
		Handler(handler.Handle).
		MaxJobsActive(cfg.MaxJobsActive)
	if cfg.Timeout > 0 {
		builder = builder.Timeout(config.GetDuration(cfg.Timeout))
	}

	w := &Worker{
		worker:   builder.Open(),
		taskType: taskType,
		logger:   log,
	}
	log.Info("worker started", map[string]interface{}{
		"taskType":      taskType,
		"maxJobsActive": cfg.MaxJobsActive,
	})
	return w
}

// Stop closes the worker and waits for in-flight jobs.
func (w *Worker) Stop() {
	w.logger.Info("stopping worker", map[string]interface{}{"taskType": w.taskType})
	w.worker.Close()
	w.worker.AwaitClose()
}
