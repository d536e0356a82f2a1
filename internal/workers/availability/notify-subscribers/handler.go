package notifysubscribers

import (
	"context"
	"encoding/json"
	"time"

	"findvax-notifier/internal/common/errors"
	"findvax-notifier/internal/common/logger"
	"findvax-notifier/internal/common/metrics"
	"findvax-notifier/internal/common/observability"
	"findvax-notifier/internal/notify"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "notify-subscribers"
)

// Runner runs one notification cycle for a region.
type Runner interface {
	Run(ctx context.Context, region string) (*notify.RunReport, error)
}

type Handler struct {
	config       *Config
	runner       Runner
	obs          *observability.Observability
	errorHandler *errors.ErrorHandler
	logger       logger.Logger
}

func NewHandler(config *Config, runner Runner, obs *observability.Observability, log logger.Logger) *Handler {
	l := log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:       config,
		runner:       runner,
		obs:          obs,
		errorHandler: errors.NewErrorHandler(l),
		logger:       l,
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})
	start := time.Now()
	metrics.WorkerJobsActive.WithLabelValues(TaskType).Inc()
	defer metrics.WorkerJobsActive.WithLabelValues(TaskType).Dec()

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	var input Input
	if job.Variables != "" {
		if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
			h.fail(ctx, client, job, start, errors.NewUnknownTriggerError(err.Error()))
			return
		}
	}

	output, err := h.Execute(ctx, &input)
	if err != nil {
		h.fail(ctx, client, job, start, err)
		return
	}

	h.record(ctx, start, "completed")
	metrics.WorkerJobsCompleted.WithLabelValues(TaskType).Inc()
	h.obs.RecordRecipients(ctx, output.Region, output.Recipients)
	h.completeJob(ctx, client, job, output)
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	region := input.State
	if region == "" {
		region = h.config.DefaultRegion
	}

	report, err := h.runner.Run(ctx, region)
	if err != nil {
		return nil, err
	}

	return &Output{
		Region:     report.Region,
		Locations:  report.Locations,
		Qualifying: report.Qualifying,
		Recipients: report.Recipients,
		Sent:       report.Sent,
		Retired:    report.Retired,
	}, nil
}

func (h *Handler) fail(ctx context.Context, client worker.JobClient, job entities.Job, start time.Time, err error) {
	h.record(ctx, start, "failed")
	metrics.WorkerJobsFailed.WithLabelValues(TaskType, string(errors.Normalize(err).Code)).Inc()
	h.errorHandler.HandleJobError(ctx, client, job, err)
}

func (h *Handler) record(ctx context.Context, start time.Time, status string) {
	elapsed := time.Since(start)
	metrics.WorkerJobDuration.WithLabelValues(TaskType).Observe(elapsed.Seconds())
	h.obs.RecordJobProcessed(ctx, TaskType, status)
	h.obs.RecordJobDuration(ctx, TaskType, elapsed, status)
}

func (h *Handler) completeJob(ctx context.Context, client worker.JobClient, job entities.Job, output *Output) {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		h.logger.Error("failed to create complete job command", map[string]interface{}{
			"error": err.Error(),
		})
		return
	}
	if _, err := cmd.Send(ctx); err != nil {
		h.logger.Error("failed to send complete job command", map[string]interface{}{
			"error": err.Error(),
		})
	}
}
