package megaphonebroadcast

import (
	"context"
	"encoding/json"
	"time"

	"findvax-notifier/internal/common/errors"
	"findvax-notifier/internal/common/logger"
	"findvax-notifier/internal/common/metrics"
	"findvax-notifier/internal/notify"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "megaphone-broadcast"
)

type Broadcaster interface {
	Broadcast(ctx context.Context, region string) (*notify.BroadcastReport, error)
}

type Handler struct {
	config       *Config
	broadcaster  Broadcaster
	errorHandler *errors.ErrorHandler
	logger       logger.Logger
}

func NewHandler(config *Config, broadcaster Broadcaster, log logger.Logger) *Handler {
	l := log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:       config,
		broadcaster:  broadcaster,
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

	metrics.WorkerJobDuration.WithLabelValues(TaskType).Observe(time.Since(start).Seconds())
	metrics.WorkerJobsCompleted.WithLabelValues(TaskType).Inc()

	cmd, err := client.NewCompleteJobCommand().JobKey(job.Key).VariablesFromObject(output)
	if err != nil {
		h.logger.Error("failed to create complete job command", map[string]interface{}{"error": err.Error()})
		return
	}
	if _, err := cmd.Send(ctx); err != nil {
		h.logger.Error("failed to send complete job command", map[string]interface{}{"error": err.Error()})
	}
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	region := input.State
	if region == "" {
		region = h.config.DefaultRegion
	}

	report, err := h.broadcaster.Broadcast(ctx, region)
	if err != nil {
		return nil, err
	}
	return &Output{
		Region:     report.Region,
		Locations:  report.Locations,
		Recipients: report.Recipients,
		Sent:       report.Sent,
	}, nil
}

func (h *Handler) fail(ctx context.Context, client worker.JobClient, job entities.Job, start time.Time, err error) {
	metrics.WorkerJobDuration.WithLabelValues(TaskType).Observe(time.Since(start).Seconds())
	metrics.WorkerJobsFailed.WithLabelValues(TaskType, string(errors.Normalize(err).Code)).Inc()
	h.errorHandler.HandleJobError(ctx, client, job, err)
}
