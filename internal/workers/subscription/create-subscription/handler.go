package createsubscription

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"findvax-notifier/internal/common/errors"
	"findvax-notifier/internal/common/logger"
	"findvax-notifier/internal/common/metrics"
	"findvax-notifier/internal/common/validation"
	"findvax-notifier/internal/models"
	"findvax-notifier/internal/store"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "create-subscription"
)

type Handler struct {
	config       *Config
	store        store.SubscriptionStore
	schema       *validation.Schema
	errorHandler *errors.ErrorHandler
	logger       logger.Logger
}

func NewHandler(config *Config, s store.SubscriptionStore, log logger.Logger) *Handler {
	l := log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:       config,
		store:        s,
		schema:       validation.MustSubscriptionSchema(),
		errorHandler: errors.NewErrorHandler(l),
		logger:       l,
	}
}

// Handle treats the job variables as the request body.
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

	output, err := h.HandleRequest(ctx, job.Variables)
	metrics.WorkerJobDuration.WithLabelValues(TaskType).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.WorkerJobsFailed.WithLabelValues(TaskType, string(errors.Normalize(err).Code)).Inc()
		h.errorHandler.HandleJobError(ctx, client, job, err)
		return
	}

	metrics.WorkerJobsCompleted.WithLabelValues(TaskType).Inc()
	h.completeJob(ctx, client, job, output)
}

// HandleRequest parses and validates a raw request body, then stores the
// subscription.
func (h *Handler) HandleRequest(ctx context.Context, body string) (*Output, error) {
	input, err := h.ParseRequest(body)
	if err != nil {
		metrics.IntakeRequests.WithLabelValues("rejected").Inc()
		h.logger.Warn("subscription request rejected", map[string]interface{}{"reason": errors.ResponseMessage(err)})
		return nil, err
	}
	return h.Execute(ctx, input)
}

// ParseRequest checks the body is a JSON object carrying every required field
// as a non-empty string.
func (h *Handler) ParseRequest(body string) (*Input, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, errors.NewRequestInvalidError(MsgMissingBody)
	}

	var doc map[string]interface{}
	if err := json.Unmarshal([]byte(body), &doc); err != nil {
		return nil, errors.NewRequestInvalidError(MsgInvalidBody)
	}
	if doc == nil {
		return nil, errors.NewRequestInvalidError(MsgMissingBody)
	}

	field, err := h.schema.FirstInvalidField(doc)
	if err != nil {
		return nil, err
	}
	if field != "" {
		return nil, errors.NewRequestInvalidError(missingFieldMessage(field))
	}

	return &Input{
		Location: doc["location"].(string),
		SMS:      doc["sms"].(string),
		Lang:     doc["lang"].(string),
	}, nil
}

// Execute validates field values and writes one pending subscription. Nothing
// is written unless every check passes.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	if !validation.ValidLocationID(input.Location) {
		return nil, h.reject(MsgInvalidLocation)
	}
	phone, ok := validation.NormalizeUSPhone(input.SMS)
	if !ok {
		return nil, h.reject(MsgInvalidPhone)
	}
	if !validation.ValidLangID(input.Lang) {
		return nil, h.reject(MsgInvalidLang)
	}

	sub := models.Subscription{
		Location:  input.Location,
		IsSent:    models.Pending,
		SMS:       phone,
		Lang:      input.Lang,
		CreatedAt: time.Now().UTC(),
	}
	if err := h.store.Put(ctx, sub); err != nil {
		metrics.IntakeRequests.WithLabelValues("failed").Inc()
		wrapped := errors.NewSubscriptionWriteFailedError(err).WithMetadata("location", sub.Location)
		h.logger.Error("unable to add notification db item", errors.LogFields(wrapped))
		return nil, wrapped
	}

	metrics.IntakeRequests.WithLabelValues("accepted").Inc()
	return &Output{
		Location:  sub.Location,
		Recipient: sub.SMS,
		Lang:      sub.Lang,
		Status:    StatusSubscribed,
		CreatedAt: sub.CreatedAt.Format(time.RFC3339),
	}, nil
}

func (h *Handler) reject(message string) error {
	metrics.IntakeRequests.WithLabelValues("rejected").Inc()
	h.logger.Warn("subscription request rejected", map[string]interface{}{"reason": message})
	return errors.NewRequestInvalidError(message)
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
