package errors

import (
	"context"
	"encoding/json"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

// ErrorHandler throws job failures back to the workflow engine as BPMN errors.
// Jobs are never retried from here.
type ErrorHandler struct {
	logger Logger
}

type Logger interface {
	Error(msg string, fields map[string]interface{})
}

func NewErrorHandler(logger Logger) *ErrorHandler {
	return &ErrorHandler{logger: logger}
}

// HandleJobError logs err with full detail and throws it as a BPMN error.
func (h *ErrorHandler) HandleJobError(ctx context.Context, client worker.JobClient, job entities.Job, err error) {
	stdErr := Normalize(err)
	bpmnErr := ConvertToBPMNError(stdErr)

	fields := LogFields(err)
	fields["jobKey"] = job.Key
	fields["jobType"] = job.Type
	fields["processInstanceKey"] = job.ProcessInstanceKey
	h.logger.Error("job failed", fields)

	cmd := client.NewThrowErrorCommand().
		JobKey(job.Key).
		ErrorCode(bpmnErr.Code).
		ErrorMessage(bpmnErr.Message)

	if varsJSON, mErr := json.Marshal(bpmnErr.ToErrorVariables()); mErr == nil {
		if cmdWithVars, vErr := cmd.VariablesFromString(string(varsJSON)); vErr == nil {
			if _, sErr := cmdWithVars.Send(ctx); sErr != nil {
				h.logger.Error("failed to throw job error", map[string]interface{}{"jobKey": job.Key, "error": sErr.Error()})
			}
			return
		}
	}

	if _, sErr := cmd.Send(ctx); sErr != nil {
		h.logger.Error("failed to throw job error", map[string]interface{}{"jobKey": job.Key, "error": sErr.Error()})
	}
}
