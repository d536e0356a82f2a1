// pkg/registry/registry.go
package registry

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"findvax-notifier/internal/common/config"
	"findvax-notifier/internal/common/errors"
	"findvax-notifier/internal/common/validation"
	mb "findvax-notifier/internal/workers/admin/megaphone-broadcast"
	ns "findvax-notifier/internal/workers/availability/notify-subscribers"
	cs "findvax-notifier/internal/workers/subscription/create-subscription"
)

const Version = "1.0.0"

func LoadRegistry(path string) (*ActivityRegistry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var reg ActivityRegistry
	err = json.Unmarshal(data, &reg)
	return &reg, err
}

// Save writes reg to path, creating parent directories.
func Save(reg *ActivityRegistry, path string) error {
	data, err := json.MarshalIndent(reg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal registry: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write registry file: %w", err)
	}
	return nil
}

// Build describes the job workers as configured in cfg.
func Build(cfg *config.Config) *ActivityRegistry {
	timeout := func(taskType string) string {
		return config.GetDuration(config.GetWorkerConfig(cfg, taskType).Timeout).String()
	}
	regionInput := map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"state": map[string]interface{}{"type": "string", "description": "Region code, defaults to " + cfg.Pipeline.DefaultRegion},
		},
	}

	return &ActivityRegistry{
		Version:     Version,
		LastUpdated: time.Now().UTC().Format(time.RFC3339),
		Activities: []Activity{
			{
				ID:           cs.TaskType,
				DisplayName:  "Create Subscription",
				Description:  "Validates a subscription request and stores it as pending",
				Category:     "subscription",
				Version:      Version,
				TaskType:     cs.TaskType,
				InputSchema:  subscriptionInputSchema(),
				OutputSchema: objectSchema("location", "recipient", "lang", "status", "createdAt"),
				ErrorCodes:   codes(errors.ErrCodeRequestInvalid, errors.ErrCodeSubscriptionWriteFailed),
				Timeout:      timeout(cs.TaskType),
				Tags:         []string{"intake"},
			},
			{
				ID:           ns.TaskType,
				DisplayName:  "Notify Subscribers",
				Description:  "Texts pending subscribers of locations with enough open slots, then retires their subscriptions",
				Category:     "availability",
				Version:      Version,
				TaskType:     ns.TaskType,
				InputSchema:  regionInput,
				OutputSchema: objectSchema("region", "locations", "qualifying", "recipients", "sent", "retired"),
				ErrorCodes: codes(
					errors.ErrCodeSnapshotLoadFailed,
					errors.ErrCodeSubscriptionQueryFailed,
					errors.ErrCodeNotificationSendFailed,
					errors.ErrCodeSubscriptionDeleteFailed,
					errors.ErrCodeRunInProgress,
				),
				Timeout: timeout(ns.TaskType),
				Tags:    []string{"pipeline", "sms"},
			},
			{
				ID:           mb.TaskType,
				DisplayName:  "Megaphone Broadcast",
				Description:  "Texts everyone still waiting on the configured locations without retiring subscriptions",
				Category:     "admin",
				Version:      Version,
				TaskType:     mb.TaskType,
				InputSchema:  regionInput,
				OutputSchema: objectSchema("region", "locations", "recipients", "sent"),
				ErrorCodes: codes(
					errors.ErrCodeSnapshotLoadFailed,
					errors.ErrCodeSubscriptionQueryFailed,
					errors.ErrCodeNotificationSendFailed,
				),
				Timeout: timeout(mb.TaskType),
				Tags:    []string{"admin", "sms"},
			},
		},
	}
}

// Validate checks reg for missing or duplicate entries.
func Validate(reg *ActivityRegistry) error {
	if len(reg.Activities) == 0 {
		return fmt.Errorf("registry contains no activities")
	}

	ids := make(map[string]bool)
	for _, activity := range reg.Activities {
		if activity.ID == "" {
			return fmt.Errorf("activity missing required field: ID")
		}
		if ids[activity.ID] {
			return fmt.Errorf("duplicate activity ID: %s", activity.ID)
		}
		ids[activity.ID] = true

		if activity.DisplayName == "" {
			return fmt.Errorf("activity %s missing required field: DisplayName", activity.ID)
		}
		if activity.TaskType == "" {
			return fmt.Errorf("activity %s missing required field: TaskType", activity.ID)
		}
		if activity.Category == "" {
			return fmt.Errorf("activity %s missing required field: Category", activity.ID)
		}
	}
	return nil
}

func subscriptionInputSchema() map[string]interface{} {
	var schema map[string]interface{}
	if err := json.Unmarshal([]byte(validation.SubscriptionRequestSchema), &schema); err != nil {
		return objectSchema(validation.SubscriptionFields...)
	}
	return schema
}

func objectSchema(fields ...string) map[string]interface{} {
	props := make(map[string]interface{}, len(fields))
	for _, f := range fields {
		props[f] = map[string]interface{}{}
	}
	return map[string]interface{}{"type": "object", "properties": props}
}

func codes(list ...errors.ErrorCode) []string {
	out := make([]string, len(list))
	for i, c := range list {
		out[i] = string(c)
	}
	return out
}
