package main

import (
	"encoding/json"
	"os"
	"time"

	"github.com/spf13/cobra"

	"swaad-chat/internal/common/config"
	apperrors "swaad-chat/internal/common/errors"
	assembleresponse "swaad-chat/internal/workers/chat/assemble-response"
	placeorder "swaad-chat/internal/workers/orders/place-order"
	sendorderconfirmation "swaad-chat/internal/workers/orders/send-order-confirmation"
	"swaad-chat/pkg/registry"
)

var activitiesOut string

var activitiesCmd = &cobra.Command{
	Use:   "activities",
	Short: "Print the activity registry for the BPMN service tasks",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		reg, err := buildActivityRegistry(cfg, time.Now())
		if err != nil {
			return err
		}
		if activitiesOut == "" {
			return reg.Write(cmd.OutOrStdout())
		}
		f, err := os.Create(activitiesOut)
		if err != nil {
			return err
		}
		defer f.Close()
		return reg.Write(f)
	},
}

func init() {
	activitiesCmd.Flags().StringVarP(&activitiesOut, "out", "o", "", "write to a file instead of stdout")
	rootCmd.AddCommand(activitiesCmd)
}

type activitySpec struct {
	id          string
	displayName string
	description string
	category    string
	taskType    string
	configKey   string
	schema      interface{}
	errorCodes  []apperrors.ErrorCode
}

var activitySpecs = []activitySpec{
	{
		id:          assembleresponse.ConfigKey,
		displayName: "Assemble Chat Response",
		description: "Turns a finished agent turn into ordered message blocks",
		category:    "chat",
		taskType:    assembleresponse.TaskType,
		configKey:   assembleresponse.ConfigKey,
		schema:      assembleresponse.GetInputSchema(),
		errorCodes:  []apperrors.ErrorCode{apperrors.ErrCodeParseError, apperrors.ErrCodeInputValidation},
	},
	{
		id:          placeorder.ConfigKey,
		displayName: "Place Order",
		description: "Validates a cash-on-delivery checkout and stores the order",
		category:    "orders",
		taskType:    placeorder.TaskType,
		configKey:   placeorder.ConfigKey,
		schema:      placeorder.GetInputSchema(),
		errorCodes: []apperrors.ErrorCode{
			apperrors.ErrCodeParseError,
			apperrors.ErrCodeInputValidation,
			apperrors.ErrCodeOrderValidationFailed,
			apperrors.ErrCodeDatabaseInsertFailed,
		},
	},
	{
		id:          sendorderconfirmation.ConfigKey,
		displayName: "Send Order Confirmation",
		description: "Emails and texts the customer once an order is placed",
		category:    "orders",
		taskType:    sendorderconfirmation.TaskType,
		configKey:   sendorderconfirmation.ConfigKey,
		schema:      sendorderconfirmation.GetInputSchema(),
		errorCodes: []apperrors.ErrorCode{
			apperrors.ErrCodeParseError,
			apperrors.ErrCodeInputValidation,
			apperrors.ErrCodeOrderNotFound,
			apperrors.ErrCodeDatabaseQueryFailed,
			apperrors.ErrCodeNotificationSendFailed,
		},
	},
}

// buildActivityRegistry describes each worker with its configured timeout
// and retries.
func buildActivityRegistry(cfg *config.Config, now time.Time) (*registry.ActivityRegistry, error) {
	reg := &registry.ActivityRegistry{
		Version:     cfg.App.Version,
		GeneratedAt: now.UTC().Format(time.RFC3339),
	}
	for _, spec := range activitySpecs {
		schema, err := json.Marshal(spec.schema)
		if err != nil {
			return nil, err
		}
		wcfg := config.GetWorkerConfig(cfg, spec.configKey)

		codes := make([]string, len(spec.errorCodes))
		for i, code := range spec.errorCodes {
			codes[i] = string(code)
		}

		reg.Activities = append(reg.Activities, registry.Activity{
			ID:          spec.id,
			DisplayName: spec.displayName,
			Description: spec.description,
			Category:    spec.category,
			TaskType:    spec.taskType,
			Enabled:     wcfg.Enabled,
			InputSchema: schema,
			ErrorCodes:  codes,
			Timeout:     config.GetDuration(wcfg.Timeout).String(),
			Retries:     wcfg.MaxRetries,
		})
	}
	return reg, reg.Validate()
}
