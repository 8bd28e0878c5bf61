// Package workflowrepo reads merchant workflow configuration from the
// merchant_workflows table.
package workflowrepo

import (
	"fmt"
	"time"

	"github.com/fxavier/mozdelivery-api-sub003/internal/core/domain/model/kernel"
	"github.com/fxavier/mozdelivery-api-sub003/internal/core/domain/model/order"
	"github.com/fxavier/mozdelivery-api-sub003/internal/core/domain/model/workflow"
	"github.com/fxavier/mozdelivery-api-sub003/internal/core/ports"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type MerchantWorkflowDTO struct {
	MerchantID uuid.UUID                       `gorm:"type:uuid;primaryKey"`
	Vertical   string                          `gorm:"size:32"`
	Override   datatypes.JSONType[OverrideDTO] `gorm:"type:jsonb"`
	UpdatedAt  time.Time
}

func (MerchantWorkflowDTO) TableName() string {
	return "merchant_workflows"
}

// OverrideDTO is the JSON form of workflow.Override. Statuses, payment
// methods and actions use their string names; limits are Go durations
// such as "20m".
//
//	{"cancellableFrom": ["PENDING"], "autoAccept": true,
//	 "timeouts": {"PREPARING": {"limit": "40m", "action": "CANCEL", "reason": "SYSTEM_ERROR"}}}
type OverrideDTO struct {
	CancellableFrom              []string              `json:"cancellableFrom,omitempty"`
	RefundableFrom               []string              `json:"refundableFrom,omitempty"`
	RefundMethods                []string              `json:"refundMethods,omitempty"`
	AutoAccept                   *bool                 `json:"autoAccept,omitempty"`
	ManualStatuses               []string              `json:"manualStatuses,omitempty"`
	Timeouts                     map[string]TimeoutDTO `json:"timeouts,omitempty"`
	RequiresDeliveryConfirmation *bool                 `json:"requiresDeliveryConfirmation,omitempty"`
}

type TimeoutDTO struct {
	Limit   string `json:"limit"`
	Action  string `json:"action"`
	Reason  string `json:"reason,omitempty"`
	Details string `json:"details,omitempty"`
}

func toDomain(dto MerchantWorkflowDTO) (ports.MerchantWorkflow, error) {
	merchantID, err := kernel.UUIDFrom(dto.MerchantID)
	if err != nil {
		return ports.MerchantWorkflow{}, err
	}
	vertical, err := workflow.ParseVertical(dto.Vertical)
	if err != nil {
		return ports.MerchantWorkflow{}, err
	}
	override, err := overrideToDomain(dto.Override.Data())
	if err != nil {
		return ports.MerchantWorkflow{}, fmt.Errorf("merchant %s override: %w", merchantID, err)
	}

	return ports.MerchantWorkflow{MerchantID: merchantID, Vertical: vertical, Override: override}, nil
}

func overrideToDomain(dto OverrideDTO) (workflow.Override, error) {
	var o workflow.Override
	var err error

	if o.CancellableFrom, err = parseStatuses(dto.CancellableFrom); err != nil {
		return workflow.Override{}, err
	}
	if o.RefundableFrom, err = parseStatuses(dto.RefundableFrom); err != nil {
		return workflow.Override{}, err
	}
	if o.ManualStatuses, err = parseStatuses(dto.ManualStatuses); err != nil {
		return workflow.Override{}, err
	}
	if dto.RefundMethods != nil {
		o.RefundMethods = make([]order.PaymentMethod, 0, len(dto.RefundMethods))
		for _, name := range dto.RefundMethods {
			m, parseErr := order.ParsePaymentMethod(name)
			if parseErr != nil {
				return workflow.Override{}, parseErr
			}
			o.RefundMethods = append(o.RefundMethods, m)
		}
	}
	o.AutoAccept = dto.AutoAccept
	o.RequiresDeliveryConfirmation = dto.RequiresDeliveryConfirmation

	if len(dto.Timeouts) > 0 {
		o.Timeouts = make(map[order.Status]workflow.TimeoutRule, len(dto.Timeouts))
		for name, t := range dto.Timeouts {
			status, parseErr := order.ParseStatus(name)
			if parseErr != nil {
				return workflow.Override{}, parseErr
			}
			rule, parseErr := timeoutToDomain(t)
			if parseErr != nil {
				return workflow.Override{}, fmt.Errorf("timeout for %s: %w", name, parseErr)
			}
			o.Timeouts[status] = rule
		}
	}

	return o, nil
}

// parseStatuses keeps nil as nil so an absent field inherits the default.
func parseStatuses(names []string) ([]order.Status, error) {
	if names == nil {
		return nil, nil
	}
	statuses := make([]order.Status, 0, len(names))
	for _, name := range names {
		s, err := order.ParseStatus(name)
		if err != nil {
			return nil, err
		}
		statuses = append(statuses, s)
	}
	return statuses, nil
}

func timeoutToDomain(dto TimeoutDTO) (workflow.TimeoutRule, error) {
	limit, err := time.ParseDuration(dto.Limit)
	if err != nil {
		return workflow.TimeoutRule{}, err
	}
	action, err := workflow.ParseTimeoutAction(dto.Action)
	if err != nil {
		return workflow.TimeoutRule{}, err
	}

	rule := workflow.TimeoutRule{Limit: limit, Action: action, Details: dto.Details}
	if dto.Reason != "" {
		if rule.Reason, err = order.ParseCancellationReason(dto.Reason); err != nil {
			return workflow.TimeoutRule{}, err
		}
	}
	return rule, nil
}
