package ports

import (
	"context"

	"github.com/fxavier/mozdelivery-api-sub003/internal/core/domain/model/kernel"
	"github.com/fxavier/mozdelivery-api-sub003/internal/core/domain/model/workflow"
)

// MerchantWorkflow is the stored workflow configuration of one merchant.
type MerchantWorkflow struct {
	MerchantID kernel.UUID
	Vertical   workflow.Vertical
	Override   workflow.Override
}

// WorkflowRulesRepository reads merchant workflow configuration.
type WorkflowRulesRepository interface {
	ListMerchantWorkflows(ctx context.Context) ([]MerchantWorkflow, error)
}
