package workflowrepo

import (
	"context"

	"github.com/fxavier/mozdelivery-api-sub003/internal/core/ports"

	"gorm.io/gorm"
)

// GormWorkflowRulesRepository implements ports.WorkflowRulesRepository.
type GormWorkflowRulesRepository struct {
	db *gorm.DB
}

func NewGormWorkflowRulesRepository(db *gorm.DB) *GormWorkflowRulesRepository {
	return &GormWorkflowRulesRepository{db: db}
}

// ListMerchantWorkflows returns every configured merchant. A single
// malformed row fails the whole read so a bad override is never half
// applied.
func (r *GormWorkflowRulesRepository) ListMerchantWorkflows(ctx context.Context) ([]ports.MerchantWorkflow, error) {
	var dtos []MerchantWorkflowDTO
	if err := r.db.WithContext(ctx).Order("merchant_id").Find(&dtos).Error; err != nil {
		return nil, err
	}

	workflows := make([]ports.MerchantWorkflow, 0, len(dtos))
	for _, dto := range dtos {
		w, err := toDomain(dto)
		if err != nil {
			return nil, err
		}
		workflows = append(workflows, w)
	}
	return workflows, nil
}
