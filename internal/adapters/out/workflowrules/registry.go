// Package workflowrules keeps the workflow rules of every configured
// merchant in memory and answers rule lookups for the order state machine.
package workflowrules

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/fxavier/mozdelivery-api-sub003/internal/core/domain/model/kernel"
	"github.com/fxavier/mozdelivery-api-sub003/internal/core/domain/model/order"
	"github.com/fxavier/mozdelivery-api-sub003/internal/core/domain/model/workflow"
	"github.com/fxavier/mozdelivery-api-sub003/internal/core/ports"
	"github.com/fxavier/mozdelivery-api-sub003/internal/pkg/errs"
	"github.com/fxavier/mozdelivery-api-sub003/internal/pkg/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Registry implements services.WorkflowRuleProvider. Merchants without a
// stored workflow get the rules of workflow.DefaultVertical.
//
// Example:
//
//	registry, _ := workflowrules.NewRegistry(workflowrepo.NewGormWorkflowRulesRepository(db), log)
//	if err := registry.Reload(ctx); err != nil {
//	    return err
//	}
//	machine, _ := services.NewOrderStateMachine(registry, time.Now)
type Registry struct {
	repo     ports.WorkflowRulesRepository
	logger   *zap.Logger
	fallback workflow.Rules

	mu        sync.RWMutex
	merchants map[uuid.UUID]workflow.Rules
}

func NewRegistry(repo ports.WorkflowRulesRepository, log *zap.Logger) (*Registry, error) {
	if repo == nil {
		return nil, errs.NewValueIsRequiredError("repo")
	}
	return &Registry{
		repo:      repo,
		logger:    logger.Component(log, "workflow_rules"),
		fallback:  workflow.DefaultForVertical(workflow.DefaultVertical),
		merchants: make(map[uuid.UUID]workflow.Rules),
	}, nil
}

// WorkflowRules never fails; unknown merchants get the fallback rules.
func (r *Registry) WorkflowRules(merchantID kernel.UUID) workflow.Rules {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if rules, ok := r.merchants[merchantID.Bytes()]; ok {
		return rules
	}
	return r.fallback
}

// Reload replaces the merchant rules with the stored configuration. When
// any merchant's rules are inconsistent nothing is replaced.
func (r *Registry) Reload(ctx context.Context) error {
	stored, err := r.repo.ListMerchantWorkflows(ctx)
	if err != nil {
		return fmt.Errorf("list merchant workflows: %w", err)
	}

	merchants := make(map[uuid.UUID]workflow.Rules, len(stored))
	for _, w := range stored {
		rules, buildErr := workflow.ForMerchant(w.MerchantID, w.Vertical, w.Override)
		if buildErr != nil {
			return fmt.Errorf("workflow of merchant %s: %w", w.MerchantID, buildErr)
		}
		merchants[w.MerchantID.Bytes()] = rules
	}

	r.mu.Lock()
	r.merchants = merchants
	r.mu.Unlock()

	r.logger.Info("workflow rules reloaded", zap.Int("merchants", len(merchants)))
	return nil
}

// Register sets the rules of one merchant until the next Reload.
func (r *Registry) Register(merchantID kernel.UUID, vertical workflow.Vertical, override workflow.Override) error {
	rules, err := workflow.ForMerchant(merchantID, vertical, override)
	if err != nil {
		return err
	}

	r.mu.Lock()
	r.merchants[merchantID.Bytes()] = rules
	r.mu.Unlock()
	return nil
}

// ShortestTimeouts covers the fallback rules and every registered merchant.
func (r *Registry) ShortestTimeouts() map[order.Status]time.Duration {
	r.mu.RLock()
	defer r.mu.RUnlock()

	sets := make([]workflow.Rules, 0, len(r.merchants)+1)
	sets = append(sets, r.fallback)
	for _, rules := range r.merchants {
		sets = append(sets, rules)
	}
	return workflow.ShortestTimeouts(sets...)
}

// Len is the number of merchants with their own rules.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.merchants)
}
