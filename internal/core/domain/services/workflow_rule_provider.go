package services

import (
	"time"

	"github.com/fxavier/mozdelivery-api-sub003/internal/core/domain/model/kernel"
	"github.com/fxavier/mozdelivery-api-sub003/internal/core/domain/model/order"
	"github.com/fxavier/mozdelivery-api-sub003/internal/core/domain/model/workflow"
)

// WorkflowRuleProvider resolves the workflow rules of a merchant. It must
// always return valid rules, falling back to vertical defaults when the
// merchant has no override.
type WorkflowRuleProvider interface {
	WorkflowRules(merchantID kernel.UUID) workflow.Rules
}

// WorkflowRuleProviderFunc adapts a function to WorkflowRuleProvider.
type WorkflowRuleProviderFunc func(merchantID kernel.UUID) workflow.Rules

func (f WorkflowRuleProviderFunc) WorkflowRules(merchantID kernel.UUID) workflow.Rules {
	return f(merchantID)
}

// TimeoutCatalog is implemented by providers that know every rule set they
// can answer with.
type TimeoutCatalog interface {
	// ShortestTimeouts maps each status limited in any rule set to the
	// shortest limit configured for it.
	ShortestTimeouts() map[order.Status]time.Duration
}

type staticRules struct {
	rules workflow.Rules
}

// StaticRules returns a provider that answers rules for every merchant.
func StaticRules(rules workflow.Rules) WorkflowRuleProvider {
	return staticRules{rules: rules}
}

func (s staticRules) WorkflowRules(kernel.UUID) workflow.Rules {
	return s.rules
}

func (s staticRules) ShortestTimeouts() map[order.Status]time.Duration {
	return workflow.ShortestTimeouts(s.rules)
}
