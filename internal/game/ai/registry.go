package ai

import (
	"errors"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/cory-johannsen/arena/internal/game/action"
)

// ErrUnknownDomain is returned when a provider is requested for a behaviour
// domain that was never registered.
var ErrUnknownDomain = errors.New("ai: unknown behaviour domain")

// Registry holds one Planner per behaviour domain, checked against the
// action catalogue it will draw from.
//
// Invariant: each domain ID is registered at most once. Registry is filled at
// startup and read-only afterwards.
type Registry struct {
	actions  *action.Registry
	planners map[string]*Planner
}

// NewRegistry returns an empty Registry validating operators against actions.
// A nil actions skips that validation.
func NewRegistry(actions *action.Registry) *Registry {
	return &Registry{actions: actions, planners: make(map[string]*Planner)}
}

// Register validates domain and stores a Planner for it. Preconditions are
// evaluated in the script scope named after the domain ID.
//
// Precondition: domain and caller must not be nil.
// Postcondition: returns error on domain ID collision or on an operator naming
// an unregistered action.
func (r *Registry) Register(domain *Domain, caller ScriptCaller) error {
	if _, exists := r.planners[domain.ID]; exists {
		return fmt.Errorf("ai.Registry: domain %q already registered", domain.ID)
	}
	if r.actions != nil {
		if err := domain.ValidateActions(r.actions); err != nil {
			return err
		}
	}
	r.planners[domain.ID] = NewPlanner(domain, caller, domain.ID)
	return nil
}

// PlannerFor returns the Planner for domainID, or false if not registered.
func (r *Registry) PlannerFor(domainID string) (*Planner, bool) {
	p, ok := r.planners[domainID]
	return p, ok
}

// Provider returns a fight provider planning with domainID. An empty
// domainID yields the planner-less fallback provider.
//
// Postcondition: wraps ErrUnknownDomain when domainID is not registered.
func (r *Registry) Provider(domainID string, logger *zap.Logger) (*Provider, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if domainID == "" {
		return NewProvider(nil, logger), nil
	}
	p, ok := r.planners[domainID]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownDomain, domainID)
	}
	return NewProvider(p, logger.With(zap.String("ai_domain", domainID))), nil
}

// IDs returns the registered domain IDs in sorted order.
func (r *Registry) IDs() []string {
	ids := make([]string, 0, len(r.planners))
	for id := range r.planners {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Len returns the number of registered domains.
func (r *Registry) Len() int { return len(r.planners) }
