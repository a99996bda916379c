// Package clouds provides the service calculator registry.
// Services are table entries: adding one registers a calculator, not a new branch.
package clouds

import (
	"fmt"
	"sort"
	"sync"

	"archcost/core/types"
)

// Registry maps service ids to calculators
type Registry struct {
	mu          sync.RWMutex
	calculators map[types.ServiceID]Calculator
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{
		calculators: make(map[types.ServiceID]Calculator),
	}
}

// Register adds a calculator to the registry
func (r *Registry) Register(calc Calculator) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	id := calc.ServiceID()
	if id == "" {
		return fmt.Errorf("calculator has empty service id")
	}
	if _, exists := r.calculators[id]; exists {
		return fmt.Errorf("calculator already registered: %s", id)
	}

	r.calculators[id] = calc
	return nil
}

// MustRegister registers calculators and panics on a duplicate
func (r *Registry) MustRegister(calcs ...Calculator) {
	for _, c := range calcs {
		if err := r.Register(c); err != nil {
			panic(err)
		}
	}
}

// Get returns the calculator for a service
func (r *Registry) Get(id types.ServiceID) (Calculator, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	calc, ok := r.calculators[id]
	return calc, ok
}

// Services returns all registered service ids, sorted
func (r *Registry) Services() []types.ServiceID {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]types.ServiceID, 0, len(r.calculators))
	for id := range r.calculators {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Len returns the number of registered calculators
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.calculators)
}
