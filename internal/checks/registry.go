package checks

import "fmt"

// Registry is the immutable table of known checks, built once at startup and
// injected into the orchestrator. Iteration order is declaration order, which
// is also the order outcomes appear in target reports.
type Registry struct {
	order []Check
	byID  map[string]Check
}

func NewRegistry(cs ...Check) (*Registry, error) {
	r := &Registry{
		order: make([]Check, 0, len(cs)),
		byID:  make(map[string]Check, len(cs)),
	}
	for _, c := range cs {
		id := c.ID()
		if id == "" {
			return nil, fmt.Errorf("registry: check with empty id")
		}
		if _, dup := r.byID[id]; dup {
			return nil, fmt.Errorf("registry: duplicate check id %q", id)
		}
		if c.Weight() <= 0 {
			return nil, fmt.Errorf("registry: check %q has non-positive weight %v", id, c.Weight())
		}
		r.byID[id] = c
		r.order = append(r.order, c)
	}
	return r, nil
}

func (r *Registry) Get(id string) (Check, bool) {
	c, ok := r.byID[id]
	return c, ok
}

// All returns the checks in declaration order. The slice is a copy.
func (r *Registry) All() []Check {
	out := make([]Check, len(r.order))
	copy(out, r.order)
	return out
}

func (r *Registry) IDs() []string {
	ids := make([]string, len(r.order))
	for i, c := range r.order {
		ids[i] = c.ID()
	}
	return ids
}

func (r *Registry) Len() int { return len(r.order) }
