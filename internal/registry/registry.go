// Package registry holds the entity descriptors, validates their
// dependency graph and turns it into a deterministic execution plan.
package registry

import (
	"sort"

	"github.com/compozy/repovault/internal/domain"
	"github.com/compozy/repovault/internal/strategy"
)

// Registry is the set of registered entity descriptors together with
// the per-run enablement decided by configuration. One instance is
// constructed at startup and injected into the orchestrator; there is
// no package-level singleton.
type Registry struct {
	descriptors map[domain.EntityName]strategy.Descriptor
	enabled     map[domain.EntityName]bool
	order       []domain.EntityName
}

// New returns an empty registry.
func New() *Registry {
	return &Registry{
		descriptors: make(map[domain.EntityName]strategy.Descriptor),
		enabled:     make(map[domain.EntityName]bool),
	}
}

// Register adds a descriptor. Names must be unique.
func (r *Registry) Register(d strategy.Descriptor) error {
	if _, exists := r.descriptors[d.Name]; exists {
		return &domain.DuplicateEntityError{Name: d.Name}
	}
	r.descriptors[d.Name] = d
	r.enabled[d.Name] = d.DefaultEnabled
	r.order = append(r.order, d.Name)
	return nil
}

// SetEnabled overrides the default enablement of one entity.
func (r *Registry) SetEnabled(name domain.EntityName, enabled bool) {
	if _, exists := r.descriptors[name]; exists {
		r.enabled[name] = enabled
	}
}

// Enabled reports whether an entity participates in the plan.
func (r *Registry) Enabled(name domain.EntityName) bool {
	return r.enabled[name]
}

// Disabled returns the names of registered entities excluded from the
// plan, in ascending order.
func (r *Registry) Disabled() []domain.EntityName {
	var names []domain.EntityName
	for name, enabled := range r.enabled {
		if !enabled {
			names = append(names, name)
		}
	}
	sort.Slice(names, func(i, j int) bool { return names[i] < names[j] })
	return names
}

// Get returns a registered descriptor.
func (r *Registry) Get(name domain.EntityName) (strategy.Descriptor, bool) {
	d, ok := r.descriptors[name]
	return d, ok
}

// Validate checks that every declared dependency resolves to a
// registered entity, that no enabled entity depends on a disabled one,
// and that the graph is acyclic. It must be called before Plan.
func (r *Registry) Validate() error {
	for _, name := range r.order {
		d := r.descriptors[name]
		for _, dep := range d.Dependencies {
			if _, exists := r.descriptors[dep]; !exists {
				return &domain.UnknownDependencyError{Entity: name, Dependency: dep}
			}
			if r.enabled[name] && !r.enabled[dep] {
				return &domain.DependencyDisabledError{Entity: name, Dependency: dep}
			}
		}
	}
	if cycle := r.findCycle(); len(cycle) > 0 {
		return &domain.CyclicDependencyError{Cycle: cycle}
	}
	return nil
}

// Plan computes the execution order over the enabled entities using
// Kahn's algorithm. Every dependency precedes its dependents; ties
// among mutually unordered entities break by ascending name, so the
// plan is reproducible regardless of registration order.
func (r *Registry) Plan() ([]strategy.Descriptor, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}
	indegree := make(map[domain.EntityName]int)
	dependents := make(map[domain.EntityName][]domain.EntityName)
	for name, d := range r.descriptors {
		if !r.enabled[name] {
			continue
		}
		if _, ok := indegree[name]; !ok {
			indegree[name] = 0
		}
		for _, dep := range d.Dependencies {
			indegree[name]++
			dependents[dep] = append(dependents[dep], name)
		}
	}
	var ready []domain.EntityName
	for name, deg := range indegree {
		if deg == 0 {
			ready = append(ready, name)
		}
	}
	plan := make([]strategy.Descriptor, 0, len(indegree))
	for len(ready) > 0 {
		sort.Slice(ready, func(i, j int) bool { return ready[i] < ready[j] })
		next := ready[0]
		ready = ready[1:]
		plan = append(plan, r.descriptors[next])
		for _, dependent := range dependents[next] {
			indegree[dependent]--
			if indegree[dependent] == 0 {
				ready = append(ready, dependent)
			}
		}
	}
	// Validate already rejected cycles, so every enabled entity drains.
	return plan, nil
}

// findCycle runs a DFS over the full graph (enabled or not) and
// returns the entities on the first cycle found, in path order.
func (r *Registry) findCycle() []domain.EntityName {
	const (
		unvisited = 0
		visiting  = 1
		done      = 2
	)
	state := make(map[domain.EntityName]int, len(r.descriptors))
	var stack []domain.EntityName
	var cycle []domain.EntityName

	var visit func(name domain.EntityName) bool
	visit = func(name domain.EntityName) bool {
		state[name] = visiting
		stack = append(stack, name)
		for _, dep := range r.descriptors[name].Dependencies {
			switch state[dep] {
			case visiting:
				// Slice the stack from the first occurrence of dep to
				// name the full cycle.
				for i, on := range stack {
					if on == dep {
						cycle = append(cycle, stack[i:]...)
						break
					}
				}
				return true
			case unvisited:
				if visit(dep) {
					return true
				}
			}
		}
		stack = stack[:len(stack)-1]
		state[name] = done
		return false
	}

	names := make([]domain.EntityName, 0, len(r.descriptors))
	for name := range r.descriptors {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool { return names[i] < names[j] })
	for _, name := range names {
		if state[name] == unvisited && visit(name) {
			return cycle
		}
	}
	return nil
}
