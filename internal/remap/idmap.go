// Package remap tracks original-to-new identifier mappings during a
// restore run. The map lives for exactly one run and is discarded with
// it.
package remap

import (
	"sync"

	"github.com/compozy/repovault/internal/domain"
)

// Map records, per entity type, which new identifier an original
// identifier was assigned during restore. The orchestrator runs
// entities sequentially; the mutex exists so a future layer-parallel
// scheduler can share the map safely.
type Map struct {
	mu      sync.RWMutex
	entries map[domain.EntityName]map[int]int
}

// NewMap returns an empty identifier map.
func NewMap() *Map {
	return &Map{entries: make(map[domain.EntityName]map[int]int)}
}

// Put registers the mapping original -> assigned for the given entity.
func (m *Map) Put(entity domain.EntityName, original, assigned int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	byEntity, ok := m.entries[entity]
	if !ok {
		byEntity = make(map[int]int)
		m.entries[entity] = byEntity
	}
	byEntity[original] = assigned
}

// Resolve returns the assigned identifier for an original one.
func (m *Map) Resolve(entity domain.EntityName, original int) (int, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	assigned, ok := m.entries[entity][original]
	return assigned, ok
}

// Len returns the number of mappings recorded for an entity.
func (m *Map) Len(entity domain.EntityName) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries[entity])
}
