package strategy

import (
	"github.com/compozy/repovault/internal/config"
	"github.com/compozy/repovault/internal/conflict"
	"github.com/compozy/repovault/internal/domain"
	"github.com/compozy/repovault/internal/remap"
	"github.com/compozy/repovault/internal/repository"
	"go.uber.org/zap"
)

// Context is the shared bundle of collaborators handed to every
// strategy constructor. It is built once per run; its sub-resources
// (identifier map, rate-limit counters) are shared across strategies
// within that run but never across runs.
//
// Most entities only need API and Store. A few need a specific extra
// collaborator; each descriptor's constructor validates its own needs
// and returns a MissingDependencyError naming the absent field, so the
// factory stays free of per-entity special cases.
type Context struct {
	API       repository.GithubRepository
	Git       repository.GitRepository
	Store     repository.SnapshotRepository
	Conflicts conflict.Policy
	IDs       *remap.Map
	Filters   map[domain.EntityName]config.Filter

	// PreserveMetadata enables attribution prefixes on restored bodies.
	PreserveMetadata bool

	// RemoteURL is the authenticated clone/push URL for the
	// git_repository entity.
	RemoteURL string

	Log *zap.Logger
}

// Filter returns the selective filter for an entity, defaulting to
// all-inclusive when none was configured.
func (c *Context) Filter(entity domain.EntityName) config.Filter {
	if f, ok := c.Filters[entity]; ok {
		return f
	}
	return config.AllFilter()
}

// Logger returns the run logger, or a no-op logger when none was set
// (tests).
func (c *Context) Logger() *zap.Logger {
	if c.Log == nil {
		return zap.NewNop()
	}
	return c.Log
}

// Require returns a MissingDependencyError when the named field check
// fails. Descriptors use it to keep their constructors terse.
func Require(entity domain.EntityName, field string, present bool) error {
	if !present {
		return &domain.MissingDependencyError{Entity: entity, Field: field}
	}
	return nil
}
