package strategy

import (
	"github.com/compozy/repovault/internal/domain"
)

// Descriptor declares one entity: its name, the entities it depends
// on, and the constructors for its save and restore pipelines. Either
// constructor may be nil for a save-only or restore-only entity.
// Descriptors are assembled once at program initialization and are
// immutable afterward; adding an entity means writing a descriptor and
// appending it to the catalog.
type Descriptor struct {
	Name           domain.EntityName
	Dependencies   []domain.EntityName
	DefaultEnabled bool
	NewSave        func(*Context) (Strategy, error)
	NewRestore     func(*Context) (Strategy, error)
}

// Create instantiates the strategy for a descriptor in the given mode.
// It does no business logic itself: the descriptor's own constructor
// validates that the context carries what the entity needs. A nil
// strategy with nil error means the entity does not participate in
// this mode.
func Create(d Descriptor, ctx *Context, mode domain.Mode) (Strategy, error) {
	var construct func(*Context) (Strategy, error)
	switch mode {
	case domain.ModeSave:
		construct = d.NewSave
	case domain.ModeRestore:
		construct = d.NewRestore
	}
	if construct == nil {
		return nil, nil
	}
	return construct(ctx)
}
