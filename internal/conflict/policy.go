// Package conflict implements the restore-time policies for handling
// data that already exists in the target repository.
package conflict

import (
	"github.com/compozy/repovault/internal/domain"
)

// Policy selects how restore treats pre-existing target items for
// unique-keyed entities.
type Policy string

const (
	// FailIfExisting aborts before writing anything if the target
	// collection is non-empty at all.
	FailIfExisting Policy = "fail-if-existing"
	// FailIfConflict aborts only when an item with a colliding unique
	// key already exists; non-colliding items are still created.
	FailIfConflict Policy = "fail-if-conflict"
	// Overwrite updates colliding items in place and creates the rest.
	Overwrite Policy = "overwrite"
	// Skip leaves colliding items untouched and creates the rest.
	Skip Policy = "skip"
	// DeleteAll deletes every existing item first, then creates the
	// full saved set.
	DeleteAll Policy = "delete-all"
)

// ParsePolicy validates a configuration-supplied policy name.
func ParsePolicy(raw string) (Policy, error) {
	switch Policy(raw) {
	case FailIfExisting, FailIfConflict, Overwrite, Skip, DeleteAll:
		return Policy(raw), nil
	default:
		return "", domain.NewConfigurationError(
			"unknown conflict strategy %q (want fail-if-existing, fail-if-conflict, overwrite, skip or delete-all)", raw)
	}
}

// Action is the per-item decision the policy produced.
type Action int

const (
	ActionCreate Action = iota
	ActionUpdate
	ActionSkip
)

// Resolution is the policy's full plan for one entity: which existing
// keys to delete up front, and what to do with each incoming key.
type Resolution struct {
	DeleteFirst []string
	PerItem     map[string]Action
}

// Resolve evaluates the policy against the set of existing unique keys
// and the incoming saved keys. The fail-if variants return a
// ConflictError before any decision is recorded, so the caller writes
// nothing at all.
func Resolve(policy Policy, entity domain.EntityName, existing, incoming []string) (*Resolution, error) {
	existingSet := make(map[string]struct{}, len(existing))
	for _, key := range existing {
		existingSet[key] = struct{}{}
	}
	if policy == FailIfExisting && len(existing) > 0 {
		return nil, &domain.ConflictError{Entity: entity}
	}
	res := &Resolution{PerItem: make(map[string]Action, len(incoming))}
	if policy == DeleteAll {
		res.DeleteFirst = append(res.DeleteFirst, existing...)
		for _, key := range incoming {
			res.PerItem[key] = ActionCreate
		}
		return res, nil
	}
	for _, key := range incoming {
		_, collides := existingSet[key]
		if !collides {
			res.PerItem[key] = ActionCreate
			continue
		}
		switch policy {
		case FailIfConflict:
			return nil, &domain.ConflictError{Entity: entity, Key: key}
		case Overwrite:
			res.PerItem[key] = ActionUpdate
		case Skip:
			res.PerItem[key] = ActionSkip
		default:
			// FailIfExisting with an empty target behaves like create-all.
			res.PerItem[key] = ActionCreate
		}
	}
	return res, nil
}
