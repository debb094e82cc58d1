package conflict

import (
	"testing"

	"github.com/compozy/repovault/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePolicy(t *testing.T) {
	t.Run("Should accept every known policy", func(t *testing.T) {
		for _, raw := range []string{
			"fail-if-existing", "fail-if-conflict", "overwrite", "skip", "delete-all",
		} {
			policy, err := ParsePolicy(raw)
			require.NoError(t, err)
			assert.Equal(t, Policy(raw), policy)
		}
	})

	t.Run("Should reject unknown names", func(t *testing.T) {
		_, err := ParsePolicy("merge")
		require.Error(t, err)
		var cfgErr *domain.ConfigurationError
		assert.ErrorAs(t, err, &cfgErr)
	})

	t.Run("Should reject the empty string", func(t *testing.T) {
		_, err := ParsePolicy("")
		require.Error(t, err)
	})
}

func TestResolve(t *testing.T) {
	existing := []string{"bug", "enhancement"}
	incoming := []string{"bug", "feature"}

	t.Run("Should fail on any existing data under fail-if-existing", func(t *testing.T) {
		_, err := Resolve(FailIfExisting, domain.EntityLabels, existing, incoming)
		require.Error(t, err)
		var conflictErr *domain.ConflictError
		require.ErrorAs(t, err, &conflictErr)
		assert.Empty(t, conflictErr.Key)
	})

	t.Run("Should create everything under fail-if-existing with an empty target", func(t *testing.T) {
		res, err := Resolve(FailIfExisting, domain.EntityLabels, nil, incoming)
		require.NoError(t, err)
		assert.Equal(t, ActionCreate, res.PerItem["bug"])
		assert.Equal(t, ActionCreate, res.PerItem["feature"])
		assert.Empty(t, res.DeleteFirst)
	})

	t.Run("Should fail only on a colliding key under fail-if-conflict", func(t *testing.T) {
		_, err := Resolve(FailIfConflict, domain.EntityLabels, existing, incoming)
		require.Error(t, err)
		var conflictErr *domain.ConflictError
		require.ErrorAs(t, err, &conflictErr)
		assert.Equal(t, "bug", conflictErr.Key)
	})

	t.Run("Should pass under fail-if-conflict when keys are disjoint", func(t *testing.T) {
		res, err := Resolve(FailIfConflict, domain.EntityLabels, []string{"wontfix"}, incoming)
		require.NoError(t, err)
		assert.Equal(t, ActionCreate, res.PerItem["bug"])
		assert.Equal(t, ActionCreate, res.PerItem["feature"])
	})

	t.Run("Should update collisions and create the rest under overwrite", func(t *testing.T) {
		res, err := Resolve(Overwrite, domain.EntityLabels, existing, incoming)
		require.NoError(t, err)
		assert.Equal(t, ActionUpdate, res.PerItem["bug"])
		assert.Equal(t, ActionCreate, res.PerItem["feature"])
		assert.Empty(t, res.DeleteFirst)
	})

	t.Run("Should leave collisions untouched under skip", func(t *testing.T) {
		res, err := Resolve(Skip, domain.EntityLabels, existing, incoming)
		require.NoError(t, err)
		assert.Equal(t, ActionSkip, res.PerItem["bug"])
		assert.Equal(t, ActionCreate, res.PerItem["feature"])
	})

	t.Run("Should delete every existing item first under delete-all", func(t *testing.T) {
		res, err := Resolve(DeleteAll, domain.EntityLabels, existing, incoming)
		require.NoError(t, err)
		assert.ElementsMatch(t, existing, res.DeleteFirst)
		assert.Equal(t, ActionCreate, res.PerItem["bug"])
		assert.Equal(t, ActionCreate, res.PerItem["feature"])
	})
}
