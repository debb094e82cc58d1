package registry

import (
	"testing"

	"github.com/compozy/repovault/internal/domain"
	"github.com/compozy/repovault/internal/strategy"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func descriptor(name domain.EntityName, deps ...domain.EntityName) strategy.Descriptor {
	return strategy.Descriptor{Name: name, Dependencies: deps, DefaultEnabled: true}
}

func buildRegistry(t *testing.T, descriptors ...strategy.Descriptor) *Registry {
	t.Helper()
	reg := New()
	for _, d := range descriptors {
		require.NoError(t, reg.Register(d))
	}
	return reg
}

func planNames(t *testing.T, reg *Registry) []domain.EntityName {
	t.Helper()
	plan, err := reg.Plan()
	require.NoError(t, err)
	names := make([]domain.EntityName, 0, len(plan))
	for _, d := range plan {
		names = append(names, d.Name)
	}
	return names
}

func indexOf(names []domain.EntityName, name domain.EntityName) int {
	for i, n := range names {
		if n == name {
			return i
		}
	}
	return -1
}

func TestRegistry_Register(t *testing.T) {
	t.Run("Should reject duplicate entity names", func(t *testing.T) {
		reg := New()
		require.NoError(t, reg.Register(descriptor("labels")))
		err := reg.Register(descriptor("labels"))
		require.Error(t, err)
		var dupErr *domain.DuplicateEntityError
		assert.ErrorAs(t, err, &dupErr)
	})
}

func TestRegistry_Validate(t *testing.T) {
	t.Run("Should reject a dependency on an unregistered entity", func(t *testing.T) {
		reg := buildRegistry(t, descriptor("issues", "labels"))
		err := reg.Validate()
		require.Error(t, err)
		var unknownErr *domain.UnknownDependencyError
		require.ErrorAs(t, err, &unknownErr)
		assert.Equal(t, domain.EntityName("issues"), unknownErr.Entity)
		assert.Equal(t, domain.EntityName("labels"), unknownErr.Dependency)
	})

	t.Run("Should reject an enabled entity depending on a disabled one", func(t *testing.T) {
		reg := buildRegistry(t, descriptor("labels"), descriptor("issues", "labels"))
		reg.SetEnabled("labels", false)
		err := reg.Validate()
		require.Error(t, err)
		var disabledErr *domain.DependencyDisabledError
		assert.ErrorAs(t, err, &disabledErr)
	})

	t.Run("Should allow disabling an entity together with its dependents", func(t *testing.T) {
		reg := buildRegistry(t, descriptor("labels"), descriptor("issues", "labels"))
		reg.SetEnabled("labels", false)
		reg.SetEnabled("issues", false)
		require.NoError(t, reg.Validate())
	})

	t.Run("Should detect a direct cycle", func(t *testing.T) {
		reg := buildRegistry(t, descriptor("a", "b"), descriptor("b", "a"))
		err := reg.Validate()
		require.Error(t, err)
		var cycleErr *domain.CyclicDependencyError
		require.ErrorAs(t, err, &cycleErr)
		assert.Len(t, cycleErr.Cycle, 2)
	})

	t.Run("Should detect a longer cycle and name its members", func(t *testing.T) {
		reg := buildRegistry(t,
			descriptor("a", "b"),
			descriptor("b", "c"),
			descriptor("c", "a"),
			descriptor("standalone"),
		)
		err := reg.Validate()
		require.Error(t, err)
		var cycleErr *domain.CyclicDependencyError
		require.ErrorAs(t, err, &cycleErr)
		assert.Len(t, cycleErr.Cycle, 3)
		assert.NotContains(t, cycleErr.Cycle, domain.EntityName("standalone"))
	})
}

func TestRegistry_Plan(t *testing.T) {
	t.Run("Should order every dependency before its dependents", func(t *testing.T) {
		reg := buildRegistry(t,
			descriptor("issues", "labels", "milestones"),
			descriptor("labels"),
			descriptor("milestones"),
			descriptor("issue_comments", "issues"),
			descriptor("sub_issues", "issues"),
		)
		names := planNames(t, reg)
		require.Len(t, names, 5)
		assert.Less(t, indexOf(names, "labels"), indexOf(names, "issues"))
		assert.Less(t, indexOf(names, "milestones"), indexOf(names, "issues"))
		assert.Less(t, indexOf(names, "issues"), indexOf(names, "issue_comments"))
		assert.Less(t, indexOf(names, "issues"), indexOf(names, "sub_issues"))
	})

	t.Run("Should order a linear chain exactly", func(t *testing.T) {
		reg := buildRegistry(t,
			descriptor("c", "b"),
			descriptor("a"),
			descriptor("b", "a"),
		)
		assert.Equal(t, []domain.EntityName{"a", "b", "c"}, planNames(t, reg))
	})

	t.Run("Should break ties by ascending name for a reproducible plan", func(t *testing.T) {
		reg := buildRegistry(t, descriptor("zebra"), descriptor("alpha"), descriptor("mango"))
		assert.Equal(t, []domain.EntityName{"alpha", "mango", "zebra"}, planNames(t, reg))
	})

	t.Run("Should produce the same plan regardless of registration order", func(t *testing.T) {
		first := buildRegistry(t,
			descriptor("labels"),
			descriptor("issues", "labels"),
			descriptor("milestones"),
		)
		second := buildRegistry(t,
			descriptor("milestones"),
			descriptor("issues", "labels"),
			descriptor("labels"),
		)
		assert.Equal(t, planNames(t, first), planNames(t, second))
	})

	t.Run("Should exclude disabled entities from the plan", func(t *testing.T) {
		reg := buildRegistry(t, descriptor("labels"), descriptor("releases"))
		reg.SetEnabled("releases", false)
		assert.Equal(t, []domain.EntityName{"labels"}, planNames(t, reg))
		assert.Equal(t, []domain.EntityName{"releases"}, reg.Disabled())
	})

	t.Run("Should fail when the graph has a cycle", func(t *testing.T) {
		reg := buildRegistry(t, descriptor("a", "b"), descriptor("b", "a"))
		_, err := reg.Plan()
		require.Error(t, err)
	})
}
