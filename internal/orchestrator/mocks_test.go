package orchestrator

import (
	"context"

	"github.com/compozy/repovault/internal/domain"
	"github.com/stretchr/testify/mock"
)

// Mock for repository.SnapshotRepository
type mockSnapshotRepository struct {
	mock.Mock
}

func (m *mockSnapshotRepository) WriteEntity(ctx context.Context, entity domain.EntityName, items any) error {
	args := m.Called(ctx, entity, items)
	return args.Error(0)
}

func (m *mockSnapshotRepository) ReadEntity(ctx context.Context, entity domain.EntityName, out any) error {
	args := m.Called(ctx, entity, out)
	return args.Error(0)
}

func (m *mockSnapshotRepository) EntityExists(entity domain.EntityName) (bool, error) {
	args := m.Called(entity)
	return args.Bool(0), args.Error(1)
}

func (m *mockSnapshotRepository) WriteManifest(ctx context.Context, manifest *domain.Manifest) error {
	args := m.Called(ctx, manifest)
	return args.Error(0)
}

func (m *mockSnapshotRepository) ReadManifest(ctx context.Context) (*domain.Manifest, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Manifest), args.Error(1)
}

func (m *mockSnapshotRepository) MirrorPath() string {
	args := m.Called()
	return args.String(0)
}
