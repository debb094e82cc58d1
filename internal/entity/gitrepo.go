package entity

import (
	"context"

	"github.com/compozy/repovault/internal/domain"
	"github.com/compozy/repovault/internal/strategy"
)

// GitRepositoryDescriptor declares the git entity: a bare mirror of the
// repository saved next to the metadata snapshots. It is the only
// entity that needs the git client.
func GitRepositoryDescriptor() strategy.Descriptor {
	return strategy.Descriptor{
		Name:           domain.EntityGitRepository,
		DefaultEnabled: true,
		NewSave:        newGitRepositorySave,
		NewRestore:     newGitRepositoryRestore,
	}
}

// mirrorOp is the single pseudo-item flowing through the git pipeline.
type mirrorOp struct {
	path string
	url  string
}

// git_repository save requires gitClient.
func newGitRepositorySave(sctx *strategy.Context) (strategy.Strategy, error) {
	if err := strategy.Require(domain.EntityGitRepository, "gitClient", sctx.Git != nil); err != nil {
		return nil, err
	}
	if err := strategy.Require(domain.EntityGitRepository, "storageService", sctx.Store != nil); err != nil {
		return nil, err
	}
	if err := strategy.Require(domain.EntityGitRepository, "remoteURL", sctx.RemoteURL != ""); err != nil {
		return nil, err
	}
	return &strategy.Pipeline[mirrorOp, mirrorOp]{
		Entity: domain.EntityGitRepository,
		Read: func(_ context.Context) ([]mirrorOp, error) {
			return []mirrorOp{{path: sctx.Store.MirrorPath(), url: sctx.RemoteURL}}, nil
		},
		Transform: func(_ context.Context, items []mirrorOp, _ *domain.Result) ([]mirrorOp, error) {
			return items, nil
		},
		Write: func(ctx context.Context, items []mirrorOp, result *domain.Result) error {
			for _, op := range items {
				if err := sctx.Git.MirrorClone(ctx, op.path, op.url); err != nil {
					return err
				}
				result.Created++
			}
			return nil
		},
	}, nil
}

func newGitRepositoryRestore(sctx *strategy.Context) (strategy.Strategy, error) {
	if err := strategy.Require(domain.EntityGitRepository, "gitClient", sctx.Git != nil); err != nil {
		return nil, err
	}
	if err := strategy.Require(domain.EntityGitRepository, "storageService", sctx.Store != nil); err != nil {
		return nil, err
	}
	if err := strategy.Require(domain.EntityGitRepository, "remoteURL", sctx.RemoteURL != ""); err != nil {
		return nil, err
	}
	return &strategy.Pipeline[mirrorOp, mirrorOp]{
		Entity: domain.EntityGitRepository,
		Read: func(_ context.Context) ([]mirrorOp, error) {
			path := sctx.Store.MirrorPath()
			if !sctx.Git.MirrorExists(path) {
				return nil, domain.NewDataIntegrityError(domain.EntityGitRepository,
					"no git mirror found at %s", path)
			}
			return []mirrorOp{{path: path, url: sctx.RemoteURL}}, nil
		},
		Transform: func(_ context.Context, items []mirrorOp, _ *domain.Result) ([]mirrorOp, error) {
			return items, nil
		},
		Write: func(ctx context.Context, items []mirrorOp, result *domain.Result) error {
			for _, op := range items {
				if err := sctx.Git.PushMirror(ctx, op.path, op.url); err != nil {
					return err
				}
				result.Created++
			}
			return nil
		},
	}, nil
}
