package repository

import (
	"context"
	"errors"
	"fmt"
	neturl "net/url"
	"strings"

	"github.com/go-git/go-git/v5"
	gitconfig "github.com/go-git/go-git/v5/config"
)

// gitRepository is the implementation of the GitRepository interface.

type gitRepository struct{}

// NewGitRepository creates a new GitRepository.
func NewGitRepository() GitRepository {
	return &gitRepository{}
}

// MirrorClone clones url into path as a bare mirror. When the mirror
// already exists it fetches instead, so repeated saves stay cheap.
func (r *gitRepository) MirrorClone(ctx context.Context, path, url string) error {
	if r.MirrorExists(path) {
		return r.fetchMirror(ctx, path)
	}
	_, err := git.PlainCloneContext(ctx, path, true, &git.CloneOptions{
		URL:    url,
		Mirror: true,
	})
	if err != nil {
		return fmt.Errorf("failed to mirror clone: %w", scrubRemoteURL(err, url))
	}
	return nil
}

func (r *gitRepository) fetchMirror(ctx context.Context, path string) error {
	repo, err := git.PlainOpen(path)
	if err != nil {
		return fmt.Errorf("failed to open mirror: %w", err)
	}
	err = repo.FetchContext(ctx, &git.FetchOptions{
		RemoteName: "origin",
		RefSpecs:   []gitconfig.RefSpec{"+refs/*:refs/*"},
		Prune:      true,
	})
	if err != nil && !errors.Is(err, git.NoErrAlreadyUpToDate) {
		return fmt.Errorf("failed to fetch mirror: %w", err)
	}
	return nil
}

// PushMirror pushes every ref of the mirror at path to url.
func (r *gitRepository) PushMirror(ctx context.Context, path, url string) error {
	repo, err := git.PlainOpen(path)
	if err != nil {
		return fmt.Errorf("failed to open mirror: %w", err)
	}
	err = repo.PushContext(ctx, &git.PushOptions{
		RemoteURL: url,
		RefSpecs:  []gitconfig.RefSpec{"+refs/*:refs/*"},
	})
	if err != nil && !errors.Is(err, git.NoErrAlreadyUpToDate) {
		return fmt.Errorf("failed to push mirror: %w", scrubRemoteURL(err, url))
	}
	return nil
}

// MirrorExists reports whether path already holds a repository.
func (r *gitRepository) MirrorExists(path string) bool {
	_, err := git.PlainOpen(path)
	return err == nil
}

// scrubRemoteURL replaces any occurrence of remote in err's message
// with a credential-free form. Remote URLs carry the access token in
// the userinfo, and git errors tend to quote the URL verbatim.
func scrubRemoteURL(err error, remote string) error {
	if err == nil {
		return nil
	}
	msg := err.Error()
	if !strings.Contains(msg, remote) {
		return err
	}
	return errors.New(strings.ReplaceAll(msg, remote, redactURL(remote)))
}

func redactURL(raw string) string {
	u, err := neturl.Parse(raw)
	if err != nil {
		return raw
	}
	return u.Redacted()
}
