package repository

import "context"

// GitRepository defines the interface for Git mirror operations.

type GitRepository interface {
	// MirrorClone clones the remote at url into path as a bare mirror,
	// or fetches into it when the mirror already exists.
	MirrorClone(ctx context.Context, path, url string) error
	// PushMirror pushes every ref of the mirror at path to url.
	PushMirror(ctx context.Context, path, url string) error
	// MirrorExists reports whether path holds a usable mirror.
	MirrorExists(path string) bool
}
