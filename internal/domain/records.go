package domain

import "time"

// Canonical snapshot records. These are the on-disk shapes; strategies
// convert between them and the GitHub API types during transform.

// Label is a repository label.
type Label struct {
	Name        string `json:"name"`
	Color       string `json:"color"`
	Description string `json:"description,omitempty"`
}

// Milestone is a repository milestone. Number is the original milestone
// number; restore assigns a new one and records the mapping.
type Milestone struct {
	Number      int        `json:"number"`
	Title       string     `json:"title"`
	State       string     `json:"state"`
	Description string     `json:"description,omitempty"`
	DueOn       *time.Time `json:"due_on,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// Issue is a repository issue. Number is the original issue number.
type Issue struct {
	Number    int        `json:"number"`
	Title     string     `json:"title"`
	Body      string     `json:"body,omitempty"`
	State     string     `json:"state"`
	Author    string     `json:"author"`
	Labels    []string   `json:"labels,omitempty"`
	Assignees []string   `json:"assignees,omitempty"`
	Milestone int        `json:"milestone,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	ClosedAt  *time.Time `json:"closed_at,omitempty"`
}

// Comment is an issue or pull request comment. ParentNumber is the
// original issue/PR number the comment belongs to.
type Comment struct {
	ID           int64     `json:"id"`
	ParentNumber int       `json:"parent_number"`
	Body         string    `json:"body"`
	Author       string    `json:"author"`
	CreatedAt    time.Time `json:"created_at"`
}

// SubIssueLink records a parent-child relationship between two issues,
// both identified by their original numbers.
type SubIssueLink struct {
	ParentNumber int `json:"parent_number"`
	ChildNumber  int `json:"child_number"`
}

// PullRequest is a pull request. Head and Base are branch names; restore
// can only recreate the PR when both still exist in the target.
type PullRequest struct {
	Number    int        `json:"number"`
	Title     string     `json:"title"`
	Body      string     `json:"body,omitempty"`
	State     string     `json:"state"`
	Author    string     `json:"author"`
	Head      string     `json:"head"`
	Base      string     `json:"base"`
	Labels    []string   `json:"labels,omitempty"`
	Milestone int        `json:"milestone,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	MergedAt  *time.Time `json:"merged_at,omitempty"`
}

// Review is a pull request review. PullNumber is the original PR number.
type Review struct {
	ID         int64     `json:"id"`
	PullNumber int       `json:"pull_number"`
	Author     string    `json:"author"`
	State      string    `json:"state"`
	Body       string    `json:"body,omitempty"`
	CreatedAt  time.Time `json:"submitted_at"`
}

// Release is a repository release keyed by its git tag.
type Release struct {
	TagName    string    `json:"tag_name"`
	Name       string    `json:"name,omitempty"`
	Body       string    `json:"body,omitempty"`
	Draft      bool      `json:"draft"`
	Prerelease bool      `json:"prerelease"`
	CreatedAt  time.Time `json:"created_at"`
}

// Manifest describes one snapshot directory.
type Manifest struct {
	SchemaVersion string       `json:"schema_version"`
	RunID         string       `json:"run_id"`
	Owner         string       `json:"owner"`
	Repo          string       `json:"repo"`
	SavedAt       time.Time    `json:"saved_at"`
	Entities      []EntityName `json:"entities"`
}
