// Package entity defines the descriptor and the save/restore pipelines
// for every data category the tool handles. Adding an entity means
// implementing its descriptor here and appending it to the catalog.
package entity

import (
	"github.com/compozy/repovault/internal/strategy"
)

// Catalog returns every entity descriptor, in no particular order. The
// registry derives the execution order from the declared dependencies.
func Catalog() []strategy.Descriptor {
	return []strategy.Descriptor{
		LabelsDescriptor(),
		MilestonesDescriptor(),
		GitRepositoryDescriptor(),
		IssuesDescriptor(),
		IssueCommentsDescriptor(),
		SubIssuesDescriptor(),
		PullRequestsDescriptor(),
		ReviewsDescriptor(),
		ReleasesDescriptor(),
	}
}
