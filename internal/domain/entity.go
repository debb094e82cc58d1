package domain

// EntityName identifies one logical data category handled by the engine.
type EntityName string

const (
	EntityLabels        EntityName = "labels"
	EntityMilestones    EntityName = "milestones"
	EntityGitRepository EntityName = "git_repository"
	EntityIssues        EntityName = "issues"
	EntityIssueComments EntityName = "issue_comments"
	EntitySubIssues     EntityName = "sub_issues"
	EntityPullRequests  EntityName = "pull_requests"
	EntityReviews       EntityName = "reviews"
	EntityReleases      EntityName = "releases"
)

// AllEntities lists every known entity name in no particular order.
// The execution order is always derived from the registry, never from
// this slice.
func AllEntities() []EntityName {
	return []EntityName{
		EntityLabels,
		EntityMilestones,
		EntityGitRepository,
		EntityIssues,
		EntityIssueComments,
		EntitySubIssues,
		EntityPullRequests,
		EntityReviews,
		EntityReleases,
	}
}

// Mode selects the direction of a run.
type Mode string

const (
	ModeSave    Mode = "save"
	ModeRestore Mode = "restore"
)
