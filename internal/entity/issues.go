package entity

import (
	"context"
	"fmt"

	"github.com/compozy/repovault/internal/domain"
	"github.com/compozy/repovault/internal/strategy"
	"github.com/google/go-github/v74/github"
)

// IssuesDescriptor declares the issues entity. It depends on labels and
// milestones: an issue cannot carry a label or milestone that does not
// exist yet in the target.
func IssuesDescriptor() strategy.Descriptor {
	return strategy.Descriptor{
		Name:           domain.EntityIssues,
		Dependencies:   []domain.EntityName{domain.EntityLabels, domain.EntityMilestones},
		DefaultEnabled: true,
		NewSave:        newIssuesSave,
		NewRestore:     newIssuesRestore,
	}
}

func newIssuesSave(sctx *strategy.Context) (strategy.Strategy, error) {
	if err := strategy.Require(domain.EntityIssues, "apiClient", sctx.API != nil); err != nil {
		return nil, err
	}
	if err := strategy.Require(domain.EntityIssues, "storageService", sctx.Store != nil); err != nil {
		return nil, err
	}
	filter := sctx.Filter(domain.EntityIssues)
	return &strategy.Pipeline[*github.Issue, domain.Issue]{
		Entity: domain.EntityIssues,
		Read: func(ctx context.Context) ([]*github.Issue, error) {
			issues, err := sctx.API.ListIssues(ctx)
			if err != nil {
				return nil, err
			}
			selected := issues[:0]
			for _, issue := range issues {
				if filter.Includes(issue.GetNumber()) {
					selected = append(selected, issue)
				}
			}
			return selected, nil
		},
		Transform: func(_ context.Context, items []*github.Issue, _ *domain.Result) ([]domain.Issue, error) {
			records := make([]domain.Issue, 0, len(items))
			for _, issue := range items {
				record := domain.Issue{
					Number:    issue.GetNumber(),
					Title:     issue.GetTitle(),
					Body:      issue.GetBody(),
					State:     issue.GetState(),
					Author:    issue.GetUser().GetLogin(),
					Milestone: issue.GetMilestone().GetNumber(),
					CreatedAt: issue.GetCreatedAt().Time,
				}
				for _, label := range issue.Labels {
					record.Labels = append(record.Labels, label.GetName())
				}
				for _, assignee := range issue.Assignees {
					record.Assignees = append(record.Assignees, assignee.GetLogin())
				}
				if issue.ClosedAt != nil {
					closed := issue.GetClosedAt().Time
					record.ClosedAt = &closed
				}
				records = append(records, record)
			}
			return records, nil
		},
		Write: func(ctx context.Context, items []domain.Issue, result *domain.Result) error {
			if err := sctx.Store.WriteEntity(ctx, domain.EntityIssues, items); err != nil {
				return err
			}
			result.Created = len(items)
			return nil
		},
	}, nil
}

// issuePayload pairs the original record with its creation request.
type issuePayload struct {
	original domain.Issue
	request  *github.IssueRequest
}

func newIssuesRestore(sctx *strategy.Context) (strategy.Strategy, error) {
	if err := strategy.Require(domain.EntityIssues, "apiClient", sctx.API != nil); err != nil {
		return nil, err
	}
	if err := strategy.Require(domain.EntityIssues, "storageService", sctx.Store != nil); err != nil {
		return nil, err
	}
	if err := strategy.Require(domain.EntityIssues, "identifierMap", sctx.IDs != nil); err != nil {
		return nil, err
	}
	filter := sctx.Filter(domain.EntityIssues)
	return &strategy.Pipeline[domain.Issue, issuePayload]{
		Entity: domain.EntityIssues,
		Read: func(ctx context.Context) ([]domain.Issue, error) {
			var records []domain.Issue
			if err := sctx.Store.ReadEntity(ctx, domain.EntityIssues, &records); err != nil {
				return nil, err
			}
			selected := records[:0]
			for _, record := range records {
				if filter.Includes(record.Number) {
					selected = append(selected, record)
				}
			}
			return selected, nil
		},
		Transform: func(_ context.Context, items []domain.Issue, result *domain.Result) ([]issuePayload, error) {
			payloads := make([]issuePayload, 0, len(items))
			for _, record := range items {
				req := &github.IssueRequest{
					Title: github.Ptr(record.Title),
					Body:  github.Ptr(attribution(sctx.PreserveMetadata, record.Author, record.CreatedAt, record.Body)),
				}
				if len(record.Labels) > 0 {
					labels := record.Labels
					req.Labels = &labels
				}
				if record.Milestone != 0 {
					mapped, ok := sctx.IDs.Resolve(domain.EntityMilestones, record.Milestone)
					if !ok {
						// The milestone was excluded from this restore;
						// never orphan-create the dependent.
						result.Warn(domain.NewDataIntegrityError(domain.EntityIssues,
							"issue #%d references unmapped milestone %d; skipped", record.Number, record.Milestone))
						result.Skipped++
						continue
					}
					req.Milestone = github.Ptr(mapped)
				}
				payloads = append(payloads, issuePayload{original: record, request: req})
			}
			return payloads, nil
		},
		Write: func(ctx context.Context, items []issuePayload, result *domain.Result) error {
			for _, payload := range items {
				created, err := sctx.API.CreateIssue(ctx, payload.request)
				if err != nil {
					return fmt.Errorf("failed to create issue %q: %w", payload.original.Title, err)
				}
				sctx.IDs.Put(domain.EntityIssues, payload.original.Number, created.GetNumber())
				if payload.original.State == "closed" {
					if err := sctx.API.CloseIssue(ctx, created.GetNumber()); err != nil {
						return fmt.Errorf("failed to close issue #%d: %w", created.GetNumber(), err)
					}
				}
				result.Created++
			}
			return nil
		},
	}, nil
}
