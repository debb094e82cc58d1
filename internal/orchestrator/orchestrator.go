// Package orchestrator drives the execution plan: it walks the
// topologically ordered entities, runs each strategy, isolates
// failures, and aggregates the run report.
package orchestrator

import (
	"context"
	"fmt"
	"time"

	"github.com/compozy/repovault/internal/domain"
	"github.com/compozy/repovault/internal/registry"
	"github.com/compozy/repovault/internal/strategy"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Orchestrator owns the execution plan and the aggregated result list
// for one run.
type Orchestrator struct {
	registry *registry.Registry
	sctx     *strategy.Context
	owner    string
	repo     string
	log      *zap.Logger
}

// New creates an orchestrator over a validated registry and a built
// strategy context.
func New(reg *registry.Registry, sctx *strategy.Context, owner, repo string, log *zap.Logger) *Orchestrator {
	if log == nil {
		log = zap.NewNop()
	}
	return &Orchestrator{registry: reg, sctx: sctx, owner: owner, repo: repo, log: log}
}

// Run executes the plan in the given mode and returns the run report.
// A non-nil error means the run aborted before touching the API
// (configuration, graph, or context validation); entity-level failures
// are reported through the report instead.
func (o *Orchestrator) Run(ctx context.Context, mode domain.Mode) (*domain.RunReport, error) {
	ctx, cancel := context.WithTimeout(ctx, DefaultRunTimeout)
	defer cancel()

	plan, err := o.registry.Plan()
	if err != nil {
		return nil, err
	}
	if mode == domain.ModeRestore {
		if err := o.checkManifest(ctx); err != nil {
			return nil, err
		}
	}

	// Instantiate every strategy up front so a missing context field
	// aborts before any API call is made.
	strategies := make(map[domain.EntityName]strategy.Strategy, len(plan))
	for _, descriptor := range plan {
		strat, err := strategy.Create(descriptor, o.sctx, mode)
		if err != nil {
			return nil, fmt.Errorf("failed to build %s %s strategy: %w", descriptor.Name, mode, err)
		}
		strategies[descriptor.Name] = strat
	}

	report := &domain.RunReport{
		SessionID: uuid.New().String(),
		Mode:      mode,
		Owner:     o.owner,
		Repo:      o.repo,
		StartedAt: time.Now().UTC(),
	}
	for _, name := range o.registry.Disabled() {
		report.Append(domain.NewResult(name).Skip(domain.SkipReasonDisabled))
	}
	results := make(map[domain.EntityName]*domain.Result, len(plan))
	for _, descriptor := range plan {
		result := o.runEntity(ctx, descriptor, strategies[descriptor.Name], results, mode)
		results[descriptor.Name] = result
		report.Append(result)
	}
	report.FinishedAt = time.Now().UTC()

	if mode == domain.ModeSave && !report.Failed() {
		if err := o.writeManifest(ctx, report, plan); err != nil {
			return nil, fmt.Errorf("failed to write snapshot manifest: %w", err)
		}
	}
	o.log.Info("run finished",
		zap.String("mode", string(mode)),
		zap.String("session_id", report.SessionID),
		zap.String("summary", report.Summary()))
	return report, nil
}

// runEntity runs one entity's pipeline, or skips it when a dependency
// already failed. One entity type failing must not abort unrelated
// entity types; only its transitive dependents cascade into skips.
func (o *Orchestrator) runEntity(
	ctx context.Context,
	descriptor strategy.Descriptor,
	strat strategy.Strategy,
	results map[domain.EntityName]*domain.Result,
	mode domain.Mode,
) *domain.Result {
	for _, dep := range descriptor.Dependencies {
		prior, ran := results[dep]
		if !ran {
			continue
		}
		if prior.Status == domain.StatusFailed ||
			(prior.Status == domain.StatusSkipped && prior.SkipReason == domain.SkipReasonDependency) {
			o.log.Warn("skipping entity: dependency not satisfied",
				zap.String("entity", string(descriptor.Name)),
				zap.String("dependency", string(dep)))
			return domain.NewResult(descriptor.Name).Skip(domain.SkipReasonDependency)
		}
	}
	if strat == nil {
		// Save-only or restore-only entity outside its mode.
		return domain.NewResult(descriptor.Name).Skip(domain.SkipReasonNoStrategy)
	}
	o.log.Info("processing entity",
		zap.String("entity", string(descriptor.Name)),
		zap.String("mode", string(mode)))
	result := strat.Run(ctx)
	if result.Status == domain.StatusFailed {
		o.log.Error("entity failed",
			zap.String("entity", string(descriptor.Name)),
			zap.String("stage", string(result.Stage)),
			zap.Strings("errors", result.Errors))
	}
	return result
}

// checkManifest verifies the snapshot directory before a restore. A
// missing manifest is fatal; an owner/repo mismatch only warns, since
// restoring into a different repository is a supported use.
func (o *Orchestrator) checkManifest(ctx context.Context) error {
	manifest, err := o.sctx.Store.ReadManifest(ctx)
	if err != nil {
		return err
	}
	if manifest.Owner != o.owner || manifest.Repo != o.repo {
		o.log.Warn("snapshot was saved from a different repository",
			zap.String("saved_from", manifest.Owner+"/"+manifest.Repo),
			zap.String("restoring_to", o.owner+"/"+o.repo))
	}
	return nil
}

func (o *Orchestrator) writeManifest(ctx context.Context, report *domain.RunReport, plan []strategy.Descriptor) error {
	manifest := &domain.Manifest{
		SchemaVersion: "1.0.0",
		RunID:         report.SessionID,
		Owner:         o.owner,
		Repo:          o.repo,
		SavedAt:       report.FinishedAt,
	}
	for _, descriptor := range plan {
		manifest.Entities = append(manifest.Entities, descriptor.Name)
	}
	return o.sctx.Store.WriteManifest(ctx, manifest)
}
