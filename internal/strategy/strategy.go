package strategy

import (
	"context"
	"fmt"

	"github.com/compozy/repovault/internal/domain"
)

// Strategy is one entity's pipeline in one direction. Run drives the
// three stages and reports the final per-entity result.
type Strategy interface {
	Run(ctx context.Context) *domain.Result
}

// Pipeline is the generic three-stage read/transform/write pipeline.
// Each stage may fail independently; a failure records the stage it
// happened in and stops the pipeline. Stages never retry themselves;
// per-call retry is the job of the rate-limited API invoker underneath
// Read and Write.
type Pipeline[R any, D any] struct {
	Entity    domain.EntityName
	Read      func(ctx context.Context) ([]R, error)
	Transform func(ctx context.Context, items []R, result *domain.Result) ([]D, error)
	Write     func(ctx context.Context, items []D, result *domain.Result) error
}

// Run executes the pipeline state machine:
// pending -> reading -> transforming -> writing -> done, or failed from
// any stage.
func (p *Pipeline[R, D]) Run(ctx context.Context) *domain.Result {
	result := domain.NewResult(p.Entity)

	result.Stage = domain.StageReading
	raw, err := p.Read(ctx)
	if err != nil {
		return result.Fail(domain.StageReading, fmt.Errorf("read: %w", err))
	}

	result.Stage = domain.StageTransforming
	items, err := p.Transform(ctx, raw, result)
	if err != nil {
		return result.Fail(domain.StageTransforming, fmt.Errorf("transform: %w", err))
	}

	result.Stage = domain.StageWriting
	if err := p.Write(ctx, items, result); err != nil {
		return result.Fail(domain.StageWriting, fmt.Errorf("write: %w", err))
	}

	result.Stage = domain.StageDone
	result.Status = domain.StatusDone
	return result
}
