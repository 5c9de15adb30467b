package embedding

import (
	"context"
	"fmt"
	"time"

	"github.com/tanhaei/nspr/internal/graph"
)

// ProgressReporter receives progress updates during index building.
type ProgressReporter interface {
	// OnProgress is called with the current progress.
	OnProgress(current, total int)
}

// ProgressFunc is a function adapter for ProgressReporter.
type ProgressFunc func(current, total int)

// OnProgress implements ProgressReporter.
func (f ProgressFunc) OnProgress(current, total int) {
	f(current, total)
}

// BuildStats contains statistics from index building.
type BuildStats struct {
	EntitiesEmbedded  int           `json:"entities_embedded"`
	RelationsEmbedded int           `json:"relations_embedded"`
	Duration          time.Duration `json:"duration"`
}

// Builder produces an embedding index covering every entity and relation
// type of a graph snapshot.
type Builder struct {
	provider Provider
	progress ProgressReporter
}

// NewBuilder creates a new index builder.
func NewBuilder(provider Provider) *Builder {
	return &Builder{provider: provider}
}

// SetProgressReporter sets the progress reporter for the builder.
func (b *Builder) SetProgressReporter(reporter ProgressReporter) {
	b.progress = reporter
}

// Build embeds every entity and every relation type of the snapshot.
// The embedded text for an entity is "<type>: <id>" so entities with the
// same display name but different roles get distinct vectors.
func (b *Builder) Build(ctx context.Context, g *graph.Graph) (*Index, *BuildStats, error) {
	startTime := time.Now()

	idx := NewIndex(b.provider.ModelName(), b.provider.Dimensions())
	stats := &BuildStats{}

	relations := graph.RelationTypes()
	total := g.EntityCount() + len(relations)
	processed := 0

	for _, t := range entityTypeOrder {
		for _, id := range g.EntitiesOfType(t) {
			select {
			case <-ctx.Done():
				return nil, nil, ctx.Err()
			default:
			}

			processed++
			if b.progress != nil {
				b.progress.OnProgress(processed, total)
			}

			vec, err := b.provider.Embed(ctx, fmt.Sprintf("%s: %s", t, id))
			if err != nil {
				return nil, nil, fmt.Errorf("embedding entity %s: %w", id, err)
			}
			if err := idx.AddEntity(id, vec); err != nil {
				return nil, nil, fmt.Errorf("adding embedding for %s: %w", id, err)
			}
			stats.EntitiesEmbedded++
		}
	}

	for _, rel := range relations {
		select {
		case <-ctx.Done():
			return nil, nil, ctx.Err()
		default:
		}

		processed++
		if b.progress != nil {
			b.progress.OnProgress(processed, total)
		}

		vec, err := b.provider.Embed(ctx, "relation: "+string(rel))
		if err != nil {
			return nil, nil, fmt.Errorf("embedding relation %s: %w", rel, err)
		}
		if err := idx.AddRelation(rel, vec); err != nil {
			return nil, nil, fmt.Errorf("adding embedding for %s: %w", rel, err)
		}
		stats.RelationsEmbedded++
	}

	stats.Duration = time.Since(startTime)
	return idx, stats, nil
}

// entityTypeOrder fixes the embedding order so progress and rate limiting
// behave the same on every build.
var entityTypeOrder = []graph.EntityType{
	graph.TypeSymptom,
	graph.TypeDisease,
	graph.TypeSpecialty,
	graph.TypeDoctor,
	graph.TypeLocation,
	graph.TypePrice,
	graph.TypeInsurance,
}
