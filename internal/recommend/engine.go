// Package recommend composes the path finder, semantic scorer, constraint
// evaluator, and ranker into the query-time engine. The engine is a pure
// function of the immutable graph snapshot, the embedding table, and the
// per-query inputs; concurrent queries share no mutable state.
package recommend

import (
	"context"
	"errors"
	"runtime"
	"sort"
	"sync"

	"github.com/tanhaei/nspr/internal/config"
	"github.com/tanhaei/nspr/internal/embedding"
	"github.com/tanhaei/nspr/internal/graph"
	"github.com/tanhaei/nspr/internal/pathfind"
	"github.com/tanhaei/nspr/internal/scoring"
)

// ErrNoSymptoms reports a query without any symptom ID.
var ErrNoSymptoms = errors.New("query has no symptoms")

// Query is one recommendation request: resolved symptom IDs plus the
// optional socio-economic constraints.
type Query struct {
	Symptoms    []string            `json:"symptoms"`
	Constraints scoring.Constraints `json:"constraints"`
}

// Result is the ranked outcome of a query. An empty Doctors slice with a
// non-empty Explanation is the no-match outcome, not a failure.
type Result struct {
	Doctors      []scoring.ScoredDoctor `json:"doctors"`
	Explanation  string                 `json:"explanation,omitempty"`
	PathsSkipped int                    `json:"paths_skipped,omitempty"`
}

// Engine answers recommendation queries over one graph snapshot.
type Engine struct {
	g     *graph.Graph
	table *embedding.Table
	cfg   *config.Config
}

// New creates an engine over an immutable graph snapshot and its
// embedding table.
func New(g *graph.Graph, table *embedding.Table, cfg *config.Config) *Engine {
	if cfg == nil {
		cfg = config.Default()
	}
	return &Engine{g: g, table: table, cfg: cfg}
}

// Recommend runs the full reasoning pipeline for one query.
func (e *Engine) Recommend(ctx context.Context, q Query) (*Result, error) {
	if len(q.Symptoms) == 0 {
		return nil, ErrNoSymptoms
	}

	byDoctor, err := pathfind.FindPaths(e.g, q.Symptoms, pathfind.Options{
		MaxHops:    e.cfg.MaxHops,
		MaxPaths:   e.cfg.MaxPaths,
		MaxDoctors: e.cfg.MaxDoctors,
	})
	if err != nil {
		return nil, err
	}

	if len(byDoctor) == 0 {
		return &Result{
			Doctors:     []scoring.ScoredDoctor{},
			Explanation: scoring.NoMatchExplanation(q.Symptoms, e.cfg.MaxHops),
		}, nil
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	doctors, skipped, err := e.scoreCandidates(ctx, byDoctor, q.Constraints)
	if err != nil {
		return nil, err
	}

	doctors = scoring.Rank(doctors, e.cfg.FilterZeroScores, e.cfg.TopK)

	res := &Result{Doctors: doctors, PathsSkipped: skipped}
	if len(doctors) == 0 {
		res.Explanation = scoring.NoMatchExplanation(q.Symptoms, e.cfg.MaxHops)
	}
	return res, nil
}

// scoreCandidates evaluates every candidate doctor concurrently. Each
// worker writes only its own result slot, and the slots are keyed by the
// sorted candidate order, so the output is deterministic.
func (e *Engine) scoreCandidates(ctx context.Context, byDoctor map[string][]pathfind.Path, c scoring.Constraints) ([]scoring.ScoredDoctor, int, error) {
	ids := make([]string, 0, len(byDoctor))
	for id := range byDoctor {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	results := make([]*scoring.ScoredDoctor, len(ids))
	skips := make([]int, len(ids))
	errs := make([]error, len(ids))

	workers := runtime.NumCPU()
	if workers > len(ids) {
		workers = len(ids)
	}
	sem := make(chan struct{}, workers)

	var wg sync.WaitGroup
	for i, id := range ids {
		if err := ctx.Err(); err != nil {
			break
		}
		wg.Add(1)
		sem <- struct{}{}
		go func(i int, id string) {
			defer wg.Done()
			defer func() { <-sem }()
			results[i], skips[i], errs[i] = e.scoreDoctor(id, byDoctor[id], c)
		}(i, id)
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}

	doctors := make([]scoring.ScoredDoctor, 0, len(ids))
	totalSkipped := 0
	for i := range ids {
		if errs[i] != nil {
			return nil, 0, errs[i]
		}
		totalSkipped += skips[i]
		if results[i] != nil {
			doctors = append(doctors, *results[i])
		}
	}
	return doctors, totalSkipped, nil
}

// scoreDoctor scores one candidate. A nil result (without error) means the
// doctor lost every path to missing embeddings and is no candidate.
func (e *Engine) scoreDoctor(id string, paths []pathfind.Path, c scoring.Constraints) (*scoring.ScoredDoctor, int, error) {
	scored, skipped, err := scoring.ScorePaths(e.table, paths, e.cfg.Temperature, e.cfg.MissingEmbedding)
	if err != nil {
		if errors.Is(err, scoring.ErrAllPathsSkipped) {
			return nil, skipped, nil
		}
		return nil, skipped, err
	}

	sat := scoring.Evaluate(e.g, id, c, e.cfg.Combine, e.cfg.Weights)
	relevance := scoring.Relevance(scored)

	top := scored
	if e.cfg.TopPaths > 0 && len(top) > e.cfg.TopPaths {
		top = top[:e.cfg.TopPaths]
	}

	d := scoring.ScoredDoctor{
		Doctor:       id,
		Relevance:    relevance,
		Satisfaction: sat,
		FinalScore:   scoring.FinalScore(relevance, sat),
		TopPaths:     top,
		PathCount:    len(scored),
	}
	d.Explanation = scoring.Explain(d, c)
	return &d, skipped, nil
}
