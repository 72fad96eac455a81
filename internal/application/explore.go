package application

import (
	"context"
	"fmt"
	"sort"

	"github.com/montanaflynn/stats"
	"golang.org/x/sync/errgroup"

	"github.com/candor-ai/go-tribunal/internal/domain"
)

// Exploration defaults.
const (
	// DefaultVariationCount is how many candidate positions an exploration
	// pass generates.
	DefaultVariationCount = 4

	// DefaultSimilarityCutoff is the similarity above which two candidate
	// statements are treated as duplicates.
	DefaultSimilarityCutoff = 0.85

	// explorationTemperatureStep spreads variation temperatures so the
	// candidates differ meaningfully rather than resampling one mode.
	explorationTemperatureStep = 0.15
)

// ExploreConfig tunes problem-space exploration.
type ExploreConfig struct {
	// Variations is the number of candidate positions to generate. Zero or
	// negative means DefaultVariationCount.
	Variations int `yaml:"variations" json:"variations"`

	// SimilarityCutoff is the normalized similarity in [0, 1] above which a
	// candidate is dropped as a near-duplicate of an earlier one. Zero
	// means DefaultSimilarityCutoff.
	SimilarityCutoff float64 `yaml:"similarity_cutoff" json:"similarity_cutoff"`
}

// SimilarityFunc scores how alike two statements are, in [0, 1].
type SimilarityFunc func(a, b string) float64

// RankedSession pairs a session with its exploration rank.
type RankedSession struct {
	Rank    int                  `json:"rank"`
	Session domain.SessionRecord `json:"session"`
}

// ExplorationReport is the outcome of exploring a problem: the surviving
// candidates, adjudicated and ranked, plus summary statistics over their
// novelty.
type ExplorationReport struct {
	Problem       string          `json:"problem"`
	Generated     int             `json:"generated"`
	Deduplicated  int             `json:"deduplicated"`
	Accepted      int             `json:"accepted"`
	MeanNovelty   float64         `json:"mean_novelty"`
	MedianNovelty float64         `json:"median_novelty"`
	Ranked        []RankedSession `json:"ranked"`
}

// Explore generates several position variations for the request at spread
// temperatures, drops near-duplicates, adjudicates each survivor through the
// full critique-decide loop, and ranks the results. Accepted positions rank
// above revised ones, then by average novelty descending, with the candidate
// index as a deterministic tiebreak.
//
// similarity may be nil, in which case no deduplication occurs.
func (e *Engine) Explore(ctx context.Context, req domain.GenerationRequest, cfg ExploreConfig, similarity SimilarityFunc) (*ExplorationReport, error) {
	if cfg.Variations <= 0 {
		cfg.Variations = DefaultVariationCount
	}
	if cfg.SimilarityCutoff <= 0 {
		cfg.SimilarityCutoff = DefaultSimilarityCutoff
	}

	baseTemp := req.Temperature
	if baseTemp <= 0 {
		baseTemp = 0.7
	}

	// Generate all variations concurrently at spread temperatures.
	candidates := make([]*domain.Position, cfg.Variations)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.collector.cfg.MaxConcurrency)
	for i := range cfg.Variations {
		g.Go(func() error {
			varReq := req
			varReq.Temperature = min(baseTemp+float64(i)*explorationTemperatureStep, 2.0)
			position, err := e.generator.Generate(gctx, varReq)
			if err != nil {
				e.logger.Warn("variation generation failed",
					"variation", i, "error", err)
				return nil
			}
			candidates[i] = &position
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	generated := make([]domain.Position, 0, cfg.Variations)
	for _, c := range candidates {
		if c != nil {
			generated = append(generated, *c)
		}
	}
	if len(generated) == 0 {
		return nil, fmt.Errorf("exploration produced no candidates for problem %q", req.Problem)
	}

	survivors := dedupe(generated, cfg.SimilarityCutoff, similarity)

	// Adjudicate survivors sequentially; each adjudication already fans
	// out across the evaluator pool.
	type outcome struct {
		index   int
		session *domain.Session
	}
	outcomes := make([]outcome, 0, len(survivors))
	for i, position := range survivors {
		session, err := e.Evaluate(ctx, position)
		if err != nil {
			e.logger.Warn("candidate adjudication failed",
				"position_id", position.ID, "error", err)
			continue
		}
		outcomes = append(outcomes, outcome{index: i, session: session})
	}
	if len(outcomes) == 0 {
		return nil, fmt.Errorf("no exploration candidate could be adjudicated")
	}

	sort.SliceStable(outcomes, func(a, b int) bool {
		da, db := outcomes[a].session.Decision(), outcomes[b].session.Decision()
		aAccepted := da.Outcome == domain.OutcomeAccept
		bAccepted := db.Outcome == domain.OutcomeAccept
		if aAccepted != bAccepted {
			return aAccepted
		}
		if da.AverageNovelty != db.AverageNovelty {
			return da.AverageNovelty > db.AverageNovelty
		}
		return outcomes[a].index < outcomes[b].index
	})

	novelties := make([]float64, 0, len(outcomes))
	accepted := 0
	ranked := make([]RankedSession, len(outcomes))
	for i, o := range outcomes {
		d := o.session.Decision()
		novelties = append(novelties, d.AverageNovelty)
		if d.Outcome == domain.OutcomeAccept {
			accepted++
		}
		ranked[i] = RankedSession{Rank: i + 1, Session: o.session.Snapshot()}
	}

	mean, _ := stats.Mean(novelties)
	median, _ := stats.Median(novelties)

	return &ExplorationReport{
		Problem:       req.Problem,
		Generated:     len(generated),
		Deduplicated:  len(generated) - len(survivors),
		Accepted:      accepted,
		MeanNovelty:   mean,
		MedianNovelty: median,
		Ranked:        ranked,
	}, nil
}

// dedupe keeps the first of each near-duplicate group, preserving order.
func dedupe(positions []domain.Position, cutoff float64, similarity SimilarityFunc) []domain.Position {
	if similarity == nil {
		return positions
	}
	survivors := make([]domain.Position, 0, len(positions))
	for _, candidate := range positions {
		duplicate := false
		for _, kept := range survivors {
			if similarity(kept.Statement, candidate.Statement) >= cutoff {
				duplicate = true
				break
			}
		}
		if !duplicate {
			survivors = append(survivors, candidate)
		}
	}
	return survivors
}
