package sweep

import (
	"context"
	"fmt"
	"math"

	"golang.org/x/sync/errgroup"

	"github.com/cognicore/basket/pkg/basket/config"
	"github.com/cognicore/basket/pkg/basket/fpgrowth"
	"github.com/cognicore/basket/pkg/basket/internalerr"
	"github.com/cognicore/basket/pkg/basket/normalize"
	"github.com/cognicore/basket/pkg/basket/rules"
	"github.com/cognicore/basket/pkg/basket/txn"
)

// DefaultTargetRatio is the rules-per-itemset ratio the thresholds were
// originally tuned toward.
const DefaultTargetRatio = 2.0

// Grid lists the thresholds to try. Every combination is evaluated.
type Grid struct {
	Supports        []float64
	Confidences     []float64
	LiftDistances   []float64
	IncludeNegative bool
}

// Size is the number of combinations in g.
func (g Grid) Size() int {
	return len(g.Supports) * len(g.Confidences) * len(g.LiftDistances)
}

// Outcome is the result of one combination.
type Outcome struct {
	MinSupport      float64 `json:"min_itemset_support"`
	MinConfidence   float64 `json:"min_confidence"`
	LiftDistance    float64 `json:"lift_distance"`
	IncludeNegative bool    `json:"include_negative_correlations"`
	Itemsets        int     `json:"itemsets"`
	Rules           int     `json:"rules"`
	Ratio           float64 `json:"ratio"` // rules per itemset, 0 when nothing is frequent
}

// Run evaluates every combination of g against m. Itemsets are mined once per
// support value, with at most concurrency supports in flight. Outcomes are
// ordered by support, then confidence, then lift distance, as listed in g.
func Run(ctx context.Context, m *txn.Matrix, g Grid, concurrency int) ([]Outcome, error) {
	if err := g.validate(); err != nil {
		return nil, err
	}
	if concurrency <= 0 {
		concurrency = 1
	}

	out := make([]Outcome, g.Size())
	block := len(g.Confidences) * len(g.LiftDistances)

	eg, egctx := errgroup.WithContext(ctx)
	eg.SetLimit(concurrency)
	for si, support := range g.Supports {
		if egctx.Err() != nil {
			break
		}
		eg.Go(func() error {
			if err := egctx.Err(); err != nil {
				return err
			}
			sets := fpgrowth.Mine(m, support)
			i := si * block
			for _, conf := range g.Confidences {
				for _, dist := range g.LiftDistances {
					o := Outcome{
						MinSupport:      support,
						MinConfidence:   conf,
						LiftDistance:    dist,
						IncludeNegative: g.IncludeNegative,
						Itemsets:        len(sets),
					}
					if len(sets) > 0 {
						o.Rules = len(rules.Generate(sets, conf, dist, g.IncludeNegative))
						o.Ratio = float64(o.Rules) / float64(o.Itemsets)
					}
					out[i] = o
					i++
				}
			}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (g Grid) validate() error {
	if g.Size() == 0 {
		return fmt.Errorf("%w: sweep grid is empty", internalerr.ErrInvalidConfig)
	}
	p := config.Defaults(normalize.DomainEmoji)
	for _, s := range g.Supports {
		p.MinItemsetSupport = s
		if err := p.Validate(); err != nil {
			return err
		}
	}
	for _, c := range g.Confidences {
		p.MinConfidence = c
		if err := p.Validate(); err != nil {
			return err
		}
	}
	for _, d := range g.LiftDistances {
		p.LiftDistance = d
		if err := p.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// Closest returns the outcome whose ratio is nearest target. Outcomes without
// itemsets are ignored; ties keep the earliest outcome.
func Closest(outcomes []Outcome, target float64) (Outcome, bool) {
	var (
		best  Outcome
		found bool
		dist  = math.Inf(1)
	)
	for _, o := range outcomes {
		if o.Itemsets == 0 {
			continue
		}
		if d := math.Abs(o.Ratio - target); d < dist {
			best, dist, found = o, d, true
		}
	}
	return best, found
}
