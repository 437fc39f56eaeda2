package basket

import (
	"crypto/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/cognicore/basket/pkg/basket/config"
	"github.com/cognicore/basket/pkg/basket/corpus"
	"github.com/cognicore/basket/pkg/basket/fpgrowth"
	"github.com/cognicore/basket/pkg/basket/normalize"
	"github.com/cognicore/basket/pkg/basket/rules"
	"github.com/cognicore/basket/pkg/basket/txn"
)

// Analyzer runs the market basket pipeline over a corpus.
type Analyzer struct {
	params   config.Params
	observer Observer
	now      func() time.Time

	mu      sync.Mutex
	entropy *ulid.MonotonicEntropy
}

// Options configures an Analyzer
type Options struct {
	Params   config.Params
	Observer Observer         // optional
	Clock    func() time.Time // defaults to time.Now
}

// New creates an Analyzer with the given options
func New(opts Options) *Analyzer {
	now := opts.Clock
	if now == nil {
		now = time.Now
	}
	return &Analyzer{
		params:   opts.Params,
		observer: opts.Observer,
		now:      now,
		entropy:  ulid.Monotonic(rand.Reader, 0),
	}
}

// Params returns the analyzer's parameters.
func (a *Analyzer) Params() config.Params { return a.params }

// Result is the outcome of one run.
type Result struct {
	RunID      string
	Params     config.Params
	StartedAt  time.Time
	FinishedAt time.Time

	Records  int
	Set      *txn.Set
	Itemsets []fpgrowth.Itemset
	Rules    []rules.Rule
	Stats    rules.Stats
}

// Run analyzes the records. Parameters are validated before any work is
// done; missing records become empty transactions.
func (a *Analyzer) Run(records []corpus.Record) (*Result, error) {
	p := a.params
	if err := p.Validate(); err != nil {
		return nil, err
	}
	domain, _ := normalize.ParseDomain(string(p.Domain))

	res := &Result{
		RunID:     a.newID(),
		Params:    p,
		StartedAt: a.now(),
	}

	if p.SampleLimit > 0 && len(records) > p.SampleLimit {
		records = records[:p.SampleLimit]
	}
	res.Records = len(records)
	a.emit(res, StageDataLoaded, len(records), nil)

	normalized := normalize.All(domain, corpus.Texts(records))
	res.Set = txn.Build(domain, normalized, p.MinItemSupport)
	a.emit(res, StageTransactionsBuilt, res.Set.Matrix.NumRows(), map[string]int{
		"columns":   res.Set.Matrix.NumCols(),
		"raw_items": res.Set.RawItems,
	})

	res.Itemsets, res.Rules, res.Stats = mine(res.Set.Matrix, p)
	a.emit(res, StageItemsetsMined, len(res.Itemsets), nil)
	a.emit(res, StageRulesFiltered, res.Stats.InBand, map[string]int{
		"candidates": res.Stats.Candidates,
		"confident":  res.Stats.Confident,
	})
	a.emit(res, StageDedupComplete, len(res.Rules), nil)

	res.FinishedAt = a.now()
	return res, nil
}

// MarketBasket mines itemsets and derives rules from a prepared matrix.
// Parameters are used as given; when no itemset is frequent both results
// are empty and rule generation is skipped.
func MarketBasket(m *txn.Matrix, p config.Params) ([]fpgrowth.Itemset, []rules.Rule) {
	sets, rs, _ := mine(m, p)
	return sets, rs
}

func mine(m *txn.Matrix, p config.Params) ([]fpgrowth.Itemset, []rules.Rule, rules.Stats) {
	sets := fpgrowth.Mine(m, p.MinItemsetSupport)
	if len(sets) == 0 {
		return []fpgrowth.Itemset{}, []rules.Rule{}, rules.Stats{}
	}
	rs, stats := rules.GenerateWithStats(sets, p.MinConfidence, p.LiftDistance, p.IncludeNegativeCorrelations)
	return sets, rs, stats
}

func (a *Analyzer) emit(res *Result, stage Stage, count int, counts map[string]int) {
	if a.observer == nil {
		return
	}
	a.observer.OnStage(StageEvent{
		RunID:   res.RunID,
		Stage:   stage,
		Count:   count,
		Elapsed: a.now().Sub(res.StartedAt),
		Counts:  counts,
	})
}

func (a *Analyzer) newID() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return ulid.MustNew(ulid.Now(), a.entropy).String()
}
