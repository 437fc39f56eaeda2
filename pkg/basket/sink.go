package basket

import (
	"context"
	"fmt"

	"github.com/cognicore/basket/pkg/basket/store"
)

// Sink receives the result of a run.
type Sink interface {
	Write(ctx context.Context, res *Result) error
}

// StoreSink persists results into a store.Store.
type StoreSink struct {
	Store store.Store
}

// Write saves the run with its itemsets and rules in generation order.
func (s StoreSink) Write(ctx context.Context, res *Result) error {
	if s.Store == nil {
		return fmt.Errorf("store sink: nil store")
	}
	if err := s.Store.SaveRun(ctx, ToStoreRun(res)); err != nil {
		return fmt.Errorf("save run %s: %w", res.RunID, err)
	}
	return nil
}

// ToStoreRun converts a result into store rows.
func ToStoreRun(res *Result) store.Run {
	run := store.Run{
		ID:           res.RunID,
		Params:       res.Params,
		StartedAt:    res.StartedAt,
		FinishedAt:   res.FinishedAt,
		ItemsetCount: len(res.Itemsets),
		RuleCount:    len(res.Rules),
		Itemsets:     make([]store.Itemset, len(res.Itemsets)),
		Rules:        make([]store.Rule, len(res.Rules)),
	}
	if res.Set != nil {
		run.Transactions = res.Set.Matrix.NumRows()
		run.Vocabulary = res.Set.Matrix.NumCols()
	}
	for i, s := range res.Itemsets {
		run.Itemsets[i] = store.Itemset{Items: s.Items, Support: s.Support}
	}
	for i, r := range res.Rules {
		run.Rules[i] = store.Rule{
			Antecedents:       r.Antecedent,
			Consequents:       r.Consequent,
			AntecedentSupport: r.AntecedentSupport,
			ConsequentSupport: r.ConsequentSupport,
			Support:           r.Support,
			Confidence:        r.Confidence,
			Lift:              r.Lift,
			Leverage:          r.Leverage,
			Conviction:        r.Conviction,
		}
	}
	return run
}

// Sinks writes to every sink in order, stopping at the first error.
type Sinks []Sink

// Write implements Sink.
func (ss Sinks) Write(ctx context.Context, res *Result) error {
	for _, s := range ss {
		if err := s.Write(ctx, res); err != nil {
			return err
		}
	}
	return nil
}
