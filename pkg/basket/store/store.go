package store

import (
	"context"
	"time"

	"github.com/cognicore/basket/pkg/basket/config"
)

// Store persists analysis runs and their results.
type Store interface {
	Close() error

	// SaveRun writes the run header together with its itemsets and rules,
	// replacing any run with the same ID.
	SaveRun(ctx context.Context, r Run) error
	// GetRun returns the run header; Itemsets and Rules are left empty.
	GetRun(ctx context.Context, id string) (Run, bool, error)
	// ListRuns returns run headers, newest first.
	ListRuns(ctx context.Context, limit int) ([]Run, error)
	DeleteRun(ctx context.Context, id string) error

	// Itemsets and Rules return rows in the order they were saved.
	Itemsets(ctx context.Context, runID string) ([]Itemset, error)
	Rules(ctx context.Context, runID string) ([]Rule, error)
}

// Run is one analysis run.
type Run struct {
	ID           string
	Params       config.Params
	StartedAt    time.Time
	FinishedAt   time.Time
	Transactions int
	Vocabulary   int
	ItemsetCount int
	RuleCount    int

	Itemsets []Itemset
	Rules    []Rule
}

// Itemset is a stored frequent itemset row.
type Itemset struct {
	Items   []string
	Support float64
}

// Rule is a stored association rule row. Conviction may be +Inf.
type Rule struct {
	Antecedents       []string
	Consequents       []string
	AntecedentSupport float64
	ConsequentSupport float64
	Support           float64
	Confidence        float64
	Lift              float64
	Leverage          float64
	Conviction        float64
}
