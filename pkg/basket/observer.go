package basket

import "time"

// Stage names a pipeline boundary.
type Stage string

const (
	StageDataLoaded        Stage = "data-loaded"
	StageTransactionsBuilt Stage = "transactions-built"
	StageItemsetsMined     Stage = "itemsets-mined"
	StageRulesFiltered     Stage = "rules-filtered"
	StageDedupComplete     Stage = "dedup-complete"
)

// StageEvent is reported once a stage has finished.
type StageEvent struct {
	RunID   string
	Stage   Stage
	Count   int           // records, transactions, itemsets or rules, depending on the stage
	Elapsed time.Duration // since the run started
	Counts  map[string]int
}

// Observer receives stage events. Implementations must not retain Counts.
type Observer interface {
	OnStage(StageEvent)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(StageEvent)

// OnStage calls f(e).
func (f ObserverFunc) OnStage(e StageEvent) { f(e) }

// Observers fans events out to every non-nil observer in order.
func Observers(obs ...Observer) Observer {
	var list multiObserver
	for _, o := range obs {
		if o != nil {
			list = append(list, o)
		}
	}
	return list
}

type multiObserver []Observer

func (m multiObserver) OnStage(e StageEvent) {
	for _, o := range m {
		o.OnStage(e)
	}
}
