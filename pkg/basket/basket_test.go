package basket

import (
	"context"
	"errors"
	"math"
	"reflect"
	"testing"
	"time"

	"github.com/cognicore/basket/pkg/basket/config"
	"github.com/cognicore/basket/pkg/basket/corpus"
	"github.com/cognicore/basket/pkg/basket/internalerr"
	"github.com/cognicore/basket/pkg/basket/normalize"
	"github.com/cognicore/basket/pkg/basket/store/memstore"
	"github.com/cognicore/basket/pkg/basket/txn"
)

func emojiRecords() []corpus.Record {
	return []corpus.Record{
		{Text: "😂 lol 🔥 https://t.co/x"},
		{Text: "🔥😂🔥"},
		{Text: "just 😂"},
		{Text: "🔥"},
		{Missing: true},
	}
}

func fixedClock() func() time.Time {
	t := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	return func() time.Time {
		t = t.Add(time.Millisecond)
		return t
	}
}

func TestAnalyzerRunEmoji(t *testing.T) {
	var stages []Stage
	a := New(Options{
		Params:   config.Defaults(normalize.DomainEmoji),
		Observer: ObserverFunc(func(e StageEvent) { stages = append(stages, e.Stage) }),
		Clock:    fixedClock(),
	})

	res, err := a.Run(emojiRecords())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if res.RunID == "" {
		t.Error("expected a run id")
	}
	if res.Records != 5 || res.Set.Matrix.NumRows() != 5 {
		t.Errorf("missing records must stay as empty transactions: %d records, %d rows",
			res.Records, res.Set.Matrix.NumRows())
	}
	if got := res.Set.Vocabulary; !reflect.DeepEqual(got, []string{"😂", "🔥"}) {
		t.Errorf("vocabulary = %q", got)
	}

	if len(res.Itemsets) != 3 {
		t.Fatalf("expected 3 itemsets, got %+v", res.Itemsets)
	}
	pair := res.Itemsets[2]
	if !reflect.DeepEqual(pair.Items, []string{"😂", "🔥"}) || math.Abs(pair.Support-0.4) > 1e-12 {
		t.Errorf("pair itemset = %+v", pair)
	}

	// 😂→🔥 and its mirror both pass; the mirror is dropped
	if len(res.Rules) != 1 {
		t.Fatalf("expected 1 rule, got %+v", res.Rules)
	}
	r := res.Rules[0]
	if r.Antecedent[0] != "😂" || r.Consequent[0] != "🔥" {
		t.Errorf("rule = %v -> %v", r.Antecedent, r.Consequent)
	}
	if math.Abs(r.Lift-(0.4/0.6)/0.6) > 1e-12 {
		t.Errorf("lift = %v", r.Lift)
	}
	if res.Stats.InBand != 2 || res.Stats.Kept != 1 {
		t.Errorf("stats = %+v", res.Stats)
	}

	want := []Stage{StageDataLoaded, StageTransactionsBuilt, StageItemsetsMined, StageRulesFiltered, StageDedupComplete}
	if !reflect.DeepEqual(stages, want) {
		t.Errorf("stages = %v, want %v", stages, want)
	}
	if !res.FinishedAt.After(res.StartedAt) {
		t.Errorf("finished %v not after started %v", res.FinishedAt, res.StartedAt)
	}
}

func TestAnalyzerRunWords(t *testing.T) {
	p := config.Defaults(normalize.DomainWords)
	p.MinItemSupport = 0.5
	p.MinItemsetSupport = 0.5
	p.LiftDistance = 0

	res, err := New(Options{Params: p}).Run([]corpus.Record{
		{Text: "red apple http://x.io"},
		{Text: "red apple pie"},
		{Text: "green apple"},
		{Text: "red 🍎 🍎"},
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	// pie, green and 🍎 appear once in four posts and are pruned
	if got := res.Set.Vocabulary; !reflect.DeepEqual(got, []string{"red", "apple"}) {
		t.Errorf("vocabulary = %q", got)
	}
	if res.Set.RawItems != 5 {
		t.Errorf("raw items = %d", res.Set.RawItems)
	}
	if len(res.Itemsets) != 3 {
		t.Errorf("itemsets = %+v", res.Itemsets)
	}
}

func TestAnalyzerSupportAboveOne(t *testing.T) {
	p := config.Defaults(normalize.DomainEmoji)
	p.MinItemsetSupport = 1.5

	_, err := New(Options{Params: p}).Run(emojiRecords())
	if !errors.Is(err, internalerr.ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig, got %v", err)
	}

	// the lower-level entry point skips validation and yields empty results
	m := txn.BuildEmoji(normalize.All(normalize.DomainEmoji, corpus.Texts(emojiRecords()))).Matrix
	sets, rules := MarketBasket(m, p)
	if sets == nil || rules == nil || len(sets) != 0 || len(rules) != 0 {
		t.Errorf("expected empty non-nil results, got %v / %v", sets, rules)
	}
}

func TestAnalyzerSampleLimit(t *testing.T) {
	p := config.Defaults(normalize.DomainEmoji)
	p.SampleLimit = 2

	res, err := New(Options{Params: p}).Run(emojiRecords())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Records != 2 || res.Set.Matrix.NumRows() != 2 {
		t.Errorf("sample not applied: %d records", res.Records)
	}
}

func TestAnalyzerUniqueRunIDs(t *testing.T) {
	a := New(Options{Params: config.Defaults(normalize.DomainEmoji)})
	seen := make(map[string]bool)
	for i := 0; i < 5; i++ {
		res, err := a.Run(nil)
		if err != nil {
			t.Fatalf("Run: %v", err)
		}
		if seen[res.RunID] {
			t.Fatalf("duplicate run id %s", res.RunID)
		}
		seen[res.RunID] = true
	}
}

func TestStoreSink(t *testing.T) {
	ctx := context.Background()
	res, err := New(Options{Params: config.Defaults(normalize.DomainEmoji)}).Run(emojiRecords())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	st := memstore.New()
	if err := (Sinks{StoreSink{Store: st}}).Write(ctx, res); err != nil {
		t.Fatalf("Write: %v", err)
	}

	run, ok, err := st.GetRun(ctx, res.RunID)
	if err != nil || !ok {
		t.Fatalf("GetRun: ok=%v err=%v", ok, err)
	}
	if run.Transactions != 5 || run.Vocabulary != 2 || run.ItemsetCount != 3 || run.RuleCount != 1 {
		t.Errorf("unexpected run header: %+v", run)
	}
	rules, _ := st.Rules(ctx, res.RunID)
	if len(rules) != 1 || rules[0].Antecedents[0] != "😂" {
		t.Errorf("stored rules = %+v", rules)
	}

	if err := (StoreSink{}).Write(ctx, res); err == nil {
		t.Error("expected error for nil store")
	}
}

func TestObserversSkipsNil(t *testing.T) {
	var n int
	obs := Observers(nil, ObserverFunc(func(StageEvent) { n++ }), nil)
	obs.OnStage(StageEvent{Stage: StageDataLoaded})
	if n != 1 {
		t.Errorf("expected 1 call, got %d", n)
	}
}
