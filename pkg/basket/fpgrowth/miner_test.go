package fpgrowth

import (
	"fmt"
	"math"
	"math/rand"
	"sort"
	"strings"
	"testing"

	"github.com/cognicore/basket/pkg/basket/txn"
)

func matrixOf(txs ...[]string) *txn.Matrix {
	set := make([]txn.Transaction, len(txs))
	for i, tx := range txs {
		set[i] = tx
	}
	return txn.FromTransactions(set)
}

func key(items []string) string {
	sorted := append([]string(nil), items...)
	sort.Strings(sorted)
	return strings.Join(sorted, ",")
}

func index(sets []Itemset) map[string]Itemset {
	out := make(map[string]Itemset, len(sets))
	for _, s := range sets {
		out[key(s.Items)] = s
	}
	return out
}

func TestMineScenario(t *testing.T) {
	m := matrixOf([]string{"x", "y"}, []string{"x", "y"}, []string{"x"}, []string{"y"})

	got := index(Mine(m, 0.5))

	want := map[string]float64{"x": 0.75, "y": 0.75, "x,y": 0.5}
	if len(got) != len(want) {
		t.Fatalf("expected %d itemsets, got %d: %v", len(want), len(got), got)
	}
	for k, support := range want {
		s, ok := got[k]
		if !ok {
			t.Errorf("missing itemset {%s}", k)
			continue
		}
		if math.Abs(s.Support-support) > 1e-12 {
			t.Errorf("support {%s} = %f, want %f", k, s.Support, support)
		}
	}
}

func TestMineOrdering(t *testing.T) {
	m := matrixOf([]string{"b", "a"}, []string{"a", "b"}, []string{"a"})

	sets := Mine(m, 0.1)
	if len(sets) != 3 {
		t.Fatalf("expected 3 itemsets, got %d", len(sets))
	}
	// columns: b=0, a=1
	wantOrder := []string{"b", "a", "b,a"}
	for i, s := range sets {
		if got := strings.Join(s.Items, ","); got != wantOrder[i] {
			t.Errorf("itemset %d = %s, want %s", i, got, wantOrder[i])
		}
	}
}

func TestMineThresholdAboveOne(t *testing.T) {
	m := matrixOf([]string{"x"}, []string{"x"})

	if got := Mine(m, 1.5); len(got) != 0 {
		t.Errorf("min support > 1 should give no itemsets, got %v", got)
	}
	if got := Mine(m, 1); len(got) != 1 {
		t.Errorf("min support 1 should keep {x}, got %v", got)
	}
}

func TestMineDegenerateInputs(t *testing.T) {
	if got := Mine(matrixOf(), 0.1); len(got) != 0 {
		t.Errorf("zero rows should give nothing, got %v", got)
	}
	if got := Mine(matrixOf(nil, nil), 0.1); len(got) != 0 {
		t.Errorf("zero columns should give nothing, got %v", got)
	}
	if got := Mine(matrixOf([]string{"x"}), math.NaN()); len(got) != 0 {
		t.Errorf("NaN threshold should give nothing, got %v", got)
	}
}

func TestMineNonPositiveThresholdExcludesZeroSupport(t *testing.T) {
	m := matrixOf([]string{"x"}, []string{"y"}, nil)

	for _, minSupport := range []float64{0, -0.5} {
		got := index(Mine(m, minSupport))
		if _, ok := got["x,y"]; ok {
			t.Errorf("min support %v: {x,y} never co-occurs and must be excluded", minSupport)
		}
		if len(got) != 2 {
			t.Errorf("min support %v: expected {x} and {y}, got %v", minSupport, got)
		}
	}
}

func TestMineEmptyRowsCountTowardSupport(t *testing.T) {
	m := matrixOf([]string{"x"}, nil, nil, nil)

	got := Mine(m, 0.25)
	if len(got) != 1 || got[0].Support != 0.25 {
		t.Fatalf("expected {x} at 0.25, got %v", got)
	}
	if got := Mine(m, 0.3); len(got) != 0 {
		t.Errorf("{x} support 0.25 should fail 0.3, got %v", got)
	}
}

func TestMineFloatingThreshold(t *testing.T) {
	txs := make([][]string, 1000)
	for i := 0; i < 3; i++ {
		txs[i] = []string{"z"}
	}
	m := matrixOf(txs...)

	// 0.003 * 1000 is not exactly 3 in floating point
	if got := Mine(m, 0.003); len(got) != 1 {
		t.Errorf("3 of 1000 should meet 0.003, got %v", got)
	}
}

// bruteForce enumerates every subset of the vocabulary.
func bruteForce(m *txn.Matrix, minSupport float64) map[string]float64 {
	out := make(map[string]float64)
	cols := m.NumCols()
	n := m.NumRows()
	for mask := 1; mask < 1<<cols; mask++ {
		count := 0
		for t := 0; t < n; t++ {
			ok := true
			for c := 0; c < cols; c++ {
				if mask&(1<<c) != 0 && !m.Has(t, c) {
					ok = false
					break
				}
			}
			if ok {
				count++
			}
		}
		if count == 0 {
			continue
		}
		support := float64(count) / float64(n)
		if support < minSupport {
			continue
		}
		var items []string
		for c := 0; c < cols; c++ {
			if mask&(1<<c) != 0 {
				items = append(items, m.Item(c))
			}
		}
		out[key(items)] = support
	}
	return out
}

func randomMatrix(rng *rand.Rand, rows, items int, density float64) *txn.Matrix {
	txs := make([][]string, rows)
	for r := range txs {
		for i := 0; i < items; i++ {
			if rng.Float64() < density {
				txs[r] = append(txs[r], fmt.Sprintf("i%d", i))
			}
		}
	}
	return matrixOf(txs...)
}

func TestMineMatchesBruteForce(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	for trial := 0; trial < 25; trial++ {
		m := randomMatrix(rng, 40, 8, 0.4)
		minSupport := []float64{0.05, 0.1, 0.2, 0.3}[trial%4]

		got := index(Mine(m, minSupport))
		want := bruteForce(m, minSupport)

		if len(got) != len(want) {
			t.Fatalf("trial %d: expected %d itemsets, got %d", trial, len(want), len(got))
		}
		for k, support := range want {
			s, ok := got[k]
			if !ok {
				t.Fatalf("trial %d: missing {%s}", trial, k)
			}
			if math.Abs(s.Support-support) > 1e-12 {
				t.Errorf("trial %d: support {%s} = %f, want %f", trial, k, s.Support, support)
			}
		}
	}
}

func TestMineAntiMonotone(t *testing.T) {
	rng := rand.New(rand.NewSource(7))

	for trial := 0; trial < 20; trial++ {
		m := randomMatrix(rng, 60, 10, 0.35)
		sets := Mine(m, 0.08)
		got := index(sets)

		for _, s := range sets {
			if s.Support < 0 || s.Support > 1 {
				t.Fatalf("support out of range: %v", s)
			}
			// every subset obtained by dropping one item must be present
			// with support at least as large
			if s.Len() < 2 {
				continue
			}
			for drop := range s.Items {
				sub := make([]string, 0, s.Len()-1)
				sub = append(sub, s.Items[:drop]...)
				sub = append(sub, s.Items[drop+1:]...)
				parent, ok := got[key(sub)]
				if !ok {
					t.Fatalf("trial %d: {%s} frequent but subset {%s} missing", trial, key(s.Items), key(sub))
				}
				if parent.Support < s.Support {
					t.Errorf("trial %d: subset {%s} has lower support than {%s}", trial, key(sub), key(s.Items))
				}
			}
		}
	}
}

func TestMinimumCount(t *testing.T) {
	tests := []struct {
		minSupport float64
		n          int
		want       int
	}{
		{0.5, 4, 2},
		{0.003, 1000, 3},
		{0.0001, 100, 1},
		{0, 10, 1},
		{-1, 10, 1},
		{1, 10, 10},
		{0.33, 3, 1},
	}

	for _, tt := range tests {
		if got := minimumCount(tt.minSupport, tt.n); got != tt.want {
			t.Errorf("minimumCount(%v, %d) = %d, want %d", tt.minSupport, tt.n, got, tt.want)
		}
	}
}
