package rules

import (
	"sort"
	"strings"

	"github.com/cognicore/basket/pkg/basket/fpgrowth"
)

// Rule is a directional association rule antecedent → consequent.
type Rule struct {
	Antecedent []string
	Consequent []string

	AntecedentSupport float64
	ConsequentSupport float64
	Support           float64
	Confidence        float64
	Lift              float64
	Leverage          float64
	Conviction        float64
}

// Mirrors reports whether r is prev with antecedent and consequent swapped.
func (r Rule) Mirrors(prev Rule) bool {
	return sameSet(r.Antecedent, prev.Consequent) && sameSet(r.Consequent, prev.Antecedent)
}

// Stats counts the rules surviving each stage of Generate.
type Stats struct {
	Candidates int // every split of every itemset of size >= 2
	Confident  int // confidence >= minimum
	InBand     int // also inside the lift band
	Kept       int // after adjacent mirror removal
}

// Generate derives rules from frequent itemsets. Rules are produced grouped
// by itemset, then by split, filtered by confidence and lift band, and
// finally stripped of rules that mirror the rule right before them.
func Generate(itemsets []fpgrowth.Itemset, minConfidence, liftDistance float64, includeNegative bool) []Rule {
	out, _ := GenerateWithStats(itemsets, minConfidence, liftDistance, includeNegative)
	return out
}

// GenerateWithStats is Generate plus per-stage counts.
func GenerateWithStats(itemsets []fpgrowth.Itemset, minConfidence, liftDistance float64, includeNegative bool) ([]Rule, Stats) {
	var stats Stats
	cands := Candidates(itemsets)
	stats.Candidates = len(cands)

	confident := FilterConfidence(cands, minConfidence)
	stats.Confident = len(confident)

	inBand := FilterLift(confident, liftDistance, includeNegative)
	stats.InBand = len(inBand)

	out := DedupAdjacent(inBand)
	stats.Kept = len(out)
	return out, stats
}

// Candidates returns every split of every itemset of size >= 2 with its
// metrics, grouped by itemset in input order.
func Candidates(itemsets []fpgrowth.Itemset) []Rule {
	support := make(map[string]float64, len(itemsets))
	for _, s := range itemsets {
		support[setKey(s.Items)] = s.Support
	}

	var out []Rule
	for _, s := range itemsets {
		if s.Len() < 2 {
			continue
		}
		splits(s.Items, func(ante, cons []string) {
			supA, okA := support[setKey(ante)]
			supC, okC := support[setKey(cons)]
			if !okA || !okC {
				// subsets of a frequent itemset are frequent; a caller
				// passing a partial list just loses these splits
				return
			}
			conf := Confidence(s.Support, supA)
			out = append(out, Rule{
				Antecedent:        ante,
				Consequent:        cons,
				AntecedentSupport: supA,
				ConsequentSupport: supC,
				Support:           s.Support,
				Confidence:        conf,
				Lift:              Lift(conf, supC),
				Leverage:          Leverage(s.Support, supA, supC),
				Conviction:        Conviction(conf, supC),
			})
		})
	}
	return out
}

// FilterConfidence keeps the rules with confidence >= minConfidence, preserving order.
func FilterConfidence(in []Rule, minConfidence float64) []Rule {
	out := make([]Rule, 0, len(in))
	for _, r := range in {
		if r.Confidence >= minConfidence {
			out = append(out, r)
		}
	}
	return out
}

// FilterLift keeps the rules inside the lift band, preserving order.
func FilterLift(in []Rule, distance float64, includeNegative bool) []Rule {
	out := make([]Rule, 0, len(in))
	for _, r := range in {
		if InLiftBand(r.Lift, distance, includeNegative) {
			out = append(out, r)
		}
	}
	return out
}

// DedupAdjacent drops a rule when it mirrors the last rule kept before it.
// Only neighbours are compared: a mirror pair separated by any other rule
// survives in full.
func DedupAdjacent(in []Rule) []Rule {
	out := make([]Rule, 0, len(in))
	for _, r := range in {
		if n := len(out); n > 0 && r.Mirrors(out[n-1]) {
			continue
		}
		out = append(out, r)
	}
	return out
}

// splits calls fn for every (antecedent, consequent) split of items:
// antecedent sizes from len-1 down to 1, combinations in item order.
func splits(items []string, fn func(ante, cons []string)) {
	k := len(items)
	idx := make([]int, k)
	for size := k - 1; size >= 1; size-- {
		for i := 0; i < size; i++ {
			idx[i] = i
		}
		for {
			ante := make([]string, 0, size)
			cons := make([]string, 0, k-size)
			in := make([]bool, k)
			for _, i := range idx[:size] {
				in[i] = true
			}
			for i, it := range items {
				if in[i] {
					ante = append(ante, it)
				} else {
					cons = append(cons, it)
				}
			}
			fn(ante, cons)

			if !nextCombination(idx[:size], k) {
				break
			}
		}
	}
}

// nextCombination advances idx to the next lexicographic combination of
// len(idx) indexes out of n.
func nextCombination(idx []int, n int) bool {
	r := len(idx)
	i := r - 1
	for i >= 0 && idx[i] == n-r+i {
		i--
	}
	if i < 0 {
		return false
	}
	idx[i]++
	for j := i + 1; j < r; j++ {
		idx[j] = idx[j-1] + 1
	}
	return true
}

func setKey(items []string) string {
	sorted := append([]string(nil), items...)
	sort.Strings(sorted)
	return strings.Join(sorted, "\x1f")
}

func sameSet(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	return setKey(a) == setKey(b)
}
