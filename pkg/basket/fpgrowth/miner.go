package fpgrowth

import (
	"math"
	"sort"

	"github.com/cognicore/basket/pkg/basket/txn"
)

// Itemset is a frequent itemset. Items follow the matrix column order.
type Itemset struct {
	Items   []string
	Count   int     // transactions containing every item
	Support float64 // Count / total transactions
}

// Len returns the number of items.
func (s Itemset) Len() int { return len(s.Items) }

// Mine returns every itemset whose support is at least minSupport, ordered
// by size and then by column order. Rows without items still count toward
// the support denominator. A threshold above 1 yields no itemsets; a
// threshold at or below 0 still requires one supporting transaction.
func Mine(m *txn.Matrix, minSupport float64) []Itemset {
	n := m.NumRows()
	if n == 0 || m.NumCols() == 0 || minSupport > 1 || math.IsNaN(minSupport) {
		return nil
	}
	mn := &miner{minCount: minimumCount(minSupport, n)}

	counts := make([]int, m.NumCols())
	for t := 0; t < n; t++ {
		for _, c := range m.Columns(t) {
			counts[c]++
		}
	}

	var frequent []int
	for c, k := range counts {
		if k >= mn.minCount {
			frequent = append(frequent, c)
		}
	}
	if len(frequent) == 0 {
		return nil
	}
	sort.SliceStable(frequent, func(i, j int) bool {
		return counts[frequent[i]] > counts[frequent[j]]
	})
	mn.rank = make([]int, m.NumCols())
	for c := range mn.rank {
		mn.rank[c] = -1
	}
	for r, c := range frequent {
		mn.rank[c] = r
	}

	root := newTree()
	path := make([]int, 0, len(frequent))
	for t := 0; t < n; t++ {
		path = path[:0]
		for _, c := range m.Columns(t) {
			if mn.rank[c] >= 0 {
				path = append(path, c)
			}
		}
		if len(path) == 0 {
			continue
		}
		sort.Slice(path, func(i, j int) bool { return mn.rank[path[i]] < mn.rank[path[j]] })
		root.insert(path, 1)
	}

	mn.grow(root, nil)

	sort.Slice(mn.found, func(i, j int) bool {
		a, b := mn.found[i].cols, mn.found[j].cols
		if len(a) != len(b) {
			return len(a) < len(b)
		}
		for k := range a {
			if a[k] != b[k] {
				return a[k] < b[k]
			}
		}
		return false
	})

	out := make([]Itemset, len(mn.found))
	for i, f := range mn.found {
		items := make([]string, len(f.cols))
		for k, c := range f.cols {
			items[k] = m.Item(c)
		}
		out[i] = Itemset{
			Items:   items,
			Count:   f.count,
			Support: float64(f.count) / float64(n),
		}
	}
	return out
}

type pattern struct {
	cols  []int
	count int
}

type miner struct {
	minCount int
	rank     []int
	found    []pattern
}

// grow emits suffix+item for every item of t and recurses into the
// item's conditional tree. Every item present in t is already frequent.
func (mn *miner) grow(t *tree, suffix []int) {
	items := make([]int, 0, len(t.counts))
	for it := range t.counts {
		items = append(items, it)
	}
	// least frequent first
	sort.Slice(items, func(i, j int) bool { return mn.rank[items[i]] > mn.rank[items[j]] })

	for _, it := range items {
		cols := make([]int, len(suffix)+1)
		copy(cols, suffix)
		cols[len(suffix)] = it
		mn.emit(cols, t.counts[it])

		if cond := mn.conditional(t, it); !cond.empty() {
			mn.grow(cond, cols)
		}
	}
}

func (mn *miner) emit(cols []int, count int) {
	sorted := append([]int(nil), cols...)
	sort.Ints(sorted)
	mn.found = append(mn.found, pattern{cols: sorted, count: count})
}

// conditional builds the FP-tree of the prefix paths ending in item,
// keeping only items that stay frequent within that base.
func (mn *miner) conditional(t *tree, item int) *tree {
	var (
		paths [][]int
		mult  []int
	)
	local := make(map[int]int)
	for n := t.heads[item]; n != nil; n = n.link {
		p := prefixPath(n)
		if len(p) == 0 {
			continue
		}
		paths = append(paths, p)
		mult = append(mult, n.count)
		for _, x := range p {
			local[x] += n.count
		}
	}

	cond := newTree()
	for i, p := range paths {
		kept := p[:0]
		for _, x := range p {
			if local[x] >= mn.minCount {
				kept = append(kept, x)
			}
		}
		if len(kept) > 0 {
			cond.insert(kept, mult[i])
		}
	}
	return cond
}

// minimumCount is the smallest transaction count whose support reaches
// minSupport, never below 1.
func minimumCount(minSupport float64, n int) int {
	c := int(math.Ceil(minSupport * float64(n)))
	for c > 1 && float64(c-1)/float64(n) >= minSupport {
		c--
	}
	for c <= n && float64(c)/float64(n) < minSupport {
		c++
	}
	if c < 1 {
		c = 1
	}
	return c
}
