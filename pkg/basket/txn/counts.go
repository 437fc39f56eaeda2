package txn

import (
	"math"

	"github.com/bits-and-blooms/bitset"
)

// Counter maintains per-item transaction counts.
type Counter struct {
	N     int64          // total number of transactions
	index map[string]int // item -> dense id, first-seen order
	items []string
	df    []int64
}

// NewCounter creates an empty item counter
func NewCounter() *Counter {
	return &Counter{index: make(map[string]int)}
}

// AddTransaction counts one transaction. Items are expected to be unique
// within the transaction (caller's responsibility).
func (c *Counter) AddTransaction(items []string) {
	c.N++
	for _, it := range items {
		id, ok := c.index[it]
		if !ok {
			id = len(c.items)
			c.index[it] = id
			c.items = append(c.items, it)
			c.df = append(c.df, 0)
		}
		c.df[id]++
	}
}

// Count returns the number of transactions containing item.
func (c *Counter) Count(item string) int64 {
	id, ok := c.index[item]
	if !ok {
		return 0
	}
	return c.df[id]
}

// ID returns the dense id of item, or -1.
func (c *Counter) ID(item string) int {
	id, ok := c.index[item]
	if !ok {
		return -1
	}
	return id
}

// TotalTransactions returns the number of transactions counted
func (c *Counter) TotalTransactions() int64 {
	return c.N
}

// UniqueItems returns the number of distinct items seen
func (c *Counter) UniqueItems() int {
	return len(c.items)
}

// Frequent marks the ids of items counted at least minCount times.
func (c *Counter) Frequent(minCount int64) *bitset.BitSet {
	keep := bitset.New(uint(len(c.items)))
	for id, n := range c.df {
		if n >= minCount {
			keep.Set(uint(id))
		}
	}
	return keep
}

// MinCount converts a support fraction into an absolute count threshold,
// truncating toward zero.
func MinCount(fraction float64, total int) int64 {
	if fraction <= 0 || total <= 0 {
		return 0
	}
	return int64(math.Floor(fraction * float64(total)))
}
