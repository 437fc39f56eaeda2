package txn

import (
	"github.com/cognicore/basket/pkg/basket/normalize"
)

// Transaction is the set of distinct items of one post, in first-occurrence order.
type Transaction []string

// Set bundles the output of a build: transactions, the vocabulary that
// indexes the matrix columns, and the presence matrix itself.
type Set struct {
	Transactions []Transaction
	Vocabulary   []string
	Matrix       *Matrix

	// RawItems is the vocabulary size before rare-item pruning.
	RawItems int
	// MinItemCount is the pruning threshold that was applied (0 = none).
	MinItemCount int64
}

// BuildEmoji turns emoji-only strings into transactions of single emojis.
func BuildEmoji(normalized []string) *Set {
	txs := make([]Transaction, len(normalized))
	for i, s := range normalized {
		txs[i] = emojiTransaction(s)
	}
	set := assemble(txs)
	set.RawItems = len(set.Vocabulary)
	return set
}

func emojiTransaction(s string) Transaction {
	var tx Transaction
	seen := make(map[rune]struct{})
	for _, r := range s {
		if !normalize.IsEmoji(r) {
			continue
		}
		if _, ok := seen[r]; ok {
			continue
		}
		seen[r] = struct{}{}
		tx = append(tx, string(r))
	}
	return tx
}

// BuildWords turns normalized word strings into transactions, dropping items
// seen in fewer than floor(minItemSupport*N) transactions. Transactions left
// empty by the pruning are kept.
func BuildWords(normalized []string, minItemSupport float64) *Set {
	txs := make([]Transaction, len(normalized))
	counter := NewCounter()
	for i, s := range normalized {
		txs[i] = wordTransaction(s)
		counter.AddTransaction(txs[i])
	}

	minCount := MinCount(minItemSupport, len(txs))
	if minCount > 0 {
		keep := counter.Frequent(minCount)
		for i, tx := range txs {
			filtered := make(Transaction, 0, len(tx))
			for _, it := range tx {
				if keep.Test(uint(counter.ID(it))) {
					filtered = append(filtered, it)
				}
			}
			txs[i] = filtered
		}
	}

	set := assemble(txs)
	set.RawItems = counter.UniqueItems()
	set.MinItemCount = minCount
	return set
}

func wordTransaction(s string) Transaction {
	words := normalize.Fields(s)
	seen := make(map[string]struct{}, len(words))
	tx := make(Transaction, 0, len(words))
	for _, w := range words {
		if _, ok := seen[w]; ok {
			continue
		}
		seen[w] = struct{}{}
		tx = append(tx, w)
	}
	return tx
}

// Build dispatches on domain.
func Build(domain normalize.Domain, normalized []string, minItemSupport float64) *Set {
	if domain == normalize.DomainWords {
		return BuildWords(normalized, minItemSupport)
	}
	return BuildEmoji(normalized)
}

// assemble assigns columns in first-encounter order and fills the matrix.
func assemble(txs []Transaction) *Set {
	index := make(map[string]int)
	var vocab []string
	rows := make([][]int, len(txs))
	for t, tx := range txs {
		cols := make([]int, 0, len(tx))
		for _, it := range tx {
			id, ok := index[it]
			if !ok {
				id = len(vocab)
				index[it] = id
				vocab = append(vocab, it)
			}
			cols = append(cols, id)
		}
		rows[t] = cols
	}
	return &Set{
		Transactions: txs,
		Vocabulary:   vocab,
		Matrix:       NewMatrix(vocab, rows),
	}
}
