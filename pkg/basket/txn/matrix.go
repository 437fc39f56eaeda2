package txn

import "sort"

// Matrix is a read-only presence matrix: rows are transactions, columns are
// vocabulary items. Rows are stored as sorted column lists.
type Matrix struct {
	vocab []string
	rows  [][]int
}

// NewMatrix builds a matrix over vocab. Column ids in rows must be valid
// indexes into vocab; duplicates within a row are collapsed.
func NewMatrix(vocab []string, rows [][]int) *Matrix {
	m := &Matrix{
		vocab: append([]string(nil), vocab...),
		rows:  make([][]int, len(rows)),
	}
	for t, cols := range rows {
		sorted := append([]int(nil), cols...)
		sort.Ints(sorted)
		uniq := sorted[:0]
		for i, c := range sorted {
			if i > 0 && c == sorted[i-1] {
				continue
			}
			uniq = append(uniq, c)
		}
		m.rows[t] = uniq
	}
	return m
}

// FromTransactions builds a matrix directly from item sets, assigning
// columns in first-encounter order.
func FromTransactions(txs []Transaction) *Matrix {
	return assemble(txs).Matrix
}

// NumRows returns the number of transactions.
func (m *Matrix) NumRows() int { return len(m.rows) }

// NumCols returns the vocabulary size.
func (m *Matrix) NumCols() int { return len(m.vocab) }

// Item returns the item name of column i.
func (m *Matrix) Item(i int) string { return m.vocab[i] }

// Vocabulary returns a copy of the column names.
func (m *Matrix) Vocabulary() []string {
	return append([]string(nil), m.vocab...)
}

// Columns returns the sorted column ids present in row t. The slice is
// shared with the matrix and must not be modified.
func (m *Matrix) Columns(t int) []int { return m.rows[t] }

// Has reports whether item column i is present in row t.
func (m *Matrix) Has(t, i int) bool {
	cols := m.rows[t]
	k := sort.SearchInts(cols, i)
	return k < len(cols) && cols[k] == i
}

// Row returns row t as a dense boolean slice.
func (m *Matrix) Row(t int) []bool {
	row := make([]bool, len(m.vocab))
	for _, c := range m.rows[t] {
		row[c] = true
	}
	return row
}

// Dense materializes the whole matrix. Meant for small inputs and tests.
func (m *Matrix) Dense() [][]bool {
	out := make([][]bool, len(m.rows))
	for t := range m.rows {
		out[t] = m.Row(t)
	}
	return out
}
