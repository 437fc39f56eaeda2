package fpgrowth

// node is one FP-tree node. Nodes of the same item are chained through link
// so the miner can walk every occurrence of an item.
type node struct {
	item     int
	count    int
	parent   *node
	children map[int]*node
	link     *node
}

// tree is an FP-tree over column ids. Paths are inserted in rank order
// (most frequent item first), so shared prefixes compress.
type tree struct {
	root   *node
	heads  map[int]*node
	tails  map[int]*node
	counts map[int]int
}

func newTree() *tree {
	return &tree{
		root:   &node{item: -1},
		heads:  make(map[int]*node),
		tails:  make(map[int]*node),
		counts: make(map[int]int),
	}
}

// insert adds a rank-ordered path with the given multiplicity.
func (t *tree) insert(path []int, count int) {
	cur := t.root
	for _, item := range path {
		child, ok := cur.children[item]
		if !ok {
			child = &node{item: item, parent: cur}
			if cur.children == nil {
				cur.children = make(map[int]*node)
			}
			cur.children[item] = child
			if tail := t.tails[item]; tail != nil {
				tail.link = child
			} else {
				t.heads[item] = child
			}
			t.tails[item] = child
		}
		child.count += count
		t.counts[item] += count
		cur = child
	}
}

func (t *tree) empty() bool {
	return len(t.counts) == 0
}

// prefixPath returns the items above n, root first.
func prefixPath(n *node) []int {
	var path []int
	for p := n.parent; p != nil && p.item >= 0; p = p.parent {
		path = append(path, p.item)
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}
