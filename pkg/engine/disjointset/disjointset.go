// Package disjointset implements union-find over opaque string keys with
// path compression and union-by-rank, grounded on the rank-based
// union-find used for clone-fragment grouping in the example corpus but
// generalized here to string identifiers instead of fragment pointers.
package disjointset

import "sort"

// DisjointSet is a union-find structure over string keys. The zero value
// is ready to use.
type DisjointSet struct {
	parent map[string]string
	rank   map[string]int
	order  []string // insertion order, for deterministic Groups() output
}

// New returns an empty DisjointSet.
func New() *DisjointSet {
	return &DisjointSet{
		parent: make(map[string]string),
		rank:   make(map[string]int),
	}
}

// insert adds x as its own singleton root if not already present.
func (d *DisjointSet) insert(x string) {
	if _, ok := d.parent[x]; ok {
		return
	}
	if d.parent == nil {
		d.parent = make(map[string]string)
		d.rank = make(map[string]int)
	}
	d.parent[x] = x
	d.rank[x] = 0
	d.order = append(d.order, x)
}

// Find returns the root of x's component, auto-inserting x if unseen, and
// compresses the path from x to the root.
func (d *DisjointSet) Find(x string) string {
	d.insert(x)
	root := x
	for d.parent[root] != root {
		root = d.parent[root]
	}
	for x != root {
		next := d.parent[x]
		d.parent[x] = root
		x = next
	}
	return root
}

// Union merges the components containing x and y, by rank. Returns true
// if they were previously in different components.
func (d *DisjointSet) Union(x, y string) bool {
	rx, ry := d.Find(x), d.Find(y)
	if rx == ry {
		return false
	}
	if d.rank[rx] < d.rank[ry] {
		rx, ry = ry, rx
	}
	d.parent[ry] = rx
	if d.rank[rx] == d.rank[ry] {
		d.rank[rx]++
	}
	return true
}

// Connected reports whether x and y are in the same component.
func (d *DisjointSet) Connected(x, y string) bool {
	return d.Find(x) == d.Find(y)
}

// Size returns the number of distinct keys ever inserted.
func (d *DisjointSet) Size() int {
	return len(d.order)
}

// NumGroups returns the number of distinct components.
func (d *DisjointSet) NumGroups() int {
	return len(d.Groups())
}

// Groups returns the mapping root -> members, with members sorted
// lexicographically within each root for deterministic downstream
// consumption (group_id derivation picks the lexicographically smallest
// member).
func (d *DisjointSet) Groups() map[string][]string {
	groups := make(map[string][]string)
	for _, x := range d.order {
		root := d.Find(x)
		groups[root] = append(groups[root], x)
	}
	for root := range groups {
		sort.Strings(groups[root])
	}
	return groups
}
