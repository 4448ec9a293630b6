package primitives

import (
	"maps"
	"slices"
)

// ResultSet is a set of distinct candidate strings produced for one word.
type ResultSet map[string]bool

func NewResultSet(values ...string) ResultSet {
	rs := make(ResultSet, len(values))
	for _, v := range values {
		rs[v] = true
	}
	return rs
}

func (rs ResultSet) Add(v string) {
	rs[v] = true
}

func (rs ResultSet) Contains(v string) bool {
	return rs[v]
}

// Union adds every element of other to rs.
func (rs ResultSet) Union(other ResultSet) {
	for v := range other {
		rs[v] = true
	}
}

// Sorted returns the elements in ascending byte order.
func (rs ResultSet) Sorted() []string {
	return slices.Sorted(maps.Keys(rs))
}
