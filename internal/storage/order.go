package storage

import (
	"cmp"
	"slices"
)

// SortNewestFirst orders docs by CreatedAt descending, then ID ascending.
// In-process backends use it so every backend lists in the same order.
func SortNewestFirst(docs []Document) {
	slices.SortFunc(docs, func(a, b Document) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
}
