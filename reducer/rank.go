package reducer

import (
	"cmp"
	"slices"

	"golang.org/x/exp/constraints"
)

// MinBy finds the minimum element using a key function (like lodash's minBy).
// Ties keep the earliest element.
func MinBy[T any, K constraints.Ordered](slice []T, keyFunc func(T) K) T {
	if len(slice) == 0 {
		var zero T
		return zero
	}

	minVal := slice[0]
	minKey := keyFunc(minVal)
	for _, v := range slice[1:] {
		if k := keyFunc(v); k < minKey {
			minKey = k
			minVal = v
		}
	}

	return minVal
}

// TopK returns the k elements with the largest keys, largest first. Ties keep
// input order.
func TopK[T any, K constraints.Ordered](slice []T, k int, keyFunc func(T) K) []T {
	type keyed struct {
		v   T
		key K
	}

	all := make([]keyed, len(slice))
	for i, v := range slice {
		all[i] = keyed{v, keyFunc(v)}
	}
	slices.SortStableFunc(all, func(a, b keyed) int {
		return cmp.Compare(b.key, a.key)
	})

	k = min(k, len(all))
	out := make([]T, k)
	for i := range k {
		out[i] = all[i].v
	}
	return out
}
