package fn

import (
	"cmp"
	"slices"
)

// Map applies f to each element.
func Map[T, U any](items []T, f func(T) U) []U {
	out := make([]U, len(items))
	for i, v := range items {
		out[i] = f(v)
	}
	return out
}

// Unique returns unique elements preserving order.
func Unique[T comparable](items []T) []T {
	seen := make(map[T]struct{})
	var out []T
	for _, v := range items {
		if _, ok := seen[v]; !ok {
			seen[v] = struct{}{}
			out = append(out, v)
		}
	}
	return out
}

// SortedUnique returns the distinct elements in ascending order.
func SortedUnique[T cmp.Ordered](items []T) []T {
	out := Unique(items)
	slices.Sort(out)
	return out
}

// GroupBy groups items by a key function, preserving item order within a group.
func GroupBy[T any, K comparable](items []T, key func(T) K) map[K][]T {
	out := make(map[K][]T)
	for _, v := range items {
		k := key(v)
		out[k] = append(out[k], v)
	}
	return out
}

// SortedKeys returns the keys of m in ascending order.
func SortedKeys[K cmp.Ordered, V any](m map[K]V) []K {
	keys := make([]K, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// Set builds a membership set from items.
func Set[T comparable](items []T) map[T]struct{} {
	out := make(map[T]struct{}, len(items))
	for _, v := range items {
		out[v] = struct{}{}
	}
	return out
}
