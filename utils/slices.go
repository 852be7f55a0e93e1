// Package utils implements small generic helpers shared across the module.
package utils

import "golang.org/x/exp/constraints"

// MaxSlice returns the maximum value of the slice.
func MaxSlice[V constraints.Ordered](slice []V) (max V) {
	for _, c := range slice {
		if c > max {
			max = c
		}
	}
	return
}

// MinSlice returns the minimum value of the slice.
func MinSlice[V constraints.Ordered](slice []V) (min V) {
	if len(slice) == 0 {
		return
	}
	min = slice[0]
	for _, c := range slice[1:] {
		if c < min {
			min = c
		}
	}
	return
}

// ArgMin returns the index of the smallest value of the slice, or -1 for
// an empty slice. Ties resolve to the lowest index.
func ArgMin[V constraints.Ordered](slice []V) (idx int) {
	if len(slice) == 0 {
		return -1
	}
	idx = 0
	for i, c := range slice[1:] {
		if c < slice[idx] {
			idx = i + 1
		}
	}
	return
}

// EqualSlice reports whether a and b hold the same values.
func EqualSlice[V comparable](a, b []V) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
