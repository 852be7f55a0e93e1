package utils

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSlices(t *testing.T) {
	t.Run("MaxSlice", func(t *testing.T) {
		require.Equal(t, 7, MaxSlice([]int{3, 7, 1}))
		require.Equal(t, 0, MaxSlice([]int(nil)))
	})

	t.Run("MinSlice", func(t *testing.T) {
		require.Equal(t, 1, MinSlice([]int{3, 7, 1}))
		require.Equal(t, 0.5, MinSlice([]float64{0.5, 2}))
		require.Equal(t, 0, MinSlice([]int(nil)))
	})

	t.Run("ArgMin", func(t *testing.T) {
		require.Equal(t, 2, ArgMin([]float64{3, 7, 1}))
		require.Equal(t, 0, ArgMin([]int{2, 2, 3})) // ties to the lowest index
		require.Equal(t, -1, ArgMin([]int(nil)))
	})

	t.Run("EqualSlice", func(t *testing.T) {
		require.True(t, EqualSlice([]byte{1, 2}, []byte{1, 2}))
		require.False(t, EqualSlice([]byte{1, 2}, []byte{1, 3}))
		require.False(t, EqualSlice([]byte{1, 2}, []byte{1}))
	})
}
