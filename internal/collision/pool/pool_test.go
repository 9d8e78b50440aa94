package pool

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sum(a, b int) (int, error) { return a + b, nil }

func TestCombine_SumsInAnyShape(t *testing.T) {
	for n := 1; n <= 33; n++ {
		items := make([]int, n)
		want := 0
		for i := range items {
			items[i] = i + 1
			want += items[i]
		}
		got, err := Combine(context.Background(), 4, items, sum)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
}

func TestCombine_SingleWorker(t *testing.T) {
	items := []int{1, 2, 3, 4, 5}
	got, err := Combine(context.Background(), 1, items, sum)
	require.NoError(t, err)
	assert.Equal(t, 15, got)
}

func TestCombine_PropagatesError(t *testing.T) {
	boom := errors.New("boom")
	items := []int{1, 2, 3, 4}
	_, err := Combine(context.Background(), 4, items, func(a, b int) (int, error) {
		if a+b > 3 {
			return 0, boom
		}
		return a + b, nil
	})
	assert.ErrorIs(t, err, boom)
}

func TestCombine_EmptyInputErrors(t *testing.T) {
	_, err := Combine(context.Background(), 4, []int{}, sum)
	assert.Error(t, err)
}

func TestWorkers_AtLeastOne(t *testing.T) {
	assert.GreaterOrEqual(t, Workers(), 1)
}
