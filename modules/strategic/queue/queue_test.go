package queue

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPopOrdersByWeightThenInsertion(t *testing.T) {
	q := New()
	q.Push(1000, 10)
	q.Push(2000, 20)
	q.Push(3000, 20) // same weight as 2000, inserted later

	order, weight, ok := q.Pop()
	require.True(t, ok)
	require.Equal(t, uint32(2000), order)
	require.Equal(t, uint32(20), weight)

	order, _, ok = q.Pop()
	require.True(t, ok)
	require.Equal(t, uint32(3000), order)

	order, _, ok = q.Pop()
	require.True(t, ok)
	require.Equal(t, uint32(1000), order)

	_, _, ok = q.Pop()
	require.False(t, ok)
}

func TestContainsAndLen(t *testing.T) {
	q := New()
	require.True(t, q.IsEmpty())
	q.Push(42, 5)
	require.False(t, q.IsEmpty())
	require.Equal(t, 1, q.Len())
	require.True(t, q.Contains(42))
	require.False(t, q.Contains(43))

	q.Pop()
	require.False(t, q.Contains(42))
}

func TestQueuesDisjointness(t *testing.T) {
	qs := NewQueues()
	qs.Normal.Push(1, 1)
	qs.Unloading.Push(2, 1)
	qs.ShutdownVendor.Push(3, 1)
	require.True(t, qs.Disjoint())

	qs.Unloading.Push(1, 1)
	require.False(t, qs.Disjoint())
}

func TestOfReturnsNamedQueue(t *testing.T) {
	qs := NewQueues()
	qs.Of(Normal).Push(1, 1)
	require.Equal(t, 1, qs.Normal.Len())
	require.Same(t, qs.Normal, qs.Of(Normal))
}

func TestRemoveDropsAMemberWithoutDisturbingOthers(t *testing.T) {
	q := New()
	q.Push(1, 10)
	q.Push(2, 20)
	q.Push(3, 5)

	require.True(t, q.Remove(2))
	require.False(t, q.Contains(2))
	require.Equal(t, 2, q.Len())
	require.False(t, q.Remove(2))

	order, _, ok := q.Pop()
	require.True(t, ok)
	require.Equal(t, uint32(1), order)
}

func TestWeightReportsCurrentPriority(t *testing.T) {
	q := New()
	q.Push(1, 10)
	w, ok := q.Weight(1)
	require.True(t, ok)
	require.Equal(t, uint32(10), w)

	_, ok = q.Weight(99)
	require.False(t, ok)
}

func TestPushReplacesExistingMemberWeight(t *testing.T) {
	q := New()
	q.Push(1, 10)
	q.Push(1, 99)
	require.Equal(t, 1, q.Len())
	w, _ := q.Weight(1)
	require.Equal(t, uint32(99), w)
}
