package ordered_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dagchain/corenode/ordered"
)

func TestMapPreservesInsertionOrder(t *testing.T) {
	m := ordered.NewMap[string, int]()
	m.Set("c", 3)
	m.Set("a", 1)
	m.Set("b", 2)

	assert.Equal(t, []string{"c", "a", "b"}, m.Keys())
	assert.Equal(t, 3, m.Len())
}

func TestMapSetUpdatesWithoutReordering(t *testing.T) {
	m := ordered.NewMap[string, int]()
	m.Set("a", 1)
	m.Set("b", 2)
	m.Set("a", 99)

	assert.Equal(t, []string{"a", "b"}, m.Keys())
	v, ok := m.Get("a")
	assert.True(t, ok)
	assert.Equal(t, 99, v)
}

func TestMapSetIfAbsentIsFirstWriterWins(t *testing.T) {
	m := ordered.NewMap[string, int]()
	assert.True(t, m.SetIfAbsent("a", 1))
	assert.False(t, m.SetIfAbsent("a", 2))

	v, ok := m.Get("a")
	assert.True(t, ok)
	assert.Equal(t, 1, v)
}

func TestMapDeletePreservesRemainingOrder(t *testing.T) {
	m := ordered.NewMap[string, int]()
	m.Set("a", 1)
	m.Set("b", 2)
	m.Set("c", 3)

	m.Delete("b")
	assert.Equal(t, []string{"a", "c"}, m.Keys())
	assert.Equal(t, 2, m.Len())

	_, ok := m.Get("b")
	assert.False(t, ok)
}

func TestMapDeleteMissingKeyIsNoop(t *testing.T) {
	m := ordered.NewMap[string, int]()
	m.Set("a", 1)
	m.Delete("missing")
	assert.Equal(t, []string{"a"}, m.Keys())
}

func TestMapEachVisitsInOrder(t *testing.T) {
	m := ordered.NewMap[string, int]()
	m.Set("a", 1)
	m.Set("b", 2)
	m.Set("c", 3)

	var seen []string
	m.Each(func(k string, v int) {
		seen = append(seen, k)
	})
	assert.Equal(t, []string{"a", "b", "c"}, seen)
}

func TestSetAddAndContains(t *testing.T) {
	s := ordered.NewSet[string]()
	assert.True(t, s.Add("x"))
	assert.False(t, s.Add("x"))
	assert.True(t, s.Contains("x"))
	assert.False(t, s.Contains("y"))
	assert.Equal(t, []string{"x"}, s.Items())
}

func TestSetRemove(t *testing.T) {
	s := ordered.NewSet[string]()
	s.Add("x")
	s.Add("y")
	s.Remove("x")
	assert.False(t, s.Contains("x"))
	assert.Equal(t, []string{"y"}, s.Items())
	assert.Equal(t, 1, s.Len())
}
