package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArenaInsertGet(t *testing.T) {
	t.Parallel()

	arena := NewArena[string]()
	h1 := arena.Insert("a")
	h2 := arena.Insert("b")

	got, ok := arena.Get(h1)
	require.True(t, ok)
	assert.Equal(t, "a", got)

	got, ok = arena.Get(h2)
	require.True(t, ok)
	assert.Equal(t, "b", got)
	assert.Equal(t, 2, arena.Len())
}

func TestArenaNilHandle(t *testing.T) {
	t.Parallel()

	arena := NewArena[int]()
	arena.Insert(1)

	_, ok := arena.Get(Nil)
	assert.False(t, ok)
	assert.True(t, Nil.IsNil())
	assert.ErrorIs(t, arena.Remove(Nil), ErrHandleNotFound)
}

func TestArenaReuseInvalidatesOldHandle(t *testing.T) {
	t.Parallel()

	arena := NewArena[string]()
	old := arena.Insert("old")
	require.NoError(t, arena.Remove(old))

	reused := arena.Insert("new")
	assert.NotEqual(t, old, reused)
	assert.False(t, arena.Alive(old))
	assert.True(t, arena.Alive(reused))

	_, ok := arena.Get(old)
	assert.False(t, ok)
	require.ErrorIs(t, arena.Remove(old), ErrStaleHandle)
	require.ErrorIs(t, arena.Replace(old, "x"), ErrStaleHandle)
}

func TestArenaEachAndFind(t *testing.T) {
	t.Parallel()

	arena := NewArena[int]()
	handles := []Handle{arena.Insert(1), arena.Insert(2), arena.Insert(3)}
	require.NoError(t, arena.Remove(handles[1]))

	got := []int{}
	arena.Each(func(_ Handle, v int) bool {
		got = append(got, v)

		return true
	})
	assert.Equal(t, []int{1, 3}, got)
}

func TestArenaReplace(t *testing.T) {
	t.Parallel()

	arena := NewArena[string]()
	h := arena.Insert("a")
	require.NoError(t, arena.Replace(h, "b"))

	got, ok := arena.Get(h)
	require.True(t, ok)
	assert.Equal(t, "b", got)
}
