package heap

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newArena(t *testing.T) *Arena {
	t.Helper()
	a, err := NewArena(1 << 16)
	require.NoError(t, err)
	return a
}

func TestArena_New(t *testing.T) {
	a := newArena(t)

	o, err := a.New(2)
	require.NoError(t, err)
	assert.True(t, o.Live())
	assert.True(t, a.Owns(o))
	assert.Equal(t, int64(1), o.Refs())
	assert.Equal(t, 2, o.Len())
	assert.Equal(t, 1, a.Len())
	assert.Zero(t, o.Addr()%wordSize)

	start, end := o.Range()
	assert.Equal(t, o.Addr(), start)
	assert.Equal(t, (headerWords+2)*wordSize, end-start)

	for i := 0; i < o.Len(); i++ {
		assert.Zero(t, o.Word(i))
		assert.Nil(t, o.Field(i))
	}

	assert.Equal(t, o, a.Lookup(o.Addr()))
	assert.Nil(t, a.Lookup(o.Addr()+wordSize))
	assert.Nil(t, a.Lookup(0))

	empty, err := a.New(0)
	require.NoError(t, err)
	assert.NotEqual(t, o.Addr(), empty.Addr())
	assert.Equal(t, 2, a.Len())
}

func TestNewArena_ReadWrite(t *testing.T) {
	a := newArena(t)
	o, err := a.New(64)
	require.NoError(t, err)

	for i := 0; i < o.Len(); i++ {
		o.SetWord(i, ^uintptr(i))
	}
	for i := 0; i < o.Len(); i++ {
		assert.Equal(t, ^uintptr(i), o.Word(i), "word %d", i)
	}
	o.Retain(1)
	assert.Equal(t, int64(2), o.Refs())
}

func TestArena_NewTooLarge(t *testing.T) {
	a := newArena(t)
	_, err := a.New(-1)
	assert.True(t, errors.Is(err, ErrTooLarge))
}

func TestObject_Nil(t *testing.T) {
	var o *Object
	assert.False(t, o.Live())
	assert.False(t, newArena(t).Owns(nil))
}

func TestObject_Fields(t *testing.T) {
	a := newArena(t)
	holder, err := a.New(2)
	require.NoError(t, err)
	b, err := a.New(0)
	require.NoError(t, err)
	c, err := a.New(0)
	require.NoError(t, err)

	assert.Nil(t, holder.SetField(0, b))
	assert.Equal(t, int64(2), b.Refs())
	assert.Equal(t, b, holder.Field(0))
	assert.Equal(t, b.Addr(), holder.Word(0))

	assert.Equal(t, b, holder.SetField(0, c))
	assert.Equal(t, int64(2), c.Refs())
	// the previous referent is handed back, not released
	assert.Equal(t, int64(2), b.Refs())

	assert.Equal(t, c, holder.SetField(0, nil))
	assert.Zero(t, holder.Word(0))

	holder.SetWord(1, 42)
	assert.Equal(t, uintptr(42), holder.Word(1))

	b.Retain(3)
	assert.Equal(t, int64(5), b.Refs())
}

func TestArena_Release(t *testing.T) {
	a := newArena(t)
	holder, err := a.New(2)
	require.NoError(t, err)
	b, err := a.New(0)
	require.NoError(t, err)

	holder.SetField(0, b)
	holder.SetWord(1, 7)

	freed, err := a.Release(holder)
	require.NoError(t, err)
	assert.True(t, freed)
	assert.False(t, holder.Live())
	assert.False(t, a.Owns(holder))

	// the reference held by holder went with it
	assert.True(t, b.Live())
	assert.Equal(t, int64(1), b.Refs())
	assert.Equal(t, 1, a.Len())

	freed, err = a.Release(b)
	require.NoError(t, err)
	assert.True(t, freed)
	assert.Zero(t, a.Len())

	_, err = a.Release(b)
	assert.True(t, errors.Is(err, ErrNotAllocated))
}

func TestArena_ReleaseCascade(t *testing.T) {
	a := newArena(t)
	chain := make([]*Object, 4)
	for i := range chain {
		var err error
		chain[i], err = a.New(1)
		require.NoError(t, err)
	}
	for i := 0; i < len(chain)-1; i++ {
		chain[i].SetField(0, chain[i+1])
		_, err := a.Release(chain[i+1])
		require.NoError(t, err)
	}

	freed, err := a.Release(chain[0])
	require.NoError(t, err)
	assert.True(t, freed)
	assert.Zero(t, a.Len())
}

func TestArena_ReleaseSelfReference(t *testing.T) {
	a := newArena(t)
	o, err := a.New(1)
	require.NoError(t, err)
	o.SetField(0, o)
	assert.Equal(t, int64(2), o.Refs())

	freed, err := a.Release(o)
	require.NoError(t, err)
	assert.False(t, freed)

	freed, err = a.Release(o)
	require.NoError(t, err)
	assert.True(t, freed)
	assert.Zero(t, a.Len())
}

func TestArena_ReleaseForeign(t *testing.T) {
	a, b := newArena(t), newArena(t)
	o, err := b.New(0)
	require.NoError(t, err)

	_, err = a.Release(o)
	assert.True(t, errors.Is(err, ErrNotAllocated))
	assert.True(t, o.Live())
	assert.Equal(t, int64(1), o.Refs())
}
