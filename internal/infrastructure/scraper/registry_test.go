package scraper

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry(t *testing.T) {
	amazon := &namedAdapter{name: "amazon"}
	vinted := &namedAdapter{name: "vinted", closeErr: errors.New("browser gone")}
	r := NewRegistry(vinted, amazon)

	assert.Equal(t, []string{"vinted", "amazon"}, r.Names())

	got, ok := r.Get("amazon")
	require.True(t, ok)
	assert.Same(t, amazon, got)

	_, ok = r.Get("ebay")
	assert.False(t, ok)

	replacement := &namedAdapter{name: "vinted"}
	r.Register(replacement)
	assert.Equal(t, []string{"vinted", "amazon"}, r.Names())
	got, _ = r.Get("vinted")
	assert.Same(t, replacement, got)

	names := r.Names()
	names[0] = "mutated"
	assert.Equal(t, "vinted", r.Names()[0])

	require.NoError(t, r.Close())
	assert.True(t, amazon.closed)
	assert.True(t, replacement.closed)
	assert.False(t, vinted.closed)
}

func TestRegistry_CloseJoinsErrors(t *testing.T) {
	boom := errors.New("browser gone")
	r := NewRegistry(&namedAdapter{name: "a", closeErr: boom}, &namedAdapter{name: "b"})
	assert.ErrorIs(t, r.Close(), boom)
}
