package gametree_test

import (
	"testing"

	"github.com/herohde/chesslens/pkg/board/fen"
	"github.com/herohde/chesslens/pkg/gametree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootAndExpand(t *testing.T) {
	a := gametree.NewArena()

	root, err := a.Root(fen.Initial)
	require.NoError(t, err)

	children := a.Expand(root)
	assert.Len(t, children, 20, "20 legal moves from the initial position")

	for _, h := range children {
		n := a.Node(h)
		assert.Equal(t, root, n.Parent)
	}
}

func TestExpandIsMemoized(t *testing.T) {
	a := gametree.NewArena()
	root, err := a.Root(fen.Initial)
	require.NoError(t, err)

	first := a.Expand(root)
	before := a.Len()
	second := a.Expand(root)
	after := a.Len()

	assert.Equal(t, before, after, "second expand must not allocate new nodes")
	assert.Equal(t, first, second)
}

func TestExpandIsConcurrencySafe(t *testing.T) {
	a := gametree.NewArena()
	root, err := a.Root(fen.Initial)
	require.NoError(t, err)

	results := make(chan int, 8)
	for i := 0; i < 8; i++ {
		go func() {
			results <- len(a.Expand(root))
		}()
	}
	for i := 0; i < 8; i++ {
		assert.Equal(t, 20, <-results)
	}
	assert.Equal(t, 21, a.Len(), "root plus 20 children, expanded exactly once")
}

func TestInvalidRootFEN(t *testing.T) {
	a := gametree.NewArena()
	_, err := a.Root("not a fen")
	require.Error(t, err)
}
