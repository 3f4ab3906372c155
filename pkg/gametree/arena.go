// Package gametree implements the lazily-expanded tree of reachable chess
// positions: a Board plus a pointer to its parent and a memoized map from
// Move to child. Nodes are arena-owned and referenced by stable handles,
// so pointer invalidation during arena growth is never a concern.
package gametree

import (
	"fmt"
	"sync"

	"github.com/herohde/chesslens/pkg/board"
	"github.com/herohde/chesslens/pkg/board/fen"
)

// Handle is a stable reference to a Node, valid for the lifetime of the
// Arena that produced it.
type Handle int32

const noHandle Handle = -1

// Node is one position in the game tree: an immutable Board, a link to
// its parent, and a lazily computed, memoized map of legal successors.
type Node struct {
	Board  board.Board
	Parent Handle

	once     sync.Once
	children map[board.Move]Handle
}

// Arena owns every Node created during a session. Memory is released only
// when the Arena itself is dropped; individual nodes are never freed.
type Arena struct {
	mu    sync.Mutex
	nodes []*Node
}

// NewArena constructs an empty arena.
func NewArena() *Arena {
	return &Arena{}
}

// Root creates a new root node from a FEN string.
func (a *Arena) Root(position string) (Handle, error) {
	b, err := fen.Decode(position)
	if err != nil {
		return noHandle, err
	}
	return a.alloc(b, noHandle), nil
}

// RootFromBoard creates a new root node from an already-parsed Board.
func (a *Arena) RootFromBoard(b board.Board) Handle {
	return a.alloc(b, noHandle)
}

func (a *Arena) alloc(b board.Board, parent Handle) Handle {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.nodes = append(a.nodes, &Node{Board: b, Parent: parent})
	return Handle(len(a.nodes) - 1)
}

// Node returns the node for the given handle.
func (a *Arena) Node(h Handle) *Node {
	a.mu.Lock()
	defer a.mu.Unlock()

	return a.nodes[h]
}

// Expand returns the node's legal-move children, computing and caching
// them on first call. At-most-one expansion happens per node even under
// concurrent calls, via sync.Once.
func (a *Arena) Expand(h Handle) map[board.Move]Handle {
	n := a.Node(h)
	n.once.Do(func() {
		legal := board.LegalChildren(n.Board)
		children := make(map[board.Move]Handle, len(legal))
		for m, b := range legal {
			children[m] = a.alloc(b, h)
		}
		n.children = children
	})
	return n.children
}

// Len returns the number of nodes allocated so far. Primarily useful for
// diagnostics and tests.
func (a *Arena) Len() int {
	a.mu.Lock()
	defer a.mu.Unlock()

	return len(a.nodes)
}

func (h Handle) String() string {
	if h == noHandle {
		return "<root>"
	}
	return fmt.Sprintf("#%d", int32(h))
}
