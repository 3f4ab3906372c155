// Package hmm implements the time-indexed hidden-Markov beam search over
// the game tree: nodes carry an accumulated log-cost and a self-loop
// flag, children are lazily computed (self-loop first, then every legal
// successor), and Beams hold the breadth-capped frontier at each
// timestep.
package hmm

import (
	"math"
	"sort"
	"sync"

	"github.com/herohde/chesslens/pkg/board"
	"github.com/herohde/chesslens/pkg/gametree"
	"github.com/herohde/chesslens/pkg/tensor"
)

// Handle is a stable reference to a Node, valid for the lifetime of the
// Arena that produced it.
type Handle int32

const noHandle Handle = -1

// NoHandle is the sentinel Parent value for root nodes.
const NoHandle = noHandle

// Node is one node of the inference lattice: a Game-Tree Node, the
// timestep it belongs to, its accumulated cost, whether it was reached by
// a self-loop, and its lazily computed children.
type Node struct {
	Game     gametree.Handle
	Parent   Handle
	Timestep int
	Cost     float64
	SelfLoop bool

	once     sync.Once
	children []Handle
}

// Arena owns every HMM Node allocated during a session, backed by a
// game-tree Arena for position expansion.
type Arena struct {
	mu    sync.Mutex
	game  *gametree.Arena
	nodes []*Node
}

// NewArena constructs an arena over the given game-tree arena.
func NewArena(game *gametree.Arena) *Arena {
	return &Arena{game: game}
}

// Root creates the root HMM node at timestep 0, wrapping the given
// game-tree node.
func (a *Arena) Root(game gametree.Handle) Handle {
	return a.alloc(game, noHandle, false)
}

func (a *Arena) alloc(game gametree.Handle, parent Handle, selfLoop bool) Handle {
	a.mu.Lock()
	defer a.mu.Unlock()

	timestep := 0
	if parent != noHandle {
		timestep = a.nodes[parent].Timestep + 1
	}
	a.nodes = append(a.nodes, &Node{Game: game, Parent: parent, Timestep: timestep, SelfLoop: selfLoop})
	return Handle(len(a.nodes) - 1)
}

// Node returns the node for the given handle.
func (a *Arena) Node(h Handle) *Node {
	a.mu.Lock()
	defer a.mu.Unlock()

	return a.nodes[h]
}

// Expand returns the node's children: the self-loop first, then one
// child per legal successor ordered by Move, computed and cached on
// first call.
func (a *Arena) Expand(h Handle) []Handle {
	n := a.Node(h)
	n.once.Do(func() {
		children := make([]Handle, 0, 1)
		children = append(children, a.alloc(n.Game, h, true))

		legal := a.game.Expand(n.Game)
		moves := make([]board.Move, 0, len(legal))
		for m := range legal {
			moves = append(moves, m)
		}
		sort.Slice(moves, func(i, j int) bool { return moves[i].Less(moves[j]) })

		for _, m := range moves {
			children = append(children, a.alloc(legal[m], h, false))
		}
		n.children = children
	})
	return n.children
}

// childTransitionCost returns log(k), where k is the node's total number
// of children (self-loop included). Expand must have already run.
func (a *Arena) childTransitionCost(h Handle) float64 {
	children := a.Expand(h)
	return math.Log(float64(len(children)))
}

// Score evaluates and stores the accumulated cost of an expanded, non-root
// node against the given observation tensor: the observation term (base
// cost plus a doubled penalty on squares where the hypothesized move
// disagrees with either the parent board or the per-square most-likely
// label) plus the transition term (log sibling count, plus 20 unless this
// is a self-loop) plus the parent's cost.
func (a *Arena) Score(h Handle, obs tensor.Observation) {
	n := a.Node(h)
	self := a.game.Node(n.Game).Board
	parent := a.Node(n.Parent)
	parentBoard := a.game.Node(parent.Game).Board

	var observationCost float64
	for r := 0; r < 8; r++ {
		for f := 0; f < 8; f++ {
			observationCost += float64(obs.At(r, f, self.Cells[r][f]))
		}
	}
	for r := 0; r < 8; r++ {
		for f := 0; f < 8; f++ {
			cur := self.Cells[r][f]
			if cur != parentBoard.Cells[r][f] || cur != obs.ArgminLabel(r, f) {
				observationCost += float64(obs.At(r, f, cur))
			}
		}
	}

	transitionCost := a.childTransitionCost(n.Parent)
	if !n.SelfLoop {
		transitionCost += 20
	}

	n.Cost = observationCost + transitionCost + parent.Cost
}
