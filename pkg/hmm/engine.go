package hmm

import (
	"github.com/herohde/chesslens/pkg/gametree"
	"github.com/herohde/chesslens/pkg/tensor"
)

// Engine owns the sequence of Beams, advancing it on each observation and
// pruning laterally (beam width) and, on commitment, backward through
// time along ancestor lineage.
type Engine struct {
	arena   *Arena
	breadth int
	beams   []Beam
	bindT   int
}

// NewEngine constructs an engine rooted at the given game-tree node, with
// beams capped at breadth nodes.
func NewEngine(game *gametree.Arena, root gametree.Handle, breadth int) *Engine {
	arena := NewArena(game)
	rootHandle := arena.Root(root)
	return &Engine{
		arena:   arena,
		breadth: breadth,
		beams:   []Beam{{rootHandle}},
	}
}

// Arena returns the underlying HMM node arena, for callers (e.g. history
// extraction) that need direct node access.
func (e *Engine) Arena() *Arena {
	return e.arena
}

// TopT returns the most recently advanced timestep.
func (e *Engine) TopT() int {
	return len(e.beams) - 1
}

// TopBindT returns the most recently committed timestep.
func (e *Engine) TopBindT() int {
	return e.bindT
}

// Beam returns the beam at the given timestep.
func (e *Engine) Beam(t int) Beam {
	return e.beams[t]
}

// Advance extends every node of beams[timestep-1] by every child
// (self-loop plus legal successors), scores each against obs, inserts
// into beams[timestep], and truncates to breadth. timestep must be
// TopT() (to recompute the most recent beam against a corrected
// observation) or TopT()+1 (to extend the frontier).
func (e *Engine) Advance(timestep int, obs tensor.Observation) error {
	if err := obs.Validate(); err != nil {
		return err
	}
	if timestep <= 0 {
		return &InvalidTimestepError{Timestep: timestep, Reason: "must be positive"}
	}
	if timestep != e.TopT() && timestep != e.TopT()+1 {
		return &InvalidTimestepError{Timestep: timestep, Reason: "must equal top_t or top_t+1"}
	}

	if timestep == e.TopT() {
		e.beams[timestep] = nil
	} else {
		e.beams = append(e.beams, nil)
	}

	beam := e.beams[timestep]
	for _, parent := range e.beams[timestep-1] {
		for _, child := range e.arena.Expand(parent) {
			e.arena.Score(child, obs)
			beam = e.arena.insert(beam, child)
		}
	}
	if len(beam) > e.breadth {
		beam = beam[:e.breadth]
	}
	e.beams[timestep] = beam

	if len(beam) == 0 {
		return &BeamEmptyError{Timestep: timestep}
	}
	return nil
}

// Commit freezes the beam history prefix up to timestep: it walks the
// best node in beams[TopT()] back through its ancestors, collapsing each
// ancestor's beam at or before timestep to that single ancestor, then
// forward-filters every later beam to members whose parent survived.
// timestep must lie in (TopBindT(), TopT()].
func (e *Engine) Commit(timestep int) error {
	if timestep > e.TopT() || timestep <= e.bindT {
		return &InvalidTimestepError{Timestep: timestep, Reason: "must be in (top_bind_t, top_t]"}
	}
	top := e.beams[e.TopT()]
	if len(top) == 0 {
		return &BeamEmptyError{Timestep: e.TopT()}
	}

	for node := top[0]; node != noHandle; {
		n := e.arena.Node(node)
		if n.Timestep <= timestep {
			e.beams[n.Timestep] = Beam{node}
		}
		node = n.Parent
	}

	for t := timestep + 1; t <= e.TopT(); t++ {
		validParents := make(map[Handle]bool, len(e.beams[t-1]))
		for _, s := range e.beams[t-1] {
			validParents[s] = true
		}
		var pruned Beam
		for _, s := range e.beams[t] {
			if validParents[e.arena.Node(s).Parent] {
				pruned = append(pruned, s)
			}
		}
		e.beams[t] = pruned
	}

	e.bindT = timestep
	return nil
}
