package hmm_test

import (
	"testing"

	"github.com/herohde/chesslens/pkg/board"
	"github.com/herohde/chesslens/pkg/board/fen"
	"github.com/herohde/chesslens/pkg/gametree"
	"github.com/herohde/chesslens/pkg/hmm"
	"github.com/herohde/chesslens/pkg/tensor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// oneHot builds an observation tensor with cost 0 on the label actually
// occupying each square and cost 1 on every other label, as described for
// the concrete scenarios.
func oneHot(b board.Board) tensor.Observation {
	obs := tensor.NewObservation()
	for r := 0; r < 8; r++ {
		for f := 0; f < 8; f++ {
			for k := 0; k < board.NumLabels; k++ {
				obs.Set(r, f, board.Label(k), 1.0)
			}
			obs.Set(r, f, b.Cells[r][f], 0.0)
		}
	}
	return obs
}

func uniform() tensor.Observation {
	obs := tensor.NewObservation()
	for i := range obs {
		obs[i] = 1.0
	}
	return obs
}

func newEngine(t *testing.T, position string, breadth int) (*hmm.Engine, *gametree.Arena) {
	t.Helper()
	ga := gametree.NewArena()
	root, err := ga.Root(position)
	require.NoError(t, err)
	return hmm.NewEngine(ga, root, breadth), ga
}

func bestBoard(e *hmm.Engine, ga *gametree.Arena, t int) board.Board {
	h := e.Beam(t)[0]
	n := e.Arena().Node(h)
	return ga.Node(n.Game).Board
}

func TestSelfLoopBias(t *testing.T) {
	e, ga := newEngine(t, fen.Initial, 50)

	require.NoError(t, e.Advance(1, uniform()))

	best := e.Arena().Node(e.Beam(1)[0])
	assert.True(t, best.SelfLoop, "uniform observation should favor the self-loop")
	assert.Equal(t, fen.Initial, fen.Encode(ga.Node(best.Game).Board, 0, 1))
}

func TestBeamCap(t *testing.T) {
	e, _ := newEngine(t, fen.Initial, 5)

	require.NoError(t, e.Advance(1, uniform()))
	assert.LessOrEqual(t, len(e.Beam(1)), 5)
}

func TestForwardConsistencyAndMonotoneCommitment(t *testing.T) {
	e, _ := newEngine(t, fen.Initial, 20)

	require.NoError(t, e.Advance(1, uniform()))
	require.NoError(t, e.Advance(2, uniform()))
	require.NoError(t, e.Advance(3, uniform()))

	for tstep := 1; tstep <= 3; tstep++ {
		parents := make(map[hmm.Handle]bool)
		for _, h := range e.Beam(tstep - 1) {
			parents[h] = true
		}
		for _, h := range e.Beam(tstep) {
			assert.True(t, parents[e.Arena().Node(h).Parent], "every node's parent must be in the previous beam")
		}
	}

	require.NoError(t, e.Commit(1))
	assert.Equal(t, 1, e.TopBindT())
	assert.Len(t, e.Beam(1), 1)

	require.NoError(t, e.Commit(2))
	assert.Equal(t, 2, e.TopBindT())
	assert.Len(t, e.Beam(1), 1)
	assert.Len(t, e.Beam(2), 1)

	err := e.Commit(1)
	var invalid *hmm.InvalidTimestepError
	assert.ErrorAs(t, err, &invalid, "top_bind_t must not decrease")
}

func TestAdvanceInvalidTimestep(t *testing.T) {
	e, _ := newEngine(t, fen.Initial, 20)

	err := e.Advance(2, uniform())
	var invalid *hmm.InvalidTimestepError
	assert.ErrorAs(t, err, &invalid)

	err = e.Advance(0, uniform())
	assert.ErrorAs(t, err, &invalid)
}

func TestNoiseResilienceDoesNotFollowIllegalTeleport(t *testing.T) {
	e, ga := newEngine(t, fen.Initial, 50)

	root := ga.Node(e.Arena().Node(e.Beam(0)[0]).Game).Board
	e2e4, err := board.ParseMove("e2e4")
	require.NoError(t, err)
	next, err := board.Apply(root, e2e4)
	require.NoError(t, err)

	obs := oneHot(next)
	e2 := board.NewSquare(1, 4)
	e4 := board.NewSquare(3, 4)
	d4 := board.NewSquare(3, 3)
	obs.Set(int(e2.Rank), int(e2.File), board.Empty, 1.0)
	obs.Set(int(e4.Rank), int(e4.File), board.WhitePawn, 1.0)
	for k := 0; k < board.NumLabels; k++ {
		if k != int(board.Empty) && k != int(board.WhitePawn) {
			obs.Set(int(e2.Rank), int(e2.File), board.Label(k), 3.0)
			obs.Set(int(e4.Rank), int(e4.File), board.Label(k), 3.0)
		}
	}
	obs.Set(int(d4.Rank), int(d4.File), board.WhitePawn, 0.5)

	require.NoError(t, e.Advance(1, obs))

	// The self-loop may still rank first overall (it is favored by 20); the
	// best non-self-loop child must be e2e4, since d4 is not a legal child.
	var best board.Board
	found := false
	for _, h := range e.Beam(1) {
		if n := e.Arena().Node(h); !n.SelfLoop {
			best, found = ga.Node(n.Game).Board, true
			break
		}
	}
	require.True(t, found)
	assert.Equal(t, next, best, "teleporting to d4 is illegal and must not be followed")
}

func TestPromotion(t *testing.T) {
	e, ga := newEngine(t, "8/P7/8/8/8/8/8/k6K w - - 0 1", 50)

	a8 := board.NewSquare(7, 0)
	promoted := ga.Node(e.Arena().Node(e.Beam(0)[0]).Game).Board
	promoted.Cells[a8.Rank][a8.File] = board.WhiteQueen
	promoted.Cells[6][0] = board.Empty

	require.NoError(t, e.Advance(1, oneHot(promoted)))
	require.NoError(t, e.Commit(1))

	best := bestBoard(e, ga, 1)
	assert.Equal(t, board.WhiteQueen, best.At(a8))
}

func TestScholarsMate(t *testing.T) {
	e, ga := newEngine(t, fen.Initial, 50)

	moves := []string{"e2e4", "e7e5", "f1c4", "b8c6", "d1h5", "g8f6", "h5f7"}

	cur := ga.Node(e.Arena().Node(e.Beam(0)[0]).Game).Board
	for i, ms := range moves {
		m, err := board.ParseMove(ms)
		require.NoError(t, err)

		next, err := board.Apply(cur, m)
		require.NoError(t, err)

		tstep := i + 1
		require.NoError(t, e.Advance(tstep, oneHot(next)))
		require.NoError(t, e.Commit(tstep))

		cur = next
	}

	expected, err := fen.Decode("r1bqkb1r/pppp1Qpp/2n2n2/4p3/2B1P3/8/PPPP1PPP/RNBQK1NR b KQkq - 0 4")
	require.NoError(t, err)

	assert.Equal(t, fen.EncodePosition(expected), fen.EncodePosition(bestBoard(e, ga, len(moves))))
}
