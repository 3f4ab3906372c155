package tensor_test

import (
	"testing"

	"github.com/herohde/chesslens/pkg/board"
	"github.com/herohde/chesslens/pkg/tensor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate(t *testing.T) {
	ok := tensor.NewObservation()
	require.NoError(t, ok.Validate())

	short := tensor.Observation(make([]float32, 10))
	err := short.Validate()
	require.Error(t, err)
	var shapeErr *tensor.ObservationShapeError
	assert.ErrorAs(t, err, &shapeErr)
	assert.Equal(t, 10, shapeErr.Got)
}

func TestArgminArgmax(t *testing.T) {
	obs := tensor.NewObservation()
	for k := 0; k < board.NumLabels; k++ {
		obs.Set(3, 4, board.Label(k), 1.0)
	}
	obs.Set(3, 4, board.WhiteQueen, 0.01)
	obs.Set(3, 4, board.BlackRook, 9.0)

	assert.Equal(t, board.WhiteQueen, obs.ArgminLabel(3, 4))
	assert.Equal(t, board.BlackRook, obs.ArgmaxLabel(3, 4))
}

func TestRotateIsReversible180(t *testing.T) {
	obs := tensor.NewObservation()
	obs.Set(0, 0, board.WhiteKing, 1)
	obs.Set(7, 7, board.BlackKing, 1)

	once := obs.Rotate(tensor.Rotate180)
	twice := once.Rotate(tensor.Rotate180)

	assert.Equal(t, obs.ArgmaxLabel(0, 0), twice.ArgmaxLabel(0, 0))
}

func TestRotate0MovesTopToBottom(t *testing.T) {
	obs := tensor.NewObservation()
	// Mark a white king in the top half, at rank 7.
	for k := 0; k < board.NumLabels; k++ {
		obs.Set(7, 3, board.Label(k), 1.0)
	}
	obs.Set(7, 3, board.WhiteKing, 0.0)

	rotated := obs.Rotate(tensor.Rotate0)
	assert.Equal(t, board.WhiteKing, rotated.ArgminLabel(0, 3))
}

func TestNegativeLogIsMonotone(t *testing.T) {
	obs := tensor.NewObservation()
	obs.Set(0, 0, board.Empty, 0.9)
	obs.Set(0, 0, board.WhitePawn, 0.1)

	nl := obs.NegativeLog()
	assert.Less(t, nl.At(0, 0, board.Empty), nl.At(0, 0, board.WhitePawn))
}
