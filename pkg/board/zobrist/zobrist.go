// Package zobrist computes position hashes for fast de-duplication of
// chess positions, as used by the history extractor's Dedup.
package zobrist

import (
	"math/rand"

	"github.com/herohde/chesslens/pkg/board"
)

// Hash is a position hash based on piece-squares, turn, castling rights,
// and en passant target. Two boards that are equal under §3's definition
// of position equality hash to the same value.
//
// See also: https://research.cs.wisc.edu/techreports/1970/TR88.pdf.
type Hash uint64

// Table is a pseudo-randomized table for computing position hashes.
// Tables are not comparable across instances: hash values are only
// meaningful relative to the Table that produced them.
type Table struct {
	pieces    [8][8][board.NumLabels]Hash
	castling  [16]Hash
	enpassant [8]Hash
	turn      [2]Hash
}

// NewTable builds a table from the given seed. The same seed always
// produces the same table, so hashes are reproducible across runs.
func NewTable(seed int64) *Table {
	t := &Table{}
	r := rand.New(rand.NewSource(seed))

	for rank := 0; rank < 8; rank++ {
		for file := 0; file < 8; file++ {
			for k := 0; k < board.NumLabels; k++ {
				t.pieces[rank][file][k] = Hash(r.Uint64())
			}
		}
	}
	for i := range t.castling {
		t.castling[i] = Hash(r.Uint64())
	}
	for f := range t.enpassant {
		t.enpassant[f] = Hash(r.Uint64())
	}
	t.turn[board.White] = Hash(r.Uint64())
	t.turn[board.Black] = Hash(r.Uint64())

	return t
}

// Hash computes the zobrist hash of a board from scratch. Unlike the
// incremental variant used by engines searching a single line, the tracker
// jumps between unrelated positions across beam members, so there is no
// stable "previous hash" to update from.
func (t *Table) Hash(b board.Board) Hash {
	var h Hash
	for rank := 0; rank < 8; rank++ {
		for file := 0; file < 8; file++ {
			h ^= t.pieces[rank][file][b.Cells[rank][file]]
		}
	}
	h ^= t.castling[b.Castling()]
	if ep, ok := b.EnPassant(); ok {
		h ^= t.enpassant[ep.File]
	}
	h ^= t.turn[b.Turn()]
	return h
}
