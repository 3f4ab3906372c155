// Package history extracts the committed (or full tentative) trajectory
// of boards from an inference engine, and de-duplicates consecutive
// repeats before FEN serialization.
package history

import (
	"github.com/herohde/chesslens/pkg/board"
	"github.com/herohde/chesslens/pkg/board/fen"
	"github.com/herohde/chesslens/pkg/board/zobrist"
	"github.com/herohde/chesslens/pkg/gametree"
	"github.com/herohde/chesslens/pkg/hmm"
)

// hashes is the shared zobrist table used to compare consecutive boards in
// Dedup without formatting a FEN string for every self-loop.
var hashes = zobrist.NewTable(0xC0FFEE)

// Extract walks from the best node in the current beam back through its
// ancestors, emitting the Board of every HMM Node whose timestep is
// at most top_bind_t (or at most top_t if includeUncommitted), in
// chronological order. Consecutive duplicate boards produced by
// self-loops are preserved; callers that serialize to FEN should
// de-duplicate via Dedup.
func Extract(e *hmm.Engine, game *gametree.Arena, includeUncommitted bool) []board.Board {
	limit := e.TopBindT()
	if includeUncommitted {
		limit = e.TopT()
	}

	top := e.Beam(e.TopT())
	if len(top) == 0 {
		return nil
	}

	var reversed []board.Board
	for node := top[0]; node != hmm.NoHandle; {
		n := e.Arena().Node(node)
		if n.Timestep <= limit {
			reversed = append(reversed, game.Node(n.Game).Board)
		}
		node = n.Parent
	}

	out := make([]board.Board, len(reversed))
	for i, b := range reversed {
		out[len(reversed)-1-i] = b
	}
	return out
}

// Dedup collapses consecutive boards that compare equal (ignoring
// halfmove/fullmove counters, which the history never tracks) into one,
// as self-loops in the committed trajectory would otherwise repeat the
// same position. Equality is checked via a zobrist hash rather than a
// formatted FEN string, since self-loops are the common case and hashing
// is far cheaper than string formatting on every one of them.
func Dedup(boards []board.Board) []board.Board {
	out := make([]board.Board, 0, len(boards))
	var lastHash zobrist.Hash
	for i, b := range boards {
		h := hashes.Hash(b)
		if i > 0 && h == lastHash {
			continue
		}
		out = append(out, b)
		lastHash = h
	}
	return out
}

// FENs renders a board sequence to FEN strings (position fields only),
// after de-duplication.
func FENs(boards []board.Board) []string {
	deduped := Dedup(boards)
	out := make([]string, len(deduped))
	for i, b := range deduped {
		out[i] = fen.EncodePosition(b)
	}
	return out
}
