// Package fen contains utilities for reading and writing positions in
// Forsyth-Edwards Notation.
package fen

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/herohde/chesslens/pkg/board"
)

// Initial is the FEN of the standard starting position.
const Initial = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

// Decode parses the position/turn/castling/en-passant fields of a FEN
// string. The halfmove and fullmove fields are tolerated but ignored.
// Fails with a *board.InvalidFENError on syntax error, square-count
// mismatch, or a §3 invariant violation. Castling rights are not checked
// against king/rook home squares at parse time.
func Decode(str string) (board.Board, error) {
	parts := strings.Fields(strings.TrimSpace(str))
	if len(parts) < 4 {
		return board.Board{}, invalid(str, "expected at least 4 space-separated fields")
	}

	cells, err := decodePlacement(parts[0])
	if err != nil {
		return board.Board{}, invalid(str, err.Error())
	}

	turn, ok := decodeTurn(parts[1])
	if !ok {
		return board.Board{}, invalid(str, "invalid active color")
	}

	castling, ok := board.ParseCastling(parts[2])
	if !ok {
		return board.Board{}, invalid(str, "invalid castling rights")
	}

	var ep board.Square
	epValid := false
	if parts[3] != "-" {
		sq, err := board.ParseSquare(parts[3])
		if err != nil {
			return board.Board{}, invalid(str, "invalid en passant square")
		}
		ep, epValid = sq, true
	}

	b := board.NewBoard(cells, turn, castling, ep, epValid)
	if reason := b.Validate(); reason != "" {
		return board.Board{}, invalid(str, reason)
	}
	return b, nil
}

func invalid(fen, reason string) error {
	return &board.InvalidFENError{FEN: fen, Reason: reason}
}

func decodePlacement(field string) ([8][8]board.Label, error) {
	var cells [8][8]board.Label
	for r := range cells {
		for f := range cells[r] {
			cells[r][f] = board.Empty
		}
	}

	ranks := strings.Split(field, "/")
	if len(ranks) != 8 {
		return cells, fmt.Errorf("expected 8 ranks, got %d", len(ranks))
	}

	for i, rank := range ranks {
		r := 7 - i // FEN lists rank 8 first; rank 0 is white's back rank.
		file := 0
		for _, c := range rank {
			switch {
			case unicode.IsDigit(c):
				file += int(c - '0')
			default:
				color, kind, ok := decodePieceChar(c)
				if !ok {
					return cells, fmt.Errorf("invalid piece character %q", c)
				}
				if file >= 8 {
					return cells, fmt.Errorf("rank %d overflows 8 files", r+1)
				}
				cells[r][file] = board.NewLabel(color, kind)
				file++
			}
		}
		if file != 8 {
			return cells, fmt.Errorf("rank %d does not sum to 8 files", r+1)
		}
	}
	return cells, nil
}

func decodeTurn(field string) (board.Color, bool) {
	switch field {
	case "w":
		return board.White, true
	case "b":
		return board.Black, true
	default:
		return 0, false
	}
}

func decodePieceChar(r rune) (board.Color, board.Kind, bool) {
	kind, ok := board.ParseKind(r)
	if !ok {
		return 0, 0, false
	}
	if unicode.IsUpper(r) {
		return board.White, kind, true
	}
	return board.Black, kind, true
}

// Encode renders the position, turn, castling rights, and en passant
// target as the first four FEN fields, followed by the given halfmove and
// fullmove counters.
func Encode(b board.Board, noprogress, fullmoves int) string {
	var sb strings.Builder
	for i := 0; i < 8; i++ {
		r := 7 - i
		blanks := 0
		for f := 0; f < 8; f++ {
			label := b.Cells[r][f]
			if label == board.Empty {
				blanks++
				continue
			}
			if blanks > 0 {
				sb.WriteString(strconv.Itoa(blanks))
				blanks = 0
			}
			sb.WriteString(encodePieceChar(label))
		}
		if blanks > 0 {
			sb.WriteString(strconv.Itoa(blanks))
		}
		if i < 7 {
			sb.WriteRune('/')
		}
	}

	ep := "-"
	if sq, ok := b.EnPassant(); ok {
		ep = sq.String()
	}

	return fmt.Sprintf("%v %v %v %v %v %v", sb.String(), b.Turn(), b.Castling(), ep, noprogress, fullmoves)
}

// EncodePosition renders only the position/turn/castling/en-passant fields
// (no halfmove/fullmove counters), used for de-duplication and comparison.
func EncodePosition(b board.Board) string {
	full := Encode(b, 0, 1)
	parts := strings.Fields(full)
	return strings.Join(parts[0:4], " ")
}

func encodePieceChar(l board.Label) string {
	s := l.Kind().String()
	if l.IsWhite() {
		return strings.ToUpper(s)
	}
	return s
}
