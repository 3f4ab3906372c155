package board

// LegalChildren enumerates every legal successor of b, keyed by the move
// that produces it. For every own piece, candidate destinations are
// generated by piece kind; each candidate is rejected if the resulting
// position leaves the mover's own king attacked.
func LegalChildren(b Board) map[Move]Board {
	turn := b.Turn()
	out := make(map[Move]Board)

	for r := 0; r < 8; r++ {
		for f := 0; f < 8; f++ {
			sq := NewSquare(r, f)
			label := b.At(sq)
			if label == Empty || label.Color() != turn {
				continue
			}

			switch label.Kind() {
			case Pawn:
				genPawnMoves(b, sq, turn, out)
			case Knight:
				genOffsetMoves(b, sq, turn, knightOffsets, out)
			case Bishop:
				genSlidingMoves(b, sq, turn, bishopDirs[:], out)
			case Rook:
				genSlidingMoves(b, sq, turn, rookDirs[:], out)
			case Queen:
				genSlidingMoves(b, sq, turn, queenDirs[:], out)
			case King:
				genKingMoves(b, sq, turn, out)
			}
		}
	}
	return out
}

// Apply performs a single named move. Semantically LegalChildren(b)[m].
func Apply(b Board, m Move) (Board, error) {
	children := LegalChildren(b)
	nb, ok := children[m]
	if !ok {
		return Board{}, &InvalidMoveError{Move: m}
	}
	return nb, nil
}

// Adjudicate marks a position with zero legal children as checkmate or
// stalemate, matching the invariant that a childless node is terminal.
func Adjudicate(b Board) Board {
	nb := b
	nb.Flags |= GameOver
	if !b.IsChecked() {
		nb.Flags |= Stalemate
	}
	return nb
}

var (
	knightOffsets = [8][2]int{{1, 2}, {2, 1}, {2, -1}, {1, -2}, {-1, -2}, {-2, -1}, {-2, 1}, {-1, 2}}
	kingOffsets   = [8][2]int{{1, 0}, {1, 1}, {0, 1}, {-1, 1}, {-1, 0}, {-1, -1}, {0, -1}, {1, -1}}
	bishopDirs    = [4][2]int{{1, 1}, {1, -1}, {-1, 1}, {-1, -1}}
	rookDirs      = [4][2]int{{1, 0}, {-1, 0}, {0, 1}, {0, -1}}
	queenDirs     = [8][2]int{{1, 1}, {1, -1}, {-1, 1}, {-1, -1}, {1, 0}, {-1, 0}, {0, 1}, {0, -1}}
)

// moveBuild describes the board-level side effects of one candidate move,
// beyond the generic "move a piece from A to B".
type moveBuild struct {
	from, to       Square
	promotion      Kind
	epCapture      *Square
	castleRookFrom *Square
	castleRookTo   *Square
	newEP          *Square
}

// build materializes the board resulting from spec, fully updating
// castling rights, en passant state, piece counts, side to move, and the
// in-check flag of the resulting position. It performs no legality
// filtering; callers filter afterwards.
func build(b Board, turn Color, spec moveBuild) Board {
	nb := b
	moving := b.At(spec.from)

	nb.Cells[spec.from.Rank][spec.from.File] = Empty
	if spec.epCapture != nil {
		nb.Cells[spec.epCapture.Rank][spec.epCapture.File] = Empty
	}

	placed := moving
	if spec.promotion != NoKind {
		placed = NewLabel(turn, spec.promotion)
	}
	nb.Cells[spec.to.Rank][spec.to.File] = placed

	if spec.castleRookFrom != nil {
		rook := nb.Cells[spec.castleRookFrom.Rank][spec.castleRookFrom.File]
		nb.Cells[spec.castleRookFrom.Rank][spec.castleRookFrom.File] = Empty
		nb.Cells[spec.castleRookTo.Rank][spec.castleRookTo.File] = rook
	}

	rights := b.Castling()
	if moving.Kind() == King {
		if turn == White {
			rights &^= WhiteKingSide | WhiteQueenSide
		} else {
			rights &^= BlackKingSide | BlackQueenSide
		}
	}
	rights = clearCastlingForSquare(rights, spec.from)
	rights = clearCastlingForSquare(rights, spec.to)

	nb.Flags = Flags(rights) & castlingFlags
	if turn.Opponent() == White {
		nb.Flags |= WhiteToMove
	}
	if spec.newEP != nil {
		nb.Flags |= EnPassantValid
		nb.EPSquare = *spec.newEP
	} else {
		nb.EPSquare = Square{}
	}

	nb.recount()

	if IsAttacked(nb, kingSquare(nb, turn.Opponent()), turn) {
		nb.Flags |= InCheck
	}
	return nb
}

func clearCastlingForSquare(rights Castling, sq Square) Castling {
	switch {
	case sq == NewSquare(0, 0):
		rights &^= WhiteQueenSide
	case sq == NewSquare(0, 7):
		rights &^= WhiteKingSide
	case sq == NewSquare(7, 0):
		rights &^= BlackQueenSide
	case sq == NewSquare(7, 7):
		rights &^= BlackKingSide
	}
	return rights
}

// addIfLegal filters a candidate: it is rejected if the mover's own king
// ends up attacked.
func addIfLegal(out map[Move]Board, turn Color, m Move, nb Board) {
	if IsAttacked(nb, kingSquare(nb, turn), turn.Opponent()) {
		return
	}
	out[m] = nb
}

func kingSquare(b Board, c Color) Square {
	want := NewLabel(c, King)
	for r := 0; r < 8; r++ {
		for f := 0; f < 8; f++ {
			if b.Cells[r][f] == want {
				return NewSquare(r, f)
			}
		}
	}
	return Square{Rank: -1, File: -1} // unreachable for a valid board
}

func genPawnMoves(b Board, sq Square, turn Color, out map[Move]Board) {
	dir := 1
	startRank, promoRank := 1, 7
	if turn == Black {
		dir = -1
		startRank, promoRank = 6, 0
	}

	// Single push, and two-square jump from the start rank.
	if one, ok := sq.Offset(dir, 0); ok && b.At(one) == Empty {
		emitPawnAdvance(b, sq, one, turn, promoRank, out)

		if int(sq.Rank) == startRank {
			if two, ok := sq.Offset(2*dir, 0); ok && b.At(two) == Empty {
				ep := one
				nb := build(b, turn, moveBuild{from: sq, to: two, newEP: &ep})
				addIfLegal(out, turn, Move{From: sq, To: two}, nb)
			}
		}
	}

	// Diagonal captures, including en passant.
	for _, df := range [2]int{-1, 1} {
		dest, ok := sq.Offset(dir, df)
		if !ok {
			continue
		}

		target := b.At(dest)
		if target != Empty && target.Color() == turn.Opponent() {
			emitPawnCapture(b, sq, dest, turn, promoRank, out)
			continue
		}
		if epSq, valid := b.EnPassant(); valid && dest == epSq && target == Empty {
			captured := NewSquare(int(sq.Rank), int(dest.File))
			nb := build(b, turn, moveBuild{from: sq, to: dest, epCapture: &captured})
			addIfLegal(out, turn, Move{From: sq, To: dest}, nb)
		}
	}
}

func emitPawnAdvance(b Board, from, to Square, turn Color, promoRank int, out map[Move]Board) {
	if int(to.Rank) == promoRank {
		for _, k := range PromotionKinds {
			nb := build(b, turn, moveBuild{from: from, to: to, promotion: k})
			addIfLegal(out, turn, Move{From: from, To: to, Promotion: k}, nb)
		}
		return
	}
	nb := build(b, turn, moveBuild{from: from, to: to})
	addIfLegal(out, turn, Move{From: from, To: to}, nb)
}

func emitPawnCapture(b Board, from, to Square, turn Color, promoRank int, out map[Move]Board) {
	if int(to.Rank) == promoRank {
		for _, k := range PromotionKinds {
			nb := build(b, turn, moveBuild{from: from, to: to, promotion: k})
			addIfLegal(out, turn, Move{From: from, To: to, Promotion: k}, nb)
		}
		return
	}
	nb := build(b, turn, moveBuild{from: from, to: to})
	addIfLegal(out, turn, Move{From: from, To: to}, nb)
}

func genOffsetMoves(b Board, sq Square, turn Color, offsets [8][2]int, out map[Move]Board) {
	for _, o := range offsets {
		dest, ok := sq.Offset(o[0], o[1])
		if !ok {
			continue
		}
		target := b.At(dest)
		if target != Empty && target.Color() == turn {
			continue
		}
		nb := build(b, turn, moveBuild{from: sq, to: dest})
		addIfLegal(out, turn, Move{From: sq, To: dest}, nb)
	}
}

func genSlidingMoves(b Board, sq Square, turn Color, dirs [][2]int, out map[Move]Board) {
	for _, d := range dirs {
		for step := 1; step < 8; step++ {
			dest, ok := sq.Offset(d[0]*step, d[1]*step)
			if !ok {
				break
			}
			target := b.At(dest)
			if target != Empty && target.Color() == turn {
				break
			}

			nb := build(b, turn, moveBuild{from: sq, to: dest})
			addIfLegal(out, turn, Move{From: sq, To: dest}, nb)

			if target != Empty {
				break // ray stops at the first occupied square, capture included
			}
		}
	}
}

func genKingMoves(b Board, sq Square, turn Color, out map[Move]Board) {
	genOffsetMoves(b, sq, turn, kingOffsets, out)

	homeRank := 0
	if turn == Black {
		homeRank = 7
	}
	if sq != NewSquare(homeRank, 4) {
		return
	}

	rights := b.Castling()
	kingSide, queenSide := WhiteKingSide, WhiteQueenSide
	if turn == Black {
		kingSide, queenSide = BlackKingSide, BlackQueenSide
	}

	if rights.IsAllowed(kingSide) {
		f1, g1, h1 := NewSquare(homeRank, 5), NewSquare(homeRank, 6), NewSquare(homeRank, 7)
		if b.At(f1) == Empty && b.At(g1) == Empty &&
			!IsAttacked(b, sq, turn.Opponent()) && !IsAttacked(b, f1, turn.Opponent()) {
			nb := build(b, turn, moveBuild{from: sq, to: g1, castleRookFrom: &h1, castleRookTo: &f1})
			addIfLegal(out, turn, Move{From: sq, To: g1}, nb)
		}
	}
	if rights.IsAllowed(queenSide) {
		b1, c1, d1, a1 := NewSquare(homeRank, 1), NewSquare(homeRank, 2), NewSquare(homeRank, 3), NewSquare(homeRank, 0)
		if b.At(b1) == Empty && b.At(c1) == Empty && b.At(d1) == Empty &&
			!IsAttacked(b, sq, turn.Opponent()) && !IsAttacked(b, d1, turn.Opponent()) {
			nb := build(b, turn, moveBuild{from: sq, to: c1, castleRookFrom: &a1, castleRookTo: &d1})
			addIfLegal(out, turn, Move{From: sq, To: c1}, nb)
		}
	}
}

// IsAttacked returns true iff a piece of color by could move or capture
// onto sq, were it their turn.
func IsAttacked(b Board, sq Square, by Color) bool {
	pawnOriginRank := int(sq.Rank) - 1
	if by == Black {
		pawnOriginRank = int(sq.Rank) + 1
	}
	for _, df := range [2]int{-1, 1} {
		origin := NewSquare(pawnOriginRank, int(sq.File)+df)
		if origin.IsValid() && b.At(origin) == NewLabel(by, Pawn) {
			return true
		}
	}

	for _, o := range knightOffsets {
		if origin, ok := sq.Offset(o[0], o[1]); ok && b.At(origin) == NewLabel(by, Knight) {
			return true
		}
	}

	if rayAttacked(b, sq, bishopDirs, by, Bishop) {
		return true
	}
	if rayAttacked(b, sq, rookDirs, by, Rook) {
		return true
	}

	for _, o := range kingOffsets {
		if origin, ok := sq.Offset(o[0], o[1]); ok && b.At(origin) == NewLabel(by, King) {
			return true
		}
	}
	return false
}

func rayAttacked(b Board, sq Square, dirs [4][2]int, by Color, kind Kind) bool {
	queen := NewLabel(by, Queen)
	piece := NewLabel(by, kind)

	for _, d := range dirs {
		for step := 1; step < 8; step++ {
			origin, ok := sq.Offset(d[0]*step, d[1]*step)
			if !ok {
				break
			}
			label := b.At(origin)
			if label == Empty {
				continue
			}
			if label == piece || label == queen {
				return true
			}
			break
		}
	}
	return false
}
