package board

// Label represents the content of a single square: one of six white piece
// kinds, six black piece kinds, or empty. 13 values, fixed order. The
// value modulo 6 gives the piece kind; values below 6 are white, 6..11 are
// black, and 12 is empty.
type Label uint8

const (
	WhitePawn Label = iota
	WhiteKnight
	WhiteBishop
	WhiteRook
	WhiteQueen
	WhiteKing
	BlackPawn
	BlackKnight
	BlackBishop
	BlackRook
	BlackQueen
	BlackKing
	Empty
)

const NumLabels = 13

// Kind represents a piece kind without color.
type Kind uint8

const (
	NoKind Kind = iota
	Pawn
	Knight
	Bishop
	Rook
	Queen
	King
)

// PromotionKinds lists the order child positions are emitted in for a
// promoting pawn move: knight, bishop, rook, queen.
var PromotionKinds = [4]Kind{Knight, Bishop, Rook, Queen}

func (l Label) IsEmpty() bool {
	return l == Empty
}

// IsWhite returns true iff the label is a white piece. Undefined for Empty.
func (l Label) IsWhite() bool {
	return l < BlackPawn
}

// Color returns the label's color. Undefined for Empty.
func (l Label) Color() Color {
	if l.IsWhite() {
		return White
	}
	return Black
}

// Kind returns the piece kind, or NoKind if empty.
func (l Label) Kind() Kind {
	if l == Empty {
		return NoKind
	}
	return Kind(l%6) + Pawn
}

// NewLabel composes a label from a color and kind. Panics on NoKind.
func NewLabel(c Color, k Kind) Label {
	if k == NoKind {
		panic("board: NewLabel with NoKind")
	}
	base := Label(k - Pawn)
	if c == Black {
		base += BlackPawn
	}
	return base
}

func (k Kind) IsValid() bool {
	return Pawn <= k && k <= King
}

func (k Kind) String() string {
	switch k {
	case Pawn:
		return "p"
	case Knight:
		return "n"
	case Bishop:
		return "b"
	case Rook:
		return "r"
	case Queen:
		return "q"
	case King:
		return "k"
	default:
		return "-"
	}
}

func ParseKind(r rune) (Kind, bool) {
	switch r {
	case 'p', 'P':
		return Pawn, true
	case 'n', 'N':
		return Knight, true
	case 'b', 'B':
		return Bishop, true
	case 'r', 'R':
		return Rook, true
	case 'q', 'Q':
		return Queen, true
	case 'k', 'K':
		return King, true
	default:
		return NoKind, false
	}
}

func (l Label) String() string {
	if l == Empty {
		return "."
	}
	if l.IsWhite() {
		switch l.Kind() {
		case Pawn:
			return "P"
		case Knight:
			return "N"
		case Bishop:
			return "B"
		case Rook:
			return "R"
		case Queen:
			return "Q"
		case King:
			return "K"
		}
	}
	return l.Kind().String()
}
