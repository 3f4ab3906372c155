package hmm

import "sort"

// Beam is an ordered multiset of HMM Node handles sorted by ascending
// accumulated cost, capped at a fixed breadth.
type Beam []Handle

// insert adds h to the beam in cost order. Ties are broken by handle
// value, giving a total order and therefore deterministic iteration.
func (a *Arena) insert(beam Beam, h Handle) Beam {
	cost := a.Node(h).Cost
	i := sort.Search(len(beam), func(i int) bool {
		oi := a.Node(beam[i])
		if oi.Cost != cost {
			return oi.Cost > cost
		}
		return beam[i] > h
	})
	beam = append(beam, noHandle)
	copy(beam[i+1:], beam[i:])
	beam[i] = h
	return beam
}
