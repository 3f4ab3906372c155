// Package orientation resolves the camera's rotation relative to the rule
// engine's board convention from the first observation received, so every
// later observation can be corrected before it reaches the inference
// engine.
package orientation

import "github.com/herohde/chesslens/pkg/tensor"

// direction names one of the four halves a signature is computed over.
type direction int

const (
	top direction = iota
	left
	bottom
	right
)

// rotationFor maps the winning direction to the rotation count that
// carries that half to the bottom of the output grid, per the resolver's
// convention (k CCW rotations followed by a vertical flip).
var rotationFor = map[direction]tensor.Rotation{
	top:    tensor.Rotate0,
	left:   tensor.Rotate90,
	bottom: tensor.Rotate180,
	right:  tensor.Rotate270,
}

// Resolve computes the rotation to apply to every observation so that
// white pieces end up on the bottom rank, from a single raw (untransformed)
// observation tensor. It compares the count of white argmax labels on
// each half of the 8x8 grid against its opposite half and picks the
// direction with the largest signed difference.
func Resolve(obs tensor.Observation) tensor.Rotation {
	var whiteTop, whiteBottom, whiteLeft, whiteRight int

	for r := 0; r < 8; r++ {
		for f := 0; f < 8; f++ {
			if !obs.ArgmaxLabel(r, f).IsWhite() {
				continue
			}
			if r >= 4 {
				whiteTop++
			} else {
				whiteBottom++
			}
			if f >= 4 {
				whiteRight++
			} else {
				whiteLeft++
			}
		}
	}

	signatures := map[direction]int{
		top:    whiteTop - whiteBottom,
		bottom: whiteBottom - whiteTop,
		left:   whiteLeft - whiteRight,
		right:  whiteRight - whiteLeft,
	}

	best := top
	for _, d := range []direction{top, left, bottom, right} {
		if signatures[d] > signatures[best] {
			best = d
		}
	}
	return rotationFor[best]
}

// Resolver applies a fixed rotation, determined once from the first
// observation, to every observation tensor before the negative-log
// transform.
type Resolver struct {
	resolved bool
	rotation tensor.Rotation
}

// Apply rotates and negative-log-transforms the given observation. The
// rotation is resolved from the first call and reused for every
// subsequent call.
func (r *Resolver) Apply(obs tensor.Observation) tensor.Observation {
	if !r.resolved {
		r.rotation = Resolve(obs)
		r.resolved = true
	}
	return obs.Rotate(r.rotation).NegativeLog()
}

// Rotation returns the resolved rotation and whether resolution has
// happened yet.
func (r *Resolver) Rotation() (tensor.Rotation, bool) {
	return r.rotation, r.resolved
}
