package scoring

import (
	"github.com/viterin/vek/vek32"
)

// DistMult implements the bilinear-diagonal interaction
//
//	score(h, r, t) = sum_i h_i * r_i * t_i
//
// which is the canonical default decoder for R-GCN link prediction.
type DistMult struct{}

// Score computes the DistMult interaction for a single triple.
func (DistMult) Score(head, relation, tail []float32) float32 {
	hr := vek32.Mul(head, relation)
	return vek32.Dot(hr, tail)
}
