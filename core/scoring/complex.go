package scoring

// ComplEx treats each embedding as a complex vector: the first half of the
// slice holds real parts, the second half imaginary parts. The score is
//
//	Re(<h, r, conj(t)>)
//
// Embedding dimension must be even; odd-length inputs leave the last
// imaginary component out of the sum (callers are expected to configure even
// dimensions).
type ComplEx struct{}

// Score computes the ComplEx interaction for a single triple.
func (ComplEx) Score(head, relation, tail []float32) float32 {
	half := len(head) / 2
	hRe, hIm := head[:half], head[half:]
	rRe, rIm := relation[:half], relation[half:]
	tRe, tIm := tail[:half], tail[half:]

	var score float32
	for i := 0; i < half; i++ {
		score += hRe[i]*rRe[i]*tRe[i] +
			hIm[i]*rRe[i]*tIm[i] +
			hRe[i]*rIm[i]*tIm[i] -
			hIm[i]*rIm[i]*tRe[i]
	}
	return score
}
