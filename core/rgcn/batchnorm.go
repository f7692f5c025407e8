package rgcn

import "math"

const (
	batchNormEps      = 1e-5
	batchNormMomentum = 0.1
)

// batchNorm is a per-feature normalization transform shared across all
// propagation layers. In training mode it normalizes with the current
// batch statistics and updates the running estimates; in eval mode it
// normalizes with the running estimates.
type batchNorm struct {
	dim int

	gamma []float32
	beta  []float32

	runningMean []float32
	runningVar  []float32
}

func newBatchNorm(dim int) *batchNorm {
	bn := &batchNorm{
		dim:         dim,
		gamma:       make([]float32, dim),
		beta:        make([]float32, dim),
		runningMean: make([]float32, dim),
		runningVar:  make([]float32, dim),
	}
	for i := 0; i < dim; i++ {
		bn.gamma[i] = 1
		bn.runningVar[i] = 1
	}
	return bn
}

// apply normalizes the (n, dim) row-major matrix x in place.
func (bn *batchNorm) apply(x []float32, n int, training bool) {
	d := bn.dim
	if !training {
		for j := 0; j < d; j++ {
			scale := bn.gamma[j] / float32(math.Sqrt(float64(bn.runningVar[j])+batchNormEps))
			shift := bn.beta[j] - bn.runningMean[j]*scale
			for i := 0; i < n; i++ {
				x[i*d+j] = x[i*d+j]*scale + shift
			}
		}
		return
	}

	for j := 0; j < d; j++ {
		var mean float64
		for i := 0; i < n; i++ {
			mean += float64(x[i*d+j])
		}
		mean /= float64(n)

		var variance float64
		for i := 0; i < n; i++ {
			diff := float64(x[i*d+j]) - mean
			variance += diff * diff
		}
		variance /= float64(n)

		// Running estimates use the unbiased variance.
		unbiased := variance
		if n > 1 {
			unbiased = variance * float64(n) / float64(n-1)
		}
		bn.runningMean[j] = (1-batchNormMomentum)*bn.runningMean[j] + batchNormMomentum*float32(mean)
		bn.runningVar[j] = (1-batchNormMomentum)*bn.runningVar[j] + batchNormMomentum*float32(unbiased)

		scale := bn.gamma[j] / float32(math.Sqrt(variance+batchNormEps))
		shift := bn.beta[j] - float32(mean)*scale
		for i := 0; i < n; i++ {
			x[i*d+j] = x[i*d+j]*scale + shift
		}
	}
}
