package rgcn

import "math"

// leakySlope is the negative-side slope of the leaky ReLU.
const leakySlope = 0.01

// applyActivation transforms x elementwise in place.
func applyActivation(kind string, x []float32) {
	switch kind {
	case ActivationNone:
	case ActivationReLU:
		for i, v := range x {
			if v < 0 {
				x[i] = 0
			}
		}
	case ActivationLeakyReLU:
		for i, v := range x {
			if v < 0 {
				x[i] = v * leakySlope
			}
		}
	default:
		panic("rgcn: unreachable activation " + kind)
	}
}

// activationGain returns the variance-scaling gain used to initialize the
// decomposition parameters for the configured nonlinearity.
func activationGain(kind string) float64 {
	switch kind {
	case ActivationReLU:
		return math.Sqrt2
	case ActivationLeakyReLU:
		return math.Sqrt(2.0 / (1.0 + leakySlope*leakySlope))
	case ActivationNone:
		return 1.0
	default:
		panic("rgcn: unreachable activation " + kind)
	}
}
