package rgcn

import (
	"math"
	"math/rand"
	"testing"

	"gonum.org/v1/gonum/mat"
)

func TestBasisWeightShapes(t *testing.T) {
	const (
		layers       = 3
		dim          = 6
		numBases     = 2
		numRelations = 4
	)
	rng := rand.New(rand.NewSource(1))
	bd := newBasisDecomposition(layers, dim, numBases, numRelations, 1.0, rng)

	// The extra relation index is the self-loop relation.
	for layer := 0; layer < layers; layer++ {
		for r := 0; r <= numRelations; r++ {
			w := bd.weights(layer, r)
			if len(w) != dim*dim {
				t.Fatalf("weights(%d, %d) has %d entries, want %d", layer, r, len(w), dim*dim)
			}
		}
	}
}

func TestBlockWeightShapes(t *testing.T) {
	const (
		layers       = 2
		dim          = 8
		numBlocks    = 4
		numRelations = 3
	)
	rng := rand.New(rand.NewSource(1))
	bd := newBlockDecomposition(layers, dim, numBlocks, numRelations, 1.0, rng)

	for layer := 0; layer < layers; layer++ {
		for r := 0; r <= numRelations; r++ {
			w := bd.weights(layer, r)
			if len(w) != dim*dim {
				t.Fatalf("weights(%d, %d) has %d entries, want %d", layer, r, len(w), dim*dim)
			}
		}
	}
}

func TestBlockWeightStructure(t *testing.T) {
	const (
		dim          = 6
		numBlocks    = 3
		numRelations = 2
	)
	rng := rand.New(rand.NewSource(7))
	bd := newBlockDecomposition(1, dim, numBlocks, numRelations, 1.0, rng)
	bs := dim / numBlocks

	for r := 0; r <= numRelations; r++ {
		w := bd.weights(0, r)
		relBlocks := bd.blocks[0][r*numBlocks*bs*bs : (r+1)*numBlocks*bs*bs]

		for i := 0; i < dim; i++ {
			for j := 0; j < dim; j++ {
				bi, bj := i/bs, j/bs
				got := w[i*dim+j]
				if bi != bj {
					if got != 0 {
						t.Fatalf("off-block entry (%d,%d) of relation %d is %v, want exact 0", i, j, r, got)
					}
					continue
				}
				want := relBlocks[bi*bs*bs+(i%bs)*bs+(j%bs)]
				if got != want {
					t.Fatalf("on-block entry (%d,%d) of relation %d is %v, want %v", i, j, r, got, want)
				}
			}
		}
	}
}

// TestBasisWeightedSum checks the assembled matrix against an independent
// float64 oracle built with gonum/mat.
func TestBasisWeightedSum(t *testing.T) {
	const (
		dim          = 5
		numBases     = 3
		numRelations = 4
	)
	rng := rand.New(rand.NewSource(3))
	bd := newBasisDecomposition(1, dim, numBases, numRelations, math.Sqrt2, rng)

	for r := 0; r <= numRelations; r++ {
		want := mat.NewDense(dim, dim, nil)
		for b := 0; b < numBases; b++ {
			base := mat.NewDense(dim, dim, nil)
			for i := 0; i < dim; i++ {
				for j := 0; j < dim; j++ {
					base.Set(i, j, float64(bd.bases[0][b*dim*dim+i*dim+j]))
				}
			}
			base.Scale(float64(bd.att[0][r*numBases+b]), base)
			want.Add(want, base)
		}

		got := bd.weights(0, r)
		for i := 0; i < dim; i++ {
			for j := 0; j < dim; j++ {
				if diff := math.Abs(float64(got[i*dim+j]) - want.At(i, j)); diff > 1e-5 {
					t.Fatalf("relation %d entry (%d,%d): got %v, oracle %v", r, i, j, got[i*dim+j], want.At(i, j))
				}
			}
		}
	}
}

// TestBasisAttentionRowIndependence verifies that changing one relation's
// attention row leaves every other relation's weights untouched.
func TestBasisAttentionRowIndependence(t *testing.T) {
	const (
		dim          = 4
		numBases     = 2
		numRelations = 3
	)
	rng := rand.New(rand.NewSource(11))
	bd := newBasisDecomposition(1, dim, numBases, numRelations, 1.0, rng)

	before := make(map[int][]float32)
	for r := 1; r <= numRelations; r++ {
		before[r] = bd.weights(0, r)
	}

	// Perturb relation 0's attention row only.
	for b := 0; b < numBases; b++ {
		bd.att[0][b] += 0.5
	}

	for r := 1; r <= numRelations; r++ {
		after := bd.weights(0, r)
		for i := range after {
			if after[i] != before[r][i] {
				t.Fatalf("relation %d weights changed after perturbing relation 0's attention row", r)
			}
		}
	}
}

func TestAttentionRowsAreConvexAtInit(t *testing.T) {
	const (
		dim          = 4
		numBases     = 3
		numRelations = 5
	)
	rng := rand.New(rand.NewSource(2))
	bd := newBasisDecomposition(2, dim, numBases, numRelations, 1.0, rng)

	for layer := 0; layer < 2; layer++ {
		for r := 0; r <= numRelations; r++ {
			var sum float64
			for b := 0; b < numBases; b++ {
				v := float64(bd.att[layer][r*numBases+b])
				if v < 0 {
					t.Fatalf("attention[%d][%d,%d] = %v, want non-negative", layer, r, b, v)
				}
				sum += v
			}
			if math.Abs(sum-1) > 1e-5 {
				t.Fatalf("attention row (%d, %d) sums to %v, want 1", layer, r, sum)
			}
		}
	}
}

func TestActivationGain(t *testing.T) {
	if g := activationGain(ActivationNone); g != 1 {
		t.Errorf("gain(none) = %v, want 1", g)
	}
	if g := activationGain(ActivationReLU); math.Abs(g-math.Sqrt2) > 1e-12 {
		t.Errorf("gain(relu) = %v, want sqrt(2)", g)
	}
	want := math.Sqrt(2.0 / (1.0 + leakySlope*leakySlope))
	if g := activationGain(ActivationLeakyReLU); math.Abs(g-want) > 1e-12 {
		t.Errorf("gain(leaky_relu) = %v, want %v", g, want)
	}
}

func TestApplyActivation(t *testing.T) {
	x := []float32{-2, -0.5, 0, 1, 3}

	relu := append([]float32(nil), x...)
	applyActivation(ActivationReLU, relu)
	for i, want := range []float32{0, 0, 0, 1, 3} {
		if relu[i] != want {
			t.Fatalf("relu[%d] = %v, want %v", i, relu[i], want)
		}
	}

	leaky := append([]float32(nil), x...)
	applyActivation(ActivationLeakyReLU, leaky)
	for i, want := range []float32{-0.02, -0.005, 0, 1, 3} {
		if math.Abs(float64(leaky[i]-want)) > 1e-7 {
			t.Fatalf("leaky[%d] = %v, want %v", i, leaky[i], want)
		}
	}

	none := append([]float32(nil), x...)
	applyActivation(ActivationNone, none)
	for i := range x {
		if none[i] != x[i] {
			t.Fatalf("none[%d] mutated", i)
		}
	}
}
