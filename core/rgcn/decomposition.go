package rgcn

import (
	"math"
	"math/rand"

	"gonum.org/v1/gonum/blas/blas32"
)

// decomposer generates the dense (d x d) weight matrix of one relation in
// one layer from a compact parameter set. Relation index numRelations is the
// self-loop relation.
type decomposer interface {
	// weights returns the matrix in flat row-major form. The returned slice
	// is freshly allocated and owned by the caller.
	weights(layer, relation int) []float32
}

// =============================================================================
// Basis decomposition
// =============================================================================

// basisDecomposition parameterizes each relation weight as an
// attention-weighted sum of shared base matrices:
//
//	W_r = sum_b att[r][b] * B_b
type basisDecomposition struct {
	dim          int
	numBases     int
	numRelations int

	// bases[layer] has shape (numBases, dim, dim), flat row-major.
	bases [][]float32

	// att[layer] has shape (numRelations+1, numBases), flat row-major.
	// Rows are initialized as random convex combinations so the initial
	// effective weights are well-scaled mixtures of the bases; the simplex
	// constraint is not enforced after initialization.
	att [][]float32
}

func newBasisDecomposition(numLayers, dim, numBases, numRelations int, gain float64, rng *rand.Rand) *basisDecomposition {
	bd := &basisDecomposition{
		dim:          dim,
		numBases:     numBases,
		numRelations: numRelations,
		bases:        make([][]float32, numLayers),
		att:          make([][]float32, numLayers),
	}

	// Xavier-normal over the (dim, dim) fan of each base matrix.
	std := gain * math.Sqrt(2.0/float64(dim+dim))
	for layer := 0; layer < numLayers; layer++ {
		bases := make([]float32, numBases*dim*dim)
		for i := range bases {
			bases[i] = float32(rng.NormFloat64() * std)
		}
		bd.bases[layer] = bases

		att := make([]float32, (numRelations+1)*numBases)
		for r := 0; r <= numRelations; r++ {
			row := att[r*numBases : (r+1)*numBases]
			var sum float32
			for b := range row {
				row[b] = rng.Float32()
				sum += row[b]
			}
			for b := range row {
				row[b] /= sum
			}
		}
		bd.att[layer] = att
	}
	return bd
}

func (bd *basisDecomposition) weights(layer, relation int) []float32 {
	dd := bd.dim * bd.dim
	w := make([]float32, dd)
	att := bd.att[layer][relation*bd.numBases : (relation+1)*bd.numBases]
	for b, alpha := range att {
		base := bd.bases[layer][b*dd : (b+1)*dd]
		blas32.Axpy(alpha,
			blas32.Vector{N: dd, Inc: 1, Data: base},
			blas32.Vector{N: dd, Inc: 1, Data: w})
	}
	return w
}

// =============================================================================
// Block-diagonal decomposition
// =============================================================================

// blockDecomposition parameterizes each relation weight as a block-diagonal
// matrix whose blocks are stored directly; off-block entries are zero.
type blockDecomposition struct {
	dim          int
	numBlocks    int
	blockSize    int
	numRelations int

	// blocks[layer] has shape (numRelations+1, numBlocks, blockSize,
	// blockSize), flat row-major.
	blocks [][]float32
}

func newBlockDecomposition(numLayers, dim, numBlocks, numRelations int, gain float64, rng *rand.Rand) *blockDecomposition {
	bs := dim / numBlocks
	bd := &blockDecomposition{
		dim:          dim,
		numBlocks:    numBlocks,
		blockSize:    bs,
		numRelations: numRelations,
		blocks:       make([][]float32, numLayers),
	}

	// Glorot-style scale over the (blockSize, blockSize) fan of each block.
	std := math.Sqrt2 * gain / float64(2*bs)
	for layer := 0; layer < numLayers; layer++ {
		blocks := make([]float32, (numRelations+1)*numBlocks*bs*bs)
		for i := range blocks {
			blocks[i] = float32(rng.NormFloat64() * std)
		}
		bd.blocks[layer] = blocks
	}
	return bd
}

func (bd *blockDecomposition) weights(layer, relation int) []float32 {
	d, bs := bd.dim, bd.blockSize
	w := make([]float32, d*d)
	relBlocks := bd.blocks[layer][relation*bd.numBlocks*bs*bs : (relation+1)*bd.numBlocks*bs*bs]
	for b := 0; b < bd.numBlocks; b++ {
		block := relBlocks[b*bs*bs : (b+1)*bs*bs]
		offset := b * bs
		for i := 0; i < bs; i++ {
			copy(w[(offset+i)*d+offset:(offset+i)*d+offset+bs], block[i*bs:(i+1)*bs])
		}
	}
	return w
}
