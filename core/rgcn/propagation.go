// Package rgcn implements the relational graph convolutional encoder: a
// multi-layer message-passing network that re-derives entity embeddings from
// a multi-relational graph before handing them to a downstream scoring
// decoder.
package rgcn

import (
	"fmt"
	"log/slog"
	"math"
	"math/rand"

	"github.com/viterin/vek/vek32"
	"gonum.org/v1/gonum/blas"
	"gonum.org/v1/gonum/blas/blas32"

	"github.com/adalundhe/graphconv/core/embeddings"
	"github.com/adalundhe/graphconv/core/scoring"
	"github.com/adalundhe/graphconv/core/triples"
)

// Batch is a set of (head, relation, tail) query triples stored as three
// parallel arrays, mirroring the triple store layout.
type Batch struct {
	Heads     []int
	Relations []int
	Tails     []int
}

func (b *Batch) validate(numNodes, numRelations int) error {
	if len(b.Heads) != len(b.Relations) || len(b.Heads) != len(b.Tails) {
		return fmt.Errorf("%w: heads=%d relations=%d tails=%d",
			ErrBatchLengthMismatch, len(b.Heads), len(b.Relations), len(b.Tails))
	}
	for i, h := range b.Heads {
		if h < 0 || h >= numNodes {
			return fmt.Errorf("%w: head %d at row %d", ErrBatchOutOfRange, h, i)
		}
		if t := b.Tails[i]; t < 0 || t >= numNodes {
			return fmt.Errorf("%w: tail %d at row %d", ErrBatchOutOfRange, t, i)
		}
		if r := b.Relations[i]; r < 0 || r >= numRelations {
			return fmt.Errorf("%w: relation %d at row %d", ErrBatchOutOfRange, r, i)
		}
	}
	return nil
}

// Model is the R-GCN message propagation engine. It owns the decomposition
// parameters, per-layer biases, the shared batch-norm state and the enriched
// embedding cache. The entity and relation embedding tables and the scoring
// interaction are non-owning references to external collaborators.
type Model struct {
	cfg   Config
	graph *triples.TripleSet

	entities    *embeddings.Table
	relations   *embeddings.Table
	interaction scoring.Interaction

	decomp  decomposer
	weights *weightCache
	biases  [][]float32
	bn      *batchNorm

	cache embeddingCache
	rng   *rand.Rand

	dim             int
	selfLoopDropout float64
	training        bool

	// propagations counts full layer-loop executions, so tests and callers
	// can tell cache hits from recomputation.
	propagations uint64
}

// New builds a Model over the given graph and collaborator tables.
// Zero-valued Config fields are resolved to defaults; invalid combinations
// fail eagerly, never at propagation time.
func New(
	graph *triples.TripleSet,
	entities, relations *embeddings.Table,
	interaction scoring.Interaction,
	cfg Config,
) (*Model, error) {
	if graph.HasInverseTriples() {
		return nil, ErrInverseTriples
	}

	if cfg.EmbeddingDim == 0 {
		cfg.EmbeddingDim = entities.Dim()
	}
	if cfg.NumLayers == 0 {
		cfg.NumLayers = 2
	}
	if cfg.Decomposition == "" {
		cfg.Decomposition = DecompositionBasis
	}
	if cfg.MessageNormalization == "" {
		cfg.MessageNormalization = NormalizationNonsymmetric
	}
	if cfg.Activation == "" {
		cfg.Activation = ActivationReLU
	}
	numRelations := graph.NumRelations()
	if cfg.NumBasesOrBlocks == 0 {
		switch cfg.Decomposition {
		case DecompositionBasis:
			cfg.NumBasesOrBlocks = numRelations/2 + 1
		case DecompositionBlock:
			cfg.NumBasesOrBlocks = 2
		}
		slog.Info("resolved number of bases or blocks heuristically",
			slog.String("decomposition", cfg.Decomposition),
			slog.Int("num_bases_or_blocks", cfg.NumBasesOrBlocks))
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	d := cfg.EmbeddingDim
	if entities.Dim() != d || entities.Rows() != graph.NumNodes() {
		return nil, fmt.Errorf("%w: entity table is (%d, %d), graph needs (%d, %d)",
			ErrDimensionMismatch, entities.Rows(), entities.Dim(), graph.NumNodes(), d)
	}
	if relations.Dim() != d || relations.Rows() != numRelations {
		return nil, fmt.Errorf("%w: relation table is (%d, %d), graph needs (%d, %d)",
			ErrDimensionMismatch, relations.Rows(), relations.Dim(), numRelations, d)
	}

	switch cfg.Decomposition {
	case DecompositionBasis:
		if cfg.NumBasesOrBlocks > numRelations {
			return nil, fmt.Errorf("%w: %d bases, %d relations",
				ErrTooManyBases, cfg.NumBasesOrBlocks, numRelations)
		}
	case DecompositionBlock:
		if d%cfg.NumBasesOrBlocks != 0 {
			return nil, fmt.Errorf("%w: %d %% %d != 0",
				ErrBlockSizeIndivisible, d, cfg.NumBasesOrBlocks)
		}
	}

	if cfg.UseBatchNorm && cfg.UseBias {
		slog.Warn("disabling bias: batch normalization is enabled")
		cfg.UseBias = false
	}

	selfLoopDropout := cfg.EdgeDropout
	if cfg.SelfLoopDropout != nil {
		selfLoopDropout = *cfg.SelfLoopDropout
	}

	m := &Model{
		cfg:             cfg,
		graph:           graph,
		entities:        entities,
		relations:       relations,
		interaction:     interaction,
		weights:         newWeightCache(cfg.NumLayers * (numRelations + 1)),
		rng:             rand.New(rand.NewSource(cfg.Seed)),
		dim:             d,
		selfLoopDropout: selfLoopDropout,
		training:        true,
	}

	gain := activationGain(cfg.Activation)
	switch cfg.Decomposition {
	case DecompositionBasis:
		m.decomp = newBasisDecomposition(cfg.NumLayers, d, cfg.NumBasesOrBlocks, numRelations, gain, m.rng)
	case DecompositionBlock:
		m.decomp = newBlockDecomposition(cfg.NumLayers, d, cfg.NumBasesOrBlocks, numRelations, gain, m.rng)
	default:
		panic("rgcn: unreachable decomposition " + cfg.Decomposition)
	}

	if cfg.UseBias {
		m.biases = make([][]float32, cfg.NumLayers)
		for i := range m.biases {
			m.biases[i] = make([]float32, d)
		}
	}
	if cfg.UseBatchNorm {
		m.bn = newBatchNorm(d)
	}
	return m, nil
}

// Train switches the model to training mode: dropout masks are drawn and
// batch normalization uses batch statistics.
func (m *Model) Train() { m.training = true }

// Eval switches the model to evaluation mode: no dropout, batch
// normalization uses running statistics.
func (m *Model) Eval() { m.training = false }

// Training reports whether the model is in training mode.
func (m *Model) Training() bool { return m.training }

// Dim returns the embedding dimension.
func (m *Model) Dim() int { return m.dim }

// PropagationCount returns how many times the full layer loop has run.
func (m *Model) PropagationCount() uint64 { return m.propagations }

// PostParameterUpdate must be called after any gradient step that touches
// the model's parameters (including the decoder's tables). It drops the
// enriched embedding cache and the assembled weight matrices so no stale
// result can be served.
func (m *Model) PostParameterUpdate() {
	m.cache.invalidate()
	m.weights.purge()
}

// Enrich runs message propagation over all layers and returns the enriched
// embedding matrix, shape (num_nodes, dim), flat row-major. With a nil batch
// it propagates over the whole graph and may serve or populate the cache;
// with a batch it restricts every layer to the batch's k-hop neighborhood
// and never touches the cache. The returned matrix is shared when served
// from cache and must be treated as read-only.
func (m *Model) Enrich(batch *Batch) ([]float32, error) {
	if batch == nil {
		if x, ok := m.cache.get(); ok {
			return x, nil
		}
	} else if err := batch.validate(m.graph.NumNodes(), m.graph.NumRelations()); err != nil {
		return nil, err
	}

	n, d := m.graph.NumNodes(), m.dim
	x := append([]float32(nil), m.entities.Weights()...)

	sources := m.graph.Sources()
	relations := m.graph.Relations()
	targets := m.graph.Targets()

	// Edge dropout: one keep-mask for the whole call, shared by all layers.
	if m.training && m.cfg.EdgeDropout > 0 {
		keptS := make([]int, 0, len(sources))
		keptR := make([]int, 0, len(sources))
		keptT := make([]int, 0, len(sources))
		for i := range sources {
			if m.rng.Float64() > m.cfg.EdgeDropout {
				keptS = append(keptS, sources[i])
				keptR = append(keptR, relations[i])
				keptT = append(keptT, targets[i])
			}
		}
		sources, relations, targets = keptS, keptR, keptT
	}

	var nodeKeep []bool
	if m.training && m.selfLoopDropout > 0 {
		nodeKeep = make([]bool, n)
		for i := range nodeKeep {
			nodeKeep[i] = m.rng.Float64() > m.selfLoopDropout
		}
	}

	var edgeMask []bool
	if batch != nil {
		query := make([]int, 0, len(batch.Heads)+len(batch.Tails))
		query = append(query, batch.Heads...)
		query = append(query, batch.Tails...)
		edgeMask = neighborhoodMask(query, sources, targets, m.cfg.NumLayers, n, true)
	}

	numRel := m.graph.NumRelations()
	edgeIdx := make([]int, 0, len(sources))
	for layer := 0; layer < m.cfg.NumLayers; layer++ {
		newX := make([]float32, n*d)

		for r := 0; r < numRel; r++ {
			edgeIdx = edgeIdx[:0]
			for i, rel := range relations {
				if rel == r && (edgeMask == nil || edgeMask[i]) {
					edgeIdx = append(edgeIdx, i)
				}
			}
			// No edges of this relation survived filtering: legitimate
			// no-op, not an error.
			if len(edgeIdx) == 0 {
				continue
			}

			// Duplicate each edge with swapped endpoints: messages flow in
			// both directions.
			srcDup := make([]int, 0, 2*len(edgeIdx))
			tgtDup := make([]int, 0, 2*len(edgeIdx))
			for _, i := range edgeIdx {
				srcDup = append(srcDup, sources[i])
				tgtDup = append(tgtDup, targets[i])
			}
			for _, i := range edgeIdx {
				srcDup = append(srcDup, targets[i])
				tgtDup = append(tgtDup, sources[i])
			}

			m.propagateRelation(layer, r, x, newX, srcDup, tgtDup)
		}

		// Self-loop transforms the in-progress accumulator, not the
		// pre-layer embeddings.
		wSelf := m.weights.get(layer, numRel, m.decomp)
		loop := make([]float32, n*d)
		blas32.Gemm(blas.NoTrans, blas.NoTrans, 1,
			blas32.General{Rows: n, Cols: d, Stride: d, Data: newX},
			blas32.General{Rows: d, Cols: d, Stride: d, Data: wSelf},
			0,
			blas32.General{Rows: n, Cols: d, Stride: d, Data: loop})
		if nodeKeep == nil {
			vek32.Add_Inplace(newX, loop)
		} else {
			for i, keep := range nodeKeep {
				if keep {
					vek32.Add_Inplace(newX[i*d:(i+1)*d], loop[i*d:(i+1)*d])
				}
			}
		}

		if m.biases != nil {
			bias := m.biases[layer]
			for i := 0; i < n; i++ {
				vek32.Add_Inplace(newX[i*d:(i+1)*d], bias)
			}
		}
		if m.bn != nil {
			m.bn.apply(newX, n, m.training)
		}
		applyActivation(m.cfg.Activation, newX)

		x = newX
	}

	m.propagations++
	if batch == nil && m.cfg.BufferMessages {
		m.cache.set(x)
	}
	return x, nil
}

// propagateRelation computes the messages of one relation's duplicated edge
// set, normalizes them, and scatter-adds them into the accumulator.
func (m *Model) propagateRelation(layer, r int, x, newX []float32, srcDup, tgtDup []int) {
	n := m.graph.NumNodes()
	d := m.dim
	e := len(srcDup)

	// Gather source rows into a contiguous block, then one GEMM:
	// messages (e, d) = Xs (e, d) @ W (d, d).
	xs := make([]float32, e*d)
	for k, s := range srcDup {
		copy(xs[k*d:(k+1)*d], x[s*d:(s+1)*d])
	}
	w := m.weights.get(layer, r, m.decomp)
	msg := make([]float32, e*d)
	blas32.Gemm(blas.NoTrans, blas.NoTrans, 1,
		blas32.General{Rows: e, Cols: d, Stride: d, Data: xs},
		blas32.General{Rows: d, Cols: d, Stride: d, Data: w},
		0,
		blas32.General{Rows: e, Cols: d, Stride: d, Data: msg})

	// Degrees are counted over this relation's duplicated, filtered edge
	// set, so every normalized row has degree >= 1.
	switch m.cfg.MessageNormalization {
	case NormalizationNonsymmetric:
		inDeg := make([]int32, n)
		for _, t := range tgtDup {
			inDeg[t]++
		}
		for k, t := range tgtDup {
			vek32.MulNumber_Inplace(msg[k*d:(k+1)*d], 1/float32(inDeg[t]))
		}
	case NormalizationSymmetric:
		inDeg := make([]int32, n)
		outDeg := make([]int32, n)
		for k, t := range tgtDup {
			inDeg[t]++
			outDeg[srcDup[k]]++
		}
		for k, t := range tgtDup {
			norm := float32(math.Sqrt(float64(inDeg[t])) * math.Sqrt(float64(outDeg[srcDup[k]])))
			vek32.MulNumber_Inplace(msg[k*d:(k+1)*d], 1/norm)
		}
	case NormalizationNone:
	default:
		panic("rgcn: unreachable normalization " + m.cfg.MessageNormalization)
	}

	for k, t := range tgtDup {
		vek32.Add_Inplace(newX[t*d:(t+1)*d], msg[k*d:(k+1)*d])
	}
}
