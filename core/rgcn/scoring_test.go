package rgcn

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScoreTriplesFullGraph(t *testing.T) {
	cfg := testConfig(4)
	cfg.SparseMessagesOWA = false
	m := threeNodeModel(t, cfg)
	m.Eval()

	batch := Batch{Heads: []int{0, 1}, Relations: []int{0, 1}, Tails: []int{1, 0}}
	scores, err := m.ScoreTriples(batch)
	require.NoError(t, err)
	require.Len(t, scores, 2)

	// Scores must match manual interaction calls over the enriched matrix.
	x, err := m.Enrich(nil)
	require.NoError(t, err)
	d := m.Dim()
	for i := range batch.Heads {
		h := x[batch.Heads[i]*d : (batch.Heads[i]+1)*d]
		r := m.relations.Row(batch.Relations[i])
		tl := x[batch.Tails[i]*d : (batch.Tails[i]+1)*d]
		assert.Equal(t, m.interaction.Score(h, r, tl), scores[i])
	}
}

// TestScoreTriplesSparseMatchesFullOnCoveringBatch: with sparse messages
// enabled, a batch that covers every node must score exactly like full-graph
// propagation.
func TestScoreTriplesSparseMatchesFullOnCoveringBatch(t *testing.T) {
	batch := Batch{Heads: []int{0, 1, 2}, Relations: []int{0, 0, 1}, Tails: []int{1, 2, 0}}

	sparseCfg := testConfig(4)
	sparseCfg.SparseMessagesOWA = true
	sparse := threeNodeModel(t, sparseCfg)
	sparse.Eval()

	fullCfg := testConfig(4)
	fullCfg.SparseMessagesOWA = false
	full := threeNodeModel(t, fullCfg)
	full.Eval()

	sparseScores, err := sparse.ScoreTriples(batch)
	require.NoError(t, err)
	fullScores, err := full.ScoreTriples(batch)
	require.NoError(t, err)

	assert.Equal(t, fullScores, sparseScores)
}

func TestScoreAllTails(t *testing.T) {
	cfg := testConfig(4)
	cfg.SparseMessagesOWA = false
	m := threeNodeModel(t, cfg)
	m.Eval()

	scores, err := m.ScoreAllTails([]int{0, 2}, []int{0, 1})
	require.NoError(t, err)
	require.Len(t, scores, 2*3)

	// Row i, column t must equal the single-triple score of (h_i, r_i, t).
	n := 3
	for i, h := range []int{0, 2} {
		r := []int{0, 1}[i]
		for tail := 0; tail < n; tail++ {
			single, err := m.ScoreTriples(Batch{Heads: []int{h}, Relations: []int{r}, Tails: []int{tail}})
			require.NoError(t, err)
			assert.Equal(t, single[0], scores[i*n+tail], "pair %d tail %d", i, tail)
		}
	}
}

func TestScoreAllHeads(t *testing.T) {
	cfg := testConfig(4)
	cfg.SparseMessagesOWA = false
	m := threeNodeModel(t, cfg)
	m.Eval()

	scores, err := m.ScoreAllHeads([]int{1}, []int{2})
	require.NoError(t, err)
	require.Len(t, scores, 3)

	n := 3
	for head := 0; head < n; head++ {
		single, err := m.ScoreTriples(Batch{Heads: []int{head}, Relations: []int{1}, Tails: []int{2}})
		require.NoError(t, err)
		assert.Equal(t, single[0], scores[head])
	}
}

func TestScoreValidation(t *testing.T) {
	m := threeNodeModel(t, testConfig(4))
	m.Eval()

	_, err := m.ScoreAllTails([]int{0, 1}, []int{0})
	assert.ErrorIs(t, err, ErrBatchLengthMismatch)

	_, err = m.ScoreAllTails([]int{9}, []int{0})
	assert.ErrorIs(t, err, ErrBatchOutOfRange)

	_, err = m.ScoreAllHeads([]int{0}, []int{-2})
	assert.ErrorIs(t, err, ErrBatchOutOfRange)

	_, err = m.ScoreTriples(Batch{Heads: []int{0}, Relations: []int{0}, Tails: []int{99}})
	assert.ErrorIs(t, err, ErrBatchOutOfRange)
}
