package rgcn

import "fmt"

// Decoder adapter: the three canonical link-prediction query shapes, scored
// with the injected interaction over enriched embeddings.

// ScoreTriples returns one score per (head, relation, tail) triple. When
// sparse messages are enabled, propagation is restricted to the batch's
// k-hop neighborhood; otherwise the (cached) full-graph embeddings are used.
func (m *Model) ScoreTriples(batch Batch) ([]float32, error) {
	var x []float32
	var err error
	if m.cfg.SparseMessagesOWA {
		x, err = m.Enrich(&batch)
	} else {
		if err = batch.validate(m.graph.NumNodes(), m.graph.NumRelations()); err == nil {
			x, err = m.Enrich(nil)
		}
	}
	if err != nil {
		return nil, err
	}

	d := m.dim
	scores := make([]float32, len(batch.Heads))
	for i := range batch.Heads {
		h := x[batch.Heads[i]*d : (batch.Heads[i]+1)*d]
		r := m.relations.Row(batch.Relations[i])
		t := x[batch.Tails[i]*d : (batch.Tails[i]+1)*d]
		scores[i] = m.interaction.Score(h, r, t)
	}
	return scores, nil
}

// ScoreAllTails scores every node as a tail candidate for each
// (head, relation) pair. The result has shape (len(heads), num_nodes), flat
// row-major. Always uses full-graph propagation: a batch-restricted
// neighborhood cannot cover arbitrary candidate tails.
func (m *Model) ScoreAllTails(heads, relations []int) ([]float32, error) {
	if len(heads) != len(relations) {
		return nil, fmt.Errorf("%w: heads=%d relations=%d", ErrBatchLengthMismatch, len(heads), len(relations))
	}
	if err := m.validatePairs(heads, relations); err != nil {
		return nil, err
	}
	x, err := m.Enrich(nil)
	if err != nil {
		return nil, err
	}

	n, d := m.graph.NumNodes(), m.dim
	scores := make([]float32, len(heads)*n)
	for i := range heads {
		h := x[heads[i]*d : (heads[i]+1)*d]
		r := m.relations.Row(relations[i])
		for t := 0; t < n; t++ {
			scores[i*n+t] = m.interaction.Score(h, r, x[t*d:(t+1)*d])
		}
	}
	return scores, nil
}

// ScoreAllHeads scores every node as a head candidate for each
// (relation, tail) pair. The result has shape (len(tails), num_nodes), flat
// row-major.
func (m *Model) ScoreAllHeads(relations, tails []int) ([]float32, error) {
	if len(relations) != len(tails) {
		return nil, fmt.Errorf("%w: relations=%d tails=%d", ErrBatchLengthMismatch, len(relations), len(tails))
	}
	if err := m.validatePairs(tails, relations); err != nil {
		return nil, err
	}
	x, err := m.Enrich(nil)
	if err != nil {
		return nil, err
	}

	n, d := m.graph.NumNodes(), m.dim
	scores := make([]float32, len(tails)*n)
	for i := range tails {
		r := m.relations.Row(relations[i])
		t := x[tails[i]*d : (tails[i]+1)*d]
		for h := 0; h < n; h++ {
			scores[i*n+h] = m.interaction.Score(x[h*d:(h+1)*d], r, t)
		}
	}
	return scores, nil
}

func (m *Model) validatePairs(nodes, relations []int) error {
	numNodes := m.graph.NumNodes()
	numRelations := m.graph.NumRelations()
	for i, node := range nodes {
		if node < 0 || node >= numNodes {
			return fmt.Errorf("%w: node %d at row %d", ErrBatchOutOfRange, node, i)
		}
		if r := relations[i]; r < 0 || r >= numRelations {
			return fmt.Errorf("%w: relation %d at row %d", ErrBatchOutOfRange, r, i)
		}
	}
	return nil
}
