// Package triples provides the immutable triple store backing message
// propagation over a multi-relational graph.
package triples

import (
	"errors"
	"fmt"
)

// Validation errors for TripleSet construction.
var (
	ErrLengthMismatch     = errors.New("triple arrays must have equal length")
	ErrInvalidNodeCount   = errors.New("node count must be positive")
	ErrInvalidRelCount    = errors.New("relation count must be positive")
	ErrNodeOutOfRange     = errors.New("node index out of range")
	ErrRelationOutOfRange = errors.New("relation index out of range")
)

// TripleSet is an immutable collection of directed labeled edges
// (source, relation, target) over dense zero-based node and relation
// vocabularies. Edges are stored as three parallel arrays so that
// per-relation gathers and mask filters stay contiguous.
type TripleSet struct {
	sources   []int
	relations []int
	targets   []int

	numNodes     int
	numRelations int

	// inverses records whether the upstream loader already added
	// inverse-relation triples to the edge list.
	inverses bool
}

// Option configures a TripleSet during construction.
type Option func(*TripleSet)

// WithInverseTriples marks the set as containing upstream-added inverse
// triples. Consumers that treat edges as undirected reject such sets to
// avoid double-counting messages.
func WithInverseTriples() Option {
	return func(ts *TripleSet) { ts.inverses = true }
}

// New validates and constructs a TripleSet. The input slices are copied;
// mutating them afterwards does not affect the set.
func New(sources, relations, targets []int, numNodes, numRelations int, opts ...Option) (*TripleSet, error) {
	if len(sources) != len(relations) || len(sources) != len(targets) {
		return nil, fmt.Errorf("%w: sources=%d relations=%d targets=%d",
			ErrLengthMismatch, len(sources), len(relations), len(targets))
	}
	if numNodes <= 0 {
		return nil, ErrInvalidNodeCount
	}
	if numRelations <= 0 {
		return nil, ErrInvalidRelCount
	}
	for i, s := range sources {
		if s < 0 || s >= numNodes {
			return nil, fmt.Errorf("%w: source %d at edge %d (num_nodes=%d)", ErrNodeOutOfRange, s, i, numNodes)
		}
		if t := targets[i]; t < 0 || t >= numNodes {
			return nil, fmt.Errorf("%w: target %d at edge %d (num_nodes=%d)", ErrNodeOutOfRange, t, i, numNodes)
		}
		if r := relations[i]; r < 0 || r >= numRelations {
			return nil, fmt.Errorf("%w: relation %d at edge %d (num_relations=%d)", ErrRelationOutOfRange, r, i, numRelations)
		}
	}

	ts := &TripleSet{
		sources:      append([]int(nil), sources...),
		relations:    append([]int(nil), relations...),
		targets:      append([]int(nil), targets...),
		numNodes:     numNodes,
		numRelations: numRelations,
	}
	for _, opt := range opts {
		opt(ts)
	}
	return ts, nil
}

// NumEdges returns the number of stored triples.
func (ts *TripleSet) NumEdges() int {
	return len(ts.sources)
}

// NumNodes returns the size of the node vocabulary.
func (ts *TripleSet) NumNodes() int {
	return ts.numNodes
}

// NumRelations returns the size of the relation vocabulary.
func (ts *TripleSet) NumRelations() int {
	return ts.numRelations
}

// HasInverseTriples reports whether inverse triples were added upstream.
func (ts *TripleSet) HasInverseTriples() bool {
	return ts.inverses
}

// Sources returns the source endpoint of every edge. The returned slice is
// the backing array; callers must not mutate it.
func (ts *TripleSet) Sources() []int {
	return ts.sources
}

// Relations returns the relation type of every edge. The returned slice is
// the backing array; callers must not mutate it.
func (ts *TripleSet) Relations() []int {
	return ts.relations
}

// Targets returns the target endpoint of every edge. The returned slice is
// the backing array; callers must not mutate it.
func (ts *TripleSet) Targets() []int {
	return ts.targets
}
