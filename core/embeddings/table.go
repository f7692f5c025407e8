package embeddings

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
)

var (
	ErrInvalidShape   = errors.New("table rows and dim must be positive")
	ErrDataSize       = errors.New("data length does not match rows*dim")
	ErrRowOutOfRange  = errors.New("row index out of range")
	ErrWrongVectorDim = errors.New("vector dimension does not match table")
)

// Table is a dense embedding lookup table: id -> vector. Rows are stored
// contiguously in a single row-major buffer so lookups and full-matrix reads
// are BLAS-compatible without copying.
type Table struct {
	rows int
	dim  int
	data []float32
}

// NewTable creates a table of the given shape with entries drawn from
// N(0, 1/sqrt(dim)) using a seeded generator.
func NewTable(rows, dim int, seed int64) (*Table, error) {
	if rows <= 0 || dim <= 0 {
		return nil, ErrInvalidShape
	}
	rng := rand.New(rand.NewSource(seed))
	std := 1.0 / math.Sqrt(float64(dim))
	data := make([]float32, rows*dim)
	for i := range data {
		data[i] = float32(rng.NormFloat64() * std)
	}
	return &Table{rows: rows, dim: dim, data: data}, nil
}

// FromData creates a table backed by a copy of the given row-major matrix.
func FromData(rows, dim int, data []float32) (*Table, error) {
	if rows <= 0 || dim <= 0 {
		return nil, ErrInvalidShape
	}
	if len(data) != rows*dim {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrDataSize, len(data), rows*dim)
	}
	return &Table{rows: rows, dim: dim, data: append([]float32(nil), data...)}, nil
}

// Rows returns the number of embeddings in the table.
func (t *Table) Rows() int {
	return t.rows
}

// Dim returns the embedding dimension.
func (t *Table) Dim() int {
	return t.dim
}

// Row returns the embedding for a single id as a subslice of the backing
// buffer; callers must not mutate it.
func (t *Table) Row(i int) []float32 {
	return t.data[i*t.dim : (i+1)*t.dim]
}

// Lookup gathers the embeddings for the given ids into a freshly allocated
// row-major matrix of shape (len(ids), dim).
func (t *Table) Lookup(ids []int) ([]float32, error) {
	out := make([]float32, len(ids)*t.dim)
	for k, id := range ids {
		if id < 0 || id >= t.rows {
			return nil, fmt.Errorf("%w: %d (rows=%d)", ErrRowOutOfRange, id, t.rows)
		}
		copy(out[k*t.dim:(k+1)*t.dim], t.Row(id))
	}
	return out, nil
}

// Weights returns the full (rows, dim) matrix as the backing buffer;
// callers must not mutate it.
func (t *Table) Weights() []float32 {
	return t.data
}

// SetRow overwrites one embedding. Intended for external trainers that own
// the table; the propagation engine never writes through this.
func (t *Table) SetRow(i int, vec []float32) error {
	if i < 0 || i >= t.rows {
		return fmt.Errorf("%w: %d (rows=%d)", ErrRowOutOfRange, i, t.rows)
	}
	if len(vec) != t.dim {
		return fmt.Errorf("%w: got %d, want %d", ErrWrongVectorDim, len(vec), t.dim)
	}
	copy(t.data[i*t.dim:(i+1)*t.dim], vec)
	return nil
}
