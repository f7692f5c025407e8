package rgcn

import "errors"

// Configuration errors, raised eagerly at construction and never recovered.
var (
	ErrUnknownDecomposition = errors.New("unknown decomposition, use \"basis\" or \"block\"")
	ErrUnknownNormalization = errors.New("unknown message normalization, use \"none\", \"nonsymmetric\" or \"symmetric\"")
	ErrUnknownActivation    = errors.New("unknown activation, use \"none\", \"relu\" or \"leaky_relu\"")
	ErrBlockSizeIndivisible = errors.New("embedding dimension must be divisible by the number of blocks")
	ErrTooManyBases         = errors.New("number of bases must not exceed the number of relations")
	ErrInvalidBasesOrBlocks = errors.New("number of bases or blocks must be positive")
	ErrInverseTriples       = errors.New("graph contains inverse triples: message passing already treats edges as undirected")
	ErrInvalidDropout       = errors.New("dropout rate must be in [0, 1)")
	ErrInvalidLayerCount    = errors.New("number of layers must be at least 1")
	ErrDimensionMismatch    = errors.New("configured embedding dimension does not match embedding table")
	ErrBatchOutOfRange      = errors.New("batch index out of range")
	ErrBatchLengthMismatch  = errors.New("batch arrays must have equal length")
)
