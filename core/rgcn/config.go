package rgcn

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Decomposition schemes for generating per-relation weight matrices.
const (
	DecompositionBasis = "basis"
	DecompositionBlock = "block"
)

// Message normalization modes.
const (
	NormalizationNone         = "none"
	NormalizationNonsymmetric = "nonsymmetric"
	NormalizationSymmetric    = "symmetric"
)

// Activation kinds applied after each propagation layer.
const (
	ActivationNone      = "none"
	ActivationReLU      = "relu"
	ActivationLeakyReLU = "leaky_relu"
)

// Config holds the recognized options of the propagation engine. Zero values
// are resolved to defaults at construction, so a partially filled Config (or
// a partial YAML document layered over DefaultConfig) is valid.
type Config struct {
	// EmbeddingDim is the dimensionality of node and relation embeddings.
	// When zero it is taken from the entity embedding table.
	EmbeddingDim int `yaml:"embedding_dim"`

	// NumBasesOrBlocks counts basis matrices (basis mode) or diagonal blocks
	// per relation (block mode). When zero a heuristic picks
	// num_relations/2+1 for basis mode and 2 for block mode.
	NumBasesOrBlocks int `yaml:"num_bases_or_blocks"`

	// NumLayers is the number of propagation layers, at least 1.
	NumLayers int `yaml:"num_layers"`

	// Decomposition selects the weight parameterization: "basis" or "block".
	Decomposition string `yaml:"decomposition"`

	// UseBias adds a learned per-layer bias vector. Forcibly disabled when
	// batch normalization is enabled.
	UseBias bool `yaml:"use_bias"`

	// UseBatchNorm applies a batch normalization transform shared across
	// layers. Mutually exclusive with UseBias.
	UseBatchNorm bool `yaml:"use_batch_norm"`

	// Activation is applied elementwise after each layer:
	// "none", "relu" or "leaky_relu".
	Activation string `yaml:"activation"`

	// EdgeDropout is the per-edge drop probability in [0, 1), applied in
	// training mode with one keep-mask shared across all layers of a call.
	EdgeDropout float64 `yaml:"edge_dropout"`

	// SelfLoopDropout is the per-node self-loop drop probability. When nil
	// it defaults to EdgeDropout.
	SelfLoopDropout *float64 `yaml:"self_loop_dropout"`

	// MessageNormalization scales messages by relation-specific degrees:
	// "none", "nonsymmetric" or "symmetric".
	MessageNormalization string `yaml:"message_normalization"`

	// SparseMessagesOWA restricts single-triple scoring to the query batch's
	// k-hop neighborhood instead of propagating over the whole graph.
	SparseMessagesOWA bool `yaml:"sparse_messages_owa"`

	// BufferMessages caches full-graph propagation results until the next
	// parameter update.
	BufferMessages bool `yaml:"buffer_messages"`

	// Seed drives parameter initialization and dropout masks.
	Seed int64 `yaml:"seed"`
}

// DefaultConfig returns the defaults of the original R-GCN setup.
func DefaultConfig() Config {
	selfLoop := 0.2
	return Config{
		EmbeddingDim:         500,
		NumBasesOrBlocks:     5,
		NumLayers:            2,
		Decomposition:        DecompositionBasis,
		UseBias:              true,
		UseBatchNorm:         false,
		Activation:           ActivationReLU,
		EdgeDropout:          0.4,
		SelfLoopDropout:      &selfLoop,
		MessageNormalization: NormalizationNonsymmetric,
		SparseMessagesOWA:    true,
		BufferMessages:       true,
	}
}

// LoadConfig reads a YAML document and layers it over DefaultConfig, so
// absent fields keep their defaults.
func LoadConfig(path string) (Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

// validate checks the option values that do not depend on the graph.
func (c *Config) validate() error {
	if c.NumLayers < 1 {
		return fmt.Errorf("%w: got %d", ErrInvalidLayerCount, c.NumLayers)
	}
	if c.NumBasesOrBlocks < 1 {
		return fmt.Errorf("%w: got %d", ErrInvalidBasesOrBlocks, c.NumBasesOrBlocks)
	}
	switch c.Decomposition {
	case DecompositionBasis, DecompositionBlock:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownDecomposition, c.Decomposition)
	}
	switch c.MessageNormalization {
	case NormalizationNone, NormalizationNonsymmetric, NormalizationSymmetric:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownNormalization, c.MessageNormalization)
	}
	switch c.Activation {
	case ActivationNone, ActivationReLU, ActivationLeakyReLU:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownActivation, c.Activation)
	}
	if c.EdgeDropout < 0 || c.EdgeDropout >= 1 {
		return fmt.Errorf("%w: edge_dropout=%v", ErrInvalidDropout, c.EdgeDropout)
	}
	if c.SelfLoopDropout != nil && (*c.SelfLoopDropout < 0 || *c.SelfLoopDropout >= 1) {
		return fmt.Errorf("%w: self_loop_dropout=%v", ErrInvalidDropout, *c.SelfLoopDropout)
	}
	return nil
}
