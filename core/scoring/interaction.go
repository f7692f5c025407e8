// Package scoring defines the interaction function consumed by the decoder
// adapter, plus two standard implementations. The propagation engine depends
// only on the Interaction interface; concrete decoder models plug in behind
// it.
package scoring

// Interaction scores one (head, relation, tail) embedding triple. All three
// vectors have the same dimension; implementations must not retain or mutate
// them. Higher scores mean more plausible triples.
type Interaction interface {
	Score(head, relation, tail []float32) float32
}
