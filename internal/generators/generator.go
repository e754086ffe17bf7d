package generators

// Generator produces a fixed-width deterministic byte sequence from the input
// data. Implementations are salted hash functions: the same salt and input
// always produce the same output.
type Generator interface {
	Generate([]byte) ([]byte, error)
	Size() int
}
