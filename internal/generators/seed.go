package generators

import (
	"encoding/binary"
	"fmt"
	"math/rand"
)

// DefaultSeedLabel substitutes an empty custom seed in the digest input so
// that "no custom seed" is itself a stable, distinct seed component.
const DefaultSeedLabel = "default"

// Seeder derives per-value pseudo-random seeds from the global seed, an
// optional custom seed and the original value. SeedFor is a pure function of
// its inputs: identical inputs produce identical seeds across processes.
type Seeder struct {
	engine     string
	globalSeed []byte
}

func NewSeeder(engine, globalSeed string) (*Seeder, error) {
	if !KnownEngine(engine) {
		return nil, fmt.Errorf("unknown hash engine %q", engine)
	}
	return &Seeder{
		engine:     engine,
		globalSeed: []byte(globalSeed),
	}, nil
}

func (s *Seeder) SeedFor(customSeed, original string) (int64, error) {
	if customSeed == "" {
		customSeed = DefaultSeedLabel
	}
	eng, err := NewEngine(s.engine, s.globalSeed)
	if err != nil {
		return 0, err
	}
	digest, err := eng.Generate([]byte(customSeed + "|" + original))
	if err != nil {
		return 0, fmt.Errorf("seed digest error: %w", err)
	}
	return BuildInt64FromBytes(digest), nil
}

// Rand returns a pseudo-random source scoped to a single generation call.
func (s *Seeder) Rand(customSeed, original string) (*rand.Rand, error) {
	seed, err := s.SeedFor(customSeed, original)
	if err != nil {
		return nil, err
	}
	return rand.New(rand.NewSource(seed)), nil
}

// BuildInt64FromBytes - decode bytes array to int64 representation. In case
// there are fewer than 8 bytes the rest are treated as zero.
func BuildInt64FromBytes(data []byte) int64 {
	intBytes := data
	if len(data) != 8 {
		intBytes = make([]byte, 8)
		copy(intBytes, data)
	}
	return int64(binary.LittleEndian.Uint64(intBytes))
}

func BuildBytesFromInt64(value int64) []byte {
	res := make([]byte, 8)
	binary.LittleEndian.PutUint64(res, uint64(value))
	return res
}
