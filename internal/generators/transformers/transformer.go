package transformers

import (
	"fmt"
	"sort"

	"github.com/dbmasq/dbmasq/internal/generators"
)

// CachePolicy is a static cardinality classification per type tag. Low
// cardinality families are worth caching, high cardinality ones are
// recomputed to keep memory bounded.
type CachePolicy int

const (
	// CacheDefault - not cached unless explicitly classified
	CacheDefault CachePolicy = iota
	// CacheAlways - low cardinality, cache every generated value
	CacheAlways
	// CacheNever - high cardinality, never cache
	CacheNever
)

func (p CachePolicy) String() string {
	switch p {
	case CacheAlways:
		return "always"
	case CacheNever:
		return "never"
	default:
		return "default"
	}
}

// Request carries everything a single generation call may depend on.
type Request struct {
	Seeder     *generators.Seeder
	CustomSeed string
	Original   string
	MaxLength  int
}

// Rand returns the pseudo-random source derived from the request inputs.
func (r *Request) Rand() (*randSource, error) {
	rnd, err := r.Seeder.Rand(r.CustomSeed, r.Original)
	if err != nil {
		return nil, err
	}
	return &randSource{Rand: rnd}, nil
}

// SubRand derives a source for a composite sub-component: the previously
// chosen components are folded into the seed so downstream choices depend on
// the upstream ones.
func (r *Request) SubRand(chosen ...string) (*randSource, error) {
	original := r.Original
	for _, c := range chosen {
		original += "|" + c
	}
	rnd, err := r.Seeder.Rand(r.CustomSeed, original)
	if err != nil {
		return nil, err
	}
	return &randSource{Rand: rnd}, nil
}

type GenerateFunc func(req *Request) (string, error)

type Definition struct {
	Generate    GenerateFunc
	CachePolicy CachePolicy
	Description string
}

var registry = map[string]*Definition{}

func register(tag string, def *Definition) {
	if _, ok := registry[tag]; ok {
		panic(fmt.Sprintf("type tag %q registered twice", tag))
	}
	registry[tag] = def
}

// Get returns the definition for a built-in type tag.
func Get(tag string) (*Definition, bool) {
	def, ok := registry[tag]
	return def, ok
}

// Tags returns all built-in type tags sorted by name.
func Tags() []string {
	res := make([]string, 0, len(registry))
	for tag := range registry {
		res = append(res, tag)
	}
	sort.Strings(res)
	return res
}
