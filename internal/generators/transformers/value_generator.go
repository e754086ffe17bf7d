package transformers

import (
	"fmt"

	"github.com/dbmasq/dbmasq/internal/domains"
	"github.com/dbmasq/dbmasq/internal/generators"
)

// ValueGenerator is the deterministic substitute-value engine. It resolves
// custom type aliases to their base definitions, derives per-call seeds and
// guarantees that a non-empty input never produces an empty output.
type ValueGenerator struct {
	seeder      *generators.Seeder
	customTypes map[string]*domains.CustomType
}

func NewValueGenerator(cfg *domains.Obfuscation) (*ValueGenerator, error) {
	seeder, err := generators.NewSeeder(cfg.HashEngine, cfg.GlobalSeed)
	if err != nil {
		return nil, err
	}

	for name, ct := range cfg.CustomTypes {
		if _, ok := Get(ct.BaseType); !ok {
			return nil, fmt.Errorf("custom type %s: unknown base type %q", name, ct.BaseType)
		}
	}

	g := &ValueGenerator{
		seeder:      seeder,
		customTypes: cfg.CustomTypes,
	}

	for _, t := range cfg.Tables {
		for _, c := range t.Columns {
			if !c.IsEnabled() {
				continue
			}
			if _, _, err := g.resolve(c.Type); err != nil {
				return nil, fmt.Errorf("column %s.%s: %w", t.QualifiedName(), c.Name, err)
			}
		}
	}
	return g, nil
}

// resolve maps a (possibly custom) type tag to its base definition and the
// custom type descriptor when the tag is an alias.
func (g *ValueGenerator) resolve(tag string) (*Definition, *domains.CustomType, error) {
	if ct, ok := g.customTypes[tag]; ok {
		def, found := Get(ct.BaseType)
		if !found {
			return nil, nil, fmt.Errorf("unknown base type tag %q", ct.BaseType)
		}
		return def, ct, nil
	}
	def, found := Get(tag)
	if !found {
		return nil, nil, fmt.Errorf("unknown type tag %q", tag)
	}
	return def, nil, nil
}

// Policy returns the cache classification for a tag; custom types inherit the
// base type's policy. Unknown tags are treated as never worth caching.
func (g *ValueGenerator) Policy(tag string) CachePolicy {
	def, _, err := g.resolve(tag)
	if err != nil {
		return CacheDefault
	}
	return def.CachePolicy
}

// KeySeparator joins the parts of a persisted mapping key. The unit separator
// never appears in a type tag (user-defined names included), so the tag can
// always be recovered from a reloaded key.
const KeySeparator = "\x1f"

// CacheKey is the persisted mapping key: tag, original and the optional
// custom seed joined by KeySeparator.
func (g *ValueGenerator) CacheKey(tag, original string) string {
	if ct, ok := g.customTypes[tag]; ok && ct.Seed != "" {
		return tag + KeySeparator + original + KeySeparator + ct.Seed
	}
	return tag + KeySeparator + original
}

// Generate produces the substitute for original under tag. maxLength bounds
// the output (0 means unbounded); a custom type's own bound applies when
// tighter. Identical inputs produce identical outputs across runs.
func (g *ValueGenerator) Generate(tag, original string, maxLength int) (string, error) {
	def, ct, err := g.resolve(tag)
	if err != nil {
		return "", err
	}

	req := &Request{
		Seeder:    g.seeder,
		Original:  original,
		MaxLength: maxLength,
	}
	if ct != nil {
		req.CustomSeed = ct.Seed
		if ct.MaxLength > 0 && (maxLength <= 0 || ct.MaxLength < maxLength) {
			req.MaxLength = ct.MaxLength
		}
	}

	res, err := def.Generate(req)
	if err != nil {
		return "", err
	}
	if res == "" && original != "" {
		return "", fmt.Errorf("type %s generated an empty value for a non-empty input", tag)
	}
	return res, nil
}
