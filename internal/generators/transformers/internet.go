package transformers

import (
	"math/rand"
	"sync"

	"github.com/go-faker/faker/v4"
	"github.com/go-faker/faker/v4/pkg/options"
)

// FakerFunc is the signature shared by the faker value generators.
type FakerFunc func(opts ...options.OptionFunc) string

// faker keeps its pseudo-random source in package state, so every seeded call
// holds a lock while the source is swapped in. Generation stays a pure
// function of the derived seed at the cost of serializing these families;
// they are classified never-cache anyway, so the cost is per row, not per run.
var fakerMx sync.Mutex

func seededFake(seed int64, generate FakerFunc) string {
	fakerMx.Lock()
	defer fakerMx.Unlock()
	faker.SetRandomSource(rand.NewSource(seed))
	return generate()
}

func makeFakerGenerator(generate FakerFunc) GenerateFunc {
	return func(req *Request) (string, error) {
		seed, err := req.Seeder.SeedFor(req.CustomSeed, req.Original)
		if err != nil {
			return "", err
		}
		return fitLength(seededFake(seed, generate), req.MaxLength), nil
	}
}

func init() {
	register("Email", &Definition{
		Generate:    makeFakerGenerator(faker.Email),
		CachePolicy: CacheNever,
		Description: "Replaces an email address with a deterministic substitute.",
	})
	register("UserName", &Definition{
		Generate:    makeFakerGenerator(faker.Username),
		CachePolicy: CacheNever,
		Description: "Replaces a username with a deterministic substitute.",
	})
	register("Phone", &Definition{
		Generate:    makeFakerGenerator(faker.Phonenumber),
		CachePolicy: CacheNever,
		Description: "Replaces a phone number with a deterministic substitute.",
	})
	register("URL", &Definition{
		Generate:    makeFakerGenerator(faker.URL),
		CachePolicy: CacheNever,
		Description: "Replaces a URL with a deterministic substitute.",
	})
	register("IPAddress", &Definition{
		Generate:    makeFakerGenerator(faker.IPv4),
		CachePolicy: CacheNever,
		Description: "Replaces an IP address with a deterministic substitute.",
	})
	register("FreeText", &Definition{
		Generate:    makeFakerGenerator(faker.Sentence),
		CachePolicy: CacheNever,
		Description: "Replaces free text with a deterministic sentence.",
	})
}
