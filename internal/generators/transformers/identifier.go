package transformers

import (
	"github.com/google/uuid"

	"github.com/dbmasq/dbmasq/internal/generators"
)

var DefaultCompanyNames = []string{
	"Apex Trading", "Apex Consulting", "Apex Ventures", "Blue Horizon", "Blue River",
	"Blue Harbor", "Bright Path", "Bright Future", "Bright Solutions", "Dynamic Ventures",
	"Dynamic Partners", "Dynamic Holdings", "Epic Resources", "Epic Strategies", "Epic Solutions",
	"Future Horizon", "Future Ridge", "Future Holdings", "Golden Crest", "Golden Valley",
	"Golden Partners", "Hyper Ventures", "Hyper Solutions", "Hyper Ridge", "Mega Holdings",
	"Mega Enterprises", "Mega Valley", "Omni Ventures", "Omni Strategies", "Omni Partners",
	"Prime Path", "Prime Solutions", "Prime Resources", "Quantum Ventures", "Quantum Holdings",
	"Quantum Horizon", "Rapid Holdings", "Rapid Strategies", "Rapid Partners", "Silver Crest",
	"Silver Ridge", "Silver Enterprises", "Ultra Ventures", "Ultra Resources", "Ultra Horizon",
}

var DefaultCompanySuffixes = []string{
	"Ltd.", "Inc.", "LLC.", "LLP.", "P.C.", "Corp.",
}

// generateCompanyName picks a name and a cumulative-seeded legal suffix; the
// suffix is the optional part dropped first on tight columns.
func generateCompanyName(req *Request) (string, error) {
	r, err := req.Rand()
	if err != nil {
		return "", err
	}
	name := r.pick(DefaultCompanyNames)

	sub, err := req.SubRand(name)
	if err != nil {
		return "", err
	}
	suffix := sub.pick(DefaultCompanySuffixes)

	res := name + " " + suffix
	if req.MaxLength > 0 && len(res) > req.MaxLength {
		res = name
	}
	return fitLength(res, req.MaxLength), nil
}

func generateNationalID(req *Request) (string, error) {
	r, err := req.Rand()
	if err != nil {
		return "", err
	}
	return fitLength(r.digits(3)+"-"+r.digits(2)+"-"+r.digits(4), req.MaxLength), nil
}

// generateUUID emits an RFC 4122 identifier whose bytes come entirely from the
// derived seed stream, with version and variant bits fixed up afterwards.
func generateUUID(req *Request) (string, error) {
	seed, err := req.Seeder.SeedFor(req.CustomSeed, req.Original)
	if err != nil {
		return "", err
	}
	tail, err := req.Seeder.SeedFor(req.CustomSeed, req.Original+"|uuid-tail")
	if err != nil {
		return "", err
	}

	var buf [16]byte
	copy(buf[:8], generators.BuildBytesFromInt64(seed))
	copy(buf[8:], generators.BuildBytesFromInt64(tail))
	buf[6] = (buf[6] & 0x0f) | 0x40
	buf[8] = (buf[8] & 0x3f) | 0x80

	id, err := uuid.FromBytes(buf[:])
	if err != nil {
		return "", err
	}
	return fitLength(id.String(), req.MaxLength), nil
}

func init() {
	register("CompanyName", &Definition{
		Generate:    generateCompanyName,
		CachePolicy: CacheAlways,
		Description: "Replaces a company name with a deterministic substitute.",
	})
	register("NationalID", &Definition{
		Generate:    generateNationalID,
		CachePolicy: CacheNever,
		Description: "Replaces a national identifier with a deterministic formatted one.",
	})
	register("UUID", &Definition{
		Generate:    generateUUID,
		CachePolicy: CacheNever,
		Description: "Replaces a UUID with a deterministic RFC 4122 value.",
	})
}
