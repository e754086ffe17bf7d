package generators

import (
	"crypto/sha256"
	"fmt"
	"hash"

	"github.com/dchest/siphash"
	"github.com/spaolacci/murmur3"
	"golang.org/x/crypto/sha3"
)

const (
	Sha256Engine  = "sha256"
	Sha3Engine    = "sha3"
	SipHashEngine = "siphash"
	Murmur3Engine = "murmur3"
)

// HashEngine wraps a hash.Hash into a salted Generator. The salt is written
// before the data on every call and the state is reset afterwards, so the
// engine is reusable but not safe for concurrent use.
type HashEngine struct {
	hash.Hash
	salt []byte
	buf  []byte
}

func NewHashEngine(h hash.Hash, salt []byte) *HashEngine {
	return &HashEngine{
		Hash: h,
		salt: salt,
		buf:  make([]byte, 0, h.Size()),
	}
}

func (e *HashEngine) Generate(data []byte) ([]byte, error) {
	defer e.Reset()
	if _, err := e.Write(e.salt); err != nil {
		return nil, fmt.Errorf("unable to write salt into writer: %w", err)
	}
	if _, err := e.Write(data); err != nil {
		return nil, fmt.Errorf("unable to write data into writer: %w", err)
	}
	e.buf = e.buf[:0]
	return e.Sum(e.buf), nil
}

// NewEngine returns a salted engine by name. Every engine emits at least
// 8 bytes so the output can seed a pseudo-random source.
func NewEngine(name string, salt []byte) (Generator, error) {
	switch name {
	case Sha256Engine:
		return NewHashEngine(sha256.New(), salt), nil
	case Sha3Engine:
		return NewHashEngine(sha3.New256(), salt), nil
	case SipHashEngine:
		// siphash requires a 16 byte key, derive it from the salt
		h := sha3.New224()
		h.Write(salt)
		key := h.Sum(nil)[:16]
		return NewHashEngine(siphash.New(key), nil), nil
	case Murmur3Engine:
		return NewHashEngine(murmur3.New128(), salt), nil
	}
	return nil, fmt.Errorf("unknown hash engine %q", name)
}

// KnownEngine reports whether name is a supported hash engine.
func KnownEngine(name string) bool {
	switch name {
	case Sha256Engine, Sha3Engine, SipHashEngine, Murmur3Engine:
		return true
	}
	return false
}
