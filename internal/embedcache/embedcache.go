// Package embedcache persists embedding vectors keyed by model and text.
package embedcache

import (
	"context"
	"crypto/sha1"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"math"
)

// Store is a persistent vector cache.
type Store interface {
	// Get returns the cached vector and true, or false when the key is absent.
	Get(ctx context.Context, key string) ([]float64, bool, error)
	Put(ctx context.Context, key string, vec []float64) error
	Close() error
}

// Key derives the cache key for a text embedded by the named model.
func Key(model, text string) string {
	h := sha1.Sum([]byte(model + "\x00" + text))
	return hex.EncodeToString(h[:])
}

// Encode packs a vector as little-endian IEEE 754 float64 values.
// An empty vector encodes to an empty, non-nil blob.
func Encode(vec []float64) []byte {
	b := make([]byte, len(vec)*8)
	for i, v := range vec {
		binary.LittleEndian.PutUint64(b[i*8:], math.Float64bits(v))
	}
	return b
}

// Decode unpacks a blob produced by Encode.
func Decode(b []byte) ([]float64, error) {
	if len(b) == 0 {
		return nil, nil
	}
	if len(b)%8 != 0 {
		return nil, fmt.Errorf("embedcache: invalid blob length %d (not multiple of 8)", len(b))
	}
	vec := make([]float64, len(b)/8)
	for i := range vec {
		vec[i] = math.Float64frombits(binary.LittleEndian.Uint64(b[i*8:]))
	}
	return vec, nil
}
