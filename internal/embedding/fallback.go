package embedding

import (
	"hash/fnv"
	"math/rand"

	"github.com/mpavlovic/news-digest/pkg/vecmath"
)

// FallbackVector builds a unit-length pseudo-random vector seeded from a
// stable hash of text. Identical input always yields a bit-identical vector,
// so degraded ingestion stays self-consistent within the stored corpus.
func FallbackVector(text string) []float32 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(text))

	rng := rand.New(rand.NewSource(int64(h.Sum64())))

	vec := make([]float32, Dim)
	for i := range vec {
		vec[i] = rng.Float32()
	}
	vecmath.Normalize(vec)

	return vec
}
