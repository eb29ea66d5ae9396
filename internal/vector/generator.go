package vector

import (
	"crypto/sha256"
	"encoding/binary"
	"math/rand"

	"github.com/vector-portal/backend/internal/common/constants"
	commonerrors "github.com/vector-portal/backend/internal/common/errors"
	"github.com/vector-portal/backend/internal/observability/metrics"
)

var ErrMissingSentence = commonerrors.NewDomainError(
	"MISSING_SENTENCE",
	commonerrors.CategoryValidation,
	400,
	"input sentence missing",
)

type Generator struct{}

func NewGenerator() Generator {
	return Generator{}
}

// Generate seeds a pseudo-random source from the sentence and emits exactly
// 500 values uniformly distributed in [0, 2). The same sentence always
// reproduces the same sequence.
func (Generator) Generate(sentence string) ([]float64, error) {
	if sentence == "" {
		return nil, ErrMissingSentence
	}

	rng := rand.New(rand.NewSource(seedFromSentence(sentence)))

	values := make([]float64, constants.VectorLength)
	for i := range values {
		values[i] = rng.Float64() * constants.VectorUpperBound
	}

	metrics.VectorsGenerated.Inc()
	return values, nil
}

func seedFromSentence(sentence string) int64 {
	sum := sha256.Sum256([]byte(sentence))
	return int64(binary.BigEndian.Uint64(sum[:8]))
}
