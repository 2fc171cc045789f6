package quiz

import (
	"math/rand"
	"time"
)

// Rand is the randomness the engine needs. *rand.Rand satisfies it.
type Rand interface {
	Intn(n int) int
}

// NewRand returns a time-seeded source. It is not safe for concurrent use;
// create one per request.
func NewRand() *rand.Rand {
	return rand.New(rand.NewSource(time.Now().UnixNano()))
}

// Shuffle permutes items in place with a Fisher-Yates shuffle.
func Shuffle[T any](r Rand, items []T) {
	for i := len(items) - 1; i > 0; i-- {
		j := r.Intn(i + 1)
		items[i], items[j] = items[j], items[i]
	}
}
