package game

import (
	mathrand "math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Rand is the engine's only source of randomness. Float64 returns a value in
// [0, 1); Read feeds identifier generation.
type Rand interface {
	Float64() float64
	Read(p []byte) (int, error)
}

type lockedRand struct {
	mu sync.Mutex
	r  *mathrand.Rand
}

// NewRand returns a seeded source safe for concurrent use. A zero seed picks
// one from the clock.
func NewRand(seed int64) Rand {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &lockedRand{r: mathrand.New(mathrand.NewSource(seed))}
}

func (l *lockedRand) Float64() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.r.Float64()
}

func (l *lockedRand) Read(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.r.Read(p)
}

func (e *Engine) nextFloat() float64 {
	return e.rand.Float64()
}

// intn returns a value in [0, n) drawn from a single Float64 sample.
func (e *Engine) intn(n int) int {
	if n <= 1 {
		return 0
	}
	i := int(e.nextFloat() * float64(n))
	if i >= n {
		i = n - 1
	}
	return i
}

func (e *Engine) newID() string {
	id, err := uuid.NewRandomFromReader(e.rand)
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}
