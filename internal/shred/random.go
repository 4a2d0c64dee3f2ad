package shred

import (
	"math/rand/v2"
	"sync"
)

// RandomSource - некриптографический источник случайности.
// Реализации должны быть безопасны для конкурентного использования.
type RandomSource interface {
	Uint64() uint64
}

type processSource struct{}

// Uint64 берёт значение из процессного генератора math/rand/v2,
// который уже засеян и защищён от гонок.
func (processSource) Uint64() uint64 { return rand.Uint64() }

// DefaultRandomSource возвращает общий процессный источник
func DefaultRandomSource() RandomSource { return processSource{} }

// SeededSource - детерминированный источник с явным зерном (PCG)
type SeededSource struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewSeededSource создает воспроизводимый источник
func NewSeededSource(seed1, seed2 uint64) *SeededSource {
	return &SeededSource{rng: rand.New(rand.NewPCG(seed1, seed2))}
}

func (s *SeededSource) Uint64() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.Uint64()
}

const nameAlphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// randomName возвращает алфанумерический токен длины n без расширения
func randomName(src RandomSource, n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = nameAlphabet[src.Uint64()%uint64(len(nameAlphabet))]
	}
	return string(b)
}
