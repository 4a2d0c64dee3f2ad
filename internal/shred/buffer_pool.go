package shred

import (
	"sync"
)

// BufferPool управляет пулом буферов для чанков перезаписи
type BufferPool struct {
	pools map[int]*sync.Pool
	mu    sync.RWMutex
}

// NewBufferPool создает пустой пул
func NewBufferPool() *BufferPool {
	return &BufferPool{pools: make(map[int]*sync.Pool)}
}

// Get получает буфер длины size из пула или создает новый
func (bp *BufferPool) Get(size int) []byte {
	if size <= 0 {
		return nil
	}

	poolSize := bp.poolSize(size)

	bp.mu.RLock()
	pool, exists := bp.pools[poolSize]
	bp.mu.RUnlock()

	if !exists {
		bp.mu.Lock()
		// Double-check
		pool, exists = bp.pools[poolSize]
		if !exists {
			pool = &sync.Pool{
				New: func() interface{} {
					return make([]byte, poolSize)
				},
			}
			bp.pools[poolSize] = pool
		}
		bp.mu.Unlock()
	}

	buf := pool.Get().([]byte)
	return buf[:size]
}

// Put возвращает буфер в пул. Содержимое обнуляется, чтобы случайные
// данные прошлого прохода не задерживались в памяти.
func (bp *BufferPool) Put(buf []byte) {
	capacity := cap(buf)
	if capacity == 0 {
		return
	}

	bp.mu.RLock()
	pool, exists := bp.pools[capacity]
	bp.mu.RUnlock()

	if exists {
		buf = buf[:capacity]
		clear(buf)
		pool.Put(buf)
	}
}

// poolSize определяет класс размера для буфера
func (bp *BufferPool) poolSize(size int) int {
	// Стандартные размеры пулов (степени двойки)
	sizes := []int{4096, 65536, 1048576, 8388608}

	for _, poolSize := range sizes {
		if size <= poolSize {
			return poolSize
		}
	}

	// Больше максимального: округляем до 4KB
	return ((size + 4095) / 4096) * 4096
}
