package shred

import (
	"context"

	"golang.org/x/time/rate"
)

// newLimiter создает ограничитель скорости записи; nil - без ограничения.
// burst не меньше чанка, иначе WaitN отказал бы на полном чанке.
func newLimiter(maxSpeedMBps float64, chunkSize int) *rate.Limiter {
	if maxSpeedMBps <= 0 {
		return nil
	}
	bytesPerSec := maxSpeedMBps * 1024 * 1024
	return rate.NewLimiter(rate.Limit(bytesPerSec), chunkSize)
}

// ThrottledFile ограничивает скорость записи (thread-safe: rate.Limiter
// можно делить между файлами)
type ThrottledFile struct {
	File
	limiter *rate.Limiter
}

// NewThrottledFile оборачивает f; при limiter == nil возвращает f как есть
func NewThrottledFile(f File, limiter *rate.Limiter) File {
	if limiter == nil {
		return f
	}
	return &ThrottledFile{File: f, limiter: limiter}
}

// WriteAt ждёт квоту и пишет. Ожидание не отменяется: начатый проход
// доводится до конца.
func (tf *ThrottledFile) WriteAt(p []byte, off int64) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	if err := tf.limiter.WaitN(context.Background(), len(p)); err != nil {
		return 0, err
	}
	return tf.File.WriteAt(p, off)
}
