package shred

import (
	"fmt"
	"strings"
)

// Pattern определяет содержимое одного прохода перезаписи
type Pattern string

const (
	PatternZeros  Pattern = "zeros"
	PatternOnes   Pattern = "ones"
	PatternRandom Pattern = "random"
)

// ParsePattern разбирает имя паттерна без учёта регистра
func ParsePattern(s string) (Pattern, error) {
	p := Pattern(strings.ToLower(strings.TrimSpace(s)))
	switch p {
	case PatternZeros, PatternOnes, PatternRandom:
		return p, nil
	default:
		return "", fmt.Errorf("unknown pattern %q (expected zeros, ones or random)", s)
	}
}

// fillByte возвращает байт заполнения для постоянных паттернов
func (p Pattern) fillByte() byte {
	if p == PatternOnes {
		return 0xFF
	}
	return 0x00
}

// Generator производит байты для проходов перезаписи
type Generator struct {
	src RandomSource
}

// NewGenerator создает генератор поверх источника случайности.
// nil означает общий процессный источник.
func NewGenerator(src RandomSource) *Generator {
	if src == nil {
		src = DefaultRandomSource()
	}
	return &Generator{src: src}
}

// Generate возвращает ровно n байт паттерна p.
// Отрицательная длина - ошибка программиста, не времени выполнения.
func (g *Generator) Generate(p Pattern, n int) []byte {
	if n < 0 {
		panic(fmt.Sprintf("shred: negative pattern length %d", n))
	}
	buf := make([]byte, n)
	g.Fill(p, buf)
	return buf
}

// Fill заполняет buf паттерном p. Для PatternRandom каждый вызов
// потребляет свежие байты из источника.
func (g *Generator) Fill(p Pattern, buf []byte) {
	switch p {
	case PatternRandom:
		fillRandom(g.src, buf)
	default:
		fillPattern(buf, p.fillByte())
	}
}

func fillPattern(buf []byte, b byte) {
	for i := range buf {
		buf[i] = b
	}
}

func fillRandom(src RandomSource, buf []byte) {
	for i := 0; i < len(buf); i += 8 {
		v := src.Uint64()
		for j := 0; j < 8 && i+j < len(buf); j++ {
			buf[i+j] = byte(v >> (8 * j))
		}
	}
}
