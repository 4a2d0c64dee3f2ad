package shred

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateLength(t *testing.T) {
	gen := NewGenerator(NewSeededSource(1, 2))
	for _, p := range []Pattern{PatternZeros, PatternOnes, PatternRandom} {
		for _, n := range []int{0, 1, 7, 8, 9, 100, 4097} {
			buf := gen.Generate(p, n)
			assert.Len(t, buf, n, "pattern %s length %d", p, n)
		}
	}
}

func TestGenerateConstantPatterns(t *testing.T) {
	gen := NewGenerator(nil)

	tests := []struct {
		pattern Pattern
		want    byte
	}{
		{PatternZeros, 0x00},
		{PatternOnes, 0xFF},
	}

	for _, tt := range tests {
		t.Run(string(tt.pattern), func(t *testing.T) {
			for i, b := range gen.Generate(tt.pattern, 1000) {
				if b != tt.want {
					t.Fatalf("byte %d = %#x, expected %#x", i, b, tt.want)
				}
			}
		})
	}
}

func TestGenerateRandomFreshPerCall(t *testing.T) {
	gen := NewGenerator(NewSeededSource(7, 7))
	a := gen.Generate(PatternRandom, 256)
	b := gen.Generate(PatternRandom, 256)
	assert.NotEqual(t, a, b)
	assert.NotEqual(t, make([]byte, 256), a)
}

func TestFillOverwritesPreviousContent(t *testing.T) {
	gen := NewGenerator(nil)
	buf := []byte{1, 2, 3, 4, 5}
	gen.Fill(PatternOnes, buf)
	assert.Equal(t, []byte{0xFF, 0xFF, 0xFF, 0xFF, 0xFF}, buf)
	gen.Fill(PatternZeros, buf)
	assert.Equal(t, []byte{0, 0, 0, 0, 0}, buf)
}

func TestGenerateNegativeLengthPanics(t *testing.T) {
	gen := NewGenerator(nil)
	assert.Panics(t, func() { gen.Generate(PatternZeros, -1) })
}

func TestParsePattern(t *testing.T) {
	tests := []struct {
		in      string
		want    Pattern
		wantErr bool
	}{
		{"zeros", PatternZeros, false},
		{"ONES", PatternOnes, false},
		{" Random ", PatternRandom, false},
		{"dod5220", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParsePattern(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRandomName(t *testing.T) {
	src := NewSeededSource(3, 4)
	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		name := randomName(src, 16)
		require.Len(t, name, 16)
		assert.NotContains(t, name, ".")
		for _, r := range name {
			assert.True(t, strings.ContainsRune(nameAlphabet, r), "unexpected rune %q", r)
		}
		seen[name] = true
	}
	assert.Len(t, seen, 100)
}

func TestSeededSourceDeterministic(t *testing.T) {
	a, b := NewSeededSource(9, 9), NewSeededSource(9, 9)
	for i := 0; i < 10; i++ {
		assert.Equal(t, a.Uint64(), b.Uint64())
	}
}
