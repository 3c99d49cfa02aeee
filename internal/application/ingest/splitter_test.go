package ingest

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitByRunes(t *testing.T) {
	t.Run("short text stays whole", func(t *testing.T) {
		got := splitByRunes("hola mundo", 100, 10)
		assert.Equal(t, []string{"hola mundo"}, got)
	})

	t.Run("empty input", func(t *testing.T) {
		assert.Nil(t, splitByRunes("   ", 100, 10))
	})

	t.Run("splits with overlap", func(t *testing.T) {
		text := strings.Repeat("a", 10)
		got := splitByRunes(text, 4, 2)
		// step=2：窗口 [0:4) [2:6) [4:8) [6:10)，末窗触底即停
		assert.Equal(t, []string{"aaaa", "aaaa", "aaaa", "aaaa"}, got)
	})

	t.Run("no overlap", func(t *testing.T) {
		text := strings.Repeat("b", 9)
		got := splitByRunes(text, 4, 0)
		assert.Equal(t, []string{"bbbb", "bbbb", "b"}, got)
	})

	t.Run("overlap larger than size falls back to full step", func(t *testing.T) {
		text := strings.Repeat("c", 8)
		got := splitByRunes(text, 4, 10)
		assert.Equal(t, []string{"cccc", "cccc"}, got)
	})

	t.Run("multibyte runes are not split", func(t *testing.T) {
		text := strings.Repeat("ñ", 6)
		got := splitByRunes(text, 4, 0)
		require.Len(t, got, 2)
		assert.Equal(t, "ññññ", got[0])
		assert.Equal(t, "ññ", got[1])
	})
}

func TestUsablePageText(t *testing.T) {
	tests := []struct {
		name string
		text string
		want bool
	}{
		{"normal text", "Contenido del capítulo.", true},
		{"blank", "   \n ", false},
		{"page number only", " 42 ", false},
		{"index page", "Índice\n1. Introducción", false},
		{"index without accent", "indice general", false},
		{"copyright page", "Copyright 2024 ACME", false},
		{"digits with words", "23 días laborables", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, usablePageText(tt.text))
		})
	}
}
