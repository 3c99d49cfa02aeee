package chat

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseJudgeVerdict(t *testing.T) {
	tests := []struct {
		raw     string
		verdict bool
		ok      bool
	}{
		{"sí", true, true},
		{"Sí.", true, true},
		{"si, el contexto es suficiente", true, true},
		{"YES", true, true},
		{"no", false, true},
		{"No, falta información", false, true},
		{"\"No\"", false, true},
		{"¿sí?", true, true},
		{"tal vez", false, false},
		{"", false, false},
	}
	for _, tt := range tests {
		verdict, ok := parseJudgeVerdict(tt.raw)
		assert.Equal(t, tt.ok, ok, "raw=%q", tt.raw)
		if tt.ok {
			assert.Equal(t, tt.verdict, verdict, "raw=%q", tt.raw)
		}
	}
}

func TestContainsSentinel(t *testing.T) {
	assert.True(t, containsSentinel(SinInformacion))
	assert.True(t, containsSentinel("Lo siento. "+SinInformacion+"."))
	assert.True(t, containsSentinel("no tengo información sobre eso en mi base de datos"))
	assert.False(t, containsSentinel("Las vacaciones son 23 días."))
}
