package chat

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsAffirmative(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"sí", true},
		{"Si", true},
		{"¡Vale!", true},
		{"ok", true},
		{"claro", true},
		{"sí, pero antes dime otra cosa", false},
		{"no", false},
		{"", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, isAffirmative(tt.input), "input=%q", tt.input)
	}
}

func TestExtractFollowUp(t *testing.T) {
	tests := []struct {
		name   string
		answer string
		want   string
	}{
		{
			name:   "trailing question",
			answer: "Las vacaciones son 23 días. ¿Quieres saber cómo solicitarlas?",
			want:   "¿Quieres saber cómo solicitarlas?",
		},
		{
			name:   "question after newline",
			answer: "Te lo explico en detalle.\n¿Necesitas algo más sobre este tema?",
			want:   "¿Necesitas algo más sobre este tema?",
		},
		{
			name:   "no question mark",
			answer: "Las vacaciones son 23 días.",
			want:   "",
		},
		{
			name:   "question too short",
			answer: "Listo. ¿Sí?",
			want:   "",
		},
		{
			name:   "only the last question wins",
			answer: "¿Te refieres al informe anual? Ese documento tiene 40 páginas. ¿Quieres un resumen del informe?",
			want:   "¿Quieres un resumen del informe?",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, extractFollowUp(tt.answer))
		})
	}
}
