package chat

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsSimpleQuestion(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  bool
	}{
		{"greeting", "Hola", true},
		{"greeting with punctuation", "¡Hola!", true},
		{"greeting with tail", "buenas tardes, ¿qué tal?", true},
		{"english greeting", "hello", true},
		{"thanks", "Gracias", true},
		{"empty", "   ", false},
		{"real question", "¿Cuántos días de vacaciones me corresponden?", false},
		{"greeting mentioning document", "hola, ¿qué dice el documento?", false},
		{"keyword pdf", "hola pdf", false},
		{"too long", "hola hola hola hola hola hola hola hola hola hola hola", false},
		{"mid-sentence greeting", "dime hola en francés", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isSimpleQuestion(tt.input))
		})
	}
}
