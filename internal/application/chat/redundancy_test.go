package chat

import (
	"context"
	"testing"

	"github.com/cloudwego/eino/components/embedding"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"knowledge-navigator-api/internal/domain/entity"
)

// scriptedEmbedder 按输入文本返回预置向量
type scriptedEmbedder struct {
	vectors map[string][]float64
	calls   int
}

func (s *scriptedEmbedder) EmbedStrings(_ context.Context, texts []string, _ ...embedding.Option) ([][]float64, error) {
	s.calls++
	out := make([][]float64, len(texts))
	for i, t := range texts {
		v, ok := s.vectors[t]
		if !ok {
			v = []float64{0, 0, 1}
		}
		out[i] = v
	}
	return out, nil
}

func historyWith(questions ...string) *fakeHistory {
	h := &fakeHistory{}
	for _, q := range questions {
		h.entries = append(h.entries, &entity.HistoryEntry{Question: q})
	}
	return h
}

func TestRedundancyCheckHit(t *testing.T) {
	emb := &scriptedEmbedder{vectors: map[string][]float64{
		"¿Cuántos días de vacaciones tengo?":     {1, 0, 0},
		"¿Cuántos días de vacaciones me quedan?": {0.99, 0.1, 0},
		"¿Dónde está la oficina?":                {0, 1, 0},
	}}
	history := historyWith("¿Dónde está la oficina?", "¿Cuántos días de vacaciones me quedan?")
	d := NewRedundancyDetector(emb, history, 0.92)

	similar, hit, err := d.Check(context.Background(), "¿Cuántos días de vacaciones tengo?")
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, "¿Cuántos días de vacaciones me quedan?", similar)
}

func TestRedundancyCheckBelowThreshold(t *testing.T) {
	emb := &scriptedEmbedder{vectors: map[string][]float64{
		"¿Cuántos días de vacaciones tengo?": {1, 0, 0},
		"¿Dónde está la oficina?":            {0, 1, 0},
	}}
	d := NewRedundancyDetector(emb, historyWith("¿Dónde está la oficina?"), 0.92)

	_, hit, err := d.Check(context.Background(), "¿Cuántos días de vacaciones tengo?")
	require.NoError(t, err)
	assert.False(t, hit)
}

func TestRedundancyCheckEmptyHistorySkipsEmbedding(t *testing.T) {
	emb := &scriptedEmbedder{}
	d := NewRedundancyDetector(emb, &fakeHistory{}, 0.92)

	_, hit, err := d.Check(context.Background(), "¿Cuántos días de vacaciones tengo?")
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, 0, emb.calls)
}

func TestRedundancyCheckNilDetector(t *testing.T) {
	var d *RedundancyDetector
	_, hit, err := d.Check(context.Background(), "hola")
	require.NoError(t, err)
	assert.False(t, hit)
}

func TestCosineSimilarity(t *testing.T) {
	assert.InDelta(t, 1.0, cosineSimilarity([]float64{1, 2, 3}, []float64{1, 2, 3}), 1e-9)
	assert.InDelta(t, 0.0, cosineSimilarity([]float64{1, 0}, []float64{0, 1}), 1e-9)
	assert.Equal(t, 0.0, cosineSimilarity(nil, []float64{1}))
	assert.Equal(t, 0.0, cosineSimilarity([]float64{0, 0}, []float64{0, 0}))
}
