package chat

import (
	"context"
	"math"

	"github.com/cloudwego/eino/components/embedding"

	"knowledge-navigator-api/internal/domain/repository"
	"knowledge-navigator-api/pkg/metrics"
)

const defaultRedundancyThreshold = 0.92

// RedundancyDetector 检测新提问与历史提问的语义重复
// 仅作提示，不阻断回答。
type RedundancyDetector struct {
	embedder  embedding.Embedder
	history   repository.HistoryRepository
	threshold float64
}

func NewRedundancyDetector(embedder embedding.Embedder, history repository.HistoryRepository, threshold float64) *RedundancyDetector {
	if threshold <= 0 || threshold > 1 {
		threshold = defaultRedundancyThreshold
	}
	return &RedundancyDetector{
		embedder:  embedder,
		history:   history,
		threshold: threshold,
	}
}

// Check 返回历史中最相似且超过阈值的问题
// 历史为空时立即返回，不产生任何嵌入调用。
func (d *RedundancyDetector) Check(ctx context.Context, question string) (string, bool, error) {
	if d == nil || d.embedder == nil || d.history == nil {
		return "", false, nil
	}
	priors, err := d.history.Questions(ctx)
	if err != nil {
		return "", false, err
	}
	if len(priors) == 0 {
		return "", false, nil
	}

	inputs := make([]string, 0, len(priors)+1)
	inputs = append(inputs, question)
	inputs = append(inputs, priors...)
	vectors, err := d.embedder.EmbedStrings(ctx, inputs)
	if err != nil {
		return "", false, err
	}
	if len(vectors) != len(inputs) {
		return "", false, nil
	}

	query := vectors[0]
	best := -1.0
	bestIdx := -1
	for i, v := range vectors[1:] {
		sim := cosineSimilarity(query, v)
		if sim > best {
			best = sim
			bestIdx = i
		}
	}
	if bestIdx < 0 || best < d.threshold {
		return "", false, nil
	}
	metrics.RedundancyHitsTotal.Inc()
	return priors[bestIdx], true, nil
}

func cosineSimilarity(a, b []float64) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += a[i] * b[i]
		na += a[i] * a[i]
		nb += b[i] * b[i]
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
