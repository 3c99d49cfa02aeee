// Package websearch 提供 Google Custom Search 搜索实现
package websearch

import (
	"context"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"google.golang.org/api/customsearch/v1"
	"google.golang.org/api/option"

	"knowledge-navigator-api/internal/application/chat"
	"knowledge-navigator-api/internal/config"
)

var tracer = otel.Tracer("websearch")

const maxResultsPerQuery = 10 // Custom Search API 单次请求上限

// GoogleSearcher 基于 Google Custom Search JSON API 的 WebSearcher 实现
type GoogleSearcher struct {
	service  *customsearch.Service
	engineID string
}

var _ chat.WebSearcher = (*GoogleSearcher)(nil)

// NewGoogleSearcher 创建搜索客户端
func NewGoogleSearcher(ctx context.Context, cfg *config.WebSearchConfig) (*GoogleSearcher, error) {
	if cfg.APIKey == "" || cfg.EngineID == "" {
		return nil, fmt.Errorf("websearch api_key and engine_id are required")
	}
	svc, err := customsearch.NewService(ctx, option.WithAPIKey(cfg.APIKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create customsearch service: %w", err)
	}
	return &GoogleSearcher{
		service:  svc,
		engineID: cfg.EngineID,
	}, nil
}

// Search 执行搜索并返回清洗后的片段
func (g *GoogleSearcher) Search(ctx context.Context, query string, count int) ([]chat.WebResult, error) {
	ctx, span := tracer.Start(ctx, "websearch.Search",
		trace.WithAttributes(attribute.Int("count", count)))
	defer span.End()

	if count <= 0 || count > maxResultsPerQuery {
		count = maxResultsPerQuery
	}

	resp, err := g.service.Cse.List().
		Q(query).
		Cx(g.engineID).
		Num(int64(count)).
		Context(ctx).
		Do()
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("custom search failed: %w", err)
	}

	results := make([]chat.WebResult, 0, len(resp.Items))
	for _, item := range resp.Items {
		snippet := cleanSnippet(item.Snippet)
		if snippet == "" {
			continue
		}
		results = append(results, chat.WebResult{
			Title:   strings.TrimSpace(item.Title),
			URL:     item.Link,
			Snippet: snippet,
		})
	}

	span.SetAttributes(attribute.Int("result_count", len(results)))
	return results, nil
}

// cleanSnippet 规整搜索片段：去换行、压缩空白
func cleanSnippet(s string) string {
	out := strings.ReplaceAll(s, "\n", " ")
	out = strings.ReplaceAll(out, "\r", "")
	out = strings.TrimSpace(out)
	for strings.Contains(out, "  ") {
		out = strings.ReplaceAll(out, "  ", " ")
	}
	return out
}
