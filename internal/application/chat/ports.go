package chat

import "context"

// WebSearcher 定义策略对网络搜索的最小依赖（port）
// 由基础设施层提供具体实现（例如 Google Custom Search）。
type WebSearcher interface {
	Search(ctx context.Context, query string, count int) ([]WebResult, error)
}

// WebResult 网络搜索的单条结果
type WebResult struct {
	Title   string
	URL     string
	Snippet string
}
