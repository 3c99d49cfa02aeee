package chat

import (
	"fmt"

	"knowledge-navigator-api/internal/domain/entity"
)

// collectSourceRefs 从召回分块提取去重后的出处引用，保持召回顺序
func collectSourceRefs(chunks []*entity.ScoredChunk) []entity.SourceRef {
	if len(chunks) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(chunks))
	refs := make([]entity.SourceRef, 0, len(chunks))
	for _, c := range chunks {
		if c == nil || c.SourceID == "" {
			continue
		}
		key := fmt.Sprintf("%s#%d", c.SourceID, c.Page)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		refs = append(refs, entity.SourceRef{Document: c.SourceID, Page: c.Page})
	}
	return refs
}

// collectWebRefs 从搜索结果提取出处引用，跳过缺失 URL 的条目
func collectWebRefs(results []WebResult) []entity.WebSourceRef {
	if len(results) == 0 {
		return nil
	}
	refs := make([]entity.WebSourceRef, 0, len(results))
	for _, r := range results {
		if r.URL == "" && r.Title == "" {
			continue
		}
		refs = append(refs, entity.WebSourceRef{Title: r.Title, URL: r.URL})
	}
	return refs
}
