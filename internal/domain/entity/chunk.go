// Package entity 定义领域实体
package entity

import "fmt"

// ContentType 分块内容类别
type ContentType string

const (
	ContentTypeText    ContentType = "text"
	ContentTypeTable   ContentType = "table"
	ContentTypeHeading ContentType = "heading"
)

// DocumentChunk 文档分块，向量索引的最小单元
type DocumentChunk struct {
	ID          string      `json:"id"`
	SourceID    string      `json:"source_id"`
	Page        int64       `json:"page"`
	Section     string      `json:"section,omitempty"`
	ContentType ContentType `json:"content_type"`
	Content     string      `json:"content"`
}

// ScoredChunk 带相似度得分的检索结果
type ScoredChunk struct {
	DocumentChunk
	Score float32 `json:"score"`
}

// SourceRef 本地文档回答的出处引用
type SourceRef struct {
	Document string `json:"documento"`
	Page     int64  `json:"pagina"`
}

// Label 渲染 "<source> (page <n>)" 形式的引用文本
func (r SourceRef) Label() string {
	if r.Page <= 0 {
		return r.Document
	}
	return fmt.Sprintf("%s (page %d)", r.Document, r.Page)
}

// WebSourceRef 网络搜索回答的出处引用
type WebSourceRef struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

// Label 渲染 "<title> (<url>)" 形式的引用文本
func (r WebSourceRef) Label() string {
	if r.Title == "" {
		return r.URL
	}
	return fmt.Sprintf("%s (%s)", r.Title, r.URL)
}
