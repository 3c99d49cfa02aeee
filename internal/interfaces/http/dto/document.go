package dto

import "knowledge-navigator-api/internal/application/ingest"

// PageRequest 文档单页内容
type PageRequest struct {
	Page     int64    `json:"page" binding:"required,min=1"`
	Text     string   `json:"text"`
	Sections []string `json:"sections"`
	Tables   []string `json:"tables"`
}

// IndexDocumentRequest 文档索引请求
type IndexDocumentRequest struct {
	SourceID string        `json:"source_id" binding:"required,max=512"`
	Pages    []PageRequest `json:"pages" binding:"required"`
}

// ToDocumentInput 转换为应用层输入
func (r *IndexDocumentRequest) ToDocumentInput() *ingest.DocumentInput {
	doc := &ingest.DocumentInput{
		SourceID: r.SourceID,
		Pages:    make([]ingest.PageInput, 0, len(r.Pages)),
	}
	for _, p := range r.Pages {
		doc.Pages = append(doc.Pages, ingest.PageInput{
			Page:     p.Page,
			Text:     p.Text,
			Sections: p.Sections,
			Tables:   p.Tables,
		})
	}
	return doc
}

// IndexDocumentResponse 文档索引响应
// 同步处理时返回写入的分块数，异步入队时返回任务 ID。
type IndexDocumentResponse struct {
	SourceID string `json:"source_id"`
	JobID    string `json:"job_id,omitempty"`
	Enqueued bool   `json:"enqueued"`
	Chunks   int    `json:"chunks,omitempty"`
}

// ListDocumentsResponse 已索引文档列表
type ListDocumentsResponse struct {
	Sources []string `json:"sources"`
}
