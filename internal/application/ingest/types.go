package ingest

// PageInput 一页已抽取好的文档文本
type PageInput struct {
	Page int64 `json:"page"`
	Text string `json:"text"`
	// Sections 标题层级路径，自顶向下
	Sections []string `json:"sections,omitempty"`
	// Tables 本页的表格内容，逐表一段纯文本
	Tables []string `json:"tables,omitempty"`
}

// DocumentInput 一份待入库文档（文本已在上游抽取）
type DocumentInput struct {
	SourceID string      `json:"source_id"`
	Pages    []PageInput `json:"pages"`
}
