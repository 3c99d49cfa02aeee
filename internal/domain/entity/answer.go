package entity

// Provenance 标记答案内容的来源类别
type Provenance string

const (
	ProvenanceLocalDocuments Provenance = "local-documents"
	ProvenanceWebSearch      Provenance = "web-search"
	ProvenanceModelOnly      Provenance = "language-model-only"
	ProvenanceMemory         Provenance = "conversation-memory"
	ProvenanceError          Provenance = "error"
)

// Answer 检索策略产出的最终答案
// 不变式：Provenance 为 local-documents 时 Sources 非空；
// 为 web-search 时 WebSources 非空且 Sources 为空。
type Answer struct {
	Content           string         `json:"content"`
	Provenance        Provenance     `json:"provenance"`
	Sources           []SourceRef    `json:"sources,omitempty"`
	WebSources        []WebSourceRef `json:"web_sources,omitempty"`
	SuggestedFollowUp string         `json:"suggested_follow_up,omitempty"`
}

// SourceLabels 按出处类别渲染引用文本列表
func (a *Answer) SourceLabels() []string {
	switch a.Provenance {
	case ProvenanceLocalDocuments:
		labels := make([]string, 0, len(a.Sources))
		for _, s := range a.Sources {
			labels = append(labels, s.Label())
		}
		return labels
	case ProvenanceWebSearch:
		labels := make([]string, 0, len(a.WebSources))
		for _, s := range a.WebSources {
			labels = append(labels, s.Label())
		}
		return labels
	default:
		return nil
	}
}
