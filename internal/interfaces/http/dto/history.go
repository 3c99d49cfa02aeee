package dto

import (
	"time"

	"knowledge-navigator-api/internal/domain/entity"
)

// HistoryEntryResponse 历史记录条目
type HistoryEntryResponse struct {
	Question   string             `json:"pregunta"`
	Answer     string             `json:"respuesta"`
	Provenance string             `json:"provenance"`
	Sources    []entity.SourceRef `json:"sources,omitempty"`
	Timestamp  time.Time          `json:"timestamp"`
}

// NewHistoryEntryResponse 从领域实体构造响应
func NewHistoryEntryResponse(e *entity.HistoryEntry) *HistoryEntryResponse {
	return &HistoryEntryResponse{
		Question:   e.Question,
		Answer:     e.Answer,
		Provenance: string(e.Provenance),
		Sources:    e.Sources,
		Timestamp:  e.Timestamp,
	}
}
