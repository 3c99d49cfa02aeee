package entity

import (
	"encoding/json"
	"time"
)

// HistoryEntry 审计历史中的一条问答记录
type HistoryEntry struct {
	ID         string      `json:"-" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Question   string      `json:"pregunta" gorm:"type:text;not null"`
	Answer     string      `json:"respuesta" gorm:"type:text;not null"`
	Provenance Provenance  `json:"provenance" gorm:"type:varchar(32);not null"`
	Sources    []SourceRef `json:"sources,omitempty" gorm:"serializer:json;type:jsonb"`
	Timestamp  time.Time   `json:"timestamp" gorm:"index;not null"`
}

func (HistoryEntry) TableName() string {
	return "history_entries"
}

func NewHistoryEntry(question string, answer *Answer) *HistoryEntry {
	return &HistoryEntry{
		Question:   question,
		Answer:     answer.Content,
		Provenance: answer.Provenance,
		Sources:    answer.Sources,
		Timestamp:  time.Now().UTC(),
	}
}

// MarshalLine 序列化为 NDJSON 追加写入的单行
func (e *HistoryEntry) MarshalLine() ([]byte, error) {
	b, err := json.Marshal(e)
	if err != nil {
		return nil, err
	}
	return append(b, '\n'), nil
}
