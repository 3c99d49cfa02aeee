package dto

import (
	"time"

	"knowledge-navigator-api/internal/application/chat"
	"knowledge-navigator-api/internal/domain/entity"
)

// CreateSessionResponse 创建会话响应
type CreateSessionResponse struct {
	SessionID string `json:"session_id"`
}

// TurnResponse 会话内的单轮问答
type TurnResponse struct {
	Question  string    `json:"pregunta"`
	Answer    string    `json:"respuesta"`
	Timestamp time.Time `json:"timestamp"`
}

// AskRequest 提问请求
type AskRequest struct {
	Question    string `json:"question" binding:"required"`
	UseInternet bool   `json:"use_internet"`
	Concise     bool   `json:"concise"`
}

// WebSourceResponse 网络来源
type WebSourceResponse struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

// AskResponse 提问响应
type AskResponse struct {
	Answer            string              `json:"answer"`
	Provenance        string              `json:"provenance"`
	Sources           []entity.SourceRef  `json:"sources,omitempty"`
	WebSources        []WebSourceResponse `json:"web_sources,omitempty"`
	SuggestedFollowUp string              `json:"suggested_follow_up,omitempty"`
	SimilarQuestion   string              `json:"similar_question,omitempty"`
}

// NewAskResponse 从应用层结果构造响应
func NewAskResponse(result *chat.Result) *AskResponse {
	resp := &AskResponse{
		Answer:            result.Answer.Content,
		Provenance:        string(result.Answer.Provenance),
		Sources:           result.Answer.Sources,
		SuggestedFollowUp: result.Answer.SuggestedFollowUp,
		SimilarQuestion:   result.SimilarQuestion,
	}
	for _, ws := range result.Answer.WebSources {
		resp.WebSources = append(resp.WebSources, WebSourceResponse{
			Title: ws.Title,
			URL:   ws.URL,
		})
	}
	return resp
}
