// Package handler 提供 HTTP 请求处理器
package handler

import (
	"github.com/gin-gonic/gin"

	"knowledge-navigator-api/internal/application/chat"
	"knowledge-navigator-api/internal/interfaces/http/dto"
	"knowledge-navigator-api/pkg/logger"
)

// ChatHandler 问答处理器
type ChatHandler struct {
	engine *chat.Engine
}

// NewChatHandler 创建问答处理器
func NewChatHandler(engine *chat.Engine) *ChatHandler {
	return &ChatHandler{engine: engine}
}

// CreateSession 创建会话
// @Summary 创建问答会话
// @Tags Chat
// @Produce json
// @Success 201 {object} dto.CreateSessionResponse
// @Router /v1/chat/sessions [post]
func (h *ChatHandler) CreateSession(c *gin.Context) {
	sessionID := h.engine.Sessions().Create()
	dto.Created(c, dto.CreateSessionResponse{SessionID: sessionID})
}

// Ask 提问
// @Summary 在会话中提问
// @Tags Chat
// @Accept json
// @Produce json
// @Param session_id path string true "会话 ID"
// @Param request body dto.AskRequest true "提问内容"
// @Success 200 {object} dto.AskResponse
// @Router /v1/chat/sessions/{session_id}/ask [post]
func (h *ChatHandler) Ask(c *gin.Context) {
	sessionID := c.Param("session_id")
	if sessionID == "" {
		dto.BadRequest(c, "session_id is required")
		return
	}

	var req dto.AskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	ctx := logger.WithContext(c.Request.Context(), logger.SessionIDKey, sessionID)

	result, err := h.engine.Answer(ctx, sessionID, chat.Query{
		Text:        req.Question,
		UseInternet: req.UseInternet,
		Concise:     req.Concise,
	})
	if err != nil {
		dto.BadRequest(c, err.Error())
		return
	}

	dto.Success(c, dto.NewAskResponse(result))
}

// SessionHistory 查询会话内的问答轮次
// @Summary 查询会话问答记录
// @Tags Chat
// @Produce json
// @Param session_id path string true "会话 ID"
// @Success 200 {object} []dto.TurnResponse
// @Router /v1/chat/sessions/{session_id}/history [get]
func (h *ChatHandler) SessionHistory(c *gin.Context) {
	sessionID := c.Param("session_id")
	mem := h.engine.Sessions().Get(sessionID)
	if mem == nil {
		dto.NotFound(c, "session not found")
		return
	}

	turns := mem.Turns()
	resp := make([]dto.TurnResponse, 0, len(turns))
	for _, t := range turns {
		resp = append(resp, dto.TurnResponse{
			Question:  t.Question,
			Answer:    t.Answer,
			Timestamp: t.Timestamp,
		})
	}
	dto.Success(c, resp)
}
