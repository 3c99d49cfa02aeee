package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"knowledge-navigator-api/internal/domain/repository"
	"knowledge-navigator-api/internal/interfaces/http/dto"
	"knowledge-navigator-api/pkg/logger"
)

// HistoryHandler 问答历史处理器
type HistoryHandler struct {
	repo repository.HistoryRepository
}

// NewHistoryHandler 创建历史处理器
func NewHistoryHandler(repo repository.HistoryRepository) *HistoryHandler {
	return &HistoryHandler{repo: repo}
}

// List 分页查询问答历史，最新在前
// @Summary 查询问答历史
// @Tags History
// @Produce json
// @Param page query int false "页码"
// @Param page_size query int false "每页数量"
// @Success 200 {array} dto.HistoryEntryResponse
// @Router /v1/history [get]
func (h *HistoryHandler) List(c *gin.Context) {
	if h.repo == nil {
		dto.ServiceUnavailable(c, "history storage not available")
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	pagination := repository.NewPagination(page, pageSize)

	result, err := h.repo.List(c.Request.Context(), pagination)
	if err != nil {
		logger.Error(c.Request.Context(), "failed to list history", err)
		dto.InternalError(c, "failed to list history")
		return
	}

	items := make([]*dto.HistoryEntryResponse, 0, len(result.Items))
	for _, e := range result.Items {
		items = append(items, dto.NewHistoryEntryResponse(e))
	}

	dto.SuccessWithPage(c, items, dto.NewPageMeta(result.Page, result.PageSize, int(result.Total)))
}
