package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"knowledge-navigator-api/internal/application/ingest"
	"knowledge-navigator-api/internal/infrastructure/messaging"
	"knowledge-navigator-api/internal/interfaces/http/dto"
	"knowledge-navigator-api/pkg/logger"
)

// DocumentHandler 文档索引处理器
// producer 非空时索引与删除走异步队列，否则同步处理。
type DocumentHandler struct {
	indexer  *ingest.Indexer
	producer *messaging.Producer
}

// NewDocumentHandler 创建文档处理器
func NewDocumentHandler(indexer *ingest.Indexer, producer *messaging.Producer) *DocumentHandler {
	return &DocumentHandler{
		indexer:  indexer,
		producer: producer,
	}
}

// Index 索引文档
// @Summary 索引（或重建）一个文档的全部分块
// @Tags Documents
// @Accept json
// @Produce json
// @Param request body dto.IndexDocumentRequest true "文档内容"
// @Success 200 {object} dto.IndexDocumentResponse
// @Success 202 {object} dto.IndexDocumentResponse
// @Router /v1/documents [post]
func (h *DocumentHandler) Index(c *gin.Context) {
	var req dto.IndexDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	if !h.indexer.Enabled() {
		dto.ServiceUnavailable(c, "vector index not available")
		return
	}

	ctx := logger.WithContext(c.Request.Context(), logger.SourceIDKey, req.SourceID)

	if h.producer != nil {
		job := &messaging.IngestJobMessage{
			JobID:    uuid.NewString(),
			SourceID: req.SourceID,
			Action:   messaging.IngestActionIndex,
			Pages:    toJobPages(req.Pages),
		}
		if _, err := h.producer.PublishIngestJob(ctx, job); err != nil {
			logger.Error(ctx, "failed to enqueue ingest job", err)
			dto.InternalError(c, "failed to enqueue ingest job")
			return
		}
		dto.Accepted(c, dto.IndexDocumentResponse{
			SourceID: req.SourceID,
			JobID:    job.JobID,
			Enqueued: true,
		})
		return
	}

	chunks, err := h.indexer.IndexDocument(ctx, req.ToDocumentInput())
	if err != nil {
		logger.Error(ctx, "failed to index document", err)
		dto.FromAppError(c, err)
		return
	}
	dto.Success(c, dto.IndexDocumentResponse{SourceID: req.SourceID, Chunks: chunks})
}

// Delete 删除文档的全部分块
// @Summary 删除文档
// @Tags Documents
// @Produce json
// @Param source_id path string true "文档标识"
// @Success 204
// @Router /v1/documents/{source_id} [delete]
func (h *DocumentHandler) Delete(c *gin.Context) {
	sourceID := c.Param("source_id")
	if sourceID == "" {
		dto.BadRequest(c, "source_id is required")
		return
	}

	if !h.indexer.Enabled() {
		dto.ServiceUnavailable(c, "vector index not available")
		return
	}

	ctx := logger.WithContext(c.Request.Context(), logger.SourceIDKey, sourceID)

	if h.producer != nil {
		job := &messaging.IngestJobMessage{
			JobID:    uuid.NewString(),
			SourceID: sourceID,
			Action:   messaging.IngestActionDelete,
		}
		if _, err := h.producer.PublishIngestJob(ctx, job); err != nil {
			logger.Error(ctx, "failed to enqueue delete job", err)
			dto.InternalError(c, "failed to enqueue delete job")
			return
		}
		dto.Accepted(c, dto.IndexDocumentResponse{
			SourceID: sourceID,
			JobID:    job.JobID,
			Enqueued: true,
		})
		return
	}

	if err := h.indexer.DeleteDocument(ctx, sourceID); err != nil {
		logger.Error(ctx, "failed to delete document", err)
		dto.FromAppError(c, err)
		return
	}
	dto.NoContent(c)
}

// List 列出已索引的文档
// @Summary 列出全部已索引文档标识
// @Tags Documents
// @Produce json
// @Success 200 {object} dto.ListDocumentsResponse
// @Router /v1/documents [get]
func (h *DocumentHandler) List(c *gin.Context) {
	if !h.indexer.Enabled() {
		dto.ServiceUnavailable(c, "vector index not available")
		return
	}

	sources, err := h.indexer.ListDocuments(c.Request.Context())
	if err != nil {
		logger.Error(c.Request.Context(), "failed to list documents", err)
		dto.FromAppError(c, err)
		return
	}
	if sources == nil {
		sources = []string{}
	}
	dto.Success(c, dto.ListDocumentsResponse{Sources: sources})
}

func toJobPages(pages []dto.PageRequest) []messaging.DocumentPage {
	out := make([]messaging.DocumentPage, 0, len(pages))
	for _, p := range pages {
		out = append(out, messaging.DocumentPage{
			Page:     p.Page,
			Text:     p.Text,
			Sections: p.Sections,
			Tables:   p.Tables,
		})
	}
	return out
}
