package repository

import (
	"context"

	"knowledge-navigator-api/internal/domain/entity"
)

// HistoryRepository 问答审计历史的追加写访问接口
// 实现只允许追加与读取，不提供修改或删除。
type HistoryRepository interface {
	Append(ctx context.Context, entry *entity.HistoryEntry) error
	List(ctx context.Context, pagination Pagination) (*PagedResult[*entity.HistoryEntry], error)
	// Questions 返回全部历史问题文本，按时间顺序
	Questions(ctx context.Context) ([]string, error)
}
