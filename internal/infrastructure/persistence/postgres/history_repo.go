// Package postgres 提供 PostgreSQL Repository 实现
package postgres

import (
	"context"
	"fmt"

	"knowledge-navigator-api/internal/domain/entity"
	"knowledge-navigator-api/internal/domain/repository"
)

// HistoryRepository 问答历史的 PostgreSQL 实现，仅追加写
type HistoryRepository struct {
	client *Client
}

var _ repository.HistoryRepository = (*HistoryRepository)(nil)

// NewHistoryRepository 创建历史仓储并确保表结构
func NewHistoryRepository(client *Client) (*HistoryRepository, error) {
	if err := client.db.AutoMigrate(&entity.HistoryEntry{}); err != nil {
		return nil, fmt.Errorf("failed to migrate history_entries: %w", err)
	}
	return &HistoryRepository{client: client}, nil
}

func (r *HistoryRepository) Append(ctx context.Context, entry *entity.HistoryEntry) error {
	ctx, span := tracer.Start(ctx, "postgres.HistoryRepository.Append")
	defer span.End()

	db := r.client.db.WithContext(ctx)
	if err := db.Create(entry).Error; err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to append history entry: %w", err)
	}
	return nil
}

func (r *HistoryRepository) List(ctx context.Context, pagination repository.Pagination) (*repository.PagedResult[*entity.HistoryEntry], error) {
	ctx, span := tracer.Start(ctx, "postgres.HistoryRepository.List")
	defer span.End()

	db := r.client.db.WithContext(ctx)
	query := db.Model(&entity.HistoryEntry{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to count history entries: %w", err)
	}

	var entries []*entity.HistoryEntry
	if err := query.Order("timestamp DESC").
		Offset(pagination.Offset()).
		Limit(pagination.Limit()).
		Find(&entries).Error; err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to list history entries: %w", err)
	}

	return repository.NewPagedResult(entries, total, pagination), nil
}

func (r *HistoryRepository) Questions(ctx context.Context) ([]string, error) {
	ctx, span := tracer.Start(ctx, "postgres.HistoryRepository.Questions")
	defer span.End()

	db := r.client.db.WithContext(ctx)
	var questions []string
	if err := db.Model(&entity.HistoryEntry{}).
		Order("timestamp ASC").
		Pluck("question", &questions).Error; err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to load history questions: %w", err)
	}
	return questions, nil
}
