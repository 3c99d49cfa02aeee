// Package jsonfile 提供基于 NDJSON 追加文件的历史存储实现
package jsonfile

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"go.opentelemetry.io/otel"

	"knowledge-navigator-api/internal/domain/entity"
	"knowledge-navigator-api/internal/domain/repository"
)

var tracer = otel.Tracer("jsonfile")

// 单行上限，防止损坏行撑爆扫描缓冲
const maxLineBytes = 1 << 20

// HistoryStore 基于追加写 NDJSON 文件的 HistoryRepository 实现
// 适合无数据库的单机部署，文件即审计日志。
type HistoryStore struct {
	mu   sync.Mutex
	path string
}

var _ repository.HistoryRepository = (*HistoryStore)(nil)

// NewHistoryStore 创建文件存储，必要时创建父目录
func NewHistoryStore(path string) (*HistoryStore, error) {
	if path == "" {
		return nil, fmt.Errorf("history file path is required")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create history dir: %w", err)
		}
	}
	return &HistoryStore{path: path}, nil
}

func (s *HistoryStore) Append(ctx context.Context, entry *entity.HistoryEntry) error {
	_, span := tracer.Start(ctx, "jsonfile.HistoryStore.Append")
	defer span.End()

	line, err := entry.MarshalLine()
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to marshal history entry: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.OpenFile(s.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to open history file: %w", err)
	}
	defer f.Close()

	if _, err := f.Write(line); err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to append history entry: %w", err)
	}
	return nil
}

func (s *HistoryStore) List(ctx context.Context, pagination repository.Pagination) (*repository.PagedResult[*entity.HistoryEntry], error) {
	_, span := tracer.Start(ctx, "jsonfile.HistoryStore.List")
	defer span.End()

	entries, err := s.readAll()
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	// 最新在前
	for i, j := 0, len(entries)-1; i < j; i, j = i+1, j-1 {
		entries[i], entries[j] = entries[j], entries[i]
	}

	total := int64(len(entries))
	start := pagination.Offset()
	if start > len(entries) {
		start = len(entries)
	}
	end := start + pagination.Limit()
	if end > len(entries) {
		end = len(entries)
	}

	return repository.NewPagedResult(entries[start:end], total, pagination), nil
}

func (s *HistoryStore) Questions(ctx context.Context) ([]string, error) {
	_, span := tracer.Start(ctx, "jsonfile.HistoryStore.Questions")
	defer span.End()

	entries, err := s.readAll()
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	questions := make([]string, 0, len(entries))
	for _, e := range entries {
		questions = append(questions, e.Question)
	}
	return questions, nil
}

// readAll 按写入顺序读取全部记录，跳过无法解析的行
func (s *HistoryStore) readAll() ([]*entity.HistoryEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.Open(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to open history file: %w", err)
	}
	defer f.Close()

	var entries []*entity.HistoryEntry
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), maxLineBytes)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var entry entity.HistoryEntry
		if err := json.Unmarshal(line, &entry); err != nil {
			continue
		}
		entries = append(entries, &entry)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read history file: %w", err)
	}
	return entries, nil
}
