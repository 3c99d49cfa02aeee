// Package messaging 提供基于 Redis Streams 的消息队列实现
package messaging

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("messaging")

// Producer 消息生产者
type Producer struct {
	client *redis.Client
	maxLen int64
}

// NewProducer 创建消息生产者
func NewProducer(client *redis.Client, maxLen int64) *Producer {
	if maxLen <= 0 {
		maxLen = 10000
	}
	return &Producer{
		client: client,
		maxLen: maxLen,
	}
}

// Publish 发布消息到指定流
func (p *Producer) Publish(ctx context.Context, stream Stream, msg *Message) (string, error) {
	ctx, span := tracer.Start(ctx, "producer.Publish",
		trace.WithAttributes(
			attribute.String("stream", string(stream)),
			attribute.String("message.id", msg.ID),
			attribute.String("message.type", msg.Type),
		))
	defer span.End()

	data, err := json.Marshal(msg)
	if err != nil {
		span.RecordError(err)
		return "", fmt.Errorf("failed to marshal message: %w", err)
	}

	result, err := p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: string(stream),
		MaxLen: p.maxLen,
		Approx: true,
		Values: map[string]interface{}{
			"data": string(data),
		},
	}).Result()

	if err != nil {
		span.RecordError(err)
		return "", fmt.Errorf("failed to publish message: %w", err)
	}

	span.SetAttributes(attribute.String("stream.message_id", result))
	return result, nil
}

// PublishIngestJob 发布文档索引任务
func (p *Producer) PublishIngestJob(ctx context.Context, job *IngestJobMessage) (string, error) {
	msgType := MessageTypeIndexDocument
	if job.Action == IngestActionDelete {
		msgType = MessageTypeDeleteDocument
	}

	msg, err := NewMessage(job.JobID, msgType, job.SourceID, job)
	if err != nil {
		return "", err
	}

	return p.Publish(ctx, StreamIngestJobs, msg)
}

// IngestAction 索引任务动作
const (
	IngestActionIndex  = "index"
	IngestActionDelete = "delete"
)

// IngestJobMessage 文档索引任务消息
type IngestJobMessage struct {
	JobID    string         `json:"job_id"`
	SourceID string         `json:"source_id"`
	Action   string         `json:"action"`
	Pages    []DocumentPage `json:"pages,omitempty"`
}

// DocumentPage 任务载荷中的单页内容
type DocumentPage struct {
	Page     int64    `json:"page"`
	Text     string   `json:"text"`
	Sections []string `json:"sections,omitempty"`
	Tables   []string `json:"tables,omitempty"`
}
