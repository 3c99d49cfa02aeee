package chat

import "errors"

var (
	// ErrEmptyQuestion 表示问题为空，属于调用方错误，不会被降级成答案
	ErrEmptyQuestion = errors.New("question is empty")
	// ErrRetrievalDisabled 表示向量检索能力未配置（Milvus 或 Embedder 不可用）
	ErrRetrievalDisabled = errors.New("local retrieval is disabled")
	// ErrEmptyCompletion 表示模型返回了空内容
	ErrEmptyCompletion = errors.New("model returned empty completion")
)
