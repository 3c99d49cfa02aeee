// Package chat 实现检索优先、网络回退的问答策略
package chat

import (
	"time"

	"knowledge-navigator-api/internal/domain/entity"
)

// Query 一次提问的输入
type Query struct {
	Text string
	// UseInternet 为 true 时跳过本地检索，直接走网络搜索
	UseInternet bool
	// Concise 为 true 时要求模型给出简短回答
	Concise bool
}

// Turn 会话记忆中的一轮问答
type Turn struct {
	Question  string
	Answer    string
	Timestamp time.Time
}

// Result 策略执行结果：答案加上冗余检测的提示信息
type Result struct {
	Answer *entity.Answer
	// SimilarQuestion 历史中与本次提问高度相似的问题，仅提示，不影响回答
	SimilarQuestion string
}
