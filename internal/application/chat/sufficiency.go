package chat

import (
	"context"
	"strings"

	"github.com/cloudwego/eino/schema"

	"knowledge-navigator-api/pkg/errors"
)

// judgeContext 用 LLM 判定上下文是否足以回答问题
// 空上下文直接判不足，不调用模型。宽松解析：仅识别 sí/yes/no 前缀，
// 无法解析时判不足（宁可回退网络搜索，不冒险幻觉）。
func (e *Engine) judgeContext(ctx context.Context, contextBlock, question string) (bool, error) {
	if strings.TrimSpace(contextBlock) == "" {
		return false, nil
	}
	if !e.opts.JudgeEnabled {
		return true, nil
	}

	prompt := buildJudgePrompt(contextBlock, question, e.opts.JudgeContextMaxChars)
	raw, err := e.generate(ctx, purposeJudge, []*schema.Message{schema.UserMessage(prompt)})
	if err != nil {
		// 判定失败按“不足”处理，走网络回退
		return false, errors.ErrLLMCallFailed.WithError(err)
	}

	verdict, ok := parseJudgeVerdict(raw)
	if !ok {
		return false, errors.ErrJudgeParseFailed.WithDetail(truncateRunes(raw, 120))
	}
	return verdict, nil
}

// parseJudgeVerdict 宽松解析判定输出：大小写不敏感的 sí/yes/no 前缀
func parseJudgeVerdict(raw string) (verdict bool, ok bool) {
	s := strings.ToLower(strings.TrimSpace(raw))
	s = strings.TrimLeft(s, "¡¿\"'“”‘’ ")
	switch {
	case strings.HasPrefix(s, "sí"), strings.HasPrefix(s, "si"), strings.HasPrefix(s, "yes"):
		return true, true
	case strings.HasPrefix(s, "no"):
		return false, true
	default:
		return false, false
	}
}

// containsSentinel 检测本地回答是否为“无资料”声明
func containsSentinel(answer string) bool {
	return strings.Contains(
		strings.ToLower(answer),
		strings.ToLower(SinInformacion),
	)
}
