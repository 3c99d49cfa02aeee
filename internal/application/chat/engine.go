package chat

import (
	"context"
	"strings"
	"time"

	"github.com/cloudwego/eino/components/embedding"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"knowledge-navigator-api/internal/domain/entity"
	"knowledge-navigator-api/internal/domain/repository"
	"knowledge-navigator-api/pkg/logger"
	"knowledge-navigator-api/pkg/metrics"
)

const (
	purposeAnswer = "answer"
	purposeJudge  = "judge"
	purposeDirect = "direct"

	defaultTopK = 6
	maxTopK     = 50
)

// respuestaFallida 本地与网络路径都失败时返回给用户的文案
const respuestaFallida = "Lo siento, no he podido generar una respuesta en este momento. Inténtalo de nuevo más tarde."

// Options 策略可调参数，来自 chat 配置段
type Options struct {
	TopK                 int
	JudgeEnabled         bool
	JudgeContextMaxChars int
	Temperature          float32
	HistoryMaxTurns      int
	WebResultCount       int
}

// Engine 问答策略：本地检索优先，充分性不足回退网络搜索
// 外部服务失败一律降级为带 error 出处的答案，不向调用方抛错。
type Engine struct {
	embedder   embedding.Embedder
	llm        model.BaseChatModel
	vector     repository.VectorRepository
	web        WebSearcher
	history    repository.HistoryRepository
	redundancy *RedundancyDetector
	sessions   *SessionStore

	opts Options
}

func NewEngine(
	embedder embedding.Embedder,
	llm model.BaseChatModel,
	vector repository.VectorRepository,
	web WebSearcher,
	history repository.HistoryRepository,
	redundancy *RedundancyDetector,
	sessions *SessionStore,
	opts Options,
) *Engine {
	if opts.TopK <= 0 {
		opts.TopK = defaultTopK
	}
	if opts.TopK > maxTopK {
		opts.TopK = maxTopK
	}
	if opts.JudgeContextMaxChars <= 0 {
		opts.JudgeContextMaxChars = 2000
	}
	if opts.WebResultCount <= 0 {
		opts.WebResultCount = 5
	}
	return &Engine{
		embedder:   embedder,
		llm:        llm,
		vector:     vector,
		web:        web,
		history:    history,
		redundancy: redundancy,
		sessions:   sessions,
		opts:       opts,
	}
}

// Sessions 返回会话注册表，供接口层创建和查询会话
func (e *Engine) Sessions() *SessionStore {
	return e.sessions
}

// Answer 处理一次提问，返回答案与冗余提示
// 仅在问题为空时返回非 nil error。
func (e *Engine) Answer(ctx context.Context, sessionID string, q Query) (*Result, error) {
	question := strings.TrimSpace(q.Text)
	if question == "" {
		return nil, ErrEmptyQuestion
	}
	mem := e.sessions.GetOrCreate(sessionID)

	// 1) 肯定答复改写为上一轮留下的建议问题
	if isAffirmative(question) {
		if suggested := mem.TakeFollowUp(); suggested != "" {
			question = suggested
		}
	}

	start := time.Now()
	res := &Result{}

	// 冗余检测仅提示，失败不影响回答
	if similar, hit, err := e.redundancy.Check(ctx, question); err != nil {
		logger.Warn(ctx, "redundancy check failed", "error", err)
	} else if hit {
		res.SimilarQuestion = similar
	}

	ans := e.resolve(ctx, mem, question, q)
	res.Answer = ans

	metrics.ChatAnswersTotal.WithLabelValues(string(ans.Provenance)).Inc()
	metrics.ChatAnswerDuration.WithLabelValues(string(ans.Provenance)).Observe(time.Since(start).Seconds())

	// 7) 提取末尾建议问题，留给下一轮
	if fu := extractFollowUp(ans.Content); fu != "" {
		ans.SuggestedFollowUp = fu
		mem.SetFollowUp(fu)
	} else {
		mem.SetFollowUp("")
	}

	// 8) 写入会话记忆与审计历史；历史写失败只记日志
	mem.Append(question, ans.Content)
	e.appendHistory(ctx, question, ans)

	return res, nil
}

// resolve 执行分类、本地检索、充分性判定与网络回退
func (e *Engine) resolve(ctx context.Context, mem *Memory, question string, q Query) *entity.Answer {
	history := mem.Recent(e.opts.HistoryMaxTurns)

	// 同一会话内完全相同的提问直接复用记忆中的答案
	if prev, ok := answerFromMemory(history, question); ok {
		return &entity.Answer{Content: prev, Provenance: entity.ProvenanceMemory}
	}

	// 调用方显式要求联网
	if q.UseInternet {
		metrics.WebFallbackTotal.WithLabelValues("explicit").Inc()
		return e.answerWeb(ctx, question, history)
	}

	// 2) CLASSIFY：简单问候直答，不触发检索
	if isSimpleQuestion(question) {
		return e.answerDirect(ctx, question, history, q.Concise)
	}

	// 3) LOCAL_SEARCH：检索失败按“无本地上下文”处理
	chunks, err := e.searchLocal(ctx, question)
	if err != nil {
		logger.Warn(ctx, "local search failed, falling back to web", "error", err)
		metrics.WebFallbackTotal.WithLabelValues("local_error").Inc()
		return e.answerWeb(ctx, question, history)
	}

	// 4a) 空上下文直接判不足，不调用判定模型
	contextBlock := buildContextBlock(chunks)
	if strings.TrimSpace(contextBlock) == "" {
		metrics.WebFallbackTotal.WithLabelValues("empty_context").Inc()
		return e.answerWeb(ctx, question, history)
	}

	// 4b) LLM 判定，解析失败按不足处理
	sufficient, jerr := e.judgeContext(ctx, contextBlock, question)
	if jerr != nil {
		logger.Warn(ctx, "context judge degraded to insufficient", "error", jerr)
	}
	if !sufficient {
		metrics.WebFallbackTotal.WithLabelValues("judge_no").Inc()
		return e.answerWeb(ctx, question, history)
	}

	// 5) ANSWER_LOCAL
	prompt := buildLocalPrompt(contextBlock, question, history, q.Concise)
	text, err := e.generate(ctx, purposeAnswer, []*schema.Message{
		schema.SystemMessage(personaSystem),
		schema.UserMessage(prompt),
	})
	if err != nil {
		logger.Warn(ctx, "local answer generation failed, falling back to web", "error", err)
		metrics.WebFallbackTotal.WithLabelValues("local_error").Inc()
		return e.answerWeb(ctx, question, history)
	}

	// 4c) 模型声明无资料时回退网络
	if containsSentinel(text) {
		metrics.WebFallbackTotal.WithLabelValues("sentinel").Inc()
		return e.answerWeb(ctx, question, history)
	}

	return &entity.Answer{
		Content:    text,
		Provenance: entity.ProvenanceLocalDocuments,
		Sources:    collectSourceRefs(chunks),
	}
}

// answerDirect 无上下文直答（简单问候）
func (e *Engine) answerDirect(ctx context.Context, question string, history []Turn, concise bool) *entity.Answer {
	var sb strings.Builder
	if h := formatHistory(history); h != "" {
		sb.WriteString("Historial de la conversación:\n")
		sb.WriteString(h)
		sb.WriteString("\n\n")
	}
	if concise {
		sb.WriteString("Responde de forma breve. ")
	}
	sb.WriteString(question)

	text, err := e.generate(ctx, purposeDirect, []*schema.Message{
		schema.SystemMessage(personaSystem),
		schema.UserMessage(sb.String()),
	})
	if err != nil {
		return errorAnswer(err)
	}
	return &entity.Answer{
		Content:    text,
		Provenance: entity.ProvenanceModelOnly,
	}
}

// answerWeb 网络搜索回退路径
func (e *Engine) answerWeb(ctx context.Context, question string, history []Turn) *entity.Answer {
	if e.web == nil {
		return errorAnswer(ErrRetrievalDisabled)
	}
	results, err := e.web.Search(ctx, question, e.opts.WebResultCount)
	if err != nil {
		logger.Error(ctx, "web search failed", err)
		return errorAnswer(err)
	}

	prompt := buildWebPrompt(results, question, history)
	text, err := e.generate(ctx, purposeAnswer, []*schema.Message{
		schema.SystemMessage(personaSystem),
		schema.UserMessage(prompt),
	})
	if err != nil {
		logger.Error(ctx, "web answer generation failed", err)
		return errorAnswer(err)
	}

	return &entity.Answer{
		Content:    text,
		Provenance: entity.ProvenanceWebSearch,
		WebSources: collectWebRefs(results),
	}
}

// searchLocal 嵌入问题并检索向量索引
func (e *Engine) searchLocal(ctx context.Context, question string) ([]*entity.ScoredChunk, error) {
	if e.embedder == nil || e.vector == nil {
		return nil, ErrRetrievalDisabled
	}
	if err := e.vector.EnsureDocumentChunksCollection(ctx); err != nil {
		return nil, err
	}
	vectors, err := e.embedder.EmbedStrings(ctx, []string{question})
	if err != nil || len(vectors) == 0 {
		if err == nil {
			err = ErrRetrievalDisabled
		}
		return nil, err
	}
	vec := make([]float32, 0, len(vectors[0]))
	for _, x := range vectors[0] {
		vec = append(vec, float32(x))
	}
	return e.vector.SearchChunks(ctx, vec, e.opts.TopK)
}

// generate 调用 ChatModel 并记录指标
func (e *Engine) generate(ctx context.Context, purpose string, msgs []*schema.Message) (string, error) {
	start := time.Now()
	out, err := e.llm.Generate(ctx, msgs, model.WithTemperature(e.opts.Temperature))
	metrics.LLMCallDuration.WithLabelValues(purpose).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.LLMCallTotal.WithLabelValues(purpose, "error").Inc()
		return "", err
	}
	metrics.LLMCallTotal.WithLabelValues(purpose, "ok").Inc()
	if out == nil || strings.TrimSpace(out.Content) == "" {
		metrics.LLMCallTotal.WithLabelValues(purpose, "empty").Inc()
		return "", ErrEmptyCompletion
	}
	return strings.TrimSpace(out.Content), nil
}

// appendHistory 写审计历史，失败只告警
func (e *Engine) appendHistory(ctx context.Context, question string, ans *entity.Answer) {
	if e.history == nil {
		return
	}
	if err := e.history.Append(ctx, entity.NewHistoryEntry(question, ans)); err != nil {
		logger.Warn(ctx, "history append failed", "error", err)
	}
}

// answerFromMemory 在会话记忆中查找完全相同的提问
func answerFromMemory(history []Turn, question string) (string, bool) {
	norm := strings.ToLower(strings.TrimSpace(question))
	for i := len(history) - 1; i >= 0; i-- {
		if strings.ToLower(strings.TrimSpace(history[i].Question)) == norm && history[i].Answer != "" {
			return history[i].Answer, true
		}
	}
	return "", false
}

// errorAnswer 将外部失败降级为带 error 出处的答案
func errorAnswer(err error) *entity.Answer {
	content := respuestaFallida
	if err != nil {
		content = content + " (" + err.Error() + ")"
	}
	return &entity.Answer{
		Content:    content,
		Provenance: entity.ProvenanceError,
	}
}
