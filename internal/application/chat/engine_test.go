package chat

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/cloudwego/eino/components/embedding"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"knowledge-navigator-api/internal/domain/entity"
	"knowledge-navigator-api/internal/domain/repository"
)

type fakeEmbedder struct {
	calls  int
	vector []float64
	err    error
}

func (f *fakeEmbedder) EmbedStrings(_ context.Context, texts []string, _ ...embedding.Option) ([][]float64, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	out := make([][]float64, len(texts))
	for i := range texts {
		out[i] = f.vector
	}
	return out, nil
}

// fakeChatModel 按提示词内容路由回答：判定提示返回 verdict，其余返回 reply
type fakeChatModel struct {
	reply   string
	verdict string
	err     error

	calls       int
	judgeCalls  int
	lastPrompt  string
	lastSystem  string
	answerCalls int
}

func (f *fakeChatModel) Generate(_ context.Context, msgs []*schema.Message, _ ...model.Option) (*schema.Message, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	for _, m := range msgs {
		if m.Role == schema.System {
			f.lastSystem = m.Content
		}
		if m.Role == schema.User {
			f.lastPrompt = m.Content
		}
	}
	if strings.Contains(f.lastPrompt, "¿Es suficiente el contexto?") {
		f.judgeCalls++
		return schema.AssistantMessage(f.verdict, nil), nil
	}
	f.answerCalls++
	return schema.AssistantMessage(f.reply, nil), nil
}

func (f *fakeChatModel) Stream(_ context.Context, _ []*schema.Message, _ ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	return nil, errors.New("streaming not supported")
}

type fakeVector struct {
	chunks      []*entity.ScoredChunk
	searchErr   error
	searchCalls int
}

func (f *fakeVector) EnsureDocumentChunksCollection(context.Context) error { return nil }

func (f *fakeVector) SearchChunks(_ context.Context, _ []float32, _ int) ([]*entity.ScoredChunk, error) {
	f.searchCalls++
	return f.chunks, f.searchErr
}

func (f *fakeVector) DeleteChunksBySource(context.Context, string) error { return nil }

func (f *fakeVector) InsertChunks(context.Context, []*entity.DocumentChunk, [][]float32) error {
	return nil
}

func (f *fakeVector) ListSourceIDs(context.Context) ([]string, error) { return nil, nil }

type fakeWeb struct {
	results []WebResult
	err     error
	calls   int
}

func (f *fakeWeb) Search(_ context.Context, _ string, _ int) ([]WebResult, error) {
	f.calls++
	return f.results, f.err
}

type fakeHistory struct {
	entries []*entity.HistoryEntry
}

func (f *fakeHistory) Append(_ context.Context, entry *entity.HistoryEntry) error {
	f.entries = append(f.entries, entry)
	return nil
}

func (f *fakeHistory) List(_ context.Context, p repository.Pagination) (*repository.PagedResult[*entity.HistoryEntry], error) {
	return repository.NewPagedResult(f.entries, int64(len(f.entries)), p), nil
}

func (f *fakeHistory) Questions(context.Context) ([]string, error) {
	out := make([]string, 0, len(f.entries))
	for _, e := range f.entries {
		out = append(out, e.Question)
	}
	return out, nil
}

func policyChunks() []*entity.ScoredChunk {
	return []*entity.ScoredChunk{
		{
			DocumentChunk: entity.DocumentChunk{
				SourceID: "policy.pdf",
				Page:     3,
				Content:  "Las vacaciones anuales son de 23 días laborables.",
			},
			Score: 0.91,
		},
		{
			DocumentChunk: entity.DocumentChunk{
				SourceID: "policy.pdf",
				Page:     4,
				Content:  "Los días no disfrutados no se acumulan al año siguiente.",
			},
			Score: 0.84,
		},
	}
}

func newTestEngine(llm *fakeChatModel, vector *fakeVector, web *fakeWeb, history repository.HistoryRepository) *Engine {
	emb := &fakeEmbedder{vector: []float64{0.1, 0.2, 0.3}}
	var vectorRepo repository.VectorRepository
	if vector != nil {
		vectorRepo = vector
	}
	var webSearcher WebSearcher
	if web != nil {
		webSearcher = web
	}
	return NewEngine(
		emb,
		llm,
		vectorRepo,
		webSearcher,
		history,
		nil,
		NewSessionStore(10),
		Options{TopK: 4, JudgeEnabled: true},
	)
}

func TestAnswerEmptyQuestion(t *testing.T) {
	e := newTestEngine(&fakeChatModel{}, nil, nil, nil)

	_, err := e.Answer(context.Background(), "s1", Query{Text: "   "})
	assert.ErrorIs(t, err, ErrEmptyQuestion)
}

func TestAnswerLocalDocuments(t *testing.T) {
	llm := &fakeChatModel{
		reply:   "Tienes 23 días laborables de vacaciones. ¿Quieres saber cómo solicitarlas?",
		verdict: "sí",
	}
	vector := &fakeVector{chunks: policyChunks()}
	web := &fakeWeb{}
	history := &fakeHistory{}
	e := newTestEngine(llm, vector, web, history)

	res, err := e.Answer(context.Background(), "s1", Query{Text: "¿Cuántos días de vacaciones me corresponden?"})
	require.NoError(t, err)

	ans := res.Answer
	assert.Equal(t, entity.ProvenanceLocalDocuments, ans.Provenance)
	require.Len(t, ans.Sources, 2)
	assert.Equal(t, "policy.pdf", ans.Sources[0].Document)
	assert.Equal(t, int64(3), ans.Sources[0].Page)
	assert.Equal(t, "policy.pdf (page 3)", ans.Sources[0].Label())
	assert.Empty(t, ans.WebSources)
	assert.Equal(t, 0, web.calls)
	assert.Equal(t, 1, llm.judgeCalls)

	// 答案末尾的建议问题被提取出来
	assert.Equal(t, "¿Quieres saber cómo solicitarlas?", ans.SuggestedFollowUp)

	// 写入了审计历史
	require.Len(t, history.entries, 1)
	assert.Equal(t, entity.ProvenanceLocalDocuments, history.entries[0].Provenance)
}

func TestAnswerGreetingSkipsRetrieval(t *testing.T) {
	llm := &fakeChatModel{reply: "¡Hola! ¿En qué puedo ayudarte?"}
	vector := &fakeVector{chunks: policyChunks()}
	web := &fakeWeb{}
	e := newTestEngine(llm, vector, web, &fakeHistory{})

	res, err := e.Answer(context.Background(), "s1", Query{Text: "Hola"})
	require.NoError(t, err)

	assert.Equal(t, entity.ProvenanceModelOnly, res.Answer.Provenance)
	assert.Equal(t, 0, vector.searchCalls)
	assert.Equal(t, 0, web.calls)
	assert.Empty(t, res.Answer.Sources)
}

func TestAnswerWebFallbackOnInsufficientContext(t *testing.T) {
	llm := &fakeChatModel{
		reply:   "Según los resultados, el plazo es de 30 días.",
		verdict: "no",
	}
	vector := &fakeVector{chunks: policyChunks()}
	web := &fakeWeb{results: []WebResult{
		{Title: "Plazos legales", URL: "https://example.com/plazos", Snippet: "El plazo general es de 30 días."},
	}}
	e := newTestEngine(llm, vector, web, &fakeHistory{})

	res, err := e.Answer(context.Background(), "s1", Query{Text: "¿Cuál es el plazo legal de reclamación?"})
	require.NoError(t, err)

	ans := res.Answer
	assert.Equal(t, entity.ProvenanceWebSearch, ans.Provenance)
	assert.Equal(t, 1, web.calls)
	require.Len(t, ans.WebSources, 1)
	assert.Equal(t, "https://example.com/plazos", ans.WebSources[0].URL)
	assert.Empty(t, ans.Sources)
}

func TestAnswerWebFallbackOnSentinel(t *testing.T) {
	llm := &fakeChatModel{
		reply:   SinInformacion + ".",
		verdict: "sí",
	}
	web := &fakeWeb{results: []WebResult{
		{Title: "Resultado", URL: "https://example.com", Snippet: "Dato externo."},
	}}
	e := newTestEngine(llm, &fakeVector{chunks: policyChunks()}, web, &fakeHistory{})

	res, err := e.Answer(context.Background(), "s1", Query{Text: "¿Quién ganó el mundial de 2022?"})
	require.NoError(t, err)

	assert.Equal(t, 1, web.calls)
	assert.Equal(t, entity.ProvenanceWebSearch, res.Answer.Provenance)
}

func TestAnswerEmptyContextSkipsJudge(t *testing.T) {
	llm := &fakeChatModel{reply: "Respuesta desde la web.", verdict: "sí"}
	vector := &fakeVector{chunks: nil}
	web := &fakeWeb{results: []WebResult{
		{Title: "Fuente", URL: "https://example.com", Snippet: "Texto."},
	}}
	e := newTestEngine(llm, vector, web, &fakeHistory{})

	res, err := e.Answer(context.Background(), "s1", Query{Text: "¿Qué dice el informe anual?"})
	require.NoError(t, err)

	assert.Equal(t, entity.ProvenanceWebSearch, res.Answer.Provenance)
	assert.Equal(t, 0, llm.judgeCalls)
}

func TestAnswerExplicitInternet(t *testing.T) {
	llm := &fakeChatModel{reply: "Noticias de hoy."}
	vector := &fakeVector{chunks: policyChunks()}
	web := &fakeWeb{results: []WebResult{
		{Title: "Noticias", URL: "https://example.com/news", Snippet: "Titulares."},
	}}
	e := newTestEngine(llm, vector, web, &fakeHistory{})

	res, err := e.Answer(context.Background(), "s1", Query{Text: "¿Qué ha pasado hoy?", UseInternet: true})
	require.NoError(t, err)

	assert.Equal(t, entity.ProvenanceWebSearch, res.Answer.Provenance)
	assert.Equal(t, 0, vector.searchCalls)
}

func TestAnswerRepeatedQuestionFromMemory(t *testing.T) {
	llm := &fakeChatModel{reply: "Son 23 días.", verdict: "sí"}
	e := newTestEngine(llm, &fakeVector{chunks: policyChunks()}, &fakeWeb{}, &fakeHistory{})

	ctx := context.Background()
	first, err := e.Answer(ctx, "s1", Query{Text: "¿Cuántos días de vacaciones tengo?"})
	require.NoError(t, err)
	callsAfterFirst := llm.calls

	second, err := e.Answer(ctx, "s1", Query{Text: "¿cuántos días de vacaciones tengo?"})
	require.NoError(t, err)

	assert.Equal(t, entity.ProvenanceMemory, second.Answer.Provenance)
	assert.Equal(t, first.Answer.Content, second.Answer.Content)
	assert.Equal(t, callsAfterFirst, llm.calls)
}

func TestAnswerDegradesWhenEverythingUnavailable(t *testing.T) {
	llm := &fakeChatModel{err: errors.New("model down")}
	e := NewEngine(nil, llm, nil, nil, nil, nil, NewSessionStore(10), Options{})

	res, err := e.Answer(context.Background(), "s1", Query{Text: "¿Qué dice el documento de políticas?"})
	require.NoError(t, err)

	assert.Equal(t, entity.ProvenanceError, res.Answer.Provenance)
	assert.True(t, strings.HasPrefix(res.Answer.Content, respuestaFallida))
}

func TestAnswerAffirmativeTakesFollowUp(t *testing.T) {
	llm := &fakeChatModel{
		reply:   "Las vacaciones son 23 días. ¿Quieres saber cómo solicitarlas?",
		verdict: "sí",
	}
	history := &fakeHistory{}
	e := newTestEngine(llm, &fakeVector{chunks: policyChunks()}, &fakeWeb{}, history)

	ctx := context.Background()
	first, err := e.Answer(ctx, "s1", Query{Text: "¿Cuántos días de vacaciones tengo?"})
	require.NoError(t, err)
	require.Equal(t, "¿Quieres saber cómo solicitarlas?", first.Answer.SuggestedFollowUp)

	llm.reply = "Debes pedirlas por el portal del empleado."
	_, err = e.Answer(ctx, "s1", Query{Text: "sí"})
	require.NoError(t, err)

	// 肯定答复被改写为建议问题，历史里记录的是改写后的问题
	require.Len(t, history.entries, 2)
	assert.Equal(t, "¿Quieres saber cómo solicitarlas?", history.entries[1].Question)
}

func TestAnswerConciseDirectPrompt(t *testing.T) {
	llm := &fakeChatModel{reply: "¡Hola!"}
	e := newTestEngine(llm, &fakeVector{}, &fakeWeb{}, &fakeHistory{})

	_, err := e.Answer(context.Background(), "s1", Query{Text: "Hola", Concise: true})
	require.NoError(t, err)

	assert.Contains(t, llm.lastPrompt, "Responde de forma breve.")
	assert.Contains(t, llm.lastSystem, "secretaria virtual")
}
