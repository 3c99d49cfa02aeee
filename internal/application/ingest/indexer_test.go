package ingest

import (
	"context"
	"testing"

	"github.com/cloudwego/eino/components/embedding"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"knowledge-navigator-api/internal/domain/entity"
)

type fakeEmbedder struct {
	batches [][]string
}

func (f *fakeEmbedder) EmbedStrings(_ context.Context, texts []string, _ ...embedding.Option) ([][]float64, error) {
	f.batches = append(f.batches, texts)
	out := make([][]float64, len(texts))
	for i := range texts {
		out[i] = []float64{0.1, 0.2}
	}
	return out, nil
}

type fakeVectorRepo struct {
	ops      []string
	inserted []*entity.DocumentChunk
	vectors  [][]float32
	sources  []string
}

func (f *fakeVectorRepo) EnsureDocumentChunksCollection(context.Context) error {
	f.ops = append(f.ops, "ensure")
	return nil
}

func (f *fakeVectorRepo) SearchChunks(context.Context, []float32, int) ([]*entity.ScoredChunk, error) {
	return nil, nil
}

func (f *fakeVectorRepo) DeleteChunksBySource(_ context.Context, sourceID string) error {
	f.ops = append(f.ops, "delete:"+sourceID)
	return nil
}

func (f *fakeVectorRepo) InsertChunks(_ context.Context, chunks []*entity.DocumentChunk, vectors [][]float32) error {
	f.ops = append(f.ops, "insert")
	f.inserted = append(f.inserted, chunks...)
	f.vectors = append(f.vectors, vectors...)
	return nil
}

func (f *fakeVectorRepo) ListSourceIDs(context.Context) ([]string, error) {
	return f.sources, nil
}

func TestIndexDocumentDeletesBeforeInsert(t *testing.T) {
	repo := &fakeVectorRepo{}
	idx := NewIndexer(&fakeEmbedder{}, repo, 0, 0, 0)

	n, err := idx.IndexDocument(context.Background(), &DocumentInput{
		SourceID: "policy.pdf",
		Pages:    []PageInput{{Page: 1, Text: "Las vacaciones anuales son de 23 días laborables."}},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, []string{"ensure", "delete:policy.pdf", "insert"}, repo.ops)
	require.Len(t, repo.inserted, 1)
	assert.Equal(t, "policy.pdf", repo.inserted[0].SourceID)
	assert.Equal(t, int64(1), repo.inserted[0].Page)
	assert.Equal(t, entity.ContentTypeText, repo.inserted[0].ContentType)
	assert.Len(t, repo.vectors, 1)
}

func TestIndexDocumentEmptyPagesStillDeletes(t *testing.T) {
	repo := &fakeVectorRepo{}
	idx := NewIndexer(&fakeEmbedder{}, repo, 0, 0, 0)

	n, err := idx.IndexDocument(context.Background(), &DocumentInput{SourceID: "policy.pdf"})
	require.NoError(t, err)
	assert.Equal(t, 0, n)
	// 重复上传空文档也要清掉旧分片
	assert.Equal(t, []string{"ensure", "delete:policy.pdf"}, repo.ops)
}

func TestIndexDocumentHeadingAndTableChunks(t *testing.T) {
	repo := &fakeVectorRepo{}
	idx := NewIndexer(&fakeEmbedder{}, repo, 0, 0, 0)

	_, err := idx.IndexDocument(context.Background(), &DocumentInput{
		SourceID: "manual.pdf",
		Pages: []PageInput{{
			Page:     7,
			Text:     "Procedimiento de solicitud de vacaciones.",
			Sections: []string{"Capítulo 2", "Permisos"},
			Tables:   []string{"Tipo | Días\nVacaciones | 23", "   "},
		}},
	})
	require.NoError(t, err)

	require.Len(t, repo.inserted, 3)
	assert.Equal(t, entity.ContentTypeHeading, repo.inserted[0].ContentType)
	assert.Equal(t, "Capítulo 2 > Permisos", repo.inserted[0].Content)
	assert.Equal(t, entity.ContentTypeText, repo.inserted[1].ContentType)
	assert.Equal(t, "Capítulo 2 > Permisos", repo.inserted[1].Section)
	assert.Equal(t, entity.ContentTypeTable, repo.inserted[2].ContentType)
}

func TestIndexDocumentFiltersUselessPages(t *testing.T) {
	repo := &fakeVectorRepo{}
	idx := NewIndexer(&fakeEmbedder{}, repo, 0, 0, 0)

	n, err := idx.IndexDocument(context.Background(), &DocumentInput{
		SourceID: "libro.pdf",
		Pages: []PageInput{
			{Page: 1, Text: "  12  "},
			{Page: 2, Text: "Índice\n1. Introducción ... 3"},
			{Page: 3, Text: "Copyright 2024. Todos los derechos reservados."},
			{Page: 4, Text: "Contenido real del capítulo."},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	require.Len(t, repo.inserted, 1)
	assert.Equal(t, int64(4), repo.inserted[0].Page)
}

func TestIndexDocumentEmbedsInBatches(t *testing.T) {
	emb := &fakeEmbedder{}
	repo := &fakeVectorRepo{}
	idx := NewIndexer(emb, repo, 0, 0, 2)

	pages := []PageInput{
		{Page: 1, Text: "Primera página con contenido."},
		{Page: 2, Text: "Segunda página con contenido."},
		{Page: 3, Text: "Tercera página con contenido."},
	}
	n, err := idx.IndexDocument(context.Background(), &DocumentInput{SourceID: "doc.pdf", Pages: pages})
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	require.Len(t, emb.batches, 2)
	assert.Len(t, emb.batches[0], 2)
	assert.Len(t, emb.batches[1], 1)
}

func TestIndexDocumentSectionPrefixInEmbeddingInput(t *testing.T) {
	emb := &fakeEmbedder{}
	idx := NewIndexer(emb, &fakeVectorRepo{}, 0, 0, 0)

	_, err := idx.IndexDocument(context.Background(), &DocumentInput{
		SourceID: "doc.pdf",
		Pages: []PageInput{{
			Page:     1,
			Text:     "Texto del capítulo.",
			Sections: []string{"Capítulo 1"},
		}},
	})
	require.NoError(t, err)

	require.Len(t, emb.batches, 1)
	// 标题分块不加前缀，正文分块带 Sección 前缀
	assert.Equal(t, "Capítulo 1", emb.batches[0][0])
	assert.Equal(t, "Sección: Capítulo 1\nTexto del capítulo.", emb.batches[0][1])
}

func TestIndexDocumentValidation(t *testing.T) {
	idx := NewIndexer(&fakeEmbedder{}, &fakeVectorRepo{}, 0, 0, 0)

	_, err := idx.IndexDocument(context.Background(), nil)
	assert.Error(t, err)

	_, err = idx.IndexDocument(context.Background(), &DocumentInput{SourceID: "   "})
	assert.Error(t, err)
}

func TestIndexerDisabled(t *testing.T) {
	idx := NewIndexer(nil, nil, 0, 0, 0)
	assert.False(t, idx.Enabled())

	_, err := idx.IndexDocument(context.Background(), &DocumentInput{SourceID: "doc.pdf"})
	assert.ErrorIs(t, err, ErrVectorDisabled)

	err = idx.DeleteDocument(context.Background(), "doc.pdf")
	assert.ErrorIs(t, err, ErrVectorDisabled)

	_, err = idx.ListDocuments(context.Background())
	assert.ErrorIs(t, err, ErrVectorDisabled)
}

func TestDeleteAndListDocuments(t *testing.T) {
	repo := &fakeVectorRepo{sources: []string{"a.pdf", "b.pdf"}}
	idx := NewIndexer(&fakeEmbedder{}, repo, 0, 0, 0)

	require.NoError(t, idx.DeleteDocument(context.Background(), " a.pdf "))
	assert.Contains(t, repo.ops, "delete:a.pdf")

	sources, err := idx.ListDocuments(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"a.pdf", "b.pdf"}, sources)
}
