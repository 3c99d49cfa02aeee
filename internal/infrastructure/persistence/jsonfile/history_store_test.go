package jsonfile

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"knowledge-navigator-api/internal/domain/entity"
	"knowledge-navigator-api/internal/domain/repository"
)

func newTestStore(t *testing.T) *HistoryStore {
	t.Helper()
	store, err := NewHistoryStore(filepath.Join(t.TempDir(), "history", "history.ndjson"))
	require.NoError(t, err)
	return store
}

func appendEntries(t *testing.T, store *HistoryStore, n int) {
	t.Helper()
	for i := 1; i <= n; i++ {
		err := store.Append(context.Background(), entity.NewHistoryEntry(
			fmt.Sprintf("pregunta %d", i),
			&entity.Answer{Content: fmt.Sprintf("respuesta %d", i), Provenance: entity.ProvenanceLocalDocuments},
		))
		require.NoError(t, err)
	}
}

func TestHistoryStoreRequiresPath(t *testing.T) {
	_, err := NewHistoryStore("")
	assert.Error(t, err)
}

func TestHistoryStoreListNewestFirst(t *testing.T) {
	store := newTestStore(t)
	appendEntries(t, store, 3)

	result, err := store.List(context.Background(), repository.NewPagination(1, 20))
	require.NoError(t, err)

	assert.Equal(t, int64(3), result.Total)
	require.Len(t, result.Items, 3)
	assert.Equal(t, "pregunta 3", result.Items[0].Question)
	assert.Equal(t, "pregunta 1", result.Items[2].Question)
	assert.Equal(t, entity.ProvenanceLocalDocuments, result.Items[0].Provenance)
}

func TestHistoryStorePagination(t *testing.T) {
	store := newTestStore(t)
	appendEntries(t, store, 5)

	page2, err := store.List(context.Background(), repository.NewPagination(2, 2))
	require.NoError(t, err)

	assert.Equal(t, int64(5), page2.Total)
	assert.Equal(t, 3, page2.TotalPages)
	require.Len(t, page2.Items, 2)
	// 最新在前：第二页是第 3、2 条
	assert.Equal(t, "pregunta 3", page2.Items[0].Question)
	assert.Equal(t, "pregunta 2", page2.Items[1].Question)

	beyond, err := store.List(context.Background(), repository.NewPagination(9, 2))
	require.NoError(t, err)
	assert.Empty(t, beyond.Items)
}

func TestHistoryStoreQuestionsChronological(t *testing.T) {
	store := newTestStore(t)
	appendEntries(t, store, 3)

	questions, err := store.Questions(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"pregunta 1", "pregunta 2", "pregunta 3"}, questions)
}

func TestHistoryStoreEmptyFileMissing(t *testing.T) {
	store := newTestStore(t)

	result, err := store.List(context.Background(), repository.NewPagination(1, 20))
	require.NoError(t, err)
	assert.Equal(t, int64(0), result.Total)
	assert.Empty(t, result.Items)

	questions, err := store.Questions(context.Background())
	require.NoError(t, err)
	assert.Empty(t, questions)
}

func TestHistoryStoreSkipsCorruptLines(t *testing.T) {
	store := newTestStore(t)
	appendEntries(t, store, 2)

	// 追加一行损坏的 JSON 和一行空行
	f, err := os.OpenFile(store.path, os.O_APPEND|os.O_WRONLY, 0o644)
	require.NoError(t, err)
	_, err = f.WriteString("{esto no es json}\n\n")
	require.NoError(t, err)
	require.NoError(t, f.Close())

	appendEntries(t, store, 1)

	questions, err := store.Questions(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"pregunta 1", "pregunta 2", "pregunta 1"}, questions)
}
