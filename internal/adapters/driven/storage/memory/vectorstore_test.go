package memory

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/folio/internal/core/domain"
	"github.com/custodia-labs/folio/internal/core/ports/driven"
)

func testEntry(id string, page int, v ...float32) domain.CorpusEntry {
	meta := domain.DocumentMetadata{Title: "Study One", Authors: "A. Smith", DatePublished: "2020"}
	return domain.CorpusEntry{
		ID:        id,
		Embedding: v,
		Contents:  "text " + id,
		Metadata:  domain.NewEntryMetadata(id, meta, page),
	}
}

func TestVectorStore_CollectionGetOrCreate(t *testing.T) {
	ctx := context.Background()
	store := NewVectorStore()

	a, err := store.Collection(ctx, "library")
	require.NoError(t, err)
	require.NoError(t, a.Upsert(ctx, testEntry("1", 1, 1, 0)))

	b, err := store.Collection(ctx, "library")
	require.NoError(t, err)
	n, err := b.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, "library", b.Name())
}

func TestVectorStore_InvalidName(t *testing.T) {
	_, err := NewVectorStore().Collection(context.Background(), "x")
	assert.ErrorIs(t, err, domain.ErrCollectionName)
}

func TestVectorStore_Closed(t *testing.T) {
	store := NewVectorStore()
	require.NoError(t, store.Close())

	_, err := store.Collection(context.Background(), "library")
	assert.ErrorIs(t, err, domain.ErrStoreClosed)
}

func TestCollection_UpsertReplaces(t *testing.T) {
	ctx := context.Background()
	c, err := NewVectorStore().Collection(ctx, "library")
	require.NoError(t, err)

	require.NoError(t, c.Upsert(ctx, testEntry("1", 1, 1, 0)))
	replacement := testEntry("1", 2, 0, 1)
	replacement.Contents = "updated"
	require.NoError(t, c.Upsert(ctx, replacement))

	n, _ := c.Count(ctx)
	assert.Equal(t, 1, n)

	res, err := c.Query(ctx, driven.QueryRequest{Embeddings: [][]float32{{0, 1}}, K: 10})
	require.NoError(t, err)
	assert.Equal(t, []string{"updated"}, res.Documents[0])
	assert.Equal(t, "2", res.Metadatas[0][0][domain.MetaPage])
}

func TestCollection_UpsertRejects(t *testing.T) {
	ctx := context.Background()
	c, err := NewVectorStore().Collection(ctx, "library")
	require.NoError(t, err)
	require.NoError(t, c.Upsert(ctx, testEntry("1", 1, 1, 0)))

	assert.ErrorIs(t, c.Upsert(ctx, testEntry("", 1, 1, 0)), domain.ErrInvalidInput)
	assert.ErrorIs(t, c.Upsert(ctx, testEntry("2", 1)), domain.ErrEmptyEmbedding)
	assert.ErrorIs(t, c.Upsert(ctx, testEntry("3", 1, 1, 0, 0)), domain.ErrDimensionMismatch)
}

func TestCollection_QueryLimitsAndOrders(t *testing.T) {
	ctx := context.Background()
	c, err := NewVectorStore().Collection(ctx, "library")
	require.NoError(t, err)

	for i := 0; i < 12; i++ {
		require.NoError(t, c.Upsert(ctx, testEntry(fmt.Sprint(i), i+1, float32(i), 1)))
	}

	res, err := c.Query(ctx, driven.QueryRequest{Embeddings: [][]float32{{1, 0}}, K: 10})

	require.NoError(t, err)
	require.Len(t, res.Documents, 1)
	assert.Len(t, res.Documents[0], 10)
	assert.Len(t, res.Metadatas[0], 10)
	assert.Equal(t, "11", res.IDs[0][0])
	for i := 1; i < len(res.Distances[0]); i++ {
		assert.LessOrEqual(t, res.Distances[0][i-1], res.Distances[0][i])
	}
}

func TestCollection_ConcurrentUpsert(t *testing.T) {
	ctx := context.Background()
	c, err := NewVectorStore().Collection(ctx, "library")
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			_ = c.Upsert(ctx, testEntry(fmt.Sprint(n), 1, 1, float32(n)))
		}(i)
	}
	wg.Wait()

	n, _ := c.Count(ctx)
	assert.Equal(t, 20, n)
}
