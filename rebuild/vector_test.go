package rebuild

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/poiesic/shelf/ai/mock"
	"github.com/poiesic/shelf/core"
	storagebadger "github.com/poiesic/shelf/storage/badger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStores(t *testing.T) *storagebadger.Stores {
	t.Helper()
	stores, err := storagebadger.NewMemoryStores()
	require.NoError(t, err)
	t.Cleanup(func() { stores.Close() })
	return stores
}

func seedFiles(t *testing.T, stores *storagebadger.Stores, paths ...string) []*core.FileRecord {
	t.Helper()
	records := make([]*core.FileRecord, len(paths))
	for i, path := range paths {
		record, err := stores.Files.Upsert(context.Background(), core.NewFileRecord(path))
		require.NoError(t, err)
		records[i] = record
	}
	return records
}

func TestVectorRebuildReplacesGeneration(t *testing.T) {
	stores := newTestStores(t)
	ctx := context.Background()
	records := seedFiles(t, stores, "/a.txt", "/b.txt", "/c.txt")

	// A previous generation from another backend
	require.NoError(t, stores.Vectors.SetMeta(ctx, &core.VectorMeta{
		Backend: "openai:old-model", Dim: 3, Generation: 1,
	}))
	require.NoError(t, stores.Vectors.Put(ctx, &core.VectorEntry{
		FileId: records[0].Id, Vector: []float32{1, 0, 0}, Norm: 1, Dim: 3,
	}))

	var progress bytes.Buffer
	rebuilder := NewVectorRebuilder(stores.Files, stores.Vectors,
		mock.NewMockEmbedder(), "mock", nil, &progress)
	require.NoError(t, rebuilder.Run(ctx))

	count, err := stores.Vectors.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, len(records), count)

	meta, err := stores.Vectors.Meta(ctx)
	require.NoError(t, err)
	assert.Equal(t, "mock", meta.Backend)
	assert.Equal(t, 384, meta.Dim)
	assert.Equal(t, uint64(2), meta.Generation)

	assert.Contains(t, progress.String(), "Rebuild complete")
}

func TestVectorRebuildNoFiles(t *testing.T) {
	stores := newTestStores(t)
	ctx := context.Background()

	var progress bytes.Buffer
	rebuilder := NewVectorRebuilder(stores.Files, stores.Vectors,
		mock.NewMockEmbedder(), "mock", nil, &progress)
	require.NoError(t, rebuilder.Run(ctx))

	count, err := stores.Vectors.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, count)
	assert.Contains(t, progress.String(), "No live files")
}

func TestVectorRebuildFailureKeepsOldIndex(t *testing.T) {
	stores := newTestStores(t)
	ctx := context.Background()
	records := seedFiles(t, stores, "/a.txt")

	require.NoError(t, stores.Vectors.SetMeta(ctx, &core.VectorMeta{
		Backend: "openai:old-model", Dim: 3, Generation: 1,
	}))
	require.NoError(t, stores.Vectors.Put(ctx, &core.VectorEntry{
		FileId: records[0].Id, Vector: []float32{1, 0, 0}, Norm: 1, Dim: 3,
	}))

	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextsFunc = func(_ context.Context, _ []string) ([][]float32, error) {
		return nil, errors.New("backend down")
	}
	config := &Config{BatchSize: 10, ReportInterval: 10, MaxRetries: 2, RetryDelay: time.Millisecond}

	rebuilder := NewVectorRebuilder(stores.Files, stores.Vectors,
		embedder, "mock", config, nil)
	require.Error(t, rebuilder.Run(ctx))

	// The old generation survives a failed rebuild untouched
	meta, err := stores.Vectors.Meta(ctx)
	require.NoError(t, err)
	assert.Equal(t, "openai:old-model", meta.Backend)
	count, err := stores.Vectors.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestVectorRebuildBatches(t *testing.T) {
	stores := newTestStores(t)
	ctx := context.Background()
	seedFiles(t, stores, "/a.txt", "/b.txt", "/c.txt", "/d.txt", "/e.txt")

	var calls int
	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextsFunc = func(_ context.Context, texts []string) ([][]float32, error) {
		calls++
		out := make([][]float32, len(texts))
		for i := range texts {
			out[i] = []float32{1, 0, 0}
		}
		return out, nil
	}
	config := &Config{BatchSize: 2, ReportInterval: 2, MaxRetries: 1, RetryDelay: time.Millisecond}

	rebuilder := NewVectorRebuilder(stores.Files, stores.Vectors,
		embedder, "mock", config, nil)
	require.NoError(t, rebuilder.Run(ctx))

	assert.Equal(t, 3, calls, "5 files at batch size 2 means 3 backend calls")
	count, err := stores.Vectors.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 5, count)
}
