package ingestion

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/poiesic/shelf/ai/mock"
	storagebadger "github.com/poiesic/shelf/storage/badger"
	"github.com/poiesic/shelf/vector"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestPipeline(t *testing.T, opts ...Option) (*Pipeline, *storagebadger.Stores) {
	t.Helper()
	stores, err := storagebadger.NewMemoryStores()
	require.NoError(t, err)
	t.Cleanup(func() { stores.Close() })

	pipeline, err := NewPipeline(stores.Files, opts...)
	require.NoError(t, err)
	t.Cleanup(pipeline.Release)
	return pipeline, stores
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestIndexFileCreatesRecord(t *testing.T) {
	pipeline, _ := newTestPipeline(t)
	dir := t.TempDir()
	path := writeFile(t, dir, "notes.txt",
		"Quarterly planning notes for the acme account. Revenue targets were missed. Next review is in June.")

	record, err := pipeline.IndexFile(context.Background(), path)
	require.NoError(t, err)

	assert.NotZero(t, record.Id)
	assert.Equal(t, "notes.txt", record.Name)
	assert.Equal(t, ".txt", record.Extension)
	assert.NotEmpty(t, record.Hash)
	assert.Greater(t, record.Size, int64(0))
	assert.NotEmpty(t, record.Excerpt)
	assert.NotEmpty(t, record.Summary)
}

func TestIndexFileRejectsDirectories(t *testing.T) {
	pipeline, _ := newTestPipeline(t)

	_, err := pipeline.IndexFile(context.Background(), t.TempDir())
	assert.ErrorIs(t, err, ErrNotRegularFile)
}

func TestIndexFolderSkipsUnchangedAndHidden(t *testing.T) {
	pipeline, _ := newTestPipeline(t)
	dir := t.TempDir()
	writeFile(t, dir, "a.txt", "first file contents")
	writeFile(t, dir, "b.txt", "second file contents")
	writeFile(t, dir, ".secret", "hidden file contents")

	indexed, skipped, err := pipeline.IndexFolder(context.Background(), dir, true)
	require.NoError(t, err)
	assert.Equal(t, 2, indexed)
	assert.Equal(t, 1, skipped)

	// Nothing changed, so the second pass indexes nothing
	indexed, skipped, err = pipeline.IndexFolder(context.Background(), dir, true)
	require.NoError(t, err)
	assert.Equal(t, 0, indexed)
	assert.Equal(t, 3, skipped)
}

func TestIndexFolderNonRecursive(t *testing.T) {
	pipeline, _ := newTestPipeline(t)
	dir := t.TempDir()
	writeFile(t, dir, "top.txt", "top level contents")
	sub := filepath.Join(dir, "nested")
	require.NoError(t, os.Mkdir(sub, 0o755))
	writeFile(t, sub, "deep.txt", "nested contents")

	indexed, _, err := pipeline.IndexFolder(context.Background(), dir, false)
	require.NoError(t, err)
	assert.Equal(t, 1, indexed)
}

func TestReindexAfterContentChange(t *testing.T) {
	pipeline, stores := newTestPipeline(t)
	dir := t.TempDir()
	path := writeFile(t, dir, "draft.txt", "original draft contents")
	ctx := context.Background()

	first, err := pipeline.IndexFile(ctx, path)
	require.NoError(t, err)

	// Same content round-trips the stored record untouched
	again, err := pipeline.IndexFile(ctx, path)
	require.NoError(t, err)
	assert.Equal(t, first.Hash, again.Hash)

	writeFile(t, dir, "draft.txt", "revised draft contents, much longer than before")
	updated, err := pipeline.IndexFile(ctx, path)
	require.NoError(t, err)
	assert.Equal(t, first.Id, updated.Id)
	assert.NotEqual(t, first.Hash, updated.Hash)

	stored, err := stores.Files.Get(ctx, first.Id)
	require.NoError(t, err)
	assert.Equal(t, updated.Hash, stored.Hash)
}

func TestDuplicateContentMarked(t *testing.T) {
	pipeline, stores := newTestPipeline(t)
	dir := t.TempDir()
	original := writeFile(t, dir, "report.pdf", "identical binary payload")
	copied := writeFile(t, dir, "report copy.pdf", "identical binary payload")
	ctx := context.Background()

	first, err := pipeline.IndexFile(ctx, original)
	require.NoError(t, err)
	second, err := pipeline.IndexFile(ctx, copied)
	require.NoError(t, err)

	canonical, err := stores.Files.Get(ctx, first.Id)
	require.NoError(t, err)
	duplicate, err := stores.Files.Get(ctx, second.Id)
	require.NoError(t, err)

	assert.False(t, canonical.IsDuplicate)
	assert.True(t, duplicate.IsDuplicate)
	assert.Equal(t, canonical.Id, duplicate.DuplicateOf)
}

func TestAsyncEmbeddingLandsInVectorStore(t *testing.T) {
	stores, err := storagebadger.NewMemoryStores()
	require.NoError(t, err)
	t.Cleanup(func() { stores.Close() })

	index := vector.NewIndex(mock.NewMockEmbedder(), "mock", stores.Vectors, stores.Files)
	pipeline, err := NewPipeline(stores.Files, WithVectorIndex(index))
	require.NoError(t, err)
	t.Cleanup(pipeline.Release)

	dir := t.TempDir()
	path := writeFile(t, dir, "notes.txt", "embedding target contents")

	record, err := pipeline.IndexFile(context.Background(), path)
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		_, err := stores.Vectors.Get(context.Background(), record.Id)
		return err == nil
	}, 2*time.Second, 10*time.Millisecond, "embedding never arrived")
}

func TestMutationHookFires(t *testing.T) {
	var mutations atomic.Int64
	pipeline, _ := newTestPipeline(t, WithMutationHook(func() {
		mutations.Add(1)
	}))
	dir := t.TempDir()
	path := writeFile(t, dir, "notes.txt", "hook target contents")
	ctx := context.Background()

	_, err := pipeline.IndexFile(ctx, path)
	require.NoError(t, err)
	assert.Greater(t, mutations.Load(), int64(0))

	// An unchanged re-index writes nothing and must not fire the hook
	before := mutations.Load()
	_, err = pipeline.IndexFile(ctx, path)
	require.NoError(t, err)
	assert.Equal(t, before, mutations.Load())
}

func TestEnqueueIndexesInBackground(t *testing.T) {
	pipeline, stores := newTestPipeline(t, WithQueueSize(16))
	dir := t.TempDir()
	path := writeFile(t, dir, "queued.txt", "queued file contents")

	require.NoError(t, pipeline.Enqueue(path))

	require.Eventually(t, func() bool {
		_, err := stores.Files.GetByPath(context.Background(), path)
		return err == nil
	}, 2*time.Second, 10*time.Millisecond, "queued file never indexed")
}

func TestNewPipelineRequiresFileStore(t *testing.T) {
	_, err := NewPipeline(nil)
	assert.ErrorIs(t, err, ErrFileStoreRequired)
}
