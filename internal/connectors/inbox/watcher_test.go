package inbox

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Kunze-Ritter/Manual2Vector-sub000/internal/core/domain"
)

// recordingPipeline records the paths it was asked to process.
type recordingPipeline struct {
	mu    sync.Mutex
	paths []string
}

func (p *recordingPipeline) Process(_ context.Context, path string) (*domain.ProcessingResult, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.paths = append(p.paths, path)
	return &domain.ProcessingResult{Success: true}, nil
}

func (p *recordingPipeline) processed() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.paths...)
}

func writeFile(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte("%PDF-1.7 fixture"), 0o600))
	return path
}

func TestProcessesExistingFilesOnStartup(t *testing.T) {
	dir := t.TempDir()
	existing := writeFile(t, dir, "HP_E475_SM.pdf")
	writeFile(t, dir, "notes.txt")

	pipeline := &recordingPipeline{}
	w := NewWatcher(dir, pipeline, WithSettle(20*time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)

	processed := make(chan string, 1)
	w.OnResult = func(path string, err error) {
		assert.NoError(t, err)
		processed <- path
	}

	go func() { done <- w.Run(ctx) }()

	select {
	case path := <-processed:
		assert.Equal(t, existing, path)
	case <-time.After(5 * time.Second):
		t.Fatal("existing file was not processed")
	}

	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
	assert.Equal(t, []string{existing}, pipeline.processed())
}

func TestProcessesNewFileAfterSettle(t *testing.T) {
	dir := t.TempDir()
	pipeline := &recordingPipeline{}
	w := NewWatcher(dir, pipeline, WithSettle(30*time.Millisecond))

	processed := make(chan string, 1)
	w.OnResult = func(path string, _ error) { processed <- path }

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = w.Run(ctx) }()

	// Give the watcher time to register before creating the file.
	time.Sleep(100 * time.Millisecond)
	created := writeFile(t, dir, "Canon_iR2520_SM.pdf")

	select {
	case path := <-processed:
		assert.Equal(t, created, path)
	case <-time.After(5 * time.Second):
		t.Fatal("new file was not processed")
	}
}

func TestIgnoresNonPDFFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "readme.md")

	pipeline := &recordingPipeline{}
	w := NewWatcher(dir, pipeline, WithSettle(20*time.Millisecond))

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()
	_ = w.Run(ctx)

	assert.Empty(t, pipeline.processed())
}

func TestRunFailsOnMissingDirectory(t *testing.T) {
	w := NewWatcher(filepath.Join(t.TempDir(), "missing"), &recordingPipeline{})
	err := w.Run(context.Background())
	assert.ErrorContains(t, err, "read inbox")
}

func TestIsPDF(t *testing.T) {
	assert.True(t, isPDF("manual.pdf"))
	assert.True(t, isPDF("MANUAL.PDF"))
	assert.False(t, isPDF("manual.docx"))
	assert.False(t, isPDF("pdf"))
}
