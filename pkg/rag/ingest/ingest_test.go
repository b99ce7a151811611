package ingest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInferDocType(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"docs/api_docs/authentication.md", "api_documentation"},
		{"docs/api-doc/errors.md", "api_documentation"},
		{"docs/runbooks/db_failover.md", "runbook"},
		{"docs/incidents/2024-03-outage.md", "incident"},
		{"docs/tickets/resolved_4521.md", "historical_ticket"},
		{"docs/troubleshooting/timeouts.md", "troubleshooting"},
		{"docs/faq.md", "general"},
		{"DOCS/RUNBOOK.MD", "runbook"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, InferDocType(tt.path))
		})
	}
}

func TestLoadDocumentMarkdown(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "runbook_restart.md")
	require.NoError(t, os.WriteFile(path, []byte("# Restart procedure\n\nDrain, restart, verify."), 0o644))

	doc, err := LoadDocument(path)
	require.NoError(t, err)
	require.NotNil(t, doc)

	assert.Equal(t, "runbook_restart.md", doc.Filename)
	assert.Equal(t, "runbook", doc.DocType)
	assert.Contains(t, doc.Content, "Drain, restart, verify.")
	assert.NotEmpty(t, doc.Metadata["ingested_at"])
}

func TestLoadDocumentJSONContentField(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ticket_100.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"content": "customer reported slow queries", "id": 100}`), 0o644))

	doc, err := LoadDocument(path)
	require.NoError(t, err)
	require.NotNil(t, doc)
	assert.Equal(t, "customer reported slow queries", doc.Content)
	assert.Equal(t, "historical_ticket", doc.DocType)
}

func TestLoadDocumentJSONWithoutContentField(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"service": "billing", "timeout_ms": 3000}`), 0o644))

	doc, err := LoadDocument(path)
	require.NoError(t, err)
	require.NotNil(t, doc)
	assert.Contains(t, doc.Content, `"service": "billing"`)
}

func TestLoadDocumentSkips(t *testing.T) {
	dir := t.TempDir()

	unsupported := filepath.Join(dir, "image.png")
	require.NoError(t, os.WriteFile(unsupported, []byte("binary"), 0o644))
	doc, err := LoadDocument(unsupported)
	require.NoError(t, err)
	assert.Nil(t, doc)

	empty := filepath.Join(dir, "empty.md")
	require.NoError(t, os.WriteFile(empty, []byte("  \n "), 0o644))
	doc, err = LoadDocument(empty)
	require.NoError(t, err)
	assert.Nil(t, doc)
}

func TestLoaderWalksRecursively(t *testing.T) {
	dir := t.TempDir()
	sub := filepath.Join(dir, "runbooks")
	require.NoError(t, os.MkdirAll(sub, 0o755))

	require.NoError(t, os.WriteFile(filepath.Join(dir, "faq.md"), []byte("frequently asked questions"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(sub, "restart.txt"), []byte("restart steps"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(sub, "empty.md"), []byte(""), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(sub, "ignored.yaml"), []byte("a: b"), 0o644))

	loader := NewLoader(dir)
	docs, err := loader.Load()
	require.NoError(t, err)

	assert.Len(t, docs, 2)
	stats := loader.Stats()
	assert.Equal(t, 3, stats.TotalFiles)
	assert.Equal(t, 2, stats.LoadedFiles)
	assert.Equal(t, 1, stats.SkippedFiles)
	assert.Positive(t, stats.TotalCharacters)
}

func TestLoaderMissingDirectory(t *testing.T) {
	loader := NewLoader(filepath.Join(t.TempDir(), "does-not-exist"))
	_, err := loader.Load()
	assert.Error(t, err)
}
