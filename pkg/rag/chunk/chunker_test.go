package chunk

import (
	"strings"
	"testing"

	"ai-ops-copilot-be/pkg/rag/ingest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewChunkerValidation(t *testing.T) {
	tests := []struct {
		name    string
		size    int
		overlap int
		wantErr bool
	}{
		{name: "defaults", size: DefaultSize, overlap: DefaultOverlap, wantErr: false},
		{name: "zero size", size: 0, overlap: 0, wantErr: true},
		{name: "negative size", size: -1, overlap: 0, wantErr: true},
		{name: "negative overlap", size: 100, overlap: -1, wantErr: true},
		{name: "overlap equals size", size: 100, overlap: 100, wantErr: true},
		{name: "overlap above size", size: 100, overlap: 150, wantErr: true},
		{name: "no overlap", size: 100, overlap: 0, wantErr: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewChunker(tt.size, tt.overlap)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestSplitTextCoverage(t *testing.T) {
	c, err := NewChunker(100, 20)
	require.NoError(t, err)

	text := strings.Repeat("abcdefghij", 55) // 550 chars
	chunks := c.splitText(text)
	require.NotEmpty(t, chunks)

	// First chunk starts at zero, last chunk ends at the text end.
	assert.Equal(t, 0, chunks[0].startChar)
	assert.Equal(t, len(text), chunks[len(chunks)-1].endChar)

	// Every character is covered and consecutive chunks overlap.
	for i := 1; i < len(chunks); i++ {
		assert.LessOrEqual(t, chunks[i].startChar, chunks[i-1].endChar,
			"chunk %d must not leave a gap", i)
		assert.Equal(t, 80, chunks[i].startChar-chunks[i-1].startChar)
	}

	for _, ch := range chunks {
		assert.Equal(t, text[ch.startChar:ch.endChar], ch.content)
		assert.LessOrEqual(t, len(ch.content), 100)
	}
}

func TestSplitTextShortAndEmpty(t *testing.T) {
	c, err := NewChunker(512, 64)
	require.NoError(t, err)

	short := c.splitText("tiny")
	require.Len(t, short, 1)
	assert.Equal(t, "tiny", short[0].content)

	assert.Nil(t, c.splitText(""))
	assert.Nil(t, c.splitText("   \n\t  "))
}

func TestGenerateDocumentIDStable(t *testing.T) {
	id1 := GenerateDocumentID("docs/runbook.md", "some content")
	id2 := GenerateDocumentID("docs/runbook.md", "some content")
	assert.Equal(t, id1, id2)
	assert.Len(t, id1, 16)

	// Different source or length changes the ID.
	assert.NotEqual(t, id1, GenerateDocumentID("docs/other.md", "some content"))
	assert.NotEqual(t, id1, GenerateDocumentID("docs/runbook.md", "some content longer"))
}

func TestGenerateChunkIDFormat(t *testing.T) {
	assert.Equal(t, "abc123-chunk-0000", GenerateChunkID("abc123", 0))
	assert.Equal(t, "abc123-chunk-0042", GenerateChunkID("abc123", 42))
}

func TestChunkDocumentMetadata(t *testing.T) {
	c, err := NewChunker(50, 10)
	require.NoError(t, err)

	doc := &ingest.Document{
		Content:  strings.Repeat("troubleshooting steps for timeouts ", 6),
		Source:   "data/documents/runbook_timeouts.md",
		Filename: "runbook_timeouts.md",
		DocType:  "runbook",
		Metadata: map[string]any{"team": "platform"},
	}

	chunks := c.ChunkDocument(doc)
	require.NotEmpty(t, chunks)

	docID := GenerateDocumentID(doc.Source, doc.Content)
	for i, ch := range chunks {
		assert.Equal(t, docID, ch.DocumentID)
		assert.Equal(t, GenerateChunkID(docID, i), ch.ChunkID)
		assert.Equal(t, i, ch.ChunkIndex)
		assert.Equal(t, "runbook_timeouts.md", ch.Filename)
		assert.Equal(t, "runbook", ch.DocType)
		assert.Equal(t, "platform", ch.Metadata["team"])
		assert.Equal(t, i, ch.Metadata["chunk_index"])
		assert.Equal(t, len(chunks), ch.Metadata["total_chunks"])
	}
}

func TestChunkDocumentsAcrossFiles(t *testing.T) {
	c, err := NewChunker(512, 64)
	require.NoError(t, err)

	docs := []*ingest.Document{
		{Content: "first document", Source: "a.md", Filename: "a.md", DocType: "general"},
		{Content: "second document", Source: "b.md", Filename: "b.md", DocType: "general"},
		{Content: "", Source: "empty.md", Filename: "empty.md", DocType: "general"},
	}

	chunks := c.ChunkDocuments(docs)
	require.Len(t, chunks, 2)
	assert.NotEqual(t, chunks[0].DocumentID, chunks[1].DocumentID)
}
