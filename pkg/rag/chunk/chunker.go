package chunk

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"ai-ops-copilot-be/pkg/rag/ingest"
)

const (
	// DefaultSize keeps chunks around 100-150 tokens so several fit in an
	// LLM context at once.
	DefaultSize = 512

	// DefaultOverlap preserves sentences that straddle chunk boundaries.
	DefaultOverlap = 64
)

// Chunk is one embeddable slice of a document, carrying enough metadata to
// cite the source later.
type Chunk struct {
	Content    string         `json:"content"`
	ChunkID    string         `json:"chunk_id"`
	DocumentID string         `json:"document_id"`
	ChunkIndex int            `json:"chunk_index"`
	StartChar  int            `json:"start_char"`
	EndChar    int            `json:"end_char"`
	Source     string         `json:"source"`
	Filename   string         `json:"filename"`
	DocType    string         `json:"doc_type"`
	Metadata   map[string]any `json:"metadata"`
}

// GenerateDocumentID derives a stable ID from the source path and content
// length, so re-ingesting the same file produces the same chunk IDs.
func GenerateDocumentID(source, content string) string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%s:%d", source, len(content))))
	return hex.EncodeToString(sum[:])[:16]
}

func GenerateChunkID(documentID string, index int) string {
	return fmt.Sprintf("%s-chunk-%04d", documentID, index)
}

// Chunker splits documents with a fixed-size sliding window.
type Chunker struct {
	size    int
	overlap int
}

func NewChunker(size, overlap int) (*Chunker, error) {
	if size <= 0 {
		return nil, fmt.Errorf("chunk size must be positive, got %d", size)
	}
	if overlap < 0 || overlap >= size {
		return nil, fmt.Errorf("chunk overlap must be in [0, size), got overlap=%d size=%d", overlap, size)
	}
	return &Chunker{size: size, overlap: overlap}, nil
}

type rawChunk struct {
	content   string
	startChar int
	endChar   int
}

func (c *Chunker) splitText(text string) []rawChunk {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	var chunks []rawChunk
	start := 0
	length := len(text)

	for start < length {
		end := start + c.size
		if end > length {
			end = length
		}

		content := text[start:end]
		if strings.TrimSpace(content) != "" {
			chunks = append(chunks, rawChunk{content: content, startChar: start, endChar: end})
		}

		if end >= length {
			break
		}
		start += c.size - c.overlap
	}

	return chunks
}

// ChunkDocument splits one document into chunks that inherit its metadata.
func (c *Chunker) ChunkDocument(doc *ingest.Document) []Chunk {
	documentID := GenerateDocumentID(doc.Source, doc.Content)
	raw := c.splitText(doc.Content)

	chunks := make([]Chunk, 0, len(raw))
	for idx, r := range raw {
		metadata := make(map[string]any, len(doc.Metadata)+2)
		for k, v := range doc.Metadata {
			metadata[k] = v
		}
		// chunk_index travels in the metadata map because that is all the
		// vector store carries through to retrieval citations.
		metadata["chunk_index"] = idx
		metadata["total_chunks"] = len(raw)

		chunks = append(chunks, Chunk{
			Content:    r.content,
			ChunkID:    GenerateChunkID(documentID, idx),
			DocumentID: documentID,
			ChunkIndex: idx,
			StartChar:  r.startChar,
			EndChar:    r.endChar,
			Source:     doc.Source,
			Filename:   doc.Filename,
			DocType:    doc.DocType,
			Metadata:   metadata,
		})
	}
	return chunks
}

func (c *Chunker) ChunkDocuments(docs []*ingest.Document) []Chunk {
	var all []Chunk
	for _, doc := range docs {
		all = append(all, c.ChunkDocument(doc)...)
	}
	return all
}
