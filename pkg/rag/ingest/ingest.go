package ingest

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Document is a knowledge file loaded from disk before chunking. Metadata is
// carried through the pipeline so retrieval results can cite their origin.
type Document struct {
	Content  string
	Source   string
	Filename string
	DocType  string
	Metadata map[string]any
}

// Stats tracks what a single ingestion run loaded and skipped.
type Stats struct {
	TotalFiles      int `json:"total_files"`
	LoadedFiles     int `json:"loaded_files"`
	SkippedFiles    int `json:"skipped_files"`
	TotalCharacters int `json:"total_characters"`
}

var supportedExtensions = map[string]bool{
	".md":   true,
	".txt":  true,
	".json": true,
}

// InferDocType categorizes a document by the directory it lives in.
func InferDocType(path string) string {
	lower := strings.ToLower(path)
	switch {
	case strings.Contains(lower, "api_doc") || strings.Contains(lower, "api-doc"):
		return "api_documentation"
	case strings.Contains(lower, "runbook"):
		return "runbook"
	case strings.Contains(lower, "incident"):
		return "incident"
	case strings.Contains(lower, "ticket"):
		return "historical_ticket"
	case strings.Contains(lower, "troubleshoot"):
		return "troubleshooting"
	default:
		return "general"
	}
}

// LoadDocument reads one file into a Document. JSON files contribute their
// "content" or "text" field when present, otherwise the pretty-printed
// object. Empty and unsupported files return nil without error.
func LoadDocument(path string) (*Document, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if !supportedExtensions[ext] {
		return nil, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	content := string(raw)
	if ext == ".json" {
		content, err = extractJSONContent(raw)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	}

	if strings.TrimSpace(content) == "" {
		return nil, nil
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}

	return &Document{
		Content:  content,
		Source:   abs,
		Filename: filepath.Base(path),
		DocType:  InferDocType(path),
		Metadata: map[string]any{
			"ingested_at":     time.Now().UTC().Format(time.RFC3339),
			"file_size_bytes": len(raw),
		},
	}, nil
}

func extractJSONContent(raw []byte) (string, error) {
	var data any
	if err := json.Unmarshal(raw, &data); err != nil {
		return "", err
	}

	if obj, ok := data.(map[string]any); ok {
		if s, ok := obj["content"].(string); ok && s != "" {
			return s, nil
		}
		if s, ok := obj["text"].(string); ok && s != "" {
			return s, nil
		}
	}

	pretty, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return "", err
	}
	return string(pretty), nil
}

// Loader walks a documents directory and loads every supported file.
type Loader struct {
	documentsDir string
	stats        Stats
}

func NewLoader(documentsDir string) *Loader {
	return &Loader{documentsDir: documentsDir}
}

// Load walks the directory recursively. Unreadable or empty files are
// skipped and counted, not fatal.
func (l *Loader) Load() ([]*Document, error) {
	info, err := os.Stat(l.documentsDir)
	if err != nil || !info.IsDir() {
		return nil, fmt.Errorf("documents directory not found: %s", l.documentsDir)
	}

	var documents []*Document
	stats := Stats{}

	err = filepath.WalkDir(l.documentsDir, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() {
			return nil
		}
		if !supportedExtensions[strings.ToLower(filepath.Ext(path))] {
			return nil
		}

		stats.TotalFiles++
		doc, loadErr := LoadDocument(path)
		if loadErr != nil || doc == nil {
			stats.SkippedFiles++
			return nil
		}

		stats.LoadedFiles++
		stats.TotalCharacters += len(doc.Content)
		documents = append(documents, doc)
		return nil
	})
	if err != nil {
		return nil, err
	}

	l.stats = stats
	return documents, nil
}

func (l *Loader) Stats() Stats {
	return l.stats
}
