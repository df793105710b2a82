// internal/ingest/loader.go
package ingest

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/tmc/langchaingo/documentloaders"
	"github.com/tmc/langchaingo/schema"
	"github.com/tmc/langchaingo/textsplitter"

	"hr-assistant/internal/models"
)

const (
	DefaultChunkSize    = 1000
	DefaultChunkOverlap = 100
)

var ErrUnsupportedFile = errors.New("UNSUPPORTED_FILE_TYPE")

var supportedExtensions = map[string]bool{".pdf": true, ".txt": true, ".md": true}

// Loader turns policy files into indexable chunks.
type Loader struct {
	splitter textsplitter.TextSplitter
}

func NewLoader(chunkSize, chunkOverlap int) *Loader {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	if chunkOverlap < 0 || chunkOverlap >= chunkSize {
		chunkOverlap = chunkSize / 10
	}
	return &Loader{
		splitter: textsplitter.NewRecursiveCharacter(
			textsplitter.WithChunkSize(chunkSize),
			textsplitter.WithChunkOverlap(chunkOverlap),
		),
	}
}

// Discover lists the supported files under dir, sorted by path.
func Discover(dir string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if supportedExtensions[strings.ToLower(filepath.Ext(path))] {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}

// LoadFile reads one file and splits it. PDFs keep their page numbers;
// text files are a single page. Chunks are numbered per page from zero.
func (l *Loader) LoadFile(ctx context.Context, path string) ([]models.PolicyDocument, error) {
	pages, err := readPages(ctx, path)
	if err != nil {
		return nil, err
	}

	source := filepath.Base(path)
	var out []models.PolicyDocument
	for i, page := range pages {
		pageNo := pageNumber(page, i)
		chunks, err := l.splitter.SplitText(page.PageContent)
		if err != nil {
			return nil, fmt.Errorf("split %s page %d: %w", source, pageNo, err)
		}
		n := 0
		for _, chunk := range chunks {
			chunk = strings.TrimSpace(chunk)
			if chunk == "" {
				continue
			}
			out = append(out, models.PolicyDocument{
				Content: chunk,
				Source:  source,
				Page:    pageNo,
				Chunk:   n,
			})
			n++
		}
	}
	return out, nil
}

func readPages(ctx context.Context, path string) ([]schema.Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		info, err := f.Stat()
		if err != nil {
			return nil, err
		}
		docs, err := documentloaders.NewPDF(f, info.Size()).Load(ctx)
		if err != nil {
			return nil, fmt.Errorf("load pdf %s: %w", path, err)
		}
		return docs, nil
	case ".txt", ".md":
		docs, err := documentloaders.NewText(f).Load(ctx)
		if err != nil {
			return nil, fmt.Errorf("load text %s: %w", path, err)
		}
		return docs, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFile, path)
	}
}

// pageNumber prefers the loader's 1-based page metadata.
func pageNumber(doc schema.Document, index int) int {
	switch v := doc.Metadata["page"].(type) {
	case int:
		return v
	case float64:
		return int(v)
	}
	return index + 1
}
