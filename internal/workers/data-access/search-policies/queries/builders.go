// internal/workers/data-access/search-policies/queries/builders.go
package queries

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/elastic/go-elasticsearch/v8/esapi"

	"hr-assistant/internal/models"
)

var (
	ErrMissingIndex = errors.New("index name is required")
	ErrEmptyQuery   = errors.New("search text is required")
)

// PolicyMapping is the index mapping for policy chunks.
const PolicyMapping = `{
	"mappings": {
		"properties": {
			"content": {"type": "text"},
			"source":  {"type": "keyword"},
			"page":    {"type": "integer"},
			"chunk":   {"type": "integer"}
		}
	}
}`

// BuildSearch builds a full-text match over chunk content returning the top k.
func BuildSearch(index, text string, k int) (*esapi.SearchRequest, error) {
	if index == "" {
		return nil, ErrMissingIndex
	}
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyQuery
	}

	body, err := json.Marshal(map[string]interface{}{
		"query": map[string]interface{}{
			"match": map[string]interface{}{
				"content": map[string]interface{}{
					"query": text,
				},
			},
		},
		"_source": []string{"content", "source", "page", "chunk"},
	})
	if err != nil {
		return nil, err
	}

	return &esapi.SearchRequest{
		Index: []string{index},
		Body:  bytes.NewReader(body),
		Size:  &k,
	}, nil
}

// BuildBulk renders docs as an NDJSON bulk index body.
func BuildBulk(docs []models.PolicyDocument) (*bytes.Buffer, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	for i, d := range docs {
		meta := map[string]interface{}{
			"index": map[string]interface{}{"_id": DocumentID(d)},
		}
		if err := enc.Encode(meta); err != nil {
			return nil, fmt.Errorf("encode bulk meta %d: %w", i, err)
		}
		if err := enc.Encode(map[string]interface{}{
			"content": d.Content,
			"source":  d.Source,
			"page":    d.Page,
			"chunk":   d.Chunk,
		}); err != nil {
			return nil, fmt.Errorf("encode bulk doc %d: %w", i, err)
		}
	}
	return &buf, nil
}

// DocumentID is stable per source/page/chunk so re-indexing overwrites.
func DocumentID(d models.PolicyDocument) string {
	return fmt.Sprintf("%s#p%d#c%d", d.Source, d.Page, d.Chunk)
}
