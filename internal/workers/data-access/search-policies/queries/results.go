// internal/workers/data-access/search-policies/queries/results.go
package queries

import (
	"encoding/json"
	"fmt"
	"io"

	"hr-assistant/internal/models"
)

type SearchResult struct {
	Documents []models.PolicyDocument
	TotalHits int64
	MaxScore  float64
	Took      int64
}

type searchResponse struct {
	Took int64 `json:"took"`
	Hits struct {
		Total struct {
			Value int64 `json:"value"`
		} `json:"total"`
		MaxScore *float64 `json:"max_score"`
		Hits     []struct {
			Score  float64               `json:"_score"`
			Source models.PolicyDocument `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
}

func ParseSearch(body io.Reader) (*SearchResult, error) {
	var r searchResponse
	if err := json.NewDecoder(body).Decode(&r); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}

	result := &SearchResult{
		Documents: make([]models.PolicyDocument, 0, len(r.Hits.Hits)),
		TotalHits: r.Hits.Total.Value,
		Took:      r.Took,
	}
	if r.Hits.MaxScore != nil {
		result.MaxScore = *r.Hits.MaxScore
	}
	for _, h := range r.Hits.Hits {
		doc := h.Source
		doc.Score = h.Score
		result.Documents = append(result.Documents, doc)
	}
	return result, nil
}

type bulkResponse struct {
	Errors bool `json:"errors"`
	Items  []map[string]struct {
		Status int `json:"status"`
		Error  *struct {
			Type   string `json:"type"`
			Reason string `json:"reason"`
		} `json:"error"`
	} `json:"items"`
}

// ParseBulk returns the number of indexed documents and the first item
// failure, if any.
func ParseBulk(body io.Reader) (int, error) {
	var r bulkResponse
	if err := json.NewDecoder(body).Decode(&r); err != nil {
		return 0, fmt.Errorf("decode bulk response: %w", err)
	}

	indexed := 0
	var firstErr error
	for _, item := range r.Items {
		for _, res := range item {
			if res.Error != nil {
				if firstErr == nil {
					firstErr = fmt.Errorf("%s: %s", res.Error.Type, res.Error.Reason)
				}
				continue
			}
			indexed++
		}
	}
	return indexed, firstErr
}
