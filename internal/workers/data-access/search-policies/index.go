// internal/workers/data-access/search-policies/index.go
package searchpolicies

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	"hr-assistant/internal/models"
	"hr-assistant/internal/workers/data-access/search-policies/queries"
)

var (
	ErrElasticsearchConnectionFailed = errors.New("ELASTICSEARCH_CONNECTION_FAILED")
	ErrSearchQueryFailed             = errors.New("SEARCH_QUERY_FAILED")
	ErrSearchTimeout                 = errors.New("SEARCH_TIMEOUT")
	ErrIndexNotFound                 = errors.New("INDEX_NOT_FOUND")
)

// PolicyIndex is the Elasticsearch-backed store of policy chunks.
type PolicyIndex struct {
	client *elasticsearch.Client
	name   string
}

func NewPolicyIndex(client *elasticsearch.Client, name string) *PolicyIndex {
	return &PolicyIndex{client: client, name: name}
}

func (p *PolicyIndex) Name() string {
	return p.name
}

// Search returns up to k chunks ranked by relevance.
func (p *PolicyIndex) Search(ctx context.Context, text string, k int) ([]models.PolicyDocument, error) {
	result, err := p.search(ctx, text, k)
	if err != nil {
		return nil, err
	}
	return result.Documents, nil
}

func (p *PolicyIndex) search(ctx context.Context, text string, k int) (*queries.SearchResult, error) {
	if k <= 0 {
		k = DefaultK
	}
	if k > MaxK {
		k = MaxK
	}

	req, err := queries.BuildSearch(p.name, text, k)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSearchQueryFailed, err)
	}

	res, err := req.Do(ctx, p.client)
	if err != nil {
		return nil, p.transportError(ctx, err)
	}
	defer res.Body.Close()

	if err := responseError(res); err != nil {
		return nil, err
	}
	result, err := queries.ParseSearch(res.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSearchQueryFailed, err)
	}
	return result, nil
}

// EnsureIndex creates the index with the policy mapping when missing.
func (p *PolicyIndex) EnsureIndex(ctx context.Context) (bool, error) {
	res, err := esapi.IndicesExistsRequest{Index: []string{p.name}}.Do(ctx, p.client)
	if err != nil {
		return false, p.transportError(ctx, err)
	}
	res.Body.Close()

	switch res.StatusCode {
	case http.StatusOK:
		return false, nil
	case http.StatusNotFound:
	default:
		return false, fmt.Errorf("%w: index exists check returned %s", ErrSearchQueryFailed, res.Status())
	}

	res, err = esapi.IndicesCreateRequest{
		Index: p.name,
		Body:  strings.NewReader(queries.PolicyMapping),
	}.Do(ctx, p.client)
	if err != nil {
		return false, p.transportError(ctx, err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return false, fmt.Errorf("%w: create index: %s", ErrSearchQueryFailed, readBody(res.Body))
	}
	return true, nil
}

// IndexDocuments bulk-indexes docs and refreshes so they are searchable at once.
func (p *PolicyIndex) IndexDocuments(ctx context.Context, docs []models.PolicyDocument) (int, error) {
	if len(docs) == 0 {
		return 0, nil
	}

	body, err := queries.BuildBulk(docs)
	if err != nil {
		return 0, err
	}

	res, err := esapi.BulkRequest{
		Index:   p.name,
		Body:    body,
		Refresh: "true",
	}.Do(ctx, p.client)
	if err != nil {
		return 0, p.transportError(ctx, err)
	}
	defer res.Body.Close()

	if err := responseError(res); err != nil {
		return 0, err
	}

	indexed, err := queries.ParseBulk(res.Body)
	if err != nil {
		return indexed, fmt.Errorf("%w: %v", ErrSearchQueryFailed, err)
	}
	return indexed, nil
}

func (p *PolicyIndex) Ping(ctx context.Context) error {
	res, err := p.client.Ping(p.client.Ping.WithContext(ctx))
	if err != nil {
		return p.transportError(ctx, err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("%w: %s", ErrElasticsearchConnectionFailed, res.Status())
	}
	return nil
}

func (p *PolicyIndex) transportError(ctx context.Context, err error) error {
	if errors.Is(err, context.DeadlineExceeded) || ctx.Err() == context.DeadlineExceeded {
		return fmt.Errorf("%w: %v", ErrSearchTimeout, err)
	}
	return fmt.Errorf("%w: %v", ErrElasticsearchConnectionFailed, err)
}

func responseError(res *esapi.Response) error {
	if !res.IsError() {
		return nil
	}
	body := readBody(res.Body)
	if res.StatusCode == http.StatusNotFound && strings.Contains(body, "index_not_found_exception") {
		return ErrIndexNotFound
	}
	return fmt.Errorf("%w: %s %s", ErrSearchQueryFailed, res.Status(), body)
}

func readBody(r io.Reader) string {
	b, _ := io.ReadAll(io.LimitReader(r, 4096))
	return strings.TrimSpace(string(b))
}
