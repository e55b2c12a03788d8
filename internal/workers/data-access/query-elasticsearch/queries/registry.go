// internal/workers/data-access/query-elasticsearch/queries/registry.go
package queries

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
)

var (
	ErrIndexNotFound = errors.New("index not found")
	ErrSearchFailed  = errors.New("search request failed")
)

type QueryResult struct {
	Data      []map[string]interface{}
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
			Source map[string]interface{} `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
}

type errorResponse struct {
	Error struct {
		Type   string `json:"type"`
		Reason string `json:"reason"`
	} `json:"error"`
}

func Execute(ctx context.Context, esClient *elasticsearch.Client, eq ElasticsearchQuery) (*QueryResult, error) {
	req, err := BuildQuery(eq)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	res, err := req.Do(ctx, esClient)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, responseError(res.StatusCode, res.Body, eq.Index)
	}

	var r searchResponse
	if err := json.NewDecoder(res.Body).Decode(&r); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}

	data := make([]map[string]interface{}, 0, len(r.Hits.Hits))
	for _, hit := range r.Hits.Hits {
		data = append(data, hit.Source)
	}

	maxScore := 0.0
	if r.Hits.MaxScore != nil {
		maxScore = *r.Hits.MaxScore
	}

	took := r.Took
	if took == 0 {
		took = time.Since(start).Milliseconds()
	}

	return &QueryResult{
		Data:      data,
		TotalHits: r.Hits.Total.Value,
		MaxScore:  maxScore,
		Took:      took,
	}, nil
}

func responseError(status int, body io.Reader, index string) error {
	var e errorResponse
	_ = json.NewDecoder(body).Decode(&e)

	if status == http.StatusNotFound && (e.Error.Type == "" || e.Error.Type == "index_not_found_exception") {
		return fmt.Errorf("%w: %s", ErrIndexNotFound, index)
	}
	if e.Error.Type != "" {
		return fmt.Errorf("%w: status %d: %s: %s", ErrSearchFailed, status, e.Error.Type, e.Error.Reason)
	}
	return fmt.Errorf("%w: status %d", ErrSearchFailed, status)
}
