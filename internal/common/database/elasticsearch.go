// internal/common/database/elasticsearch.go
package database

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"atio-knowledge-base/internal/common/config"

	"github.com/elastic/go-elasticsearch/v8"
)

// technologyIndexMapping keeps the facet fields as keywords so term filters
// on category, cost and regions match exactly.
const technologyIndexMapping = `{
  "settings": {"number_of_shards": 1, "number_of_replicas": 0},
  "mappings": {
    "properties": {
      "id":              {"type": "integer"},
      "name":            {"type": "text", "fields": {"keyword": {"type": "keyword"}}},
      "description":     {"type": "text"},
      "fullDescription": {"type": "text"},
      "category":        {"type": "keyword"},
      "cost":            {"type": "keyword"},
      "costRange":       {"type": "keyword", "index": false},
      "maturityLevel":   {"type": "keyword"},
      "adoptionRate":    {"type": "keyword"},
      "regions":         {"type": "keyword"},
      "benefits":        {"type": "text"},
      "challenges":      {"type": "text"},
      "suitableFor":     {"type": "text"},
      "evidenceLinks":   {"type": "keyword", "index": false}
    }
  }
}`

type ElasticsearchClient struct {
	Client *elasticsearch.Client
}

func NewElasticsearch(cfg config.ElasticsearchConfig) (*ElasticsearchClient, error) {
	addresses := cfg.Addresses
	if len(addresses) == 0 && cfg.URL != "" {
		addresses = []string{cfg.URL}
	}

	esCfg := elasticsearch.Config{Addresses: addresses}
	if cfg.Username != "" {
		esCfg.Username = cfg.Username
		esCfg.Password = cfg.Password
	}

	es, err := elasticsearch.NewClient(esCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create elasticsearch client: %w", err)
	}
	return &ElasticsearchClient{Client: es}, nil
}

func (c *ElasticsearchClient) Ping(ctx context.Context) error {
	res, err := c.Client.Ping(c.Client.Ping.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("elasticsearch ping failed: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("elasticsearch ping error: %s", res.Status())
	}
	return nil
}

// EnsureIndex creates the technology index with its mapping unless it
// already exists. It reports whether the index was created.
func (c *ElasticsearchClient) EnsureIndex(ctx context.Context, name string) (bool, error) {
	exists, err := c.Client.Indices.Exists([]string{name}, c.Client.Indices.Exists.WithContext(ctx))
	if err != nil {
		return false, fmt.Errorf("index exists check failed: %w", err)
	}
	exists.Body.Close()
	if exists.StatusCode == http.StatusOK {
		return false, nil
	}

	res, err := c.Client.Indices.Create(name,
		c.Client.Indices.Create.WithContext(ctx),
		c.Client.Indices.Create.WithBody(strings.NewReader(technologyIndexMapping)),
	)
	if err != nil {
		return false, fmt.Errorf("index create failed: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return false, fmt.Errorf("index create error: %s", res.Status())
	}
	return true, nil
}
