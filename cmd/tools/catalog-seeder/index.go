// cmd/tools/catalog-seeder/index.go
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/spf13/cobra"

	"atio-knowledge-base/internal/common/database"
	"atio-knowledge-base/internal/models"
)

var indexName string

func init() {
	indexCmd.Flags().StringVar(&indexName, "index", "", "target index (default: catalog.index_name from config)")
	rootCmd.AddCommand(indexCmd)
}

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Bulk-index technology records into Elasticsearch",
	Long: `Validate the records, create the technology index with its mapping if
it does not exist and bulk-index every record using its id as document id.
Re-running replaces the documents in place.

Examples:
  # Index the built-in seed
  catalog-seeder index

  # Index into a scratch index
  catalog-seeder index --index technologies-test`,
	RunE: runIndex,
}

func runIndex(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	records, err := readRecords(seedFile)
	if err != nil {
		return err
	}
	if err := validateRecords(records); err != nil {
		return fmt.Errorf("refusing to index invalid catalog: %w", err)
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	index := indexName
	if index == "" {
		index = cfg.Catalog.IndexName
	}

	es, err := database.NewElasticsearch(cfg.Database.Elasticsearch)
	if err != nil {
		return err
	}
	created, err := es.EnsureIndex(ctx, index)
	if err != nil {
		return err
	}
	if created {
		fmt.Fprintf(cmd.OutOrStdout(), "created index %s\n", index)
	}

	n, err := indexRecords(ctx, es.Client, index, records)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "indexed %d technology records into %s\n", n, index)
	return nil
}

type bulkResponse struct {
	Errors bool `json:"errors"`
	Items  []map[string]struct {
		ID     string `json:"_id"`
		Status int    `json:"status"`
		Error  *struct {
			Type   string `json:"type"`
			Reason string `json:"reason"`
		} `json:"error,omitempty"`
	} `json:"items"`
}

// bulkBody renders records as an index action plus source line each.
func bulkBody(index string, records []models.Technology) (*bytes.Buffer, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	for _, t := range records {
		action := map[string]interface{}{
			"index": map[string]interface{}{"_index": index, "_id": strconv.Itoa(t.ID)},
		}
		if err := enc.Encode(action); err != nil {
			return nil, err
		}
		if err := enc.Encode(t); err != nil {
			return nil, fmt.Errorf("encode technology %d: %w", t.ID, err)
		}
	}
	return &buf, nil
}

// indexRecords sends one bulk request and reports the first rejected item.
func indexRecords(ctx context.Context, client *elasticsearch.Client, index string, records []models.Technology) (int, error) {
	if len(records) == 0 {
		return 0, nil
	}

	body, err := bulkBody(index, records)
	if err != nil {
		return 0, err
	}

	req := esapi.BulkRequest{
		Index:   index,
		Body:    body,
		Refresh: "true",
	}
	res, err := req.Do(ctx, client)
	if err != nil {
		return 0, fmt.Errorf("bulk request failed: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return 0, fmt.Errorf("bulk request error: %s", res.Status())
	}

	var parsed bulkResponse
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return 0, fmt.Errorf("decode bulk response: %w", err)
	}
	if !parsed.Errors {
		return len(parsed.Items), nil
	}

	indexed := 0
	var firstErr error
	for _, item := range parsed.Items {
		for _, result := range item {
			if result.Error == nil {
				indexed++
				continue
			}
			if firstErr == nil {
				firstErr = fmt.Errorf("document %s rejected (%d): %s: %s",
					result.ID, result.Status, result.Error.Type, result.Error.Reason)
			}
		}
	}
	return indexed, firstErr
}
