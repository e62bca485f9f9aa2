// Package indexer mirrors harvested jobs into a search index.
package indexer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go-job-harvester/internal/logger"
	"go-job-harvester/internal/models"

	"github.com/elastic/go-elasticsearch/v8"
)

// Indexer bulk-indexes records keyed by jobId and returns how many were accepted.
type Indexer interface {
	Index(ctx context.Context, records []models.JobRecord) (int, error)
}

// ElasticsearchIndexer indexes jobs to Elasticsearch
type ElasticsearchIndexer struct {
	client    *elasticsearch.Client
	indexName string
	log       logger.Logger
}

// NewElasticsearchIndexer creates a new Elasticsearch indexer
func NewElasticsearchIndexer(ctx context.Context, addresses []string, indexName string, log logger.Logger) (*ElasticsearchIndexer, error) {
	if indexName == "" {
		indexName = "jobs"
	}
	if log == nil {
		log = logger.NewNop()
	}
	client, err := elasticsearch.NewClient(elasticsearch.Config{Addresses: addresses})
	if err != nil {
		return nil, fmt.Errorf("create es client: %w", err)
	}

	// Check connection
	res, err := client.Info(client.Info.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("es info: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return nil, fmt.Errorf("es error: %s", res.Status())
	}

	return &ElasticsearchIndexer{client: client, indexName: indexName, log: log}, nil
}

// EnsureIndex creates the index with keyword mappings if it does not exist.
func (i *ElasticsearchIndexer) EnsureIndex(ctx context.Context) error {
	res, err := i.client.Indices.Exists([]string{i.indexName}, i.client.Indices.Exists.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("check index: %w", err)
	}
	res.Body.Close()
	if res.StatusCode == 200 {
		return nil
	}

	mapping := `{
		"mappings": {
			"properties": {
				"jobId": {"type": "keyword"},
				"title": {"type": "text", "fields": {"keyword": {"type": "keyword"}}},
				"companyName": {"type": "text", "fields": {"keyword": {"type": "keyword"}}},
				"description": {"type": "text"},
				"location": {"type": "text"},
				"country": {"type": "keyword"},
				"city": {"type": "keyword"},
				"jobType": {"type": "keyword"},
				"workSettings": {"type": "keyword"},
				"experienceLevel": {"type": "keyword"},
				"category": {"type": "keyword"},
				"skills": {"type": "keyword"},
				"currency": {"type": "keyword"},
				"minSalary": {"type": "double"},
				"maxSalary": {"type": "double"},
				"applicationUrl": {"type": "keyword"},
				"postedDate": {"type": "date", "format": "yyyy-MM-dd HH:mm:ss"}
			}
		}
	}`
	res, err = i.client.Indices.Create(
		i.indexName,
		i.client.Indices.Create.WithBody(strings.NewReader(mapping)),
		i.client.Indices.Create.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("create index: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("create index error: %s", res.Status())
	}
	return nil
}

// Index sends the batch through the bulk API. Per-item rejections are logged
// and excluded from the returned count.
func (i *ElasticsearchIndexer) Index(ctx context.Context, records []models.JobRecord) (int, error) {
	var buf bytes.Buffer
	sent := 0
	for _, rec := range records {
		if rec.JobID == "" {
			continue
		}
		docBytes, err := json.Marshal(rec)
		if err != nil {
			i.log.Warn("⚠️ Marshal job failed", logger.String("job_id", rec.JobID), logger.Error(err))
			continue
		}
		meta, _ := json.Marshal(map[string]any{
			"index": map[string]any{"_index": i.indexName, "_id": rec.JobID},
		})
		buf.Write(meta)
		buf.WriteByte('\n')
		buf.Write(docBytes)
		buf.WriteByte('\n')
		sent++
	}
	if sent == 0 {
		return 0, nil
	}

	res, err := i.client.Bulk(bytes.NewReader(buf.Bytes()), i.client.Bulk.WithContext(ctx))
	if err != nil {
		return 0, fmt.Errorf("bulk request: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return 0, fmt.Errorf("bulk error: %s", res.Status())
	}

	var bulkRes struct {
		Errors bool `json:"errors"`
		Items  []struct {
			Index struct {
				ID     string `json:"_id"`
				Status int    `json:"status"`
				Error  struct {
					Type   string `json:"type"`
					Reason string `json:"reason"`
				} `json:"error"`
			} `json:"index"`
		} `json:"items"`
	}
	if err := json.NewDecoder(res.Body).Decode(&bulkRes); err != nil {
		return 0, fmt.Errorf("parse bulk response: %w", err)
	}

	indexed := sent
	if bulkRes.Errors {
		for _, item := range bulkRes.Items {
			if item.Index.Status >= 400 {
				indexed--
				i.log.Warn("⚠️ Bulk index rejected",
					logger.String("job_id", item.Index.ID),
					logger.String("type", item.Index.Error.Type),
					logger.String("reason", item.Index.Error.Reason))
			}
		}
	}
	i.log.Info("🔎 Indexed jobs", logger.Int("count", indexed), logger.String("index", i.indexName))
	return indexed, nil
}
