// Package search mirrors products into Elasticsearch and runs substring
// queries against that index.
package search

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/elastic/go-elasticsearch/v9"
	"github.com/goccy/go-json"

	"github.com/Skotchmaster/storefront/internal/models"
)

const maxResults = 1000

// Index settings: keyword fields with a lowercase normalizer so a wildcard
// over the whole value behaves as a case-insensitive substring match.
var indexSettings = map[string]any{
	"settings": map[string]any{
		"analysis": map[string]any{
			"normalizer": map[string]any{
				"lc": map[string]any{"type": "custom", "filter": []string{"lowercase"}},
			},
		},
	},
	"mappings": map[string]any{
		"properties": map[string]any{
			"id":          map[string]any{"type": "long"},
			"name":        map[string]any{"type": "keyword", "normalizer": "lc"},
			"description": map[string]any{"type": "keyword", "normalizer": "lc"},
			"category":    map[string]any{"type": "keyword"},
			"price":       map[string]any{"type": "double"},
			"image":       map[string]any{"type": "keyword", "index": false},
		},
	},
}

type Config struct {
	URL      string
	User     string
	Password string
	Index    string
}

type ProductIndex struct {
	ES    *elasticsearch.Client
	Index string
}

func NewClient(cfg Config) (*elasticsearch.Client, error) {
	client, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: []string{cfg.URL},
		Username:  cfg.User,
		Password:  cfg.Password,
	})
	if err != nil {
		return nil, fmt.Errorf("elasticsearch client: %w", err)
	}
	return client, nil
}

// EnsureIndex creates the index with its mapping when missing.
func (p *ProductIndex) EnsureIndex(ctx context.Context) error {
	res, err := p.ES.Indices.Exists([]string{p.Index}, p.ES.Indices.Exists.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("index exists: %w", err)
	}
	res.Body.Close()
	if res.StatusCode == 200 {
		return nil
	}

	body, err := json.Marshal(indexSettings)
	if err != nil {
		return err
	}
	res, err = p.ES.Indices.Create(p.Index,
		p.ES.Indices.Create.WithContext(ctx),
		p.ES.Indices.Create.WithBody(bytes.NewReader(body)),
	)
	if err != nil {
		return fmt.Errorf("create index: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return responseError("create index", res.Status(), res.Body)
	}
	return nil
}

func (p *ProductIndex) IndexProduct(ctx context.Context, prod *models.Product) error {
	body, err := json.Marshal(prod)
	if err != nil {
		return err
	}
	res, err := p.ES.Index(p.Index, bytes.NewReader(body),
		p.ES.Index.WithContext(ctx),
		p.ES.Index.WithDocumentID(strconv.FormatUint(uint64(prod.ID), 10)),
	)
	if err != nil {
		return fmt.Errorf("index product: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return responseError("index product", res.Status(), res.Body)
	}
	return nil
}

func (p *ProductIndex) RemoveProduct(ctx context.Context, id uint) error {
	res, err := p.ES.Delete(p.Index, strconv.FormatUint(uint64(id), 10), p.ES.Delete.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() && res.StatusCode != 404 {
		return responseError("delete product", res.Status(), res.Body)
	}
	return nil
}

func (p *ProductIndex) Search(ctx context.Context, query string) ([]models.Product, error) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(Query(query)); err != nil {
		return nil, err
	}

	res, err := p.ES.Search(
		p.ES.Search.WithContext(ctx),
		p.ES.Search.WithIndex(p.Index),
		p.ES.Search.WithBody(&buf),
	)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return nil, responseError("search", res.Status(), res.Body)
	}

	var r struct {
		Hits struct {
			Hits []struct {
				Source models.Product `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&r); err != nil {
		return nil, err
	}

	prods := make([]models.Product, len(r.Hits.Hits))
	for i, hit := range r.Hits.Hits {
		prods[i] = hit.Source
	}
	return prods, nil
}

// Query builds a wildcard query matching q anywhere in name or description.
func Query(q string) map[string]any {
	pattern := "*" + escapeWildcard(strings.ToLower(q)) + "*"
	wildcard := func(field string) map[string]any {
		return map[string]any{"wildcard": map[string]any{
			field: map[string]any{"value": pattern, "case_insensitive": true},
		}}
	}
	return map[string]any{
		"size": maxResults,
		"sort": []any{map[string]any{"id": "asc"}},
		"query": map[string]any{
			"bool": map[string]any{
				"should":               []any{wildcard("name"), wildcard("description")},
				"minimum_should_match": 1,
			},
		},
	}
}

func escapeWildcard(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `*`, `\*`, `?`, `\?`)
	return r.Replace(s)
}

func responseError(op, status string, body io.Reader) error {
	b, _ := io.ReadAll(io.LimitReader(body, 512))
	return fmt.Errorf("%s: %s: %s", op, status, strings.TrimSpace(string(b)))
}
