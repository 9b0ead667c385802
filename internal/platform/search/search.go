// Package search wraps elasticsearch for the catalog projection: index
// bootstrap, idempotent upserts keyed by external id, and fuzzy queries.
// Postgres stays the source of truth; documents here are rebuilt from it
package search

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	perr "comicvault/internal/platform/errors"
	"comicvault/internal/platform/logger"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
)

// Config points the client at the cluster
type Config struct {
	Addresses []string
	Username  string
	Password  string
	Transport http.RoundTripper
}

// Client is a thin domain-neutral wrapper over the official client
type Client struct {
	es  *elasticsearch.Client
	log logger.Logger
}

// New builds a client; it does not contact the cluster
func New(cfg Config, log logger.Logger) (*Client, error) {
	es, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: cfg.Addresses,
		Username:  cfg.Username,
		Password:  cfg.Password,
		Transport: cfg.Transport,
	})
	if err != nil {
		return nil, perr.Wrapf(err, perr.ErrorCodeUnavailable, "search: create client")
	}
	return &Client{es: es, log: log.With().Str("component", "search").Logger()}, nil
}

// Ping reports whether the cluster answers
func (c *Client) Ping(ctx context.Context) error {
	res, err := c.es.Ping(c.es.Ping.WithContext(ctx))
	if err != nil {
		return perr.IndexUnavailablef(err, "search: ping")
	}
	defer res.Body.Close()
	if res.IsError() {
		return perr.IndexUnavailablef(statusErr(res), "search: ping")
	}
	return nil
}

// EnsureIndex creates index with mapping unless it already exists.
// An existing index is left untouched, mapping drift included
func (c *Client) EnsureIndex(ctx context.Context, index string, mapping any) (created bool, err error) {
	res, err := c.es.Indices.Exists([]string{index}, c.es.Indices.Exists.WithContext(ctx))
	if err != nil {
		return false, perr.IndexUnavailablef(err, "search: exists %s", index)
	}
	res.Body.Close()
	switch res.StatusCode {
	case http.StatusOK:
		return false, nil
	case http.StatusNotFound:
	default:
		return false, perr.IndexUnavailablef(statusErr(res), "search: exists %s", index)
	}

	body, err := json.Marshal(mapping)
	if err != nil {
		return false, perr.Wrapf(err, perr.ErrorCodeJSON, "search: encode mapping %s", index)
	}
	res, err = c.es.Indices.Create(index,
		c.es.Indices.Create.WithBody(bytes.NewReader(body)),
		c.es.Indices.Create.WithContext(ctx),
	)
	if err != nil {
		return false, perr.IndexUnavailablef(err, "search: create %s", index)
	}
	defer res.Body.Close()
	if res.IsError() {
		// a concurrent creator won the race
		if strings.Contains(readAll(res), "resource_already_exists_exception") {
			return false, nil
		}
		return false, perr.IndexUnavailablef(statusErr(res), "search: create %s", index)
	}
	c.log.Info().Str("index", index).Msg("search: index created")
	return true, nil
}

// Upsert writes one document under id, replacing any previous version
func (c *Client) Upsert(ctx context.Context, index, id string, doc any) error {
	body, err := json.Marshal(doc)
	if err != nil {
		return perr.Wrapf(err, perr.ErrorCodeJSON, "search: encode %s/%s", index, id)
	}
	res, err := c.es.Index(index, bytes.NewReader(body),
		c.es.Index.WithDocumentID(id),
		c.es.Index.WithContext(ctx),
	)
	if err != nil {
		return perr.IndexUnavailablef(err, "search: index %s/%s", index, id)
	}
	defer res.Body.Close()
	if res.IsError() {
		return perr.Wrapf(statusErr(res), perr.ErrorCodeUnknown, "search: index %s/%s", index, id)
	}
	return nil
}

// Doc is one document for BulkUpsert
type Doc struct {
	ID     string
	Source any
}

// ItemError is a per-document bulk failure
type ItemError struct {
	ID     string
	Status int
	Reason string
}

// BulkUpsert indexes docs in one request. A transport or request level
// failure returns an error; per-document rejections come back as ItemErrors
func (c *Client) BulkUpsert(ctx context.Context, index string, docs []Doc) ([]ItemError, error) {
	if len(docs) == 0 {
		return nil, nil
	}
	var buf bytes.Buffer
	var failed []ItemError
	enc := json.NewEncoder(&buf)
	for _, d := range docs {
		src, err := json.Marshal(d.Source)
		if err != nil {
			failed = append(failed, ItemError{ID: d.ID, Reason: err.Error()})
			continue
		}
		_ = enc.Encode(map[string]any{"index": map[string]any{"_index": index, "_id": d.ID}})
		buf.Write(src)
		buf.WriteByte('\n')
	}
	if buf.Len() == 0 {
		return failed, nil
	}

	res, err := c.es.Bulk(bytes.NewReader(buf.Bytes()),
		c.es.Bulk.WithIndex(index),
		c.es.Bulk.WithContext(ctx),
	)
	if err != nil {
		return failed, perr.IndexUnavailablef(err, "search: bulk %s", index)
	}
	defer res.Body.Close()
	if res.IsError() {
		return failed, perr.IndexUnavailablef(statusErr(res), "search: bulk %s", index)
	}

	var out struct {
		Errors bool `json:"errors"`
		Items  []map[string]struct {
			ID     string `json:"_id"`
			Status int    `json:"status"`
			Error  *struct {
				Type   string `json:"type"`
				Reason string `json:"reason"`
			} `json:"error"`
		} `json:"items"`
	}
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		return failed, perr.Decodingf(err, "search: bulk %s response", index)
	}
	if !out.Errors {
		return failed, nil
	}
	for _, it := range out.Items {
		for _, r := range it {
			if r.Error != nil {
				failed = append(failed, ItemError{ID: r.ID, Status: r.Status, Reason: r.Error.Type + ": " + r.Error.Reason})
			}
		}
	}
	return failed, nil
}

// Hit is one search result
type Hit struct {
	ID     string          `json:"_id"`
	Source json.RawMessage `json:"_source"`
}

// Result is the decoded hits section of a search response
type Result struct {
	Total int
	Hits  []Hit
}

// Search runs body against index
func (c *Client) Search(ctx context.Context, index string, body any) (Result, error) {
	b, err := json.Marshal(body)
	if err != nil {
		return Result{}, perr.Wrapf(err, perr.ErrorCodeJSON, "search: encode query %s", index)
	}
	res, err := c.es.Search(
		c.es.Search.WithContext(ctx),
		c.es.Search.WithIndex(index),
		c.es.Search.WithBody(bytes.NewReader(b)),
		c.es.Search.WithTrackTotalHits(true),
	)
	if err != nil {
		return Result{}, perr.IndexUnavailablef(err, "search: query %s", index)
	}
	defer res.Body.Close()
	if res.IsError() {
		if res.StatusCode == http.StatusNotFound {
			// index not built yet
			return Result{}, nil
		}
		return Result{}, perr.IndexUnavailablef(statusErr(res), "search: query %s", index)
	}

	var out struct {
		Hits struct {
			Total struct {
				Value int `json:"value"`
			} `json:"total"`
			Hits []Hit `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		return Result{}, perr.Decodingf(err, "search: decode %s response", index)
	}
	return Result{Total: out.Hits.Total.Value, Hits: out.Hits.Hits}, nil
}

func statusErr(res *esapi.Response) error {
	return &perr.StatusError{Status: res.StatusCode, Body: readAll(res)}
}

func readAll(res *esapi.Response) string {
	if res.Body == nil {
		return ""
	}
	b, _ := io.ReadAll(io.LimitReader(res.Body, 2048))
	return strings.TrimSpace(string(b))
}
