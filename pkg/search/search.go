package search

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/opensearch-project/opensearch-go/v2"
)

var (
	// ErrConnectFailed is returned when the client cannot be built or pinged.
	ErrConnectFailed = errors.New("search: failed to connect")

	// ErrIndexFailed wraps errors from document writes.
	ErrIndexFailed = errors.New("search: failed to index document")

	// ErrQueryFailed wraps errors from search queries.
	ErrQueryFailed = errors.New("search: query failed")
)

type Config struct {
	Addresses  []string `env:"OPENSEARCH_ADDRESSES,required"`         // Addresses lists cluster node URLs.
	Username   string   `env:"OPENSEARCH_USERNAME"`                   // Username for basic auth.
	Password   string   `env:"OPENSEARCH_PASSWORD"`                   // Password for basic auth.
	MaxRetries int      `env:"OPENSEARCH_MAX_RETRIES" envDefault:"3"` // MaxRetries bounds transport retries.
}

// Connect builds an OpenSearch client and verifies the cluster responds.
func Connect(ctx context.Context, cfg Config) (*opensearch.Client, error) {
	client, err := opensearch.NewClient(opensearch.Config{
		Addresses:  cfg.Addresses,
		Username:   cfg.Username,
		Password:   cfg.Password,
		MaxRetries: cfg.MaxRetries,
	})
	if err != nil {
		return nil, errors.Join(ErrConnectFailed, err)
	}

	res, err := client.Ping(client.Ping.WithContext(ctx))
	if err != nil {
		return nil, errors.Join(ErrConnectFailed, err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return nil, fmt.Errorf("%w: ping returned %s", ErrConnectFailed, res.Status())
	}
	return client, nil
}

// Index wraps one named OpenSearch index.
type Index struct {
	client *opensearch.Client
	name   string
}

// NewIndex binds a client to an index name.
func NewIndex(client *opensearch.Client, name string) *Index {
	return &Index{client: client, name: name}
}

// Put upserts doc under id.
func (i *Index) Put(ctx context.Context, id string, doc any) error {
	payload, err := json.Marshal(doc)
	if err != nil {
		return errors.Join(ErrIndexFailed, err)
	}

	res, err := i.client.Index(i.name, bytes.NewReader(payload),
		i.client.Index.WithContext(ctx),
		i.client.Index.WithDocumentID(id),
	)
	if err != nil {
		return errors.Join(ErrIndexFailed, err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("%w: %s", ErrIndexFailed, res.Status())
	}
	return nil
}

// Delete removes the document under id. Missing documents are not an error.
func (i *Index) Delete(ctx context.Context, id string) error {
	res, err := i.client.Delete(i.name, id, i.client.Delete.WithContext(ctx))
	if err != nil {
		return errors.Join(ErrIndexFailed, err)
	}
	defer res.Body.Close()
	if res.IsError() && res.StatusCode != 404 {
		return fmt.Errorf("%w: %s", ErrIndexFailed, res.Status())
	}
	return nil
}

// Match runs a match query on field and returns raw document sources.
func (i *Index) Match(ctx context.Context, field, value string, limit int) ([]json.RawMessage, error) {
	if limit <= 0 {
		limit = 20
	}

	query, err := json.Marshal(map[string]any{
		"size":  limit,
		"query": map[string]any{"match": map[string]any{field: value}},
	})
	if err != nil {
		return nil, errors.Join(ErrQueryFailed, err)
	}

	res, err := i.client.Search(
		i.client.Search.WithContext(ctx),
		i.client.Search.WithIndex(i.name),
		i.client.Search.WithBody(bytes.NewReader(query)),
	)
	if err != nil {
		return nil, errors.Join(ErrQueryFailed, err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return nil, fmt.Errorf("%w: %s", ErrQueryFailed, res.Status())
	}

	var envelope struct {
		Hits struct {
			Hits []struct {
				Source json.RawMessage `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&envelope); err != nil {
		return nil, errors.Join(ErrQueryFailed, err)
	}

	sources := make([]json.RawMessage, 0, len(envelope.Hits.Hits))
	for _, hit := range envelope.Hits.Hits {
		sources = append(sources, hit.Source)
	}
	return sources, nil
}
