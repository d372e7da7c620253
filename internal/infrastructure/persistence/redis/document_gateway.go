package redis

import (
	"context"
	"errors"
	"fmt"

	"github.com/alem-hub/student-records/internal/domain/student"
	"github.com/alem-hub/student-records/internal/infrastructure/persistence/document"
)

// DocumentGateway implements student.Gateway by storing the encoded document
// under one key.
type DocumentGateway struct {
	client *Client
	key    string
}

// NewDocumentGateway creates a gateway. An empty key means DefaultKey.
func NewDocumentGateway(client *Client, key string) *DocumentGateway {
	if key == "" {
		key = DefaultKey
	}
	return &DocumentGateway{client: client, key: key}
}

// Name implements student.Gateway.
func (g *DocumentGateway) Name() string { return "redis" }

// Key returns the key holding the document.
func (g *DocumentGateway) Key() string { return g.key }

// Save overwrites the document.
func (g *DocumentGateway) Save(ctx context.Context, records []student.Record) error {
	data, err := document.Encode(records)
	if err != nil {
		return err
	}
	if err := g.client.SetBytes(ctx, g.key, data); err != nil {
		return fmt.Errorf("set %s: %w", g.key, err)
	}
	return nil
}

// Load reads the document. A missing key yields no records.
func (g *DocumentGateway) Load(ctx context.Context) ([]student.Record, error) {
	data, err := g.client.GetBytes(ctx, g.key)
	if err != nil {
		if errors.Is(err, ErrCacheMiss) {
			return []student.Record{}, nil
		}
		return nil, fmt.Errorf("get %s: %w", g.key, err)
	}

	records, err := document.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", g.key, err)
	}
	return records, nil
}
