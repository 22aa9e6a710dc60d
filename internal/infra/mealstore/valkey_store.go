package mealstore

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/valkey-io/valkey-go"

	"github.com/yanqian/nutrient-tracker/internal/domain/ledger"
)

// ValkeyStore keeps one JSON list per owner in a Valkey-compatible database.
type ValkeyStore struct {
	client valkey.Client
	prefix string
}

// NewValkeyStore constructs a new store backed by Valkey.
func NewValkeyStore(client valkey.Client, prefix string) *ValkeyStore {
	if prefix == "" {
		prefix = "meals"
	}
	return &ValkeyStore{client: client, prefix: prefix}
}

// Append implements ledger.Store.
func (s *ValkeyStore) Append(ctx context.Context, owner string, record ledger.Record) error {
	payload, err := json.Marshal(record)
	if err != nil {
		return err
	}
	return s.client.Do(ctx, s.client.B().Rpush().Key(s.ownerKey(owner)).Element(string(payload)).Build()).Error()
}

// List implements ledger.Store.
func (s *ValkeyStore) List(ctx context.Context, owner string) ([]ledger.Record, error) {
	items, err := s.client.Do(ctx, s.client.B().Lrange().Key(s.ownerKey(owner)).Start(0).Stop(-1).Build()).AsStrSlice()
	if err != nil {
		if valkey.IsValkeyNil(err) {
			return []ledger.Record{}, nil
		}
		return nil, err
	}
	out := make([]ledger.Record, 0, len(items))
	for i, item := range items {
		var rec ledger.Record
		if err := json.Unmarshal([]byte(item), &rec); err != nil {
			return nil, fmt.Errorf("decode meal record %d: %w", i, err)
		}
		out = append(out, rec)
	}
	return out, nil
}

// Close closes the client.
func (s *ValkeyStore) Close() error {
	s.client.Close()
	return nil
}

func (s *ValkeyStore) ownerKey(owner string) string {
	return fmt.Sprintf("%s:owner:%s", s.prefix, owner)
}

var _ ledger.Store = (*ValkeyStore)(nil)
