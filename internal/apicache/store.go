package apicache

import (
	"context"
	"encoding/json"
)

// ResponseStore is an optional second-level store shared between processes.
// Entries, subscriptions and in-flight tracking stay in memory; the store
// only saves fulfilled payloads so a cold process can skip the network.
type ResponseStore interface {
	// Load returns the saved payload for key, if any.
	Load(ctx context.Context, key Key) (json.RawMessage, bool, error)

	// Save stores payload for key and records it under each tag.
	Save(ctx context.Context, key Key, tags []Tag, payload json.RawMessage) error

	// Invalidate drops every payload recorded under any of tags.
	Invalidate(ctx context.Context, tags []Tag) error
}

// NoopStore is the default ResponseStore: it stores nothing.
type NoopStore struct{}

func (NoopStore) Load(context.Context, Key) (json.RawMessage, bool, error) { return nil, false, nil }

func (NoopStore) Save(context.Context, Key, []Tag, json.RawMessage) error { return nil }

func (NoopStore) Invalidate(context.Context, []Tag) error { return nil }
