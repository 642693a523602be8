package api

import (
	"context"
	"encoding/json"
	"net/url"

	"agency/internal/apicache"
	"agency/internal/domain/entity"
	"agency/internal/infra/backend"
)

// Write is the argument of a create or update.
type Write[T entity.Record] struct {
	ID     string
	Record T
	Upload *backend.Upload
}

// Resource is the CRUD endpoint set of one collection. Every read is provided
// under tag and every write invalidates it.
type Resource[T entity.Record] struct {
	cache *apicache.Cache
	name  string
	tag   apicache.Tag

	list   apicache.Query[struct{}, []T]
	byID   apicache.Query[string, T]
	create apicache.Mutation[Write[T], T]
	update apicache.Mutation[Write[T], T]
	remove apicache.Mutation[string, json.RawMessage]
}

// NewResource declares the endpoints of the collection at path.
func NewResource[T entity.Record](cache *apicache.Cache, transport Transport, name, path string, tag apicache.Tag) *Resource[T] {
	tags := []apicache.Tag{tag}
	item := func(id string) string { return path + "/" + url.PathEscape(id) }

	return &Resource[T]{
		cache: cache,
		name:  name,
		tag:   tag,
		list: apicache.Query[struct{}, []T]{
			Name:     name + ".getAll",
			Provides: tags,
			Scope:    CredentialScope,
			ArgKey:   func(struct{}) string { return "" },
			Fetch: func(ctx context.Context, _ struct{}) (json.RawMessage, error) {
				return transport.Get(ctx, path)
			},
		},
		byID: apicache.Query[string, T]{
			Name:     name + ".getById",
			Provides: tags,
			Scope:    CredentialScope,
			ArgKey:   func(id string) string { return id },
			Fetch: func(ctx context.Context, id string) (json.RawMessage, error) {
				return transport.Get(ctx, item(id))
			},
		},
		create: apicache.Mutation[Write[T], T]{
			Name:        name + ".create",
			Invalidates: tags,
			Do: func(ctx context.Context, w Write[T]) (json.RawMessage, error) {
				return transport.Post(ctx, path, w.Record, w.Upload)
			},
		},
		update: apicache.Mutation[Write[T], T]{
			Name:        name + ".update",
			Invalidates: tags,
			Do: func(ctx context.Context, w Write[T]) (json.RawMessage, error) {
				return transport.Put(ctx, item(w.ID), w.Record, w.Upload)
			},
		},
		remove: apicache.Mutation[string, json.RawMessage]{
			Name:        name + ".delete",
			Invalidates: tags,
			Do: func(ctx context.Context, id string) (json.RawMessage, error) {
				return transport.Delete(ctx, item(id))
			},
		},
	}
}

// Name returns the resource name.
func (r *Resource[T]) Name() string { return r.name }

// Tag returns the tag its reads are provided under.
func (r *Resource[T]) Tag() apicache.Tag { return r.tag }

// GetAll reads the whole collection.
func (r *Resource[T]) GetAll(ctx context.Context) ([]T, error) {
	return r.list.Get(ctx, r.cache, struct{}{})
}

// SubscribeAll holds the collection read open. The caller must Unsubscribe.
func (r *Resource[T]) SubscribeAll(ctx context.Context) *apicache.QuerySubscription[[]T] {
	return r.list.Subscribe(ctx, r.cache, struct{}{})
}

// GetByID reads one record.
func (r *Resource[T]) GetByID(ctx context.Context, id string) (T, error) {
	return r.byID.Get(ctx, r.cache, id)
}

// SubscribeByID holds the read of one record open. The caller must Unsubscribe.
func (r *Resource[T]) SubscribeByID(ctx context.Context, id string) *apicache.QuerySubscription[T] {
	return r.byID.Subscribe(ctx, r.cache, id)
}

// Create adds a record, with an optional image.
func (r *Resource[T]) Create(ctx context.Context, record T, upload *backend.Upload) (T, error) {
	return r.create.Run(ctx, r.cache, Write[T]{Record: record, Upload: upload})
}

// Update replaces the record id.
func (r *Resource[T]) Update(ctx context.Context, id string, record T, upload *backend.Upload) (T, error) {
	return r.update.Run(ctx, r.cache, Write[T]{ID: id, Record: record, Upload: upload})
}

// Delete removes the record id.
func (r *Resource[T]) Delete(ctx context.Context, id string) error {
	_, err := r.remove.Run(ctx, r.cache, id)

	return err
}
