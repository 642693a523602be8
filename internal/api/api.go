// Package api declares the content API endpoints on top of the query cache.
// Reads are cached under tags; writes invalidate the tags of the resource
// they change.
package api

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"log/slog"

	"agency/config"
	"agency/internal/apicache"
	"agency/internal/infra/backend"

	"go.uber.org/fx"
)

// Cache tags.
const (
	TagBlogs    apicache.Tag = "blogs"
	TagClient   apicache.Tag = "client"
	TagTeam     apicache.Tag = "team"
	TagProducts apicache.Tag = "products"
	TagJourneys apicache.Tag = "journeys"
)

// AnonymousScope is the cache scope of reads made without a token.
const AnonymousScope = "anon"

// CredentialScope returns the cache scope of the token carried by ctx. Reads
// are cached per token so a response fetched with one session's credentials
// is never served to another.
func CredentialScope(ctx context.Context) string {
	token := backend.TokenFromContext(ctx)
	if token == "" {
		return AnonymousScope
	}
	sum := sha256.Sum256([]byte(token))

	return hex.EncodeToString(sum[:8])
}

// Transport performs backend calls and returns the unwrapped data member.
type Transport interface {
	Get(ctx context.Context, path string) (json.RawMessage, error)
	Post(ctx context.Context, path string, body any, upload *backend.Upload) (json.RawMessage, error)
	Put(ctx context.Context, path string, body any, upload *backend.Upload) (json.RawMessage, error)
	Delete(ctx context.Context, path string) (json.RawMessage, error)
}

// API groups every endpoint of the content API.
type API struct {
	Cache *apicache.Cache

	Auth    *AuthEndpoints
	Blogs   *Resource[Blog]
	Clients *Resource[Client]
	Team    *Resource[TeamMember]
	Work    *Resource[WorkItem]
	Journey *JourneyResource
}

// New builds the endpoints over one transport and one cache.
func New(cache *apicache.Cache, transport Transport) *API {
	return &API{
		Cache:   cache,
		Auth:    newAuthEndpoints(cache, transport),
		Blogs:   NewResource[Blog](cache, transport, "blog", "/blog", TagBlogs),
		Clients: NewResource[Client](cache, transport, "client", "/client", TagClient),
		Team:    NewResource[TeamMember](cache, transport, "team", "/team", TagTeam),
		Work:    NewResource[WorkItem](cache, transport, "work", "/work", TagProducts),
		Journey: newJourneyResource(cache, transport),
	}
}

// CacheParams defines the required parameters
type CacheParams struct {
	fx.In

	Config *config.Config
	Logger *slog.Logger
	Store  apicache.ResponseStore
}

// NewCache provides the process-wide cache.
func NewCache(params CacheParams) *apicache.Cache {
	return apicache.New(
		apicache.WithKeepUnusedDataFor(params.Config.Cache.KeepUnusedDataFor),
		apicache.WithResponseStore(params.Store),
		apicache.WithLogger(params.Logger.With(slog.String("component", "apicache"))),
	)
}

// Provide is the fx constructor of API.
func Provide(cache *apicache.Cache, client *backend.Client) *API {
	return New(cache, client)
}
