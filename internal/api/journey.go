package api

import (
	"context"
	"encoding/json"

	"agency/internal/apicache"
	"agency/internal/domain/entity"
	domainerrors "agency/internal/domain/errors"
)

// JourneyResource is the journey collection plus its per-kind listings.
type JourneyResource struct {
	*Resource[JourneyEntry]

	byKind apicache.Query[entity.JourneyKind, []JourneyEntry]
}

func newJourneyResource(cache *apicache.Cache, transport Transport) *JourneyResource {
	return &JourneyResource{
		Resource: NewResource[JourneyEntry](cache, transport, "journey", "/journey", TagJourneys),
		byKind: apicache.Query[entity.JourneyKind, []JourneyEntry]{
			Name:     "journey.getByKind",
			Provides: []apicache.Tag{TagJourneys},
			Scope:    CredentialScope,
			ArgKey:   func(kind entity.JourneyKind) string { return string(kind) },
			Fetch: func(ctx context.Context, kind entity.JourneyKind) (json.RawMessage, error) {
				return transport.Get(ctx, "/journey/"+string(kind))
			},
		},
	}
}

// GetByKind lists the entries of one kind.
func (r *JourneyResource) GetByKind(ctx context.Context, kind entity.JourneyKind) ([]JourneyEntry, error) {
	if !kind.IsValid() {
		return nil, domainerrors.ErrInvalidJourneyKind.WithDetails(string(kind))
	}

	return r.byKind.Get(ctx, r.cache, kind)
}
