package domain

import (
	"context"

	catdom "comicvault/internal/services/catalog/domain"
)

// ServicePort is consumed by handlers and other modules
type ServicePort interface {
	List(ctx context.Context, t catdom.EntityType, page, perPage int) (Result, error)
	Search(ctx context.Context, t catdom.EntityType, query string, page, perPage int) (Result, error)
	TopRecentComics(ctx context.Context, limit int) ([]Item, error)

	ComicDetails(ctx context.Context, externalID int64) (ComicDetails, error)
	CharacterDetails(ctx context.Context, externalID int64) (CharacterDetails, error)
	CreatorDetails(ctx context.Context, externalID int64) (CreatorDetails, error)
	SerieDetails(ctx context.Context, externalID int64) (SerieDetails, error)
}
