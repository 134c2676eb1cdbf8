package repository

import (
	"context"

	"hiawto/internal/domain/entity"
)

type ListingRepository interface {
	Create(ctx context.Context, listing *entity.Listing) error
	GetByID(ctx context.Context, id string) (*entity.Listing, error)
	List(ctx context.Context, filter map[string]interface{}, sort string, limit, offset int) ([]*entity.Listing, int64, error)
	SearchByAddress(ctx context.Context, query string, limit, offset int) ([]*entity.Listing, int64, error)
	ListBySellerID(ctx context.Context, sellerID string, status string, limit, offset int) ([]*entity.Listing, int64, error)
	Update(ctx context.Context, listing *entity.Listing) error
	SetPhotos(ctx context.Context, id string, photos []string) error
	SetStatus(ctx context.Context, id, status string) error
	IncrementViews(ctx context.Context, id string) error
	SoftDelete(ctx context.Context, id string) error
	CountByStatus(ctx context.Context) (map[string]int64, error)
}
