package repository

import (
	"context"

	"hiawto/internal/domain/entity"
)

type FraudReviewRepository interface {
	Create(ctx context.Context, review *entity.FraudReview) error
	GetByID(ctx context.Context, id string) (*entity.FraudReview, error)
	ListByStatus(ctx context.Context, status string, limit, offset int) ([]*entity.FraudReview, int64, error)
	Update(ctx context.Context, review *entity.FraudReview) error
	CountByStatus(ctx context.Context, status string) (int64, error)
}
