package repository

import (
	"context"
	"time"

	"hiawto/internal/domain/entity"
)

type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	GetByID(ctx context.Context, id string) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	Update(ctx context.Context, user *entity.User) error
	Delete(ctx context.Context, id string) error
	ListByRole(ctx context.Context, role string, limit int) ([]*entity.User, error)
	CountCreatedSince(ctx context.Context, since time.Time) (int64, error)
}
