package repository

import (
	"context"

	"baddelli/internal/domain/entity"
)

type ItemFilter struct {
	OwnerID  string
	Category string
	Region   string
}

type ItemRepository interface {
	Create(ctx context.Context, item *entity.Item) error
	GetByID(ctx context.Context, id string) (*entity.Item, error)
	// List returns items newest first.
	List(ctx context.Context, filter ItemFilter, limit, offset int) ([]*entity.Item, error)
	Update(ctx context.Context, item *entity.Item) error
	Delete(ctx context.Context, id string) error
}
