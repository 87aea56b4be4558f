package memstore

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"baddelli/internal/domain/entity"
	"baddelli/internal/domain/repository"
	"baddelli/pkg/errors"
)

type ItemRepository struct {
	mu    sync.Mutex
	clock *Clock
	items map[string]*entity.Item
	seq   int
}

func NewItemRepository(clock *Clock) *ItemRepository {
	return &ItemRepository{
		clock: clock,
		items: make(map[string]*entity.Item),
	}
}

func (r *ItemRepository) Create(ctx context.Context, item *entity.Item) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	item.ID = fmt.Sprintf("item-%d", r.seq)
	item.CreatedAt = r.clock.Now()
	r.items[item.ID] = cloneItem(item)
	return nil
}

func (r *ItemRepository) GetByID(ctx context.Context, id string) (*entity.Item, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	item, ok := r.items[id]
	if !ok {
		return nil, errors.NotFound("Item", nil)
	}
	return cloneItem(item), nil
}

func (r *ItemRepository) List(ctx context.Context, filter repository.ItemFilter, limit, offset int) ([]*entity.Item, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]*entity.Item, 0)
	for _, item := range r.items {
		if filter.OwnerID != "" && item.UserID != filter.OwnerID {
			continue
		}
		if filter.Category != "" && item.Category != filter.Category {
			continue
		}
		if filter.Region != "" && item.Region != filter.Region {
			continue
		}
		out = append(out, cloneItem(item))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })

	if offset > len(out) {
		offset = len(out)
	}
	out = out[offset:]
	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

func (r *ItemRepository) Update(ctx context.Context, item *entity.Item) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[item.ID]; !ok {
		return errors.NotFound("Item", nil)
	}
	r.items[item.ID] = cloneItem(item)
	return nil
}

func (r *ItemRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.items, id)
	return nil
}
