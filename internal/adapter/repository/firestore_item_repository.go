package repository

import (
	"context"

	"cloud.google.com/go/firestore"

	"baddelli/internal/domain/entity"
	"baddelli/internal/domain/repository"
	"baddelli/pkg/errors"
	"baddelli/pkg/logger"
)

const itemsCollection = "items"

type firestoreItemRepository struct {
	client *firestore.Client
}

func NewFirestoreItemRepository(client *firestore.Client) repository.ItemRepository {
	return &firestoreItemRepository{
		client: client,
	}
}

func (r *firestoreItemRepository) Create(ctx context.Context, item *entity.Item) error {
	ref := r.client.Collection(itemsCollection).NewDoc()
	item.ID = ref.ID

	wr, err := ref.Create(ctx, item)
	if err != nil {
		logger.Error("Failed to create item for user %s: %v", item.UserID, err)
		return errors.Persistence("Failed to create item", err)
	}
	item.CreatedAt = wr.UpdateTime

	return nil
}

func (r *firestoreItemRepository) GetByID(ctx context.Context, id string) (*entity.Item, error) {
	doc, err := r.client.Collection(itemsCollection).Doc(id).Get(ctx)
	if err != nil {
		if isNotFound(err) {
			return nil, errors.NotFound("Item", err)
		}
		return nil, errors.Persistence("Failed to get item", err)
	}

	var item entity.Item
	if err := doc.DataTo(&item); err != nil {
		return nil, errors.Persistence("Failed to parse item data", err)
	}
	item.ID = doc.Ref.ID

	return &item, nil
}

func (r *firestoreItemRepository) List(ctx context.Context, filter repository.ItemFilter, limit, offset int) ([]*entity.Item, error) {
	query := r.client.Collection(itemsCollection).Query
	if filter.OwnerID != "" {
		query = query.Where("userId", "==", filter.OwnerID)
	}
	if filter.Category != "" {
		query = query.Where("category", "==", filter.Category)
	}
	if filter.Region != "" {
		query = query.Where("region", "==", filter.Region)
	}
	query = query.OrderBy("createdAt", firestore.Desc)

	if offset > 0 {
		query = query.Offset(offset)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}

	docs, err := query.Documents(ctx).GetAll()
	if err != nil {
		logger.Error("Failed to list items: %v", err)
		return nil, errors.Persistence("Failed to list items", err)
	}

	items := make([]*entity.Item, 0, len(docs))
	for _, doc := range docs {
		var item entity.Item
		if err := doc.DataTo(&item); err != nil {
			logger.Warn("Skipping item %s: %v", doc.Ref.ID, err)
			continue
		}
		item.ID = doc.Ref.ID
		items = append(items, &item)
	}

	return items, nil
}

// Update writes the owner-editable fields only. userId and createdAt are
// never rewritten.
func (r *firestoreItemRepository) Update(ctx context.Context, item *entity.Item) error {
	updates := []firestore.Update{
		{Path: "name", Value: item.Name},
		{Path: "desc", Value: item.Description},
		{Path: "category", Value: item.Category},
		{Path: "region", Value: item.Region},
		{Path: "address", Value: item.Address},
		{Path: "featured", Value: item.Featured},
		{Path: "image", Value: item.Image},
	}
	if item.Location != nil {
		updates = append(updates, firestore.Update{Path: "location", Value: item.Location})
	}

	_, err := r.client.Collection(itemsCollection).Doc(item.ID).Update(ctx, updates)
	if err != nil {
		if isNotFound(err) {
			return errors.NotFound("Item", err)
		}
		return errors.Persistence("Failed to update item", err)
	}
	return nil
}

func (r *firestoreItemRepository) Delete(ctx context.Context, id string) error {
	_, err := r.client.Collection(itemsCollection).Doc(id).Delete(ctx)
	if err != nil {
		return errors.Persistence("Failed to delete item", err)
	}
	return nil
}
