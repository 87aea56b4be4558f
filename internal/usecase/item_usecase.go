package usecase

import (
	"context"
	"encoding/base64"
	"io"
	"strings"

	"baddelli/internal/domain/entity"
	"baddelli/internal/domain/repository"
	"baddelli/internal/domain/service"
	"baddelli/pkg/errors"
	"baddelli/pkg/logger"
)

type ItemUseCase struct {
	itemRepo   repository.ItemRepository
	compressor ImageCompressor
	images     ImageStore
}

// NewItemUseCase wires the catalogue. images may be nil, in which case
// compressed pictures are embedded in the item as data URLs.
func NewItemUseCase(itemRepo repository.ItemRepository, compressor ImageCompressor, images ImageStore) *ItemUseCase {
	return &ItemUseCase{
		itemRepo:   itemRepo,
		compressor: compressor,
		images:     images,
	}
}

type CreateItemInput struct {
	OwnerID     string
	OwnerName   string
	Name        string
	Description string
	Category    string
	Region      string
	Address     string
	Featured    bool
	Location    *entity.GeoPoint
	Image       io.Reader
}

type UpdateItemInput struct {
	Name        *string
	Description *string
	Category    *string
	Region      *string
	Address     *string
	Featured    *bool
	Location    *entity.GeoPoint
	Image       io.Reader
}

type MarketQuery struct {
	Category string
	Region   string
	Origin   *entity.GeoPoint
	Limit    int
	Offset   int
}

// MarketItem is an item as listed to a viewer, with the distance from the
// viewer's position when both are known.
type MarketItem struct {
	*entity.Item
	DistanceKm *float64 `json:"distance_km,omitempty"`
}

func (uc *ItemUseCase) Create(ctx context.Context, input CreateItemInput) (*entity.Item, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, errors.Validation("name is required", nil)
	}
	if input.OwnerID == "" {
		return nil, errors.Unauthorized("Sign in to add items", nil)
	}

	item := &entity.Item{
		Name:        name,
		Description: strings.TrimSpace(input.Description),
		Category:    input.Category,
		Region:      input.Region,
		Address:     input.Address,
		Featured:    input.Featured,
		Location:    input.Location,
		UserID:      input.OwnerID,
		UserName:    input.OwnerName,
	}

	if input.Image != nil {
		url, err := uc.processImage(ctx, input.OwnerID, input.Image)
		if err != nil {
			return nil, err
		}
		item.Image = url
	}

	if err := uc.itemRepo.Create(ctx, item); err != nil {
		logger.Error("CreateItem Error: owner=%s, err=%v", input.OwnerID, err)
		return nil, err
	}

	return item, nil
}

// Market lists items newest first with featured items moved to the front.
func (uc *ItemUseCase) Market(ctx context.Context, query MarketQuery) ([]*MarketItem, error) {
	items, err := uc.itemRepo.List(ctx, repository.ItemFilter{
		Category: query.Category,
		Region:   query.Region,
	}, query.Limit, query.Offset)
	if err != nil {
		return nil, err
	}

	service.SortMarket(items)
	return withDistance(items, query.Origin), nil
}

func (uc *ItemUseCase) ListByOwner(ctx context.Context, ownerID string) ([]*entity.Item, error) {
	return uc.itemRepo.List(ctx, repository.ItemFilter{OwnerID: ownerID}, 0, 0)
}

func (uc *ItemUseCase) Get(ctx context.Context, id string, origin *entity.GeoPoint) (*MarketItem, error) {
	item, err := uc.itemRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return withDistance([]*entity.Item{item}, origin)[0], nil
}

// Update changes an item's live record. Trade requests that already embed a
// snapshot of it keep their copy, including the image URL, so uploaded images
// are never removed.
func (uc *ItemUseCase) Update(ctx context.Context, id, userID string, input UpdateItemInput) (*entity.Item, error) {
	item, err := uc.itemRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !service.CanModifyItem(item, userID) {
		return nil, errors.Forbidden("You can only edit your own items", nil)
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, errors.Validation("name cannot be empty", nil)
		}
		item.Name = name
	}
	if input.Description != nil {
		item.Description = strings.TrimSpace(*input.Description)
	}
	if input.Category != nil {
		item.Category = *input.Category
	}
	if input.Region != nil {
		item.Region = *input.Region
	}
	if input.Address != nil {
		item.Address = *input.Address
	}
	if input.Featured != nil {
		item.Featured = *input.Featured
	}
	if input.Location != nil {
		item.Location = input.Location
	}
	if input.Image != nil {
		url, err := uc.processImage(ctx, userID, input.Image)
		if err != nil {
			return nil, err
		}
		item.Image = url
	}

	if err := uc.itemRepo.Update(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

func (uc *ItemUseCase) Delete(ctx context.Context, id, userID string) error {
	item, err := uc.itemRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !service.CanModifyItem(item, userID) {
		return errors.Forbidden("You can only delete your own items", nil)
	}

	if err := uc.itemRepo.Delete(ctx, id); err != nil {
		return err
	}
	logger.Info("Item %s deleted by %s", id, userID)
	return nil
}

func (uc *ItemUseCase) processImage(ctx context.Context, ownerID string, r io.Reader) (string, error) {
	data, err := uc.compressor.Compress(r)
	if err != nil {
		return "", errors.Validation("Image could not be processed", err)
	}

	if uc.images == nil {
		return "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(data), nil
	}

	url, err := uc.images.Store(ctx, ownerID, data)
	if err != nil {
		logger.Error("Image upload failed for %s: %v", ownerID, err)
		return "", errors.Persistence("Failed to upload image", err)
	}
	return url, nil
}

func withDistance(items []*entity.Item, origin *entity.GeoPoint) []*MarketItem {
	out := make([]*MarketItem, 0, len(items))
	for _, item := range items {
		mi := &MarketItem{Item: item}
		if origin != nil && item.Location != nil {
			d := service.RoundedDistanceKm(*origin, *item.Location)
			mi.DistanceKm = &d
		}
		out = append(out, mi)
	}
	return out
}
