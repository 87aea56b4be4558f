package handler

import (
	"io"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"baddelli/internal/domain/entity"
	"baddelli/internal/usecase"
	"baddelli/pkg/errors"
	"baddelli/pkg/response"
	"baddelli/pkg/utils"
)

const maxImageUploadBytes = 10 << 20

type ItemHandler struct {
	itemUseCase *usecase.ItemUseCase
	names       usecase.NameResolver
}

func NewItemHandler(itemUseCase *usecase.ItemUseCase, names usecase.NameResolver) *ItemHandler {
	return &ItemHandler{
		itemUseCase: itemUseCase,
		names:       names,
	}
}

type updateItemRequest struct {
	Name        *string  `json:"name" validate:"omitempty,max=100"`
	Description *string  `json:"desc" validate:"omitempty,max=2000"`
	Category    *string  `json:"category"`
	Region      *string  `json:"region"`
	Address     *string  `json:"address"`
	Featured    *bool    `json:"featured"`
	Lat         *float64 `json:"lat" validate:"omitempty,latitude"`
	Lng         *float64 `json:"lng" validate:"omitempty,longitude"`
}

// Market lists every item, featured first.
func (h *ItemHandler) Market(c echo.Context) error {
	pagination := utils.GetPaginationParams(c)

	items, err := h.itemUseCase.Market(c.Request().Context(), usecase.MarketQuery{
		Category: c.QueryParam("category"),
		Region:   c.QueryParam("region"),
		Origin:   originParam(c),
		Limit:    pagination.PageSize,
		Offset:   pagination.Offset,
	})
	if err != nil {
		return response.Error(c, err)
	}

	return response.List(c, items, len(items))
}

func (h *ItemHandler) GetItem(c echo.Context) error {
	item, err := h.itemUseCase.Get(c.Request().Context(), c.Param("id"), originParam(c))
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, item)
}

func (h *ItemHandler) ListMine(c echo.Context) error {
	items, err := h.itemUseCase.ListByOwner(c.Request().Context(), currentUserID(c))
	if err != nil {
		return response.Error(c, err)
	}
	return response.List(c, items, len(items))
}

// CreateItem accepts multipart/form-data with an optional "image" file.
func (h *ItemHandler) CreateItem(c echo.Context) error {
	userID := currentUserID(c)

	input := usecase.CreateItemInput{
		OwnerID:     userID,
		OwnerName:   h.names.DisplayName(c.Request().Context(), userID),
		Name:        c.FormValue("name"),
		Description: c.FormValue("desc"),
		Category:    c.FormValue("category"),
		Region:      c.FormValue("region"),
		Address:     c.FormValue("address"),
		Featured:    formBool(c.FormValue("featured")),
	}

	location, err := formLocation(c.FormValue("lat"), c.FormValue("lng"))
	if err != nil {
		return response.Error(c, err)
	}
	input.Location = location

	file, err := c.FormFile("image")
	if err == nil {
		if file.Size > maxImageUploadBytes {
			return response.Error(c, errors.Validation("image must be at most 10MB", nil))
		}
		src, err := file.Open()
		if err != nil {
			return response.Error(c, errors.Validation("Failed to read image", err))
		}
		defer src.Close()
		input.Image = io.LimitReader(src, maxImageUploadBytes)
	}

	item, err := h.itemUseCase.Create(c.Request().Context(), input)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Created(c, item)
}

func (h *ItemHandler) UpdateItem(c echo.Context) error {
	var req updateItemRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	input := usecase.UpdateItemInput{
		Name:        req.Name,
		Description: req.Description,
		Category:    req.Category,
		Region:      req.Region,
		Address:     req.Address,
		Featured:    req.Featured,
	}
	if req.Lat != nil && req.Lng != nil {
		input.Location = &entity.GeoPoint{Lat: *req.Lat, Lng: *req.Lng}
	}

	item, err := h.itemUseCase.Update(c.Request().Context(), c.Param("id"), currentUserID(c), input)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, item)
}

func (h *ItemHandler) DeleteItem(c echo.Context) error {
	if err := h.itemUseCase.Delete(c.Request().Context(), c.Param("id"), currentUserID(c)); err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, map[string]string{
		"message": "Item deleted",
	})
}

func originParam(c echo.Context) *entity.GeoPoint {
	lat, okLat := utils.GetFloatParam(c, "lat")
	lng, okLng := utils.GetFloatParam(c, "lng")
	if !okLat || !okLng {
		return nil
	}
	return &entity.GeoPoint{Lat: lat, Lng: lng}
}

func formBool(v string) bool {
	b, _ := strconv.ParseBool(strings.TrimSpace(v))
	return b
}

func formLocation(rawLat, rawLng string) (*entity.GeoPoint, error) {
	if rawLat == "" && rawLng == "" {
		return nil, nil
	}
	lat, errLat := strconv.ParseFloat(rawLat, 64)
	lng, errLng := strconv.ParseFloat(rawLng, 64)
	if errLat != nil || errLng != nil || lat < -90 || lat > 90 || lng < -180 || lng > 180 {
		return nil, errors.Validation("lat and lng must be a valid coordinate", nil)
	}
	return &entity.GeoPoint{Lat: lat, Lng: lng}, nil
}
