package service

import (
	"sort"

	"baddelli/internal/domain/entity"
)

// SortMarket puts featured items first. Within each group the incoming order
// (newest first from the store) is kept.
func SortMarket(items []*entity.Item) {
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Featured && !items[j].Featured
	})
}

func CanModifyItem(item *entity.Item, userID string) bool {
	return userID != "" && item.UserID == userID
}
