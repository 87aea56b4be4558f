package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"baddelli/internal/domain/entity"
)

func TestPendingTradeCount(t *testing.T) {
	trades := []*entity.TradeRequest{
		{OwnerID: "A", Status: entity.TradeStatusPending},
		{OwnerID: "A", Status: entity.TradeStatusPending},
		{OwnerID: "A", Status: entity.TradeStatusAccepted},
		{OwnerID: "B", Status: entity.TradeStatusPending},
		{OwnerID: "B", RequesterID: "A", Status: entity.TradeStatusPending},
	}

	assert.Equal(t, 2, PendingTradeCount(trades, "A"))
	assert.Equal(t, 2, PendingTradeCount(trades, "B"))
	assert.Equal(t, 0, PendingTradeCount(nil, "A"))
}

func TestUnreadMessageCount(t *testing.T) {
	now := time.Now()
	trades := []*entity.TradeRequest{
		{ID: "c1", ChatID: "c1", OwnerID: "A", RequesterID: "B", Status: entity.TradeStatusAccepted},
		{ID: "c2", ChatID: "c2", OwnerID: "B", RequesterID: "C", Status: entity.TradeStatusAccepted},
	}
	messages := []*entity.Message{
		{ID: "1", ChatID: "c1", SenderID: "B", Participants: []string{"A", "B"}, Timestamp: now},
		{ID: "2", ChatID: "c1", SenderID: "B", Participants: []string{"A", "B"}, ReadBy: []string{"A"}, Timestamp: now},
		{ID: "3", ChatID: "c1", SenderID: "A", Participants: []string{"A", "B"}, Timestamp: now},
		{ID: "4", ChatID: "c2", SenderID: "C", Participants: []string{"B", "C"}, Timestamp: now},
		{ID: "5", ChatID: "gone", SenderID: "C", Participants: []string{"B", "C"}, Timestamp: now},
	}

	assert.Equal(t, 1, UnreadMessageCount(trades, messages, "A"))
	assert.Equal(t, 2, UnreadMessageCount(trades, messages, "B"))
	assert.Equal(t, 0, UnreadMessageCount(nil, messages, "B"))
}

func TestUnreadMessageCount_SkipsHiddenChats(t *testing.T) {
	now := time.Now()
	trades := []*entity.TradeRequest{
		{ID: "c1", ChatID: "c1", OwnerID: "A", RequesterID: "B", Status: entity.TradeStatusAccepted, HiddenFor: []string{"A"}},
	}
	messages := []*entity.Message{
		{ID: "1", ChatID: "c1", SenderID: "B", Participants: []string{"A", "B"}, Timestamp: now},
		{ID: "2", ChatID: "c1", SenderID: "A", Participants: []string{"A", "B"}, Timestamp: now},
	}

	assert.Equal(t, 0, UnreadMessageCount(trades, messages, "A"))
	assert.Equal(t, 1, UnreadMessageCount(trades, messages, "B"))
}

func TestVisibleChat(t *testing.T) {
	accepted := &entity.TradeRequest{ChatID: "c1", OwnerID: "A", RequesterID: "B", Status: entity.TradeStatusAccepted}
	pending := &entity.TradeRequest{OwnerID: "A", RequesterID: "B", Status: entity.TradeStatusPending}
	hidden := &entity.TradeRequest{ChatID: "c2", OwnerID: "A", RequesterID: "B", Status: entity.TradeStatusAccepted, HiddenFor: []string{"B"}}

	assert.True(t, VisibleChat(accepted, "A"))
	assert.False(t, VisibleChat(accepted, "C"))
	assert.False(t, VisibleChat(pending, "A"))
	assert.True(t, VisibleChat(hidden, "A"))
	assert.False(t, VisibleChat(hidden, "B"))
}

func TestBadgeVisible(t *testing.T) {
	assert.False(t, BadgeVisible(0))
	assert.True(t, BadgeVisible(1))
}
