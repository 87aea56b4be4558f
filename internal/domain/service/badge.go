package service

import "baddelli/internal/domain/entity"

// PendingTradeCount counts pending requests the user has to answer.
func PendingTradeCount(trades []*entity.TradeRequest, userID string) int {
	n := 0
	for _, t := range trades {
		if t.OwnerID == userID && t.Status == entity.TradeStatusPending {
			n++
		}
	}
	return n
}

// VisibleChat reports whether the trade's chat shows up in the user's thread
// list: accepted, with a chat id, the user takes part and has not hidden it.
func VisibleChat(trade *entity.TradeRequest, userID string) bool {
	return trade.Status == entity.TradeStatusAccepted &&
		trade.ChatID != "" &&
		trade.IsParticipant(userID) &&
		!trade.HiddenForUser(userID)
}

// UnreadMessageCount sums the unread counts of the user's visible threads.
// Messages of hidden or unknown chats are not counted.
func UnreadMessageCount(trades []*entity.TradeRequest, messages []*entity.Message, userID string) int {
	visible := make(map[string]struct{}, len(trades))
	for _, t := range trades {
		if VisibleChat(t, userID) {
			visible[t.ChatID] = struct{}{}
		}
	}

	n := 0
	for _, m := range messages {
		if _, ok := visible[m.ChatID]; ok && m.UnreadFor(userID) {
			n++
		}
	}
	return n
}

func BadgeVisible(count int) bool {
	return count > 0
}
