package entity

import "time"

// ChatThread is derived from an accepted trade request and its messages. It
// is never persisted.
type ChatThread struct {
	ChatID          string        `json:"chat_id"`
	TradeID         string        `json:"trade_id,omitempty"`
	Participants    []string      `json:"participants"`
	CounterpartID   string        `json:"counterpart_id,omitempty"`
	CounterpartName string        `json:"counterpart_name,omitempty"`
	RequestedItem   *ItemSnapshot `json:"requested_item,omitempty"`
	OfferedItem     *ItemSnapshot `json:"offered_item,omitempty"`
	Messages        []*Message    `json:"messages"`
	LastMessage     *Message      `json:"last_message,omitempty"`
	UnreadCount     int           `json:"unread_count"`
	OpenedAt        time.Time     `json:"opened_at,omitempty"`
}

// LastActivity is the timestamp used for recency ordering.
func (t *ChatThread) LastActivity() time.Time {
	if t.LastMessage != nil {
		return t.LastMessage.Timestamp
	}
	return t.OpenedAt
}

// DaySection groups consecutive messages sent on the same calendar day.
type DaySection struct {
	Label    string     `json:"label"`
	Date     time.Time  `json:"date"`
	Messages []*Message `json:"messages"`
}

type Badges struct {
	PendingTrades  int `json:"pending_trades"`
	UnreadMessages int `json:"unread_messages"`
}
