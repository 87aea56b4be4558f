package entity

import "time"

type TradeStatus string

const (
	TradeStatusPending  TradeStatus = "pending"
	TradeStatusAccepted TradeStatus = "accepted"
	TradeStatusRejected TradeStatus = "rejected"
)

func (s TradeStatus) Valid() bool {
	switch s {
	case TradeStatusPending, TradeStatusAccepted, TradeStatusRejected:
		return true
	}
	return false
}

func (s TradeStatus) Terminal() bool {
	return s == TradeStatusAccepted || s == TradeStatusRejected
}

type TradeRequest struct {
	ID            string       `json:"id" firestore:"-"`
	RequesterID   string       `json:"requester_id" firestore:"requesterId"`
	RequesterName string       `json:"requester_name" firestore:"requesterName"`
	OwnerID       string       `json:"owner_id" firestore:"ownerId"`
	OwnerName     string       `json:"owner_name" firestore:"ownerName"`
	RequestedItem ItemSnapshot `json:"requested_item" firestore:"requestedItem"`
	OfferedItem   ItemSnapshot `json:"offered_item" firestore:"offeredItem"`
	Status        TradeStatus  `json:"status" firestore:"status"`
	CreatedAt     time.Time    `json:"created_at" firestore:"createdAt,serverTimestamp"`
	AcceptedAt    *time.Time   `json:"accepted_at,omitempty" firestore:"acceptedAt,omitempty"`
	RejectedAt    *time.Time   `json:"rejected_at,omitempty" firestore:"rejectedAt,omitempty"`
	ChatID        string       `json:"chat_id,omitempty" firestore:"chatId,omitempty"`
	Participants  []string     `json:"participants,omitempty" firestore:"participants,omitempty"`
	HiddenFor     []string     `json:"hidden_for,omitempty" firestore:"hiddenFor,omitempty"`
}

func (t *TradeRequest) IsParticipant(userID string) bool {
	return userID != "" && (t.OwnerID == userID || t.RequesterID == userID)
}

func (t *TradeRequest) HiddenForUser(userID string) bool {
	for _, id := range t.HiddenFor {
		if id == userID {
			return true
		}
	}
	return false
}

// Counterpart returns the other participant's id and display name.
func (t *TradeRequest) Counterpart(userID string) (string, string) {
	if t.OwnerID == userID {
		return t.RequesterID, t.RequesterName
	}
	return t.OwnerID, t.OwnerName
}
