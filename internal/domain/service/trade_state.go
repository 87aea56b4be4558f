package service

import (
	"fmt"
	"sort"

	"baddelli/internal/domain/entity"
	"baddelli/pkg/errors"
)

var statusPriority = map[entity.TradeStatus]int{
	entity.TradeStatusPending:  1,
	entity.TradeStatusAccepted: 2,
	entity.TradeStatusRejected: 3,
}

// CanTransition reports whether a trade request may move from one status to
// another. Only pending requests move, and only to a terminal state.
func CanTransition(from, to entity.TradeStatus) bool {
	return from == entity.TradeStatusPending &&
		(to == entity.TradeStatusAccepted || to == entity.TradeStatusRejected)
}

// Transition runs every check required before a status change is sent
// to the store.
func Transition(trade *entity.TradeRequest, to entity.TradeStatus, actingUserID string) error {
	if !to.Valid() {
		return errors.Validation(fmt.Sprintf("unknown trade status %q", to), nil)
	}
	if actingUserID == "" || actingUserID != trade.OwnerID {
		return errors.Forbidden("Only the owner of the requested item can respond to this trade", nil)
	}
	if !CanTransition(trade.Status, to) {
		return errors.InvalidTransition(fmt.Sprintf("trade request is %s and cannot become %s", trade.Status, to))
	}
	return nil
}

// AcceptanceFields returns the chat id and participant list written when a
// request is accepted. An already assigned chat id is kept.
func AcceptanceFields(trade *entity.TradeRequest) (string, []string) {
	chatID := trade.ChatID
	if chatID == "" {
		chatID = trade.ID
	}
	return chatID, []string{trade.OwnerID, trade.RequesterID}
}

type Proposal struct {
	RequesterID   string
	RequesterName string
	OwnerID       string
	OwnerName     string
	RequestedItem entity.ItemSnapshot
	OfferedItem   entity.ItemSnapshot
}

func ValidateProposal(p Proposal) error {
	switch {
	case p.RequesterID == "" || p.OwnerID == "":
		return errors.Validation("requester and owner are required", nil)
	case p.RequesterID == p.OwnerID:
		return errors.Validation("You cannot propose a trade on your own item", nil)
	case p.RequestedItem.ID == "" || p.OfferedItem.ID == "":
		return errors.Validation("both items are required", nil)
	case p.RequestedItem.ID == p.OfferedItem.ID:
		return errors.Validation("an item cannot be traded for itself", nil)
	case p.OfferedItem.UserID != p.RequesterID:
		return errors.Validation("You can only offer your own item", nil)
	case p.RequestedItem.UserID != p.OwnerID:
		return errors.Validation("requested item does not belong to the owner", nil)
	}
	return nil
}

// NewTradeRequest builds the pending request persisted for a valid proposal.
func NewTradeRequest(p Proposal) *entity.TradeRequest {
	return &entity.TradeRequest{
		RequesterID:   p.RequesterID,
		RequesterName: p.RequesterName,
		OwnerID:       p.OwnerID,
		OwnerName:     p.OwnerName,
		RequestedItem: p.RequestedItem,
		OfferedItem:   p.OfferedItem,
		Status:        entity.TradeStatusPending,
	}
}

// SortTradeRequests orders requests pending, accepted, rejected and newest
// first within each status.
func SortTradeRequests(trades []*entity.TradeRequest) {
	sort.SliceStable(trades, func(i, j int) bool {
		pi, pj := priority(trades[i].Status), priority(trades[j].Status)
		if pi != pj {
			return pi < pj
		}
		return trades[i].CreatedAt.After(trades[j].CreatedAt)
	})
}

func priority(s entity.TradeStatus) int {
	if p, ok := statusPriority[s]; ok {
		return p
	}
	return 4
}

func FilterByStatus(trades []*entity.TradeRequest, status entity.TradeStatus) []*entity.TradeRequest {
	if status == "" {
		return trades
	}
	out := make([]*entity.TradeRequest, 0, len(trades))
	for _, t := range trades {
		if t.Status == status {
			out = append(out, t)
		}
	}
	return out
}
