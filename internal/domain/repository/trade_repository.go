package repository

import (
	"context"

	"baddelli/internal/domain/entity"
)

type TradeFilter struct {
	OwnerID     string
	RequesterID string
	// Participant matches accepted requests whose participants include the id.
	Participant string
	Status      entity.TradeStatus
}

type TradeRepository interface {
	Create(ctx context.Context, trade *entity.TradeRequest) error
	GetByID(ctx context.Context, id string) (*entity.TradeRequest, error)
	List(ctx context.Context, filter TradeFilter) ([]*entity.TradeRequest, error)
	// MarkAccepted writes the acceptance fields and stamps acceptedAt with the
	// server time. It fails with InvalidTransition unless the stored request
	// is still pending.
	MarkAccepted(ctx context.Context, id, chatID string, participants []string) error
	// MarkRejected writes status=rejected and stamps rejectedAt, with the same
	// pending guard.
	MarkRejected(ctx context.Context, id string) error
	// HideForUser adds userID to hiddenFor as a set union.
	HideForUser(ctx context.Context, id, userID string) error
	// Watch invokes fn with the full matching set after every change.
	Watch(ctx context.Context, filter TradeFilter, fn func([]*entity.TradeRequest), onErr ErrorHandler) (Subscription, error)
}
