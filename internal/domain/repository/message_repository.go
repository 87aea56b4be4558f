package repository

import (
	"context"

	"baddelli/internal/domain/entity"
)

type MessageRepository interface {
	Create(ctx context.Context, message *entity.Message) error
	ListByChat(ctx context.Context, chatID string) ([]*entity.Message, error)
	ListByParticipant(ctx context.Context, userID string) ([]*entity.Message, error)
	// MarkRead adds userID to the message's readBy as a set union. readBy
	// never shrinks.
	MarkRead(ctx context.Context, messageID, userID string) error
	// Watch invokes fn with every message the user participates in after each
	// change.
	Watch(ctx context.Context, userID string, fn func([]*entity.Message), onErr ErrorHandler) (Subscription, error)
}
