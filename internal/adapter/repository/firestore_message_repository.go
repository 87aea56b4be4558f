package repository

import (
	"context"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"

	"baddelli/internal/domain/entity"
	"baddelli/internal/domain/repository"
	"baddelli/pkg/errors"
	"baddelli/pkg/logger"
)

const messagesCollection = "messages"

type firestoreMessageRepository struct {
	client *firestore.Client
}

func NewFirestoreMessageRepository(client *firestore.Client) repository.MessageRepository {
	return &firestoreMessageRepository{
		client: client,
	}
}

func (r *firestoreMessageRepository) Create(ctx context.Context, message *entity.Message) error {
	if message.ID == "" {
		message.ID = uuid.New().String()
	}
	if message.ReadBy == nil {
		message.ReadBy = []string{}
	}

	_, err := r.client.Collection(messagesCollection).Doc(message.ID).Create(ctx, message)
	if err != nil {
		logger.Error("Failed to create message in chat %s: %v", message.ChatID, err)
		return errors.Persistence("Failed to send message", err)
	}

	return nil
}

func (r *firestoreMessageRepository) ListByChat(ctx context.Context, chatID string) ([]*entity.Message, error) {
	query := r.client.Collection(messagesCollection).
		Where("chatId", "==", chatID).
		OrderBy("timestamp", firestore.Asc)

	docs, err := query.Documents(ctx).GetAll()
	if err != nil {
		logger.Error("Failed to list messages for chat %s: %v", chatID, err)
		return nil, errors.Persistence("Failed to list messages", err)
	}

	return decodeMessages(docs), nil
}

func (r *firestoreMessageRepository) ListByParticipant(ctx context.Context, userID string) ([]*entity.Message, error) {
	docs, err := r.participantQuery(userID).Documents(ctx).GetAll()
	if err != nil {
		logger.Error("Failed to list messages for user %s: %v", userID, err)
		return nil, errors.Persistence("Failed to list messages", err)
	}

	return decodeMessages(docs), nil
}

func (r *firestoreMessageRepository) MarkRead(ctx context.Context, messageID, userID string) error {
	_, err := r.client.Collection(messagesCollection).Doc(messageID).Update(ctx, []firestore.Update{
		{Path: "readBy", Value: firestore.ArrayUnion(userID)},
	})
	if err != nil {
		if isNotFound(err) {
			return errors.NotFound("Message", err)
		}
		return errors.Persistence("Failed to mark message as read", err)
	}
	return nil
}

func (r *firestoreMessageRepository) Watch(ctx context.Context, userID string, fn func([]*entity.Message), onErr repository.ErrorHandler) (repository.Subscription, error) {
	sub := watchQuery(ctx, messagesCollection, r.participantQuery(userID), func(docs []*firestore.DocumentSnapshot) {
		fn(decodeMessages(docs))
	}, onErr)

	return sub, nil
}

func (r *firestoreMessageRepository) participantQuery(userID string) firestore.Query {
	return r.client.Collection(messagesCollection).Where("participants", "array-contains", userID)
}

func decodeMessages(docs []*firestore.DocumentSnapshot) []*entity.Message {
	messages := make([]*entity.Message, 0, len(docs))
	for _, doc := range docs {
		var message entity.Message
		if err := doc.DataTo(&message); err != nil {
			logger.Warn("Skipping message %s: %v", doc.Ref.ID, err)
			continue
		}
		message.ID = doc.Ref.ID
		messages = append(messages, &message)
	}
	return messages
}
