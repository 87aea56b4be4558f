package repository

import (
	"context"
	stderrors "errors"

	"cloud.google.com/go/firestore"

	"baddelli/internal/domain/entity"
	"baddelli/internal/domain/repository"
	"baddelli/pkg/errors"
	"baddelli/pkg/logger"
)

const tradesCollection = "trades"

type firestoreTradeRepository struct {
	client *firestore.Client
}

func NewFirestoreTradeRepository(client *firestore.Client) repository.TradeRepository {
	return &firestoreTradeRepository{
		client: client,
	}
}

func (r *firestoreTradeRepository) Create(ctx context.Context, trade *entity.TradeRequest) error {
	ref := r.client.Collection(tradesCollection).NewDoc()
	trade.ID = ref.ID

	wr, err := ref.Create(ctx, trade)
	if err != nil {
		logger.Error("Failed to create trade request %s: %v", trade.ID, err)
		return errors.Persistence("Failed to create trade request", err)
	}
	trade.CreatedAt = wr.UpdateTime

	return nil
}

func (r *firestoreTradeRepository) GetByID(ctx context.Context, id string) (*entity.TradeRequest, error) {
	doc, err := r.client.Collection(tradesCollection).Doc(id).Get(ctx)
	if err != nil {
		if isNotFound(err) {
			return nil, errors.NotFound("Trade request", err)
		}
		return nil, errors.Persistence("Failed to get trade request", err)
	}

	return decodeTrade(doc)
}

func (r *firestoreTradeRepository) List(ctx context.Context, filter repository.TradeFilter) ([]*entity.TradeRequest, error) {
	docs, err := r.query(filter).Documents(ctx).GetAll()
	if err != nil {
		logger.Error("Failed to list trade requests: %v", err)
		return nil, errors.Persistence("Failed to list trade requests", err)
	}

	return decodeTrades(docs), nil
}

func (r *firestoreTradeRepository) MarkAccepted(ctx context.Context, id, chatID string, participants []string) error {
	return r.resolve(ctx, id, []firestore.Update{
		{Path: "status", Value: string(entity.TradeStatusAccepted)},
		{Path: "acceptedAt", Value: firestore.ServerTimestamp},
		{Path: "chatId", Value: chatID},
		{Path: "participants", Value: participants},
	})
}

func (r *firestoreTradeRepository) MarkRejected(ctx context.Context, id string) error {
	return r.resolve(ctx, id, []firestore.Update{
		{Path: "status", Value: string(entity.TradeStatusRejected)},
		{Path: "rejectedAt", Value: firestore.ServerTimestamp},
	})
}

func (r *firestoreTradeRepository) HideForUser(ctx context.Context, id, userID string) error {
	return r.update(ctx, id, []firestore.Update{
		{Path: "hiddenFor", Value: firestore.ArrayUnion(userID)},
	})
}

func (r *firestoreTradeRepository) Watch(ctx context.Context, filter repository.TradeFilter, fn func([]*entity.TradeRequest), onErr repository.ErrorHandler) (repository.Subscription, error) {
	sub := watchQuery(ctx, tradesCollection, r.query(filter), func(docs []*firestore.DocumentSnapshot) {
		fn(decodeTrades(docs))
	}, onErr)

	return sub, nil
}

// resolve applies a status change only while the stored request is still
// pending, so two concurrent responses cannot both win.
func (r *firestoreTradeRepository) resolve(ctx context.Context, id string, updates []firestore.Update) error {
	ref := r.client.Collection(tradesCollection).Doc(id)
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		doc, err := tx.Get(ref)
		if err != nil {
			return err
		}
		trade, err := decodeTrade(doc)
		if err != nil {
			return err
		}
		if trade.Status != entity.TradeStatusPending {
			return errors.InvalidTransition("Trade request is already " + string(trade.Status))
		}
		return tx.Update(ref, updates)
	})
	if err == nil {
		return nil
	}

	var appErr *errors.AppError
	if stderrors.As(err, &appErr) {
		return appErr
	}
	if isNotFound(err) {
		return errors.NotFound("Trade request", err)
	}
	logger.Error("Failed to resolve trade request %s: %v", id, err)
	return errors.Persistence("Failed to update trade request", err)
}

func (r *firestoreTradeRepository) update(ctx context.Context, id string, updates []firestore.Update) error {
	_, err := r.client.Collection(tradesCollection).Doc(id).Update(ctx, updates)
	if err != nil {
		if isNotFound(err) {
			return errors.NotFound("Trade request", err)
		}
		logger.Error("Failed to update trade request %s: %v", id, err)
		return errors.Persistence("Failed to update trade request", err)
	}
	return nil
}

func (r *firestoreTradeRepository) query(filter repository.TradeFilter) firestore.Query {
	query := r.client.Collection(tradesCollection).Query
	if filter.OwnerID != "" {
		query = query.Where("ownerId", "==", filter.OwnerID)
	}
	if filter.RequesterID != "" {
		query = query.Where("requesterId", "==", filter.RequesterID)
	}
	if filter.Participant != "" {
		query = query.Where("participants", "array-contains", filter.Participant)
	}
	if filter.Status != "" {
		query = query.Where("status", "==", string(filter.Status))
	}
	return query
}

func decodeTrade(doc *firestore.DocumentSnapshot) (*entity.TradeRequest, error) {
	var trade entity.TradeRequest
	if err := doc.DataTo(&trade); err != nil {
		return nil, errors.Persistence("Failed to parse trade request data", err)
	}
	trade.ID = doc.Ref.ID
	return &trade, nil
}

// decodeTrades skips malformed documents instead of failing the whole set.
func decodeTrades(docs []*firestore.DocumentSnapshot) []*entity.TradeRequest {
	trades := make([]*entity.TradeRequest, 0, len(docs))
	for _, doc := range docs {
		trade, err := decodeTrade(doc)
		if err != nil {
			logger.Warn("Skipping trade request %s: %v", doc.Ref.ID, err)
			continue
		}
		trades = append(trades, trade)
	}
	return trades
}
