package usecase

import (
	"context"
	"time"

	"baddelli/internal/domain/entity"
	"baddelli/internal/domain/repository"
	"baddelli/internal/domain/service"
	"baddelli/pkg/errors"
	"baddelli/pkg/logger"
)

type TradeUseCase struct {
	tradeRepo repository.TradeRepository
	itemRepo  repository.ItemRepository
	limiter   RateLimiter
	now       func() time.Time
}

func NewTradeUseCase(tradeRepo repository.TradeRepository, itemRepo repository.ItemRepository, limiter RateLimiter) *TradeUseCase {
	return &TradeUseCase{
		tradeRepo: tradeRepo,
		itemRepo:  itemRepo,
		limiter:   limiter,
		now:       time.Now,
	}
}

type CreateTradeInput struct {
	RequesterID   string
	RequesterName string
	OwnerID       string
	OwnerName     string
	RequestedItem entity.ItemSnapshot
	OfferedItem   entity.ItemSnapshot
}

// CreateRequest persists a pending request. Item snapshots are stored as
// given and never refreshed.
func (uc *TradeUseCase) CreateRequest(ctx context.Context, input CreateTradeInput) (*entity.TradeRequest, error) {
	proposal := service.Proposal(input)
	if err := service.ValidateProposal(proposal); err != nil {
		return nil, err
	}

	if uc.limiter != nil && !uc.limiter.Allow(input.RequesterID, ActionProposeTrade) {
		return nil, errors.TooManyRequests("Too many trade requests, please wait a moment")
	}

	trade := service.NewTradeRequest(proposal)
	if err := uc.tradeRepo.Create(ctx, trade); err != nil {
		logger.Error("CreateRequest Error: requester=%s, owner=%s, err=%v", input.RequesterID, input.OwnerID, err)
		return nil, err
	}

	logger.Info("Trade request %s created: %s offers %s for %s", trade.ID, trade.RequesterID, trade.OfferedItem.ID, trade.RequestedItem.ID)
	return trade, nil
}

// Propose loads both items, snapshots them and creates the request.
func (uc *TradeUseCase) Propose(ctx context.Context, requesterID, requesterName, requestedItemID, offeredItemID string) (*entity.TradeRequest, error) {
	if requestedItemID == "" || offeredItemID == "" {
		return nil, errors.Validation("requested_item_id and offered_item_id are required", nil)
	}

	requested, err := uc.itemRepo.GetByID(ctx, requestedItemID)
	if err != nil {
		return nil, err
	}
	offered, err := uc.itemRepo.GetByID(ctx, offeredItemID)
	if err != nil {
		return nil, err
	}

	return uc.CreateRequest(ctx, CreateTradeInput{
		RequesterID:   requesterID,
		RequesterName: requesterName,
		OwnerID:       requested.UserID,
		OwnerName:     requested.UserName,
		RequestedItem: requested.Snapshot(),
		OfferedItem:   offered.Snapshot(),
	})
}

func (uc *TradeUseCase) Accept(ctx context.Context, requestID, actingUserID string) (*entity.TradeRequest, error) {
	trade, err := uc.tradeRepo.GetByID(ctx, requestID)
	if err != nil {
		return nil, err
	}

	if err := service.Transition(trade, entity.TradeStatusAccepted, actingUserID); err != nil {
		logger.LogTradeError(requestID, "accept", err)
		return nil, err
	}

	chatID, participants := service.AcceptanceFields(trade)
	if err := uc.tradeRepo.MarkAccepted(ctx, trade.ID, chatID, participants); err != nil {
		logger.Error("Accept Error: trade=%s, err=%v", trade.ID, err)
		return nil, err
	}

	acceptedAt := uc.now()
	trade.Status = entity.TradeStatusAccepted
	trade.ChatID = chatID
	trade.Participants = participants
	trade.AcceptedAt = &acceptedAt

	logger.Info("Trade request %s accepted, chat %s opened", trade.ID, chatID)
	return trade, nil
}

func (uc *TradeUseCase) Reject(ctx context.Context, requestID, actingUserID string) (*entity.TradeRequest, error) {
	trade, err := uc.tradeRepo.GetByID(ctx, requestID)
	if err != nil {
		return nil, err
	}

	if err := service.Transition(trade, entity.TradeStatusRejected, actingUserID); err != nil {
		logger.LogTradeError(requestID, "reject", err)
		return nil, err
	}

	if err := uc.tradeRepo.MarkRejected(ctx, trade.ID); err != nil {
		logger.Error("Reject Error: trade=%s, err=%v", trade.ID, err)
		return nil, err
	}

	rejectedAt := uc.now()
	trade.Status = entity.TradeStatusRejected
	trade.RejectedAt = &rejectedAt

	logger.Info("Trade request %s rejected", trade.ID)
	return trade, nil
}

// HideForUser removes the request (and its chat) from one participant's
// lists. The other participant is unaffected.
func (uc *TradeUseCase) HideForUser(ctx context.Context, requestID, userID string) error {
	trade, err := uc.tradeRepo.GetByID(ctx, requestID)
	if err != nil {
		return err
	}

	if !trade.IsParticipant(userID) {
		return errors.Forbidden("You are not part of this trade", nil)
	}
	if trade.HiddenForUser(userID) {
		return nil
	}

	return uc.tradeRepo.HideForUser(ctx, requestID, userID)
}

func (uc *TradeUseCase) ListIncoming(ctx context.Context, ownerID string, status entity.TradeStatus) ([]*entity.TradeRequest, error) {
	if status != "" && !status.Valid() {
		return nil, errors.Validation("status must be one of: pending accepted rejected", nil)
	}

	trades, err := uc.tradeRepo.List(ctx, repository.TradeFilter{OwnerID: ownerID, Status: status})
	if err != nil {
		return nil, err
	}
	return visibleSorted(trades, ownerID), nil
}

func (uc *TradeUseCase) ListOutgoing(ctx context.Context, requesterID string) ([]*entity.TradeRequest, error) {
	trades, err := uc.tradeRepo.List(ctx, repository.TradeFilter{RequesterID: requesterID})
	if err != nil {
		return nil, err
	}
	return visibleSorted(trades, requesterID), nil
}

// WatchIncoming pushes the owner's ordered incoming list after every change.
func (uc *TradeUseCase) WatchIncoming(ctx context.Context, ownerID string, fn func([]*entity.TradeRequest), onErr repository.ErrorHandler) (repository.Subscription, error) {
	return uc.tradeRepo.Watch(ctx, repository.TradeFilter{OwnerID: ownerID}, func(trades []*entity.TradeRequest) {
		fn(visibleSorted(trades, ownerID))
	}, onErr)
}

// ChatFor returns the chat id of an accepted request.
func (uc *TradeUseCase) ChatFor(ctx context.Context, requestID, userID string) (string, error) {
	trade, err := uc.tradeRepo.GetByID(ctx, requestID)
	if err != nil {
		return "", err
	}

	if !trade.IsParticipant(userID) {
		return "", errors.Forbidden("You are not part of this trade", nil)
	}
	if trade.Status != entity.TradeStatusAccepted || trade.ChatID == "" {
		return "", errors.InvalidTransition("Chat is only available after the trade is accepted")
	}

	return trade.ChatID, nil
}

func visibleSorted(trades []*entity.TradeRequest, userID string) []*entity.TradeRequest {
	out := make([]*entity.TradeRequest, 0, len(trades))
	for _, t := range trades {
		if !t.HiddenForUser(userID) {
			out = append(out, t)
		}
	}
	service.SortTradeRequests(out)
	return out
}
