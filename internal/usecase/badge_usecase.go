package usecase

import (
	"context"
	"sync"

	"baddelli/internal/domain/entity"
	"baddelli/internal/domain/repository"
	"baddelli/internal/domain/service"
)

type BadgeUseCase struct {
	tradeRepo   repository.TradeRepository
	messageRepo repository.MessageRepository
}

func NewBadgeUseCase(tradeRepo repository.TradeRepository, messageRepo repository.MessageRepository) *BadgeUseCase {
	return &BadgeUseCase{
		tradeRepo:   tradeRepo,
		messageRepo: messageRepo,
	}
}

func (uc *BadgeUseCase) Counts(ctx context.Context, userID string) (entity.Badges, error) {
	pending, err := uc.tradeRepo.List(ctx, pendingFor(userID))
	if err != nil {
		return entity.Badges{}, err
	}

	chats, err := uc.tradeRepo.List(ctx, chatsOf(userID))
	if err != nil {
		return entity.Badges{}, err
	}

	messages, err := uc.messageRepo.ListByParticipant(ctx, userID)
	if err != nil {
		return entity.Badges{}, err
	}

	return entity.Badges{
		PendingTrades:  service.PendingTradeCount(pending, userID),
		UnreadMessages: service.UnreadMessageCount(chats, messages, userID),
	}, nil
}

// badgeState is the latest result set of each listener behind Watch.
type badgeState struct {
	pending  int
	chats    []*entity.TradeRequest
	messages []*entity.Message
}

func (s *badgeState) badges(userID string) entity.Badges {
	return entity.Badges{
		PendingTrades:  s.pending,
		UnreadMessages: service.UnreadMessageCount(s.chats, s.messages, userID),
	}
}

// Watch recomputes both counts from the full live result sets and calls
// onChange after every change. The unread count follows the same accepted,
// non-hidden chats as the thread list. Unsubscribe releases every listener.
func (uc *BadgeUseCase) Watch(ctx context.Context, userID string, onChange func(entity.Badges), onErr repository.ErrorHandler) (repository.Subscription, error) {
	var (
		mu    sync.Mutex
		state badgeState
	)
	// Held across onChange so updates from the listeners arrive in order.
	emit := func(update func(*badgeState)) {
		mu.Lock()
		defer mu.Unlock()
		update(&state)
		onChange(state.badges(userID))
	}

	var subs []repository.Subscription
	release := func() {
		for _, sub := range subs {
			sub.Unsubscribe()
		}
	}

	pendingSub, err := uc.tradeRepo.Watch(ctx, pendingFor(userID), func(trades []*entity.TradeRequest) {
		count := service.PendingTradeCount(trades, userID)
		emit(func(s *badgeState) { s.pending = count })
	}, onErr)
	if err != nil {
		return nil, err
	}
	subs = append(subs, pendingSub)

	chatSub, err := uc.tradeRepo.Watch(ctx, chatsOf(userID), func(trades []*entity.TradeRequest) {
		emit(func(s *badgeState) { s.chats = trades })
	}, onErr)
	if err != nil {
		release()
		return nil, err
	}
	subs = append(subs, chatSub)

	messageSub, err := uc.messageRepo.Watch(ctx, userID, func(messages []*entity.Message) {
		emit(func(s *badgeState) { s.messages = messages })
	}, onErr)
	if err != nil {
		release()
		return nil, err
	}
	subs = append(subs, messageSub)

	return repository.SubscriptionFunc(release), nil
}

func pendingFor(userID string) repository.TradeFilter {
	return repository.TradeFilter{OwnerID: userID, Status: entity.TradeStatusPending}
}

func chatsOf(userID string) repository.TradeFilter {
	return repository.TradeFilter{Participant: userID, Status: entity.TradeStatusAccepted}
}
