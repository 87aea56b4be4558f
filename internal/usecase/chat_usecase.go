package usecase

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"baddelli/internal/domain/entity"
	"baddelli/internal/domain/repository"
	"baddelli/internal/domain/service"
	"baddelli/pkg/errors"
	"baddelli/pkg/logger"
)

const maxMessageLength = 2000

type ChatUseCase struct {
	tradeRepo           repository.TradeRepository
	messageRepo         repository.MessageRepository
	names               NameResolver
	limiter             RateLimiter
	markReadConcurrency int
	now                 func() time.Time
}

func NewChatUseCase(
	tradeRepo repository.TradeRepository,
	messageRepo repository.MessageRepository,
	names NameResolver,
	limiter RateLimiter,
	markReadConcurrency int,
) *ChatUseCase {
	if markReadConcurrency <= 0 {
		markReadConcurrency = 1
	}
	return &ChatUseCase{
		tradeRepo:           tradeRepo,
		messageRepo:         messageRepo,
		names:               names,
		limiter:             limiter,
		markReadConcurrency: markReadConcurrency,
		now:                 time.Now,
	}
}

type ThreadView struct {
	Thread   *entity.ChatThread  `json:"thread"`
	Sections []entity.DaySection `json:"sections"`
}

func (uc *ChatUseCase) Threads(ctx context.Context, viewerID string) ([]*entity.ChatThread, error) {
	trades, err := uc.tradeRepo.List(ctx, repository.TradeFilter{
		Participant: viewerID,
		Status:      entity.TradeStatusAccepted,
	})
	if err != nil {
		return nil, err
	}

	messages, err := uc.messageRepo.ListByParticipant(ctx, viewerID)
	if err != nil {
		return nil, err
	}

	return uc.BuildThreads(ctx, viewerID, trades, messages, uc.names), nil
}

// BuildThreads joins accepted trades with the viewer's messages. Every
// accepted, non-hidden trade yields a thread even without messages. Messages
// whose trade is not in the set are left out until the trade shows up.
func (uc *ChatUseCase) BuildThreads(ctx context.Context, viewerID string, trades []*entity.TradeRequest, messages []*entity.Message, names NameResolver) []*entity.ChatThread {
	projected := make(map[string]*entity.ChatThread)
	for _, t := range service.ProjectThreads(messages, viewerID) {
		projected[t.ChatID] = t
	}

	threads := make([]*entity.ChatThread, 0, len(trades))
	for _, trade := range trades {
		if !service.VisibleChat(trade, viewerID) {
			continue
		}

		thread := uc.threadFromTrade(ctx, trade, viewerID, names)
		if p, ok := projected[trade.ChatID]; ok {
			service.ApplyMessages(thread, p.Messages, viewerID)
		}
		threads = append(threads, thread)
	}

	service.SortThreadsByRecency(threads)
	return threads
}

func (uc *ChatUseCase) Thread(ctx context.Context, chatID, viewerID string) (*ThreadView, error) {
	trade, err := uc.chatTrade(ctx, chatID, viewerID)
	if err != nil {
		return nil, err
	}
	if trade.HiddenForUser(viewerID) {
		return nil, errors.NotFound("Chat", nil)
	}

	messages, err := uc.messageRepo.ListByChat(ctx, chatID)
	if err != nil {
		return nil, err
	}

	thread := uc.threadFromTrade(ctx, trade, viewerID, uc.names)
	sorted := service.SortMessages(messages)
	service.ApplyMessages(thread, sorted, viewerID)

	return &ThreadView{
		Thread:   thread,
		Sections: service.PartitionByDay(sorted, uc.now()),
	}, nil
}

func (uc *ChatUseCase) SendMessage(ctx context.Context, chatID, senderID, text string) (*entity.Message, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, errors.Validation("Message text cannot be empty", nil)
	}
	if len([]rune(text)) > maxMessageLength {
		return nil, errors.Validation("Message is too long", nil)
	}

	trade, err := uc.chatTrade(ctx, chatID, senderID)
	if err != nil {
		return nil, err
	}

	if uc.limiter != nil && !uc.limiter.Allow(senderID, ActionSendMessage) {
		return nil, errors.TooManyRequests("You are sending messages too quickly")
	}

	participants := trade.Participants
	if len(participants) == 0 {
		participants = []string{trade.OwnerID, trade.RequesterID}
	}

	message := &entity.Message{
		ChatID:       chatID,
		SenderID:     senderID,
		Text:         text,
		Timestamp:    uc.now(),
		Participants: append([]string(nil), participants...),
		ReadBy:       []string{},
	}
	if err := uc.messageRepo.Create(ctx, message); err != nil {
		logger.Error("SendMessage Error: chat=%s, sender=%s, err=%v", chatID, senderID, err)
		return nil, err
	}

	return message, nil
}

// MarkThreadRead adds the viewer to readBy of every message in the chat that
// is still unread for them. It returns how many messages were marked. On
// partial failure the rest are still attempted and a later call only touches
// what is left.
func (uc *ChatUseCase) MarkThreadRead(ctx context.Context, chatID, viewerID string) (int, error) {
	if _, err := uc.chatTrade(ctx, chatID, viewerID); err != nil {
		return 0, err
	}

	messages, err := uc.messageRepo.ListByChat(ctx, chatID)
	if err != nil {
		return 0, err
	}

	unread := service.UnreadMessages(messages, viewerID)
	if len(unread) == 0 {
		return 0, nil
	}

	var (
		g      errgroup.Group
		marked atomic.Int64
		failed atomic.Int64
	)
	g.SetLimit(uc.markReadConcurrency)

	for _, m := range unread {
		messageID := m.ID
		g.Go(func() error {
			if err := uc.messageRepo.MarkRead(ctx, messageID, viewerID); err != nil {
				failed.Add(1)
				logger.Warn("MarkThreadRead: message %s in chat %s: %v", messageID, chatID, err)
				return err
			}
			marked.Add(1)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return int(marked.Load()), errors.Persistence("Some messages could not be marked as read", err)
	}

	return int(marked.Load()), nil
}

// chatTrade resolves the accepted trade behind a chat and checks the user
// takes part in it.
func (uc *ChatUseCase) chatTrade(ctx context.Context, chatID, userID string) (*entity.TradeRequest, error) {
	if chatID == "" {
		return nil, errors.Validation("chat id is required", nil)
	}

	trade, err := uc.tradeRepo.GetByID(ctx, chatID)
	if err != nil {
		if errors.Is(err, errors.CodeNotFound) {
			return nil, errors.NotFound("Chat", err)
		}
		return nil, err
	}

	if !trade.IsParticipant(userID) {
		return nil, errors.Forbidden("You are not part of this chat", nil)
	}
	if trade.Status != entity.TradeStatusAccepted || trade.ChatID != chatID {
		return nil, errors.InvalidTransition("Chat is only available after the trade is accepted")
	}

	return trade, nil
}

func (uc *ChatUseCase) threadFromTrade(ctx context.Context, trade *entity.TradeRequest, viewerID string, names NameResolver) *entity.ChatThread {
	counterpartID, counterpartName := trade.Counterpart(viewerID)
	if counterpartName == "" && names != nil {
		counterpartName = names.DisplayName(ctx, counterpartID)
	}

	participants := trade.Participants
	if len(participants) == 0 {
		participants = []string{trade.OwnerID, trade.RequesterID}
	}

	requested := trade.RequestedItem
	offered := trade.OfferedItem
	thread := &entity.ChatThread{
		ChatID:          trade.ChatID,
		TradeID:         trade.ID,
		Participants:    append([]string(nil), participants...),
		CounterpartID:   counterpartID,
		CounterpartName: counterpartName,
		RequestedItem:   &requested,
		OfferedItem:     &offered,
		Messages:        []*entity.Message{},
	}
	if trade.AcceptedAt != nil {
		thread.OpenedAt = *trade.AcceptedAt
	} else {
		thread.OpenedAt = trade.CreatedAt
	}
	return thread
}

// WatchThreads keeps the viewer's thread list live. onThreads gets the full
// projection after every change to either the accepted trades or the
// messages; onMessages, when set, gets the raw message set first.
func (uc *ChatUseCase) WatchThreads(
	ctx context.Context,
	viewerID string,
	names NameResolver,
	onThreads func([]*entity.ChatThread),
	onMessages func([]*entity.Message),
	onErr repository.ErrorHandler,
) (repository.Subscription, error) {
	var (
		mu       sync.Mutex
		trades   []*entity.TradeRequest
		messages []*entity.Message
	)
	publish := func() {
		onThreads(uc.BuildThreads(ctx, viewerID, trades, messages, names))
	}

	tradeSub, err := uc.tradeRepo.Watch(ctx, repository.TradeFilter{
		Participant: viewerID,
		Status:      entity.TradeStatusAccepted,
	}, func(latest []*entity.TradeRequest) {
		mu.Lock()
		defer mu.Unlock()
		trades = latest
		publish()
	}, onErr)
	if err != nil {
		return nil, err
	}

	messageSub, err := uc.messageRepo.Watch(ctx, viewerID, func(latest []*entity.Message) {
		mu.Lock()
		defer mu.Unlock()
		messages = latest
		if onMessages != nil {
			onMessages(latest)
		}
		publish()
	}, onErr)
	if err != nil {
		tradeSub.Unsubscribe()
		return nil, err
	}

	return repository.SubscriptionFunc(func() {
		tradeSub.Unsubscribe()
		messageSub.Unsubscribe()
	}), nil
}
