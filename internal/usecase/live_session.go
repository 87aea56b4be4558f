package usecase

import (
	"context"
	stderrors "errors"
	"sync"

	"baddelli/internal/domain/entity"
	"baddelli/internal/domain/repository"
	"baddelli/pkg/errors"
	"baddelli/pkg/logger"
)

const (
	EventBadges     = "badges"
	EventThreads    = "threads"
	EventTrades     = "trades"
	EventNewMessage = "new_message"
	EventError      = "error"
	EventPong       = "pong"
	EventMessage    = "message_sent"
)

// Sink delivers server events to one connected client.
type Sink interface {
	Send(event string, payload interface{}) error
}

type NewMessagePayload struct {
	ChatID  string          `json:"chat_id"`
	Message *entity.Message `json:"message"`
}

type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// LiveSession owns every live subscription of one connected user. Close
// releases them all and may be called more than once.
type LiveSession struct {
	userID   string
	trades   *TradeUseCase
	chats    *ChatUseCase
	badges   *BadgeUseCase
	names    NameResolver
	notifier *MessageNotifier
	sink     Sink

	ctx    context.Context
	cancel context.CancelFunc

	mu     sync.Mutex
	subs   []repository.Subscription
	closed bool
}

func NewLiveSession(userID string, trades *TradeUseCase, chats *ChatUseCase, badges *BadgeUseCase, names NameResolver, sink Sink) *LiveSession {
	return &LiveSession{
		userID:   userID,
		trades:   trades,
		chats:    chats,
		badges:   badges,
		names:    names,
		notifier: NewMessageNotifier(userID),
		sink:     sink,
	}
}

func (s *LiveSession) UserID() string {
	return s.userID
}

// Start opens the badge, incoming-trade and thread listeners. If any fails
// the ones already open are released.
func (s *LiveSession) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return errors.Validation("session already closed", nil)
	}
	s.ctx, s.cancel = context.WithCancel(ctx)
	s.mu.Unlock()

	badgeSub, err := s.badges.Watch(s.ctx, s.userID, func(b entity.Badges) {
		s.send(EventBadges, b)
	}, s.onError)
	if err != nil {
		s.Close()
		return err
	}
	if !s.track(badgeSub) {
		return nil
	}

	tradeSub, err := s.trades.WatchIncoming(s.ctx, s.userID, func(trades []*entity.TradeRequest) {
		s.send(EventTrades, trades)
	}, s.onError)
	if err != nil {
		s.Close()
		return err
	}
	if !s.track(tradeSub) {
		return nil
	}

	threadSub, err := s.chats.WatchThreads(s.ctx, s.userID, s.names, func(threads []*entity.ChatThread) {
		s.send(EventThreads, threads)
	}, s.notify, s.onError)
	if err != nil {
		s.Close()
		return err
	}
	s.track(threadSub)

	logger.Debug("Live session started for user %s", s.userID)
	return nil
}

// OpenChat makes chatID the active chat and marks it read.
func (s *LiveSession) OpenChat(ctx context.Context, chatID string) error {
	s.notifier.SetActiveChat(chatID)
	_, err := s.chats.MarkThreadRead(ctx, chatID, s.userID)
	return err
}

func (s *LiveSession) CloseChat() {
	s.notifier.SetActiveChat("")
}

func (s *LiveSession) SendMessage(ctx context.Context, chatID, text string) (*entity.Message, error) {
	return s.chats.SendMessage(ctx, chatID, s.userID, text)
}

func (s *LiveSession) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	subs := s.subs
	s.subs = nil
	cancel := s.cancel
	s.mu.Unlock()

	for _, sub := range subs {
		sub.Unsubscribe()
	}
	if cancel != nil {
		cancel()
	}
	logger.Debug("Live session closed for user %s", s.userID)
}

// track records a subscription. A session closed in the meantime releases
// it immediately and reports false.
func (s *LiveSession) track(sub repository.Subscription) bool {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		sub.Unsubscribe()
		return false
	}
	s.subs = append(s.subs, sub)
	s.mu.Unlock()
	return true
}

func (s *LiveSession) notify(messages []*entity.Message) {
	for _, m := range s.notifier.Observe(messages) {
		s.send(EventNewMessage, NewMessagePayload{ChatID: m.ChatID, Message: m})
	}
}

func (s *LiveSession) onError(err error) {
	payload := ErrorPayload{Code: errors.CodeInternal, Message: "Live updates failed"}
	var appErr *errors.AppError
	if stderrors.As(err, &appErr) {
		payload.Code = appErr.Code
		payload.Message = appErr.Message
	}
	s.send(EventError, payload)
}

func (s *LiveSession) send(event string, payload interface{}) {
	if err := s.sink.Send(event, payload); err != nil {
		logger.Warn("Live session %s: failed to deliver %s: %v", s.userID, event, err)
	}
}
