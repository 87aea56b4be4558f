package usecase

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"

	"baddelli/internal/domain/entity"
	"baddelli/internal/testutil/memstore"
)

var testBase = time.Date(2024, 5, 10, 9, 0, 0, 0, time.UTC)

type fakeLimiter struct {
	mu      sync.Mutex
	deny    map[string]bool
	allowed []string
}

func (l *fakeLimiter) Allow(userID, action string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.deny[action] {
		return false
	}
	l.allowed = append(l.allowed, userID+":"+action)
	return true
}

type staticNames map[string]string

func (n staticNames) Forget(userID string) {}

func (n staticNames) DisplayName(ctx context.Context, userID string) string {
	if name, ok := n[userID]; ok {
		return name
	}
	return unknownUserName
}

type fakeCompressor struct {
	err error
}

func (c fakeCompressor) Compress(r io.Reader) ([]byte, error) {
	if c.err != nil {
		return nil, c.err
	}
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return bytes.ToUpper(raw), nil
}

type fakeImageStore struct {
	stored map[string][]byte
	err    error
}

func (s *fakeImageStore) Store(ctx context.Context, ownerID string, data []byte) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	if s.stored == nil {
		s.stored = make(map[string][]byte)
	}
	url := fmt.Sprintf("https://storage.example/%s/%d.jpg", ownerID, len(s.stored)+1)
	s.stored[url] = data
	return url, nil
}

type mockAuthClient struct {
	mock.Mock
}

func (m *mockAuthClient) CreateUser(ctx context.Context, email, password, displayName string) (string, error) {
	args := m.Called(ctx, email, password, displayName)
	return args.String(0), args.Error(1)
}

func (m *mockAuthClient) VerifyToken(ctx context.Context, token string) (string, error) {
	args := m.Called(ctx, token)
	return args.String(0), args.Error(1)
}

func (m *mockAuthClient) UpdateDisplayName(ctx context.Context, uid, displayName string) error {
	args := m.Called(ctx, uid, displayName)
	return args.Error(0)
}

func (m *mockAuthClient) UpdateUserPassword(ctx context.Context, uid, password string) error {
	args := m.Called(ctx, uid, password)
	return args.Error(0)
}

func (m *mockAuthClient) GetDisplayName(ctx context.Context, uid string) (string, error) {
	args := m.Called(ctx, uid)
	return args.String(0), args.Error(1)
}

func (m *mockAuthClient) SignInWithEmailPassword(ctx context.Context, email, password string) (*SignInResult, error) {
	args := m.Called(ctx, email, password)
	if r, ok := args.Get(0).(*SignInResult); ok {
		return r, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockAuthClient) SendPasswordResetEmail(ctx context.Context, email string) error {
	args := m.Called(ctx, email)
	return args.Error(0)
}

func (m *mockAuthClient) ConfirmPasswordReset(ctx context.Context, oobCode, newPassword string) error {
	args := m.Called(ctx, oobCode, newPassword)
	return args.Error(0)
}

type sentEvent struct {
	Event   string
	Payload interface{}
}

type recordingSink struct {
	mu     sync.Mutex
	events []sentEvent
}

func (s *recordingSink) Send(event string, payload interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, sentEvent{Event: event, Payload: payload})
	return nil
}

func (s *recordingSink) ofType(event string) []sentEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []sentEvent
	for _, e := range s.events {
		if e.Event == event {
			out = append(out, e)
		}
	}
	return out
}

func (s *recordingSink) last(event string) (sentEvent, bool) {
	events := s.ofType(event)
	if len(events) == 0 {
		return sentEvent{}, false
	}
	return events[len(events)-1], true
}

// marketplace wires the use cases over in-memory repositories. userA
// (Amina) owns a guitar, userB (Karim) owns a bike.
type marketplace struct {
	clock    *memstore.Clock
	trades   *memstore.TradeRepository
	messages *memstore.MessageRepository
	items    *memstore.ItemRepository
	limiter  *fakeLimiter

	tradeUC *TradeUseCase
	chatUC  *ChatUseCase
	badgeUC *BadgeUseCase
	itemUC  *ItemUseCase

	guitar *entity.Item
	bike   *entity.Item
}

var testNames = staticNames{"userA": "Amina", "userB": "Karim", "userC": "Sara"}

func newMarketplace() *marketplace {
	m := &marketplace{
		clock:    memstore.NewClock(testBase),
		messages: memstore.NewMessageRepository(),
		limiter:  &fakeLimiter{deny: map[string]bool{}},
	}
	m.trades = memstore.NewTradeRepository(m.clock)
	m.items = memstore.NewItemRepository(m.clock)

	m.tradeUC = NewTradeUseCase(m.trades, m.items, m.limiter)
	m.tradeUC.now = m.clock.Now
	m.chatUC = NewChatUseCase(m.trades, m.messages, testNames, m.limiter, 4)
	m.chatUC.now = m.clock.Now
	m.badgeUC = NewBadgeUseCase(m.trades, m.messages)
	m.itemUC = NewItemUseCase(m.items, fakeCompressor{}, nil)

	m.guitar = m.addItem("userA", "Amina", "Guitar")
	m.bike = m.addItem("userB", "Karim", "Bike")
	return m
}

func (m *marketplace) addItem(ownerID, ownerName, name string) *entity.Item {
	item := &entity.Item{Name: name, Category: "misc", UserID: ownerID, UserName: ownerName}
	if err := m.items.Create(context.Background(), item); err != nil {
		panic(err)
	}
	return item
}

// propose has userA offer the guitar for the bike.
func (m *marketplace) propose() *entity.TradeRequest {
	trade, err := m.tradeUC.Propose(context.Background(), "userA", "Amina", m.bike.ID, m.guitar.ID)
	if err != nil {
		panic(err)
	}
	return trade
}

// acceptedChat returns the chat id of an accepted guitar-for-bike trade.
func (m *marketplace) acceptedChat() string {
	trade := m.propose()
	accepted, err := m.tradeUC.Accept(context.Background(), trade.ID, "userB")
	if err != nil {
		panic(err)
	}
	return accepted.ChatID
}
