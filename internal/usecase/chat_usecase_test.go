package usecase

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"baddelli/internal/domain/entity"
	"baddelli/internal/domain/service"
	"baddelli/pkg/errors"
)

func unreadIn(t *testing.T, uc *ChatUseCase, chatID, viewerID string) int {
	t.Helper()
	threads, err := uc.Threads(context.Background(), viewerID)
	require.NoError(t, err)
	for _, th := range threads {
		if th.ChatID == chatID {
			return th.UnreadCount
		}
	}
	t.Fatalf("thread %s not visible to %s", chatID, viewerID)
	return 0
}

func TestChatUseCase_SendAndRead(t *testing.T) {
	m := newMarketplace()
	ctx := context.Background()
	chatID := m.acceptedChat()

	msg, err := m.chatUC.SendMessage(ctx, chatID, "userA", "  hello  ")
	require.NoError(t, err)
	assert.Equal(t, "hello", msg.Text)
	assert.Equal(t, []string{"userB", "userA"}, msg.Participants)
	assert.Empty(t, msg.ReadBy)

	assert.Equal(t, 1, unreadIn(t, m.chatUC, chatID, "userB"))
	assert.Equal(t, 0, unreadIn(t, m.chatUC, chatID, "userA"))

	marked, err := m.chatUC.MarkThreadRead(ctx, chatID, "userB")
	require.NoError(t, err)
	assert.Equal(t, 1, marked)
	assert.Equal(t, 0, unreadIn(t, m.chatUC, chatID, "userB"))

	marked, err = m.chatUC.MarkThreadRead(ctx, chatID, "userB")
	require.NoError(t, err)
	assert.Zero(t, marked)
}

func TestChatUseCase_SendValidation(t *testing.T) {
	m := newMarketplace()
	ctx := context.Background()
	chatID := m.acceptedChat()

	_, err := m.chatUC.SendMessage(ctx, chatID, "userA", "   \n\t")
	assert.True(t, errors.Is(err, errors.CodeValidation))

	_, err = m.chatUC.SendMessage(ctx, chatID, "userA", strings.Repeat("x", maxMessageLength+1))
	assert.True(t, errors.Is(err, errors.CodeValidation))

	_, err = m.chatUC.SendMessage(ctx, chatID, "userC", "hi")
	assert.True(t, errors.Is(err, errors.CodeForbidden))

	_, err = m.chatUC.SendMessage(ctx, "nope", "userA", "hi")
	assert.True(t, errors.Is(err, errors.CodeNotFound))

	messages, _ := m.messages.ListByChat(ctx, chatID)
	assert.Empty(t, messages)
}

func TestChatUseCase_NoChatBeforeAcceptance(t *testing.T) {
	m := newMarketplace()
	ctx := context.Background()
	trade := m.propose()

	_, err := m.chatUC.SendMessage(ctx, trade.ID, "userA", "hi")
	assert.True(t, errors.Is(err, errors.CodeInvalidTransition))

	_, err = m.chatUC.Thread(ctx, trade.ID, "userA")
	assert.True(t, errors.Is(err, errors.CodeInvalidTransition))

	threads, err := m.chatUC.Threads(ctx, "userA")
	require.NoError(t, err)
	assert.Empty(t, threads)
}

func TestChatUseCase_SendRateLimited(t *testing.T) {
	m := newMarketplace()
	chatID := m.acceptedChat()
	m.limiter.deny[ActionSendMessage] = true

	_, err := m.chatUC.SendMessage(context.Background(), chatID, "userA", "hi")

	assert.True(t, errors.Is(err, errors.CodeTooManyRequests))
}

func TestChatUseCase_MarkThreadReadPartialFailure(t *testing.T) {
	m := newMarketplace()
	ctx := context.Background()
	chatID := m.acceptedChat()

	for _, text := range []string{"one", "two", "three"} {
		_, err := m.chatUC.SendMessage(ctx, chatID, "userA", text)
		require.NoError(t, err)
	}
	m.messages.FailMarkRead["msg-002"] = true

	marked, err := m.chatUC.MarkThreadRead(ctx, chatID, "userB")
	assert.True(t, errors.Is(err, errors.CodePersistence))
	assert.Equal(t, 2, marked)
	assert.Equal(t, 3, m.messages.MarkReadCalls)
	assert.Contains(t, m.messages.Get("msg-001").ReadBy, "userB")
	assert.NotContains(t, m.messages.Get("msg-002").ReadBy, "userB")
	assert.Equal(t, 1, unreadIn(t, m.chatUC, chatID, "userB"))

	delete(m.messages.FailMarkRead, "msg-002")
	marked, err = m.chatUC.MarkThreadRead(ctx, chatID, "userB")
	require.NoError(t, err)
	assert.Equal(t, 1, marked)
	assert.Equal(t, 4, m.messages.MarkReadCalls)

	for _, id := range []string{"msg-001", "msg-002", "msg-003"} {
		assert.Equal(t, []string{"userB"}, m.messages.Get(id).ReadBy, id)
	}
}

func TestChatUseCase_ReadByNeverShrinks(t *testing.T) {
	m := newMarketplace()
	ctx := context.Background()
	chatID := m.acceptedChat()

	readers := func() map[string][]string {
		messages, err := m.messages.ListByChat(ctx, chatID)
		require.NoError(t, err)
		out := make(map[string][]string, len(messages))
		for _, msg := range messages {
			out[msg.ID] = append([]string(nil), msg.ReadBy...)
		}
		return out
	}
	previous := readers()
	grows := func(step string) {
		current := readers()
		for id, before := range previous {
			assert.Subset(t, current[id], before, "%s: %s", step, id)
		}
		previous = current
	}

	send := func(sender, text string) {
		_, err := m.chatUC.SendMessage(ctx, chatID, sender, text)
		require.NoError(t, err)
		grows("send " + text)
	}
	markRead := func(viewer string) {
		_, err := m.chatUC.MarkThreadRead(ctx, chatID, viewer)
		require.NoError(t, err)
		grows("read " + viewer)
	}

	send("userA", "is the bike still there?")
	send("userB", "yes")
	send("userA", "great")
	markRead("userB")
	markRead("userA")
	send("userB", "saturday?")
	markRead("userB")
	markRead("userA")
	markRead("userB")

	messages, err := m.messages.ListByChat(ctx, chatID)
	require.NoError(t, err)
	require.Len(t, messages, 4)
	for _, msg := range messages {
		recipient := "userA"
		if msg.SenderID == "userA" {
			recipient = "userB"
		}
		assert.Equal(t, []string{recipient}, msg.ReadBy, msg.Text)
	}
	assert.Zero(t, unreadIn(t, m.chatUC, chatID, "userA"))
	assert.Zero(t, unreadIn(t, m.chatUC, chatID, "userB"))
}

func TestChatUseCase_MarkThreadReadSkipsOwnMessages(t *testing.T) {
	m := newMarketplace()
	ctx := context.Background()
	chatID := m.acceptedChat()

	_, err := m.chatUC.SendMessage(ctx, chatID, "userA", "mine")
	require.NoError(t, err)

	marked, err := m.chatUC.MarkThreadRead(ctx, chatID, "userA")
	require.NoError(t, err)
	assert.Zero(t, marked)
	assert.Zero(t, m.messages.MarkReadCalls)
}

func TestChatUseCase_ThreadsOrderedByRecency(t *testing.T) {
	m := newMarketplace()
	ctx := context.Background()

	older := m.acceptedChat()
	newer := m.acceptedChat()
	silent := m.acceptedChat()

	_, err := m.chatUC.SendMessage(ctx, older, "userA", "first")
	require.NoError(t, err)
	_, err = m.chatUC.SendMessage(ctx, newer, "userB", "second")
	require.NoError(t, err)

	threads, err := m.chatUC.Threads(ctx, "userA")
	require.NoError(t, err)
	require.Len(t, threads, 3)
	assert.Equal(t, newer, threads[0].ChatID)
	assert.Equal(t, older, threads[1].ChatID)
	assert.Equal(t, silent, threads[2].ChatID)

	assert.Empty(t, threads[2].Messages)
	assert.Nil(t, threads[2].LastMessage)
	assert.Equal(t, "userB", threads[0].CounterpartID)
	assert.Equal(t, "Karim", threads[0].CounterpartName)
	assert.Equal(t, "Bike", threads[0].RequestedItem.Name)
	assert.Equal(t, 1, threads[0].UnreadCount)
}

func TestChatUseCase_CounterpartNameResolved(t *testing.T) {
	m := newMarketplace()
	ctx := context.Background()

	trade, err := m.tradeUC.CreateRequest(ctx, CreateTradeInput{
		RequesterID:   "userC",
		OwnerID:       "userB",
		OwnerName:     "Karim",
		RequestedItem: m.bike.Snapshot(),
		OfferedItem:   entity.ItemSnapshot{ID: "lamp", UserID: "userC", Name: "Lamp"},
	})
	require.NoError(t, err)
	_, err = m.tradeUC.Accept(ctx, trade.ID, "userB")
	require.NoError(t, err)

	threads, err := m.chatUC.Threads(ctx, "userB")
	require.NoError(t, err)
	require.Len(t, threads, 1)
	assert.Equal(t, "Sara", threads[0].CounterpartName)
}

func TestChatUseCase_HiddenThread(t *testing.T) {
	m := newMarketplace()
	ctx := context.Background()
	chatID := m.acceptedChat()

	require.NoError(t, m.tradeUC.HideForUser(ctx, chatID, "userA"))

	threads, err := m.chatUC.Threads(ctx, "userA")
	require.NoError(t, err)
	assert.Empty(t, threads)

	_, err = m.chatUC.Thread(ctx, chatID, "userA")
	assert.True(t, errors.Is(err, errors.CodeNotFound))

	threads, err = m.chatUC.Threads(ctx, "userB")
	require.NoError(t, err)
	assert.Len(t, threads, 1)
}

func TestChatUseCase_ThreadSections(t *testing.T) {
	m := newMarketplace()
	ctx := context.Background()
	chatID := m.acceptedChat()

	_, err := m.chatUC.SendMessage(ctx, chatID, "userA", "hello")
	require.NoError(t, err)
	_, err = m.chatUC.SendMessage(ctx, chatID, "userB", "hi there")
	require.NoError(t, err)

	view, err := m.chatUC.Thread(ctx, chatID, "userB")
	require.NoError(t, err)

	require.Len(t, view.Thread.Messages, 2)
	assert.Equal(t, "hello", view.Thread.Messages[0].Text)
	assert.Equal(t, "hi there", view.Thread.LastMessage.Text)
	require.Len(t, view.Sections, 1)
	assert.Equal(t, service.LabelToday, view.Sections[0].Label)
	assert.Len(t, view.Sections[0].Messages, 2)
}

func TestChatUseCase_WatchThreads(t *testing.T) {
	m := newMarketplace()
	ctx := context.Background()

	var (
		latest   []*entity.ChatThread
		messages []*entity.Message
	)
	sub, err := m.chatUC.WatchThreads(ctx, "userA", testNames, func(threads []*entity.ChatThread) {
		latest = threads
	}, func(ms []*entity.Message) {
		messages = ms
	}, nil)
	require.NoError(t, err)
	assert.Empty(t, latest)

	chatID := m.acceptedChat()
	require.Len(t, latest, 1)
	assert.Equal(t, chatID, latest[0].ChatID)

	_, err = m.chatUC.SendMessage(ctx, chatID, "userB", "deal?")
	require.NoError(t, err)
	require.Len(t, latest, 1)
	assert.Equal(t, 1, latest[0].UnreadCount)
	assert.Len(t, messages, 1)

	sub.Unsubscribe()
	assert.Zero(t, m.trades.ActiveWatchers())
	assert.Zero(t, m.messages.ActiveWatchers())
}
