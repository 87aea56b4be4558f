package memstore

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"baddelli/internal/domain/entity"
	"baddelli/internal/domain/repository"
	"baddelli/pkg/errors"
)

type messageWatcher struct {
	userID string
	fn     func([]*entity.Message)
}

type MessageRepository struct {
	mu       sync.Mutex
	messages map[string]*entity.Message
	seq      int
	watchers map[int]*messageWatcher
	watchSeq int

	// FailMarkRead makes MarkRead fail for the listed message ids.
	FailMarkRead map[string]bool
	// MarkReadCalls counts MarkRead invocations, failed ones included.
	MarkReadCalls int
	Err           error
}

func NewMessageRepository() *MessageRepository {
	return &MessageRepository{
		messages:     make(map[string]*entity.Message),
		watchers:     make(map[int]*messageWatcher),
		FailMarkRead: make(map[string]bool),
	}
}

func (r *MessageRepository) Create(ctx context.Context, message *entity.Message) error {
	r.mu.Lock()
	if r.Err != nil {
		r.mu.Unlock()
		return errors.Persistence("Failed to send message", r.Err)
	}
	if message.ID == "" {
		r.seq++
		message.ID = fmt.Sprintf("msg-%03d", r.seq)
	}
	r.messages[message.ID] = cloneMessage(message)
	r.mu.Unlock()

	r.notify()
	return nil
}

func (r *MessageRepository) ListByChat(ctx context.Context, chatID string) ([]*entity.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return nil, errors.Persistence("Failed to list messages", r.Err)
	}
	var out []*entity.Message
	for _, m := range r.messages {
		if m.ChatID == chatID {
			out = append(out, cloneMessage(m))
		}
	}
	sortMessages(out)
	return out, nil
}

func (r *MessageRepository) ListByParticipant(ctx context.Context, userID string) ([]*entity.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return nil, errors.Persistence("Failed to list messages", r.Err)
	}
	return r.forUser(userID), nil
}

func (r *MessageRepository) MarkRead(ctx context.Context, messageID, userID string) error {
	r.mu.Lock()
	r.MarkReadCalls++
	if r.FailMarkRead[messageID] {
		r.mu.Unlock()
		return errors.Persistence("Failed to mark message as read", fmt.Errorf("injected failure for %s", messageID))
	}
	m, ok := r.messages[messageID]
	if !ok {
		r.mu.Unlock()
		return errors.NotFound("Message", nil)
	}
	m.ReadBy = addUnique(m.ReadBy, userID)
	r.mu.Unlock()

	r.notify()
	return nil
}

func (r *MessageRepository) Watch(ctx context.Context, userID string, fn func([]*entity.Message), onErr repository.ErrorHandler) (repository.Subscription, error) {
	r.mu.Lock()
	if r.Err != nil {
		r.mu.Unlock()
		return nil, errors.Persistence("Failed to watch messages", r.Err)
	}
	r.watchSeq++
	id := r.watchSeq
	r.watchers[id] = &messageWatcher{userID: userID, fn: fn}
	initial := r.forUser(userID)
	r.mu.Unlock()

	fn(initial)

	var once sync.Once
	return repository.SubscriptionFunc(func() {
		once.Do(func() {
			r.mu.Lock()
			delete(r.watchers, id)
			r.mu.Unlock()
		})
	}), nil
}

// Get returns a copy of a stored message.
func (r *MessageRepository) Get(id string) *entity.Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	if m, ok := r.messages[id]; ok {
		return cloneMessage(m)
	}
	return nil
}

func (r *MessageRepository) ActiveWatchers() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.watchers)
}

func (r *MessageRepository) forUser(userID string) []*entity.Message {
	out := make([]*entity.Message, 0)
	for _, m := range r.messages {
		if contains(m.Participants, userID) {
			out = append(out, cloneMessage(m))
		}
	}
	sortMessages(out)
	return out
}

func (r *MessageRepository) notify() {
	type delivery struct {
		fn       func([]*entity.Message)
		messages []*entity.Message
	}

	r.mu.Lock()
	ids := make([]int, 0, len(r.watchers))
	for id := range r.watchers {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	deliveries := make([]delivery, 0, len(ids))
	for _, id := range ids {
		w := r.watchers[id]
		deliveries = append(deliveries, delivery{fn: w.fn, messages: r.forUser(w.userID)})
	}
	r.mu.Unlock()

	for _, d := range deliveries {
		d.fn(d.messages)
	}
}

func sortMessages(ms []*entity.Message) {
	sort.Slice(ms, func(i, j int) bool {
		if ms[i].Timestamp.Equal(ms[j].Timestamp) {
			return ms[i].ID < ms[j].ID
		}
		return ms[i].Timestamp.Before(ms[j].Timestamp)
	})
}
