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

type tradeWatcher struct {
	filter repository.TradeFilter
	fn     func([]*entity.TradeRequest)
}

type TradeRepository struct {
	mu       sync.Mutex
	clock    *Clock
	trades   map[string]*entity.TradeRequest
	seq      int
	watchers map[int]*tradeWatcher
	watchSeq int

	// Writes counts successful mutating calls.
	Writes int
	// Err, when set, is returned by every call.
	Err error
}

func NewTradeRepository(clock *Clock) *TradeRepository {
	return &TradeRepository{
		clock:    clock,
		trades:   make(map[string]*entity.TradeRequest),
		watchers: make(map[int]*tradeWatcher),
	}
}

func (r *TradeRepository) Create(ctx context.Context, trade *entity.TradeRequest) error {
	r.mu.Lock()
	if r.Err != nil {
		r.mu.Unlock()
		return errors.Persistence("Failed to create trade request", r.Err)
	}
	r.seq++
	trade.ID = fmt.Sprintf("trade-%d", r.seq)
	trade.CreatedAt = r.clock.Now()
	r.trades[trade.ID] = cloneTrade(trade)
	r.Writes++
	r.mu.Unlock()

	r.notify()
	return nil
}

func (r *TradeRepository) GetByID(ctx context.Context, id string) (*entity.TradeRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return nil, errors.Persistence("Failed to get trade request", r.Err)
	}
	t, ok := r.trades[id]
	if !ok {
		return nil, errors.NotFound("Trade request", nil)
	}
	return cloneTrade(t), nil
}

func (r *TradeRepository) List(ctx context.Context, filter repository.TradeFilter) ([]*entity.TradeRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return nil, errors.Persistence("Failed to list trade requests", r.Err)
	}
	return r.matching(filter), nil
}

func (r *TradeRepository) MarkAccepted(ctx context.Context, id, chatID string, participants []string) error {
	return r.resolve(id, func(t *entity.TradeRequest) {
		now := r.clock.Now()
		t.Status = entity.TradeStatusAccepted
		t.AcceptedAt = &now
		t.ChatID = chatID
		t.Participants = cloneStrings(participants)
	})
}

func (r *TradeRepository) MarkRejected(ctx context.Context, id string) error {
	return r.resolve(id, func(t *entity.TradeRequest) {
		now := r.clock.Now()
		t.Status = entity.TradeStatusRejected
		t.RejectedAt = &now
	})
}

func (r *TradeRepository) HideForUser(ctx context.Context, id, userID string) error {
	return r.mutate(id, func(t *entity.TradeRequest) {
		t.HiddenFor = addUnique(t.HiddenFor, userID)
	})
}

func (r *TradeRepository) Watch(ctx context.Context, filter repository.TradeFilter, fn func([]*entity.TradeRequest), onErr repository.ErrorHandler) (repository.Subscription, error) {
	r.mu.Lock()
	if r.Err != nil {
		r.mu.Unlock()
		return nil, errors.Persistence("Failed to watch trade requests", r.Err)
	}
	r.watchSeq++
	id := r.watchSeq
	r.watchers[id] = &tradeWatcher{filter: filter, fn: fn}
	initial := r.matching(filter)
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

// Put stores a trade as-is, bypassing Create. Useful for seeding.
func (r *TradeRepository) Put(trade *entity.TradeRequest) {
	r.mu.Lock()
	r.trades[trade.ID] = cloneTrade(trade)
	r.mu.Unlock()
	r.notify()
}

func (r *TradeRepository) ActiveWatchers() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.watchers)
}

// resolve mirrors the store's transactional pending check.
func (r *TradeRepository) resolve(id string, fn func(*entity.TradeRequest)) error {
	return r.apply(id, func(t *entity.TradeRequest) error {
		if t.Status != entity.TradeStatusPending {
			return errors.InvalidTransition("Trade request is already " + string(t.Status))
		}
		fn(t)
		return nil
	})
}

func (r *TradeRepository) mutate(id string, fn func(*entity.TradeRequest)) error {
	return r.apply(id, func(t *entity.TradeRequest) error {
		fn(t)
		return nil
	})
}

func (r *TradeRepository) apply(id string, fn func(*entity.TradeRequest) error) error {
	r.mu.Lock()
	if r.Err != nil {
		r.mu.Unlock()
		return errors.Persistence("Failed to update trade request", r.Err)
	}
	t, ok := r.trades[id]
	if !ok {
		r.mu.Unlock()
		return errors.NotFound("Trade request", nil)
	}
	if err := fn(t); err != nil {
		r.mu.Unlock()
		return err
	}
	r.Writes++
	r.mu.Unlock()

	r.notify()
	return nil
}

func (r *TradeRepository) matching(filter repository.TradeFilter) []*entity.TradeRequest {
	out := make([]*entity.TradeRequest, 0)
	for _, t := range r.trades {
		if filter.OwnerID != "" && t.OwnerID != filter.OwnerID {
			continue
		}
		if filter.RequesterID != "" && t.RequesterID != filter.RequesterID {
			continue
		}
		if filter.Participant != "" && !contains(t.Participants, filter.Participant) {
			continue
		}
		if filter.Status != "" && t.Status != filter.Status {
			continue
		}
		out = append(out, cloneTrade(t))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (r *TradeRepository) notify() {
	type delivery struct {
		fn     func([]*entity.TradeRequest)
		trades []*entity.TradeRequest
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
		deliveries = append(deliveries, delivery{fn: w.fn, trades: r.matching(w.filter)})
	}
	r.mu.Unlock()

	for _, d := range deliveries {
		d.fn(d.trades)
	}
}
