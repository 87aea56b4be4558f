// Package memstore holds in-memory implementations of the repository
// interfaces for tests. Watchers fire synchronously after every write.
package memstore

import (
	"sync"
	"time"

	"baddelli/internal/domain/entity"
)

// Clock hands out strictly increasing timestamps.
type Clock struct {
	Base time.Time
	Step time.Duration

	mu sync.Mutex
	n  int
}

func NewClock(base time.Time) *Clock {
	return &Clock{Base: base, Step: time.Second}
}

func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.n++
	return c.Base.Add(time.Duration(c.n) * c.Step)
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	return append([]string(nil), in...)
}

func cloneSnapshot(s entity.ItemSnapshot) entity.ItemSnapshot {
	if s.Location != nil {
		loc := *s.Location
		s.Location = &loc
	}
	return s
}

func cloneTrade(t *entity.TradeRequest) *entity.TradeRequest {
	c := *t
	c.RequestedItem = cloneSnapshot(t.RequestedItem)
	c.OfferedItem = cloneSnapshot(t.OfferedItem)
	c.Participants = cloneStrings(t.Participants)
	c.HiddenFor = cloneStrings(t.HiddenFor)
	if t.AcceptedAt != nil {
		at := *t.AcceptedAt
		c.AcceptedAt = &at
	}
	if t.RejectedAt != nil {
		at := *t.RejectedAt
		c.RejectedAt = &at
	}
	return &c
}

func cloneMessage(m *entity.Message) *entity.Message {
	c := *m
	c.Participants = cloneStrings(m.Participants)
	c.ReadBy = cloneStrings(m.ReadBy)
	return &c
}

func cloneItem(i *entity.Item) *entity.Item {
	c := *i
	if i.Location != nil {
		loc := *i.Location
		c.Location = &loc
	}
	return &c
}

func addUnique(set []string, v string) []string {
	for _, s := range set {
		if s == v {
			return set
		}
	}
	return append(set, v)
}

func contains(set []string, v string) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}
