package service

import (
	"sort"
	"time"

	"baddelli/internal/domain/entity"
)

const (
	LabelToday     = "Today"
	LabelYesterday = "Yesterday"
	dayLabelLayout = "2 January 2006"
)

// SortMessages returns a copy ordered by timestamp ascending. Equal
// timestamps fall back to the message id so the order is stable across
// snapshots.
func SortMessages(messages []*entity.Message) []*entity.Message {
	out := make([]*entity.Message, len(messages))
	copy(out, messages)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Timestamp.Equal(out[j].Timestamp) {
			return out[i].ID < out[j].ID
		}
		return out[i].Timestamp.Before(out[j].Timestamp)
	})
	return out
}

func UnreadCount(messages []*entity.Message, viewerID string) int {
	n := 0
	for _, m := range messages {
		if m.UnreadFor(viewerID) {
			n++
		}
	}
	return n
}

// UnreadMessages returns the messages that MarkThreadRead still has to touch.
func UnreadMessages(messages []*entity.Message, viewerID string) []*entity.Message {
	var out []*entity.Message
	for _, m := range messages {
		if m.UnreadFor(viewerID) {
			out = append(out, m)
		}
	}
	return out
}

// ProjectThreads groups messages by chat into threads for the viewer, ordered
// by most recent message first.
func ProjectThreads(messages []*entity.Message, viewerID string) []*entity.ChatThread {
	groups := make(map[string][]*entity.Message)
	var order []string
	for _, m := range messages {
		if _, ok := groups[m.ChatID]; !ok {
			order = append(order, m.ChatID)
		}
		groups[m.ChatID] = append(groups[m.ChatID], m)
	}

	threads := make([]*entity.ChatThread, 0, len(order))
	for _, chatID := range order {
		sorted := SortMessages(groups[chatID])
		thread := &entity.ChatThread{
			ChatID:   chatID,
			Messages: sorted,
		}
		if len(sorted) > 0 {
			thread.Participants = append([]string(nil), sorted[0].Participants...)
		}
		ApplyMessages(thread, sorted, viewerID)
		threads = append(threads, thread)
	}

	SortThreadsByRecency(threads)
	return threads
}

// ApplyMessages sets the message-derived fields of a thread. messages must
// already be sorted ascending.
func ApplyMessages(thread *entity.ChatThread, messages []*entity.Message, viewerID string) {
	thread.Messages = messages
	thread.LastMessage = nil
	if len(messages) > 0 {
		thread.LastMessage = messages[len(messages)-1]
	}
	thread.UnreadCount = UnreadCount(messages, viewerID)
}

func SortThreadsByRecency(threads []*entity.ChatThread) {
	sort.SliceStable(threads, func(i, j int) bool {
		ti, tj := threads[i].LastActivity(), threads[j].LastActivity()
		if ti.Equal(tj) {
			return threads[i].ChatID < threads[j].ChatID
		}
		return ti.After(tj)
	})
}

// PartitionByDay groups consecutive messages of the same calendar day, as
// seen in now's location, under one labelled section.
func PartitionByDay(messages []*entity.Message, now time.Time) []entity.DaySection {
	loc := now.Location()
	var sections []entity.DaySection
	for _, m := range messages {
		ts := m.Timestamp.In(loc)
		if n := len(sections); n > 0 && sameDay(sections[n-1].Date, ts) {
			sections[n-1].Messages = append(sections[n-1].Messages, m)
			continue
		}
		day := time.Date(ts.Year(), ts.Month(), ts.Day(), 0, 0, 0, 0, loc)
		sections = append(sections, entity.DaySection{
			Label:    DayLabel(day, now),
			Date:     day,
			Messages: []*entity.Message{m},
		})
	}
	return sections
}

func DayLabel(day, now time.Time) string {
	day = day.In(now.Location())
	if sameDay(day, now) {
		return LabelToday
	}
	if sameDay(day, now.AddDate(0, 0, -1)) {
		return LabelYesterday
	}
	return day.Format(dayLabelLayout)
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
