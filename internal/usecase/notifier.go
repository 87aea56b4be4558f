package usecase

import (
	"sync"

	"baddelli/internal/domain/entity"
)

// MessageNotifier decides which incoming messages deserve a one-shot alert
// for a single session. A message id is signalled at most once.
type MessageNotifier struct {
	viewerID string

	mu         sync.Mutex
	activeChat string
	notified   map[string]struct{}
}

func NewMessageNotifier(viewerID string) *MessageNotifier {
	return &MessageNotifier{
		viewerID: viewerID,
		notified: make(map[string]struct{}),
	}
}

// SetActiveChat records the chat the viewer is looking at. Empty clears it.
func (n *MessageNotifier) SetActiveChat(chatID string) {
	n.mu.Lock()
	n.activeChat = chatID
	n.mu.Unlock()
}

func (n *MessageNotifier) ActiveChat() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.activeChat
}

// Observe takes the viewer's current message set and returns the messages to
// signal now. Messages in the active chat are recorded as seen without a
// signal.
func (n *MessageNotifier) Observe(messages []*entity.Message) []*entity.Message {
	n.mu.Lock()
	defer n.mu.Unlock()

	var out []*entity.Message
	for _, m := range messages {
		if !m.UnreadFor(n.viewerID) {
			continue
		}
		if _, done := n.notified[m.ID]; done {
			continue
		}
		n.notified[m.ID] = struct{}{}
		if m.ChatID == n.activeChat {
			continue
		}
		out = append(out, m)
	}
	return out
}
