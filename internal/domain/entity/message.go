package entity

import "time"

type Message struct {
	ID           string    `json:"id" firestore:"-"`
	ChatID       string    `json:"chat_id" firestore:"chatId"`
	SenderID     string    `json:"sender_id" firestore:"senderId"`
	Text         string    `json:"text" firestore:"text"`
	Timestamp    time.Time `json:"timestamp" firestore:"timestamp"`
	Participants []string  `json:"participants" firestore:"participants"`
	ReadBy       []string  `json:"read_by" firestore:"readBy"`
}

func (m *Message) ReadByUser(userID string) bool {
	for _, id := range m.ReadBy {
		if id == userID {
			return true
		}
	}
	return false
}

// UnreadFor reports whether the message counts as unread for the viewer:
// sent by someone else and not yet marked read by the viewer.
func (m *Message) UnreadFor(viewerID string) bool {
	return m.SenderID != viewerID && !m.ReadByUser(viewerID)
}

func (m *Message) HasParticipant(userID string) bool {
	for _, id := range m.Participants {
		if id == userID {
			return true
		}
	}
	return false
}
