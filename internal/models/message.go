package models

import "time"

// Message is one inbound chat message as delivered by the gateway feed.
type Message struct {
	ID          string    `json:"id"`
	ChannelID   string    `json:"channel_id"`
	AuthorID    string    `json:"author_id"`
	AuthorBot   bool      `json:"author_bot"`
	AuthorRoles []string  `json:"author_roles,omitempty"`
	Content     string    `json:"content"`
	Mentions    []string  `json:"mentions,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
}

// Mentioned reports whether the message mentions the given user.
func (m Message) Mentioned(userID string) bool {
	for _, id := range m.Mentions {
		if id == userID {
			return true
		}
	}
	return false
}
