package models

import "time"

// Message is a direct message. A conversation is the unordered (sender, receiver) pair.
type Message struct {
	ID         string    `firestore:"id" json:"id"`
	SenderID   string    `firestore:"senderId" json:"senderId"`
	ReceiverID string    `firestore:"receiverId" json:"receiverId"`
	Content    string    `firestore:"content" json:"content"`
	MediaURL   string    `firestore:"mediaUrl,omitempty" json:"mediaUrl,omitempty"`
	Timestamp  time.Time `firestore:"timestamp" json:"timestamp"`
	IsRead     bool      `firestore:"isRead" json:"isRead"`
}
