package models

import "time"

// NotificationKind is the closed set of notification types.
type NotificationKind string

const (
	KindConnectionRequest NotificationKind = "connection_request"
	KindLike              NotificationKind = "like"
	KindComment           NotificationKind = "comment"
	KindMessage           NotificationKind = "message"
	KindInvitation        NotificationKind = "invitation"
	KindJobAlert          NotificationKind = "job_alert"
	KindRepost            NotificationKind = "repost"
)

// NotificationKinds lists every kind.
var NotificationKinds = []NotificationKind{
	KindConnectionRequest,
	KindLike,
	KindComment,
	KindMessage,
	KindInvitation,
	KindJobAlert,
	KindRepost,
}

// Valid reports whether k is one of the known kinds.
func (k NotificationKind) Valid() bool {
	for _, known := range NotificationKinds {
		if k == known {
			return true
		}
	}
	return false
}

// Notification is written once; only IsRead changes afterwards.
type Notification struct {
	ID        string           `firestore:"id" json:"id"`
	UserID    string           `firestore:"userId" json:"userId"`
	ActorID   string           `firestore:"actorId" json:"actorId"`
	Type      NotificationKind `firestore:"type" json:"type"`
	Content   string           `firestore:"content" json:"content"`
	IsRead    bool             `firestore:"isRead" json:"isRead"`
	Timestamp time.Time        `firestore:"timestamp" json:"timestamp"`
	LinkID    string           `firestore:"linkId,omitempty" json:"linkId,omitempty"`
}
