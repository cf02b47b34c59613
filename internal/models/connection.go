package models

import "time"

// ConnectionStatus is the state of a connection request.
type ConnectionStatus string

const (
	StatusPending  ConnectionStatus = "pending"
	StatusAccepted ConnectionStatus = "accepted"
	StatusIgnored  ConnectionStatus = "ignored"
)

// CanTransition reports whether a connection may move from one status to another.
// Accepted and ignored are terminal.
func CanTransition(from, to ConnectionStatus) bool {
	return from == StatusPending && (to == StatusAccepted || to == StatusIgnored)
}

// ConnectionRole selects which side of a connection a query matches on.
type ConnectionRole string

const (
	RoleRequester ConnectionRole = "requesterId"
	RoleReceiver  ConnectionRole = "receiverId"
)

// Connection links two users. Its document ID is ConnectionID of the pair,
// so a pair can hold at most one connection whoever asked first.
type Connection struct {
	ID          string           `firestore:"id" json:"id"`
	RequesterID string           `firestore:"requesterId" json:"requesterId"`
	ReceiverID  string           `firestore:"receiverId" json:"receiverId"`
	Status      ConnectionStatus `firestore:"status" json:"status"`
	Timestamp   time.Time        `firestore:"timestamp" json:"timestamp"`
}

// ConnectionID returns the key for the unordered pair (a, b).
func ConnectionID(a, b string) string {
	if b < a {
		a, b = b, a
	}
	return a + "_" + b
}

// Other returns the participant that is not userID.
func (c Connection) Other(userID string) string {
	if c.RequesterID == userID {
		return c.ReceiverID
	}
	return c.RequesterID
}

// Involves reports whether userID is one of the participants.
func (c Connection) Involves(userID string) bool {
	return c.RequesterID == userID || c.ReceiverID == userID
}
