package app

import (
	"github.com/pauljones0/agriconnect/internal/ai"
	"github.com/pauljones0/agriconnect/internal/models"
)

// Event types pushed to the client.
const (
	EventSession       = "session"
	EventTab           = "tab"
	EventNotifications = "notifications"
	EventFeed          = "feed"
	EventEngagement    = "engagement"
	EventNetwork       = "network"
	EventInbox         = "inbox"
	EventConversation  = "conversation"
	EventJobs          = "jobs"
	EventSearch        = "search"
	EventProfileEdit   = "profile_edit"
	EventQuiz          = "quiz"
	EventNarration     = "narration"
	EventAssistant     = "assistant"
	EventRoute         = "route"
	EventNotice        = "notice"
)

// Event is one state update for the client.
type Event struct {
	Type string `json:"type"`
	Data any    `json:"data,omitempty"`
}

// Notice reports a failed operation in words the user can act on.
type Notice struct {
	Op      string `json:"op"`
	Message string `json:"message"`
	Class   string `json:"class"`
}

// NotificationsData is the payload of EventNotifications.
type NotificationsData struct {
	Items  []models.Notification `json:"items"`
	Unread int                   `json:"unread"`
}

// ConversationData is the payload of EventConversation.
type ConversationData struct {
	PartnerID string           `json:"partnerId"`
	Messages  []models.Message `json:"messages"`
}

// AssistantData is the payload of EventAssistant.
type AssistantData struct {
	Turns  []ai.Turn `json:"turns"`
	Typing bool      `json:"typing"`
}
