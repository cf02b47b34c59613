package app

import (
	"github.com/pauljones0/agriconnect/internal/feed"
	"github.com/pauljones0/agriconnect/internal/jobs"
	"github.com/pauljones0/agriconnect/internal/messaging"
	"github.com/pauljones0/agriconnect/internal/network"
	"github.com/pauljones0/agriconnect/internal/notifications"
	"github.com/pauljones0/agriconnect/internal/search"
	"github.com/pauljones0/agriconnect/internal/session"
	"github.com/pauljones0/agriconnect/internal/storage"
	"github.com/pauljones0/agriconnect/internal/storage/memstore"
)

// Store is everything the application needs from the document store.
type Store interface {
	session.ProfileStore
	feed.PostStore
	network.ConnectionStore
	messaging.MessageStore
	jobs.JobStore
	notifications.NotificationStore
	search.Store
	Close() error
}

var (
	_ Store = (*storage.Client)(nil)
	_ Store = (*memstore.Store)(nil)
)
