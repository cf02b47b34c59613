package notifications

import "github.com/pauljones0/agriconnect/internal/models"

// Destination is the view a notification opens.
type Destination string

const (
	DestFeed         Destination = "feed"
	DestNetwork      Destination = "network"
	DestConversation Destination = "messaging"
	DestJobs         Destination = "jobs"
)

// Route says where opening a notification leads. PartnerID is set for
// conversations; LinkID carries the notification's link target.
type Route struct {
	Destination Destination `json:"destination"`
	PartnerID   string      `json:"partnerId,omitempty"`
	LinkID      string      `json:"linkId,omitempty"`
}

// RouteFor maps n to its destination. Unknown kinds fall back to the feed.
func RouteFor(n models.Notification) Route {
	switch n.Type {
	case models.KindMessage:
		return Route{Destination: DestConversation, PartnerID: n.ActorID, LinkID: n.LinkID}
	case models.KindConnectionRequest, models.KindInvitation:
		return Route{Destination: DestNetwork, LinkID: n.LinkID}
	case models.KindLike, models.KindComment, models.KindRepost:
		return Route{Destination: DestFeed, LinkID: n.LinkID}
	case models.KindJobAlert:
		return Route{Destination: DestJobs, LinkID: n.LinkID}
	default:
		return Route{Destination: DestFeed, LinkID: n.LinkID}
	}
}
