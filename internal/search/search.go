// Package search filters the live user and post collections in memory.
// There is no server-side text index, so this only suits small corpora.
package search

import (
	"context"
	"strings"
	"sync"

	"github.com/pauljones0/agriconnect/internal/feed"
	"github.com/pauljones0/agriconnect/internal/live"
	"github.com/pauljones0/agriconnect/internal/models"
	"github.com/pauljones0/agriconnect/internal/util"
)

// Store is what search reads from.
type Store interface {
	WatchUsers(ctx context.Context, fn func([]models.User)) live.Subscription
	WatchPosts(ctx context.Context, fn func([]models.Post)) live.Subscription
}

// Results holds the matches for one query.
type Results struct {
	Query string        `json:"query"`
	Users []models.User `json:"users"`
	Posts []models.Post `json:"posts"`
}

// Empty reports whether nothing matched, which is also the state of a
// blank query.
func (r Results) Empty() bool {
	return len(r.Users) == 0 && len(r.Posts) == 0
}

// MatchUser tests name, headline, bio and location.
func MatchUser(u models.User, query string) bool {
	return util.ContainsFold(u.Name, query) ||
		util.ContainsFold(u.Headline, query) ||
		util.ContainsFold(u.Bio, query) ||
		util.ContainsFold(u.Location, query)
}

// MatchPost tests the post text.
func MatchPost(p models.Post, query string) bool {
	return util.ContainsFold(p.Content, query)
}

// Index is one live search. Changing the query means stopping this Index
// and opening a new one.
type Index struct {
	query    string
	viewerID string
	onChange func(Results)
	subs     live.Group

	emitMu sync.Mutex
	mu     sync.Mutex
	users  []models.User
	posts  []models.Post
}

// Watch opens a search for query on behalf of viewerID, who is never
// returned as a user match. A blank query opens no subscriptions and
// reports empty results.
func Watch(ctx context.Context, store Store, viewerID, query string, onChange func(Results)) *Index {
	ix := &Index{query: strings.TrimSpace(query), viewerID: viewerID, onChange: onChange}
	if ix.query == "" {
		if onChange != nil {
			onChange(ix.Results())
		}
		return ix
	}
	ix.subs.Add(store.WatchUsers(ctx, ix.setUsers))
	ix.subs.Add(store.WatchPosts(ctx, ix.setPosts))
	return ix
}

func (ix *Index) setUsers(users []models.User) {
	var matched []models.User
	for _, u := range users {
		if u.ID != ix.viewerID && MatchUser(u, ix.query) {
			matched = append(matched, u)
		}
	}
	ix.refresh(func() { ix.users = matched })
}

func (ix *Index) setPosts(posts []models.Post) {
	var matched []models.Post
	for _, p := range posts {
		if MatchPost(p, ix.query) {
			matched = append(matched, p)
		}
	}
	matched = feed.SortNewestFirst(matched)
	ix.refresh(func() { ix.posts = matched })
}

func (ix *Index) refresh(mutate func()) {
	ix.emitMu.Lock()
	defer ix.emitMu.Unlock()
	ix.mu.Lock()
	mutate()
	ix.mu.Unlock()
	if ix.onChange != nil {
		ix.onChange(ix.Results())
	}
}

// Query returns the trimmed query.
func (ix *Index) Query() string { return ix.query }

// Results returns the current matches.
func (ix *Index) Results() Results {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	r := Results{Query: ix.query, Users: []models.User{}, Posts: []models.Post{}}
	r.Users = append(r.Users, ix.users...)
	r.Posts = append(r.Posts, ix.posts...)
	return r
}

func (ix *Index) Stop() {
	ix.subs.Stop()
}
