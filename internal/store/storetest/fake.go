// Package storetest provides an in-memory store.Manager for component
// tests. The fakes count store round trips so tests can assert how many
// times a code path actually hit the store.
package storetest

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/picshare/readpath/internal/common"
	"github.com/picshare/readpath/internal/dbx"
	"github.com/picshare/readpath/internal/store/comments"
	"github.com/picshare/readpath/internal/store/posts"
	"github.com/picshare/readpath/internal/store/sessions"
	"github.com/picshare/readpath/internal/store/users"

	"github.com/picshare/readpath/internal/models"
)

// FakeManager satisfies store.Manager over in-memory repositories.
//
// Setting Unavailable makes every WithConn/WithTx fail with
// common.ErrStoreUnavailable without invoking the callback, simulating an
// exhausted connection retry budget.
type FakeManager struct {
	mu sync.Mutex

	UsersRepo    *FakeUsers
	PostsRepo    *FakePosts
	CommentsRepo *FakeComments
	SessionsRepo *FakeSessions

	Unavailable bool
	ConnCalls   int
	TxCalls     int
}

func NewFakeManager() *FakeManager {
	m := &FakeManager{}
	m.UsersRepo = &FakeUsers{byID: map[int64]models.User{}}
	m.PostsRepo = &FakePosts{images: map[int64]image{}}
	m.CommentsRepo = &FakeComments{usersRepo: m.UsersRepo}
	m.SessionsRepo = &FakeSessions{byToken: map[string]models.Session{}}
	return m
}

func (m *FakeManager) WithConn(ctx context.Context, fn func(ctx context.Context, db dbx.DBTX) error) error {
	m.mu.Lock()
	if m.Unavailable {
		m.mu.Unlock()
		return common.ErrStoreUnavailable
	}
	m.ConnCalls++
	m.mu.Unlock()
	return fn(ctx, nil)
}

func (m *FakeManager) WithTx(ctx context.Context, fn func(ctx context.Context, tx dbx.DBTX) error) error {
	m.mu.Lock()
	if m.Unavailable {
		m.mu.Unlock()
		return common.ErrStoreUnavailable
	}
	m.TxCalls++
	m.mu.Unlock()
	return fn(ctx, nil)
}

func (m *FakeManager) Users(dbx.DBTX) users.Repository       { return m.UsersRepo }
func (m *FakeManager) Posts(dbx.DBTX) posts.Repository       { return m.PostsRepo }
func (m *FakeManager) Comments(dbx.DBTX) comments.Repository { return m.CommentsRepo }
func (m *FakeManager) Sessions(dbx.DBTX) sessions.Repository { return m.SessionsRepo }
func (m *FakeManager) RunMigrations(ctx context.Context) error { return nil }
func (m *FakeManager) Close() error                            { return nil }

// RoundTrips reports the total number of scoped store interactions.
func (m *FakeManager) RoundTrips() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ConnCalls + m.TxCalls
}

// FakeUsers implements users.Repository over a map.
type FakeUsers struct {
	mu   sync.Mutex
	byID map[int64]models.User

	GetByIDCalls  int
	GetByIDsCalls int
}

func (f *FakeUsers) Add(u models.User) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.byID[u.ID] = u
}

func (f *FakeUsers) GetByID(ctx context.Context, id int64) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.GetByIDCalls++
	u, ok := f.byID[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	return &u, nil
}

func (f *FakeUsers) GetByAccountName(ctx context.Context, accountName string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.byID {
		if u.AccountName == accountName {
			u := u
			return &u, nil
		}
	}
	return nil, common.ErrNotFound
}

func (f *FakeUsers) GetByIDs(ctx context.Context, ids []int64) (map[int64]models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.GetByIDsCalls++
	out := make(map[int64]models.User, len(ids))
	for _, id := range ids {
		if u, ok := f.byID[id]; ok {
			out[id] = u
		}
	}
	return out, nil
}

func (f *FakeUsers) SetDeleted(ctx context.Context, id int64, deleted bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byID[id]
	if !ok {
		return common.ErrNotFound
	}
	if deleted {
		u.DelFlg = 1
	} else {
		u.DelFlg = 0
	}
	f.byID[id] = u
	return nil
}

func (f *FakeUsers) accountName(id int64) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.byID[id].AccountName
}

type image struct {
	mime string
	data []byte
}

// FakePosts implements posts.Repository. Rows are kept in feed order
// (created_at DESC, id DESC), the same ordering the SQL implementation
// returns.
type FakePosts struct {
	mu     sync.Mutex
	rows   []models.Post
	images map[int64]image
	nextID int64

	active func(userID int64) bool

	ListPageCalls int
	GetByIDsCalls int
	GetImageCalls int
}

// SetActiveFilter installs the author-active predicate applied by ListPage.
// Without one, every author counts as active.
func (f *FakePosts) SetActiveFilter(active func(userID int64) bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.active = active
}

func (f *FakePosts) Create(ctx context.Context, post *models.Post, imgdata []byte) (*models.Post, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	created := *post
	created.ID = f.nextID
	if created.CreatedAt.IsZero() {
		created.CreatedAt = time.Now()
	}
	f.rows = append(f.rows, created)
	f.images[created.ID] = image{mime: created.Mime, data: append([]byte(nil), imgdata...)}
	f.sortLocked()
	return &created, nil
}

func (f *FakePosts) Get(ctx context.Context, id int64) (*models.Post, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.rows {
		if p.ID == id {
			p := p
			return &p, nil
		}
	}
	return nil, common.ErrNotFound
}

func (f *FakePosts) GetByIDs(ctx context.Context, ids []int64) (map[int64]models.Post, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.GetByIDsCalls++
	want := make(map[int64]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	out := make(map[int64]models.Post, len(ids))
	for _, p := range f.rows {
		if want[p.ID] {
			out[p.ID] = p
		}
	}
	return out, nil
}

func (f *FakePosts) ListPage(ctx context.Context, createdBefore time.Time, idBefore int64, limit int) ([]models.Post, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ListPageCalls++
	var out []models.Post
	for _, p := range f.rows {
		if f.active != nil && !f.active(p.UserID) {
			continue
		}
		if !createdBefore.IsZero() {
			if p.CreatedAt.After(createdBefore) {
				continue
			}
			if p.CreatedAt.Equal(createdBefore) && p.ID >= idBefore {
				continue
			}
		}
		out = append(out, p)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (f *FakePosts) GetImage(ctx context.Context, id int64) (string, []byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.GetImageCalls++
	img, ok := f.images[id]
	if !ok {
		return "", nil, common.ErrNotFound
	}
	return img.mime, img.data, nil
}

func (f *FakePosts) Delete(ctx context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, p := range f.rows {
		if p.ID == id {
			f.rows = append(f.rows[:i], f.rows[i+1:]...)
			delete(f.images, id)
			return nil
		}
	}
	return common.ErrNotFound
}

func (f *FakePosts) sortLocked() {
	sort.SliceStable(f.rows, func(i, j int) bool {
		if !f.rows[i].CreatedAt.Equal(f.rows[j].CreatedAt) {
			return f.rows[i].CreatedAt.After(f.rows[j].CreatedAt)
		}
		return f.rows[i].ID > f.rows[j].ID
	})
}

// FakeComments implements comments.Repository, joining account names from
// the sibling FakeUsers.
type FakeComments struct {
	mu        sync.Mutex
	rows      []models.Comment
	nextID    int64
	usersRepo *FakeUsers

	CountsCalls int
	RecentCalls int

	// forced failures
	CountsErr error
	RecentErr error
}

func (f *FakeComments) Create(ctx context.Context, comment *models.Comment) (*models.Comment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	created := *comment
	created.ID = f.nextID
	if created.CreatedAt.IsZero() {
		created.CreatedAt = time.Now()
	}
	f.rows = append(f.rows, created)
	return &created, nil
}

func (f *FakeComments) CountsByPostIDs(ctx context.Context, postIDs []int64) (map[int64]int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.CountsCalls++
	if f.CountsErr != nil {
		return nil, f.CountsErr
	}
	want := make(map[int64]bool, len(postIDs))
	for _, id := range postIDs {
		want[id] = true
	}
	out := map[int64]int{}
	for _, c := range f.rows {
		if want[c.PostID] {
			out[c.PostID]++
		}
	}
	return out, nil
}

func (f *FakeComments) RecentByPostIDs(ctx context.Context, postIDs []int64, n int) (map[int64][]models.CommentPreview, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.RecentCalls++
	if f.RecentErr != nil {
		return nil, f.RecentErr
	}
	out := map[int64][]models.CommentPreview{}
	for _, id := range postIDs {
		var perPost []models.Comment
		for _, c := range f.rows {
			if c.PostID == id {
				perPost = append(perPost, c)
			}
		}
		// most recent n, then back to chronological order
		sort.SliceStable(perPost, func(i, j int) bool {
			if !perPost[i].CreatedAt.Equal(perPost[j].CreatedAt) {
				return perPost[i].CreatedAt.After(perPost[j].CreatedAt)
			}
			return perPost[i].ID > perPost[j].ID
		})
		if len(perPost) > n {
			perPost = perPost[:n]
		}
		sort.SliceStable(perPost, func(i, j int) bool {
			if !perPost[i].CreatedAt.Equal(perPost[j].CreatedAt) {
				return perPost[i].CreatedAt.Before(perPost[j].CreatedAt)
			}
			return perPost[i].ID < perPost[j].ID
		})
		if len(perPost) == 0 {
			continue
		}
		previews := make([]models.CommentPreview, 0, len(perPost))
		for _, c := range perPost {
			name := f.usersRepo.accountName(c.UserID)
			previews = append(previews, models.CommentPreview{
				ID:          c.ID,
				UserID:      c.UserID,
				AccountName: name,
				Body:        c.Body,
				CreatedAt:   c.CreatedAt,
			})
		}
		out[id] = previews
	}
	return out, nil
}

// FakeSessions implements sessions.Repository over a map.
type FakeSessions struct {
	mu      sync.Mutex
	byToken map[string]models.Session

	GetByTokenCalls int
}

func (f *FakeSessions) Create(ctx context.Context, token string, userID int64, validity time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	now := time.Now()
	f.byToken[token] = models.Session{
		Token:     token,
		UserID:    userID,
		ExpiresAt: now.Add(validity),
		CreatedAt: now,
	}
	return nil
}

func (f *FakeSessions) GetByToken(ctx context.Context, token string) (*models.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.GetByTokenCalls++
	s, ok := f.byToken[token]
	if !ok || !s.ExpiresAt.After(time.Now()) {
		return nil, common.ErrNotFound
	}
	return &s, nil
}

func (f *FakeSessions) Delete(ctx context.Context, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.byToken, token)
	return nil
}
