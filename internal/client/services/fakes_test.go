package services

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"path/filepath"
	"sync"
	"testing"

	"github.com/dmitrijs2005/pinboard/internal/client/client"
	"github.com/dmitrijs2005/pinboard/internal/client/models"
	"github.com/stretchr/testify/require"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := client.OpenDatabase(context.Background(), filepath.Join(t.TempDir(), "pinboard.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

// fakeBackend implements client.Client. Each call can be overridden with a
// func field; otherwise it answers from the in-memory users and likes.
type fakeBackend struct {
	mu sync.Mutex

	users map[int64]*models.Identity
	likes map[int64][]models.Pin

	LoginFn         func(ctx context.Context, email, password string) (*models.LoginResult, error)
	SignupFn        func(ctx context.Context, email, username, password string) (*models.Identity, error)
	GetUserFn       func(ctx context.Context, id int64) (*models.Identity, error)
	UpdateUserFn    func(ctx context.Context, id int64, username string) (*models.Identity, error)
	LikePinFn       func(ctx context.Context, pinID, userID int64) error
	ListLikedFn     func(ctx context.Context, userID int64) ([]models.Pin, error)
	CreatePinFn     func(ctx context.Context, userID int64, form client.PinForm) (*models.Pin, error)
	UpdatePinFn     func(ctx context.Context, pinID, userID int64, form client.PinForm) (*models.Pin, error)
	DeletePinFn     func(ctx context.Context, pinID, userID int64) error
	ListPinsFn      func(ctx context.Context) ([]models.Pin, error)
	SearchPinsFn    func(ctx context.Context, q string) ([]models.Pin, error)
	UpdateCommentFn func(ctx context.Context, commentID, userID int64, content string) (*models.Comment, error)

	GetUserCalls   int
	LikeCalls      int
	LastLikeUser   int64
	LastPinUser    int64
	LastPinForm    client.PinForm
	LastImageBytes string
	LastDeleted    int64
	LastComment    string
	LastSearch     string
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		users: map[int64]*models.Identity{},
		likes: map[int64][]models.Pin{},
	}
}

func (f *fakeBackend) addUser(id int64, name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.users[id] = &models.Identity{ID: id, DisplayName: name, Email: name + "@x.com"}
}

func (f *fakeBackend) Close() error { return nil }

func (f *fakeBackend) Signup(ctx context.Context, email, username, password string) (*models.Identity, error) {
	if f.SignupFn != nil {
		return f.SignupFn(ctx, email, username, password)
	}
	return nil, errors.New("unexpected Signup")
}

func (f *fakeBackend) Login(ctx context.Context, email, password string) (*models.LoginResult, error) {
	if f.LoginFn != nil {
		return f.LoginFn(ctx, email, password)
	}
	return nil, client.ErrInvalidCredentials
}

func (f *fakeBackend) GetUser(ctx context.Context, id int64) (*models.Identity, error) {
	f.mu.Lock()
	f.GetUserCalls++
	fn := f.GetUserFn
	u, ok := f.users[id]
	f.mu.Unlock()

	if fn != nil {
		return fn(ctx, id)
	}
	if !ok {
		return nil, client.ErrNotFound
	}
	return u.Clone(), nil
}

func (f *fakeBackend) UpdateUser(ctx context.Context, id int64, username string) (*models.Identity, error) {
	if f.UpdateUserFn != nil {
		return f.UpdateUserFn(ctx, id, username)
	}
	return &models.Identity{ID: id, DisplayName: username}, nil
}

func (f *fakeBackend) ListUserPins(ctx context.Context, userID int64) ([]models.Pin, error) {
	return []models.Pin{{ID: 100, UserID: userID, Title: "mine"}}, nil
}

func (f *fakeBackend) ListLikedPins(ctx context.Context, userID int64) ([]models.Pin, error) {
	if f.ListLikedFn != nil {
		return f.ListLikedFn(ctx, userID)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.Pin(nil), f.likes[userID]...), nil
}

func (f *fakeBackend) ListPins(ctx context.Context) ([]models.Pin, error) {
	if f.ListPinsFn != nil {
		return f.ListPinsFn(ctx)
	}
	return []models.Pin{{ID: 1}, {ID: 2}}, nil
}

func (f *fakeBackend) GetPin(ctx context.Context, pinID int64) (*models.Pin, error) {
	return &models.Pin{ID: pinID, UserID: 1}, nil
}

func (f *fakeBackend) SearchPins(ctx context.Context, q string) ([]models.Pin, error) {
	f.mu.Lock()
	f.LastSearch = q
	f.mu.Unlock()
	if f.SearchPinsFn != nil {
		return f.SearchPinsFn(ctx, q)
	}
	return []models.Pin{{ID: 1, Title: q}}, nil
}

func (f *fakeBackend) CreatePin(ctx context.Context, userID int64, form client.PinForm) (*models.Pin, error) {
	f.LastPinUser = userID
	f.LastPinForm = form
	if form.Image != nil {
		b, _ := io.ReadAll(form.Image.Data)
		f.LastImageBytes = string(b)
	}
	if f.CreatePinFn != nil {
		return f.CreatePinFn(ctx, userID, form)
	}
	return &models.Pin{ID: 50, UserID: userID, Title: form.Title, Content: form.Content}, nil
}

func (f *fakeBackend) UpdatePin(ctx context.Context, pinID, userID int64, form client.PinForm) (*models.Pin, error) {
	f.LastPinUser = userID
	f.LastPinForm = form
	if f.UpdatePinFn != nil {
		return f.UpdatePinFn(ctx, pinID, userID, form)
	}
	return &models.Pin{ID: pinID, UserID: userID, Title: form.Title, Content: form.Content}, nil
}

func (f *fakeBackend) DeletePin(ctx context.Context, pinID, userID int64) error {
	f.LastPinUser = userID
	if f.DeletePinFn != nil {
		return f.DeletePinFn(ctx, pinID, userID)
	}
	f.LastDeleted = pinID
	return nil
}

func (f *fakeBackend) LikePin(ctx context.Context, pinID, userID int64) error {
	f.mu.Lock()
	f.LikeCalls++
	f.LastLikeUser = userID
	fn := f.LikePinFn
	f.mu.Unlock()
	if fn != nil {
		return fn(ctx, pinID, userID)
	}
	return nil
}

func (f *fakeBackend) ListComments(ctx context.Context, pinID int64) ([]models.Comment, error) {
	return []models.Comment{{ID: 1, PinID: pinID, UserID: 1, Content: "hi"}}, nil
}

func (f *fakeBackend) CreateComment(ctx context.Context, pinID, userID int64, content string) (*models.Comment, error) {
	f.LastComment = content
	return &models.Comment{ID: 9, PinID: pinID, UserID: userID, Content: content}, nil
}

func (f *fakeBackend) UpdateComment(ctx context.Context, commentID, userID int64, content string) (*models.Comment, error) {
	f.LastComment = content
	if f.UpdateCommentFn != nil {
		return f.UpdateCommentFn(ctx, commentID, userID, content)
	}
	return &models.Comment{ID: commentID, UserID: userID, Content: content}, nil
}

func (f *fakeBackend) DeleteComment(ctx context.Context, commentID, userID int64) error {
	return nil
}

var _ client.Client = (*fakeBackend)(nil)

// memRefs is an in-memory ReferenceStore with injectable failures.
type memRefs struct {
	mu       sync.Mutex
	id       int64
	ok       bool
	SaveErr  error
	ClearErr error
	LoadErr  error
	Clears   int
}

func (m *memRefs) Load(ctx context.Context) (int64, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.LoadErr != nil {
		return 0, false, m.LoadErr
	}
	return m.id, m.ok, nil
}

func (m *memRefs) Save(ctx context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SaveErr != nil {
		return m.SaveErr
	}
	m.id, m.ok = id, true
	return nil
}

func (m *memRefs) Clear(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Clears++
	if m.ClearErr != nil {
		return m.ClearErr
	}
	m.id, m.ok = 0, false
	return nil
}

func (m *memRefs) get() (int64, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.id, m.ok
}

type env struct {
	backend *fakeBackend
	refs    *memRefs
	cache   EngagementCache
	session SessionStore
}

func newEnv(t *testing.T) *env {
	t.Helper()
	b := newFakeBackend()
	refs := &memRefs{}
	cache := NewEngagementCache(b, nil)
	return &env{
		backend: b,
		refs:    refs,
		cache:   cache,
		session: NewSessionStore(b, refs, cache, nil),
	}
}

// loginAs authenticates the env as a fresh user id/name.
func (e *env) loginAs(t *testing.T, id int64, name string) {
	t.Helper()
	e.backend.addUser(id, name)
	e.backend.LoginFn = func(ctx context.Context, email, password string) (*models.LoginResult, error) {
		return &models.LoginResult{Message: "ok", UserID: id}, nil
	}
	_, err := e.session.Login(context.Background(), name+"@x.com", "pw")
	require.NoError(t, err)
}
