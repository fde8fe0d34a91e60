package cli

import (
	"bufio"
	"bytes"
	"context"
	"database/sql"
	"io"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/pinboard/internal/client/client"
	"github.com/dmitrijs2005/pinboard/internal/client/config"
	"github.com/dmitrijs2005/pinboard/internal/client/models"
	"github.com/stretchr/testify/require"
)

const testPassword = "secret"

// memBackend is an in-memory pinboard server. Every account uses testPassword.
type memBackend struct {
	mu sync.Mutex

	nextID   int64
	users    map[int64]*models.Identity
	pins     map[int64]*models.Pin
	comments map[int64]*models.Comment
	likes    map[int64][]int64

	LikeErr    error
	Uploaded   map[string]string
	CloseCalls int
}

func newMemBackend() *memBackend {
	return &memBackend{
		nextID:   100,
		users:    map[int64]*models.Identity{},
		pins:     map[int64]*models.Pin{},
		comments: map[int64]*models.Comment{},
		likes:    map[int64][]int64{},
		Uploaded: map[string]string{},
	}
}

func (m *memBackend) id() int64 {
	m.nextID++
	return m.nextID
}

func (m *memBackend) addUser(id int64, name string) *models.Identity {
	m.mu.Lock()
	defer m.mu.Unlock()
	u := &models.Identity{ID: id, DisplayName: name, Email: name + "@example.org"}
	m.users[id] = u
	return u
}

func (m *memBackend) addPin(id, owner int64, title string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pins[id] = &models.Pin{ID: id, UserID: owner, Title: title, Content: title + " body"}
}

func (m *memBackend) addComment(id, pinID, owner int64, content string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.comments[id] = &models.Comment{ID: id, PinID: pinID, UserID: owner, Content: content}
}

func (m *memBackend) pin(id int64) *models.Pin {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p, ok := m.pins[id]; ok {
		c := *p
		return &c
	}
	return nil
}

func (m *memBackend) comment(id int64) *models.Comment {
	m.mu.Lock()
	defer m.mu.Unlock()
	if c, ok := m.comments[id]; ok {
		cc := *c
		return &cc
	}
	return nil
}

func (m *memBackend) sortedPins(keep func(*models.Pin) bool) []models.Pin {
	out := []models.Pin{}
	for _, p := range m.pins {
		if keep(p) {
			out = append(out, *p)
		}
	}
	slices.SortFunc(out, func(a, b models.Pin) int { return int(a.ID - b.ID) })
	return out
}

func (m *memBackend) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CloseCalls++
	return nil
}

func (m *memBackend) Signup(_ context.Context, email, username, _ string) (*models.Identity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			return nil, client.ErrConflict
		}
	}
	u := &models.Identity{ID: m.id(), DisplayName: username, Email: email}
	m.users[u.ID] = u
	return u.Clone(), nil
}

func (m *memBackend) Login(_ context.Context, email, password string) (*models.LoginResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email && password == testPassword {
			return &models.LoginResult{Message: "Login successful", UserID: u.ID}, nil
		}
	}
	return nil, client.ErrInvalidCredentials
}

func (m *memBackend) GetUser(_ context.Context, id int64) (*models.Identity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, client.ErrNotFound
	}
	return u.Clone(), nil
}

func (m *memBackend) UpdateUser(_ context.Context, id int64, username string) (*models.Identity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, client.ErrNotFound
	}
	u.DisplayName = username
	return u.Clone(), nil
}

func (m *memBackend) ListUserPins(_ context.Context, userID int64) ([]models.Pin, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sortedPins(func(p *models.Pin) bool { return p.UserID == userID }), nil
}

func (m *memBackend) ListLikedPins(_ context.Context, userID int64) ([]models.Pin, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	liked := m.likes[userID]
	return m.sortedPins(func(p *models.Pin) bool { return slices.Contains(liked, p.ID) }), nil
}

func (m *memBackend) ListPins(_ context.Context) ([]models.Pin, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sortedPins(func(*models.Pin) bool { return true }), nil
}

func (m *memBackend) GetPin(_ context.Context, pinID int64) (*models.Pin, error) {
	if p := m.pin(pinID); p != nil {
		return p, nil
	}
	return nil, client.ErrNotFound
}

func (m *memBackend) SearchPins(_ context.Context, q string) ([]models.Pin, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	q = strings.ToLower(q)
	return m.sortedPins(func(p *models.Pin) bool {
		return strings.Contains(strings.ToLower(p.Title), q)
	}), nil
}

func (m *memBackend) upload(form client.PinForm) string {
	if form.Image == nil {
		return ""
	}
	b, _ := io.ReadAll(form.Image.Data)
	m.Uploaded[form.Image.FileName] = string(b)
	return "/uploads/" + form.Image.FileName
}

func (m *memBackend) CreatePin(_ context.Context, userID int64, form client.PinForm) (*models.Pin, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p := &models.Pin{ID: m.id(), UserID: userID, Title: form.Title, Content: form.Content, Image: m.upload(form)}
	m.pins[p.ID] = p
	c := *p
	return &c, nil
}

func (m *memBackend) UpdatePin(_ context.Context, pinID, userID int64, form client.PinForm) (*models.Pin, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.pins[pinID]
	if !ok {
		return nil, client.ErrNotFound
	}
	if p.UserID != userID {
		return nil, client.ErrUnauthorized
	}
	if form.Title != "" {
		p.Title = form.Title
	}
	if form.Content != "" {
		p.Content = form.Content
	}
	if img := m.upload(form); img != "" {
		p.Image = img
	}
	c := *p
	return &c, nil
}

func (m *memBackend) DeletePin(_ context.Context, pinID, userID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.pins[pinID]
	if !ok {
		return client.ErrNotFound
	}
	if p.UserID != userID {
		return client.ErrUnauthorized
	}
	delete(m.pins, pinID)
	return nil
}

func (m *memBackend) LikePin(_ context.Context, pinID, userID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.LikeErr != nil {
		return m.LikeErr
	}
	if _, ok := m.pins[pinID]; !ok {
		return client.ErrNotFound
	}
	if slices.Contains(m.likes[userID], pinID) {
		return client.ErrConflict
	}
	m.likes[userID] = append(m.likes[userID], pinID)
	return nil
}

func (m *memBackend) ListComments(_ context.Context, pinID int64) ([]models.Comment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.Comment{}
	for _, c := range m.comments {
		if c.PinID == pinID {
			out = append(out, *c)
		}
	}
	slices.SortFunc(out, func(a, b models.Comment) int { return int(a.ID - b.ID) })
	return out, nil
}

func (m *memBackend) CreateComment(_ context.Context, pinID, userID int64, content string) (*models.Comment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.pins[pinID]; !ok {
		return nil, client.ErrNotFound
	}
	c := &models.Comment{ID: m.id(), PinID: pinID, UserID: userID, Content: content}
	m.comments[c.ID] = c
	cc := *c
	return &cc, nil
}

func (m *memBackend) UpdateComment(_ context.Context, commentID, userID int64, content string) (*models.Comment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.comments[commentID]
	if !ok {
		return nil, client.ErrNotFound
	}
	if c.UserID != userID {
		return nil, client.ErrUnauthorized
	}
	c.Content = content
	cc := *c
	return &cc, nil
}

func (m *memBackend) DeleteComment(_ context.Context, commentID, userID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.comments[commentID]
	if !ok {
		return client.ErrNotFound
	}
	if c.UserID != userID {
		return client.ErrUnauthorized
	}
	delete(m.comments, commentID)
	return nil
}

var _ client.Client = (*memBackend)(nil)

type fixture struct {
	app     *App
	backend *memBackend
	db      *sql.DB
	out     *bytes.Buffer
}

// newFixture builds an App over the real services, an in-memory backend and a
// temporary session database.
func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()

	db, err := client.OpenDatabase(ctx, filepath.Join(t.TempDir(), "pinboard.db"))
	require.NoError(t, err)

	cfg := &config.Config{ServerURL: "http://pins.test", SessionTTL: time.Hour}
	b := newMemBackend()
	out := &bytes.Buffer{}

	a := newApp(cfg, db, b, nil)
	a.out = out
	a.reader = bufio.NewReader(strings.NewReader(""))
	t.Cleanup(func() { _ = a.Close() })

	stubPassword(t, testPassword)
	return &fixture{app: a, backend: b, db: db, out: out}
}

// input queues lines for the prompts of the next command.
func (f *fixture) input(lines ...string) {
	f.app.reader = bufio.NewReader(strings.NewReader(strings.Join(lines, "\n") + "\n"))
}

func (f *fixture) loginAs(t *testing.T, id int64, name string) {
	t.Helper()
	u := f.backend.addUser(id, name)
	require.NoError(t, f.app.Login(context.Background(), []string{u.Email}))
	f.out.Reset()
}

func stubPassword(t *testing.T, pw string) {
	t.Helper()
	orig := getPassword
	getPassword = func(io.Writer) ([]byte, error) { return []byte(pw), nil }
	t.Cleanup(func() { getPassword = orig })
}
