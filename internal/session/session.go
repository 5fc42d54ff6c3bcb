// Package session holds the explicit per-login context the engine's
// design notes call for: the current user, their target schema, and a
// bearer token lifecycle. Users persist on the store's users worksheet;
// sessions live in process memory and die at logout or expiry.
package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/reportstack/consolidator/internal/core"
	"golang.org/x/crypto/bcrypt"
)

var (
	// ErrUserExists is returned when registering a username already taken
	// (case-insensitive comparison).
	ErrUserExists = errors.New("username already exists")

	// ErrPasswordTooShort is returned when a registration password is
	// below the configured minimum.
	ErrPasswordTooShort = errors.New("password too short")

	// ErrInvalidCredentials is returned on a failed login. It gives no
	// hint whether the username or the password was wrong.
	ErrInvalidCredentials = errors.New("invalid username or password")

	// ErrNoSession is returned when a token does not resolve to a live
	// session.
	ErrNoSession = errors.New("no active session")
)

// Users worksheet columns.
const (
	userColName    = "username"
	userColHash    = "password_hash"
	userColCreated = "created_at"
)

var userColumns = []string{userColName, userColHash, userColCreated}

// Context is one logged-in user's session: created at login, destroyed
// at logout. Each session owns its target schema, seeded from the
// configured default fields.
type Context struct {
	ID        string
	User      string
	Schema    *core.SchemaRegistry
	CreatedAt time.Time
}

// Manager registers users against the store's users worksheet and keeps
// live sessions in memory.
type Manager struct {
	store         core.Store
	defaultFields []string
	ttl           time.Duration
	minPassword   int

	mu       sync.Mutex
	sessions map[string]*Context

	now func() time.Time
}

// NewManager creates a session manager. Sessions expire after ttl;
// passwords shorter than minPassword runes are rejected at registration.
func NewManager(st core.Store, defaultFields []string, ttl time.Duration, minPassword int) *Manager {
	return &Manager{
		store:         st,
		defaultFields: defaultFields,
		ttl:           ttl,
		minPassword:   minPassword,
		sessions:      make(map[string]*Context),
		now:           time.Now,
	}
}

// Register adds a new user to the users worksheet. Usernames are stored
// as given but compared case-insensitively; passwords are bcrypt-hashed.
func (m *Manager) Register(ctx context.Context, username, password string) error {
	username = strings.TrimSpace(username)
	if username == "" {
		return fmt.Errorf("register: username is empty")
	}
	if len(password) < m.minPassword {
		return fmt.Errorf("register %q: %w (minimum %d characters)", username, ErrPasswordTooShort, m.minPassword)
	}

	users, err := m.store.Read(ctx, core.WorksheetUsers)
	if err != nil {
		return err
	}
	for i := range users.Rows {
		if strings.EqualFold(users.Cell(i, userColName), username) {
			return fmt.Errorf("register %q: %w", username, ErrUserExists)
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	row := []string{username, string(hash), m.now().Format("2006-01-02 15:04:05")}
	updated := users.Append(core.Table{Columns: userColumns, Rows: [][]string{row}})
	return m.store.Write(ctx, core.WorksheetUsers, updated)
}

// Login verifies credentials and creates a session. The returned
// Context's ID doubles as the bearer token.
func (m *Manager) Login(ctx context.Context, username, password string) (*Context, error) {
	username = strings.TrimSpace(username)

	users, err := m.store.Read(ctx, core.WorksheetUsers)
	if err != nil {
		return nil, err
	}

	var hash string
	var stored string
	for i := range users.Rows {
		if strings.EqualFold(users.Cell(i, userColName), username) {
			stored = users.Cell(i, userColName)
			hash = users.Cell(i, userColHash)
			break
		}
	}
	if hash == "" {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	sess := &Context{
		ID:        uuid.New().String(),
		User:      stored,
		Schema:    core.NewSchemaRegistry(m.defaultFields),
		CreatedAt: m.now(),
	}

	m.mu.Lock()
	m.sessions[sess.ID] = sess
	m.mu.Unlock()
	return sess, nil
}

// Get resolves a bearer token to its live session, evicting it first if
// expired.
func (m *Manager) Get(token string) (*Context, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	sess, ok := m.sessions[token]
	if !ok {
		return nil, ErrNoSession
	}
	if m.ttl > 0 && m.now().Sub(sess.CreatedAt) > m.ttl {
		delete(m.sessions, token)
		return nil, ErrNoSession
	}
	return sess, nil
}

// Logout destroys the session for the given token. Unknown tokens are a
// no-op.
func (m *Manager) Logout(token string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, token)
}
