package session

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/reportstack/consolidator/internal/core"
	"github.com/reportstack/consolidator/internal/store"
)

var defaultFields = []string{"Category", "SKU", "Qty"}

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	return NewManager(store.NewMemory(), defaultFields, 12*time.Hour, 4)
}

func TestRegisterAndLogin(t *testing.T) {
	ctx := context.Background()
	m := newTestManager(t)

	if err := m.Register(ctx, "alice", "hunter2!"); err != nil {
		t.Fatalf("register: %v", err)
	}

	sess, err := m.Login(ctx, "alice", "hunter2!")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if sess.User != "alice" {
		t.Errorf("session user = %q, want alice", sess.User)
	}
	if sess.ID == "" {
		t.Error("session ID is empty")
	}
	if got := sess.Schema.Fields(); len(got) != len(defaultFields) {
		t.Errorf("schema fields = %v, want %v", got, defaultFields)
	}

	got, err := m.Get(sess.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got != sess {
		t.Error("Get returned a different session")
	}
}

func TestRegisterRejectsDuplicates(t *testing.T) {
	ctx := context.Background()
	m := newTestManager(t)

	if err := m.Register(ctx, "Alice", "hunter2!"); err != nil {
		t.Fatalf("register: %v", err)
	}

	// Comparison is case-insensitive.
	err := m.Register(ctx, "ALICE", "different1")
	if !errors.Is(err, ErrUserExists) {
		t.Errorf("register duplicate: err = %v, want ErrUserExists", err)
	}
}

func TestRegisterValidation(t *testing.T) {
	ctx := context.Background()
	m := newTestManager(t)

	if err := m.Register(ctx, "bob", "abc"); !errors.Is(err, ErrPasswordTooShort) {
		t.Errorf("short password: err = %v, want ErrPasswordTooShort", err)
	}
	if err := m.Register(ctx, "  ", "longenough"); err == nil {
		t.Error("blank username: expected error")
	}
}

func TestLoginFailures(t *testing.T) {
	ctx := context.Background()
	m := newTestManager(t)

	if err := m.Register(ctx, "alice", "hunter2!"); err != nil {
		t.Fatalf("register: %v", err)
	}

	tests := []struct {
		name     string
		user     string
		password string
	}{
		{"unknown user", "mallory", "hunter2!"},
		{"wrong password", "alice", "wrong"},
		{"empty password", "alice", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := m.Login(ctx, tt.user, tt.password); !errors.Is(err, ErrInvalidCredentials) {
				t.Errorf("err = %v, want ErrInvalidCredentials", err)
			}
		})
	}
}

func TestLoginUsesStoredUsernameCasing(t *testing.T) {
	ctx := context.Background()
	m := newTestManager(t)

	if err := m.Register(ctx, "Alice", "hunter2!"); err != nil {
		t.Fatalf("register: %v", err)
	}
	sess, err := m.Login(ctx, "alice", "hunter2!")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if sess.User != "Alice" {
		t.Errorf("session user = %q, want stored casing Alice", sess.User)
	}
}

func TestSessionsAreIndependent(t *testing.T) {
	ctx := context.Background()
	m := newTestManager(t)

	if err := m.Register(ctx, "alice", "hunter2!"); err != nil {
		t.Fatal(err)
	}
	a, err := m.Login(ctx, "alice", "hunter2!")
	if err != nil {
		t.Fatal(err)
	}
	b, err := m.Login(ctx, "alice", "hunter2!")
	if err != nil {
		t.Fatal(err)
	}
	if a.ID == b.ID {
		t.Fatal("two logins share a token")
	}

	// Schema edits in one session do not leak into the other.
	if err := a.Schema.AddField("Warehouse"); err != nil {
		t.Fatal(err)
	}
	for _, f := range b.Schema.Fields() {
		if f == "Warehouse" {
			t.Error("schema change leaked between sessions")
		}
	}
}

func TestGetExpiry(t *testing.T) {
	ctx := context.Background()
	m := NewManager(store.NewMemory(), defaultFields, time.Hour, 4)

	base := time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return base }

	if err := m.Register(ctx, "alice", "hunter2!"); err != nil {
		t.Fatal(err)
	}
	sess, err := m.Login(ctx, "alice", "hunter2!")
	if err != nil {
		t.Fatal(err)
	}

	m.now = func() time.Time { return base.Add(59 * time.Minute) }
	if _, err := m.Get(sess.ID); err != nil {
		t.Fatalf("get before expiry: %v", err)
	}

	m.now = func() time.Time { return base.Add(2 * time.Hour) }
	if _, err := m.Get(sess.ID); !errors.Is(err, ErrNoSession) {
		t.Errorf("get after expiry: err = %v, want ErrNoSession", err)
	}

	// Expired sessions are evicted, not just hidden.
	m.now = func() time.Time { return base }
	if _, err := m.Get(sess.ID); !errors.Is(err, ErrNoSession) {
		t.Errorf("get after eviction: err = %v, want ErrNoSession", err)
	}
}

func TestLogout(t *testing.T) {
	ctx := context.Background()
	m := newTestManager(t)

	if err := m.Register(ctx, "alice", "hunter2!"); err != nil {
		t.Fatal(err)
	}
	sess, err := m.Login(ctx, "alice", "hunter2!")
	if err != nil {
		t.Fatal(err)
	}

	m.Logout(sess.ID)
	if _, err := m.Get(sess.ID); !errors.Is(err, ErrNoSession) {
		t.Errorf("get after logout: err = %v, want ErrNoSession", err)
	}

	// Unknown tokens are a no-op.
	m.Logout("not-a-token")
}

func TestUsersPersistOnWorksheet(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemory()
	m := NewManager(st, defaultFields, time.Hour, 4)

	if err := m.Register(ctx, "alice", "hunter2!"); err != nil {
		t.Fatal(err)
	}

	users, err := st.Read(ctx, core.WorksheetUsers)
	if err != nil {
		t.Fatal(err)
	}
	if len(users.Rows) != 1 {
		t.Fatalf("users rows = %d, want 1", len(users.Rows))
	}
	if users.Cell(0, "username") != "alice" {
		t.Errorf("username = %q", users.Cell(0, "username"))
	}
	if hash := users.Cell(0, "password_hash"); hash == "hunter2!" || !strings.HasPrefix(hash, "$2") {
		t.Errorf("password stored without hashing: %q", hash)
	}

	// A second manager over the same store sees the user.
	m2 := NewManager(st, defaultFields, time.Hour, 4)
	if _, err := m2.Login(ctx, "alice", "hunter2!"); err != nil {
		t.Errorf("login via fresh manager: %v", err)
	}
}
