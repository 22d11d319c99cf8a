package store

import (
	"testing"
	"time"

	"github.com/rowanhale/solstice/internal/database"
)

func setupSessionTestDB(t *testing.T) *SessionStore {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewSessionStore(db)
}

func TestSessionCreate(t *testing.T) {
	ss := setupSessionTestDB(t)

	sess, err := ss.Create("alice@example.com", false)
	if err != nil {
		t.Fatalf("create session: %v", err)
	}
	if sess.Token == "" {
		t.Error("expected non-empty token")
	}
	if len(sess.Token) != 64 { // 32 bytes hex-encoded
		t.Errorf("token length = %d, want 64", len(sess.Token))
	}
	if sess.Email != "alice@example.com" {
		t.Errorf("email = %q, want %q", sess.Email, "alice@example.com")
	}
	if sess.IsAdmin {
		t.Error("expected is_admin = false")
	}

	until := time.Until(sess.ExpiresAt)
	if until < 6*24*time.Hour || until > 8*24*time.Hour {
		t.Errorf("expiry in %v, want ~7 days", until)
	}
}

func TestSessionAdminSnapshot(t *testing.T) {
	ss := setupSessionTestDB(t)

	sess, err := ss.Create("admin@example.com", true)
	if err != nil {
		t.Fatalf("create admin session: %v", err)
	}

	got, err := ss.GetByToken(sess.Token)
	if err != nil {
		t.Fatalf("get by token: %v", err)
	}
	if got == nil {
		t.Fatal("expected session, got nil")
	}
	if !got.IsAdmin {
		t.Error("expected stored is_admin = true")
	}
}

func TestSessionGetByTokenNotFound(t *testing.T) {
	ss := setupSessionTestDB(t)

	sess, err := ss.GetByToken("nonexistent")
	if err != nil {
		t.Fatalf("get by token: %v", err)
	}
	if sess != nil {
		t.Error("expected nil for nonexistent token")
	}
}

func TestSessionGetByTokenExpired(t *testing.T) {
	ss := setupSessionTestDB(t)

	created, _ := ss.Create("alice@example.com", false)
	ss.db.Exec(`UPDATE sessions SET expires_at = datetime('now', '-1 minute') WHERE id = ?`, created.ID)

	sess, err := ss.GetByToken(created.Token)
	if err != nil {
		t.Fatalf("get expired: %v", err)
	}
	if sess != nil {
		t.Error("expected nil for expired session")
	}
}

func TestSessionDelete(t *testing.T) {
	ss := setupSessionTestDB(t)

	created, _ := ss.Create("alice@example.com", false)

	if err := ss.Delete(created.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	sess, err := ss.GetByToken(created.Token)
	if err != nil {
		t.Fatalf("get after delete: %v", err)
	}
	if sess != nil {
		t.Error("expected nil after delete")
	}
}

func TestSessionDeleteByEmail(t *testing.T) {
	ss := setupSessionTestDB(t)

	first, _ := ss.Create("alice@example.com", false)
	second, _ := ss.Create("alice@example.com", false)
	other, _ := ss.Create("bob@example.com", false)

	if err := ss.DeleteByEmail("alice@example.com"); err != nil {
		t.Fatalf("delete by email: %v", err)
	}

	for _, token := range []string{first.Token, second.Token} {
		sess, err := ss.GetByToken(token)
		if err != nil {
			t.Fatalf("get after revoke all: %v", err)
		}
		if sess != nil {
			t.Error("expected revoked session to be invalid")
		}
	}

	// Other users are untouched
	sess, err := ss.GetByToken(other.Token)
	if err != nil {
		t.Fatalf("get other session: %v", err)
	}
	if sess == nil {
		t.Error("expected bob's session to survive")
	}
}

func TestSessionDeleteExpired(t *testing.T) {
	ss := setupSessionTestDB(t)

	created, _ := ss.Create("alice@example.com", false)
	ss.Create("bob@example.com", false)
	ss.db.Exec(`UPDATE sessions SET expires_at = datetime('now', '-1 hour') WHERE id = ?`, created.ID)

	count, err := ss.DeleteExpired()
	if err != nil {
		t.Fatalf("delete expired: %v", err)
	}
	if count != 1 {
		t.Errorf("deleted = %d, want 1", count)
	}
}
