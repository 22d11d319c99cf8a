package auth

import (
	"context"
	"testing"
)

func TestWithAuthFromContext(t *testing.T) {
	ac := AuthContext{Email: "alice@example.com", IsAdmin: true, SessionID: 7}
	ctx := WithAuth(context.Background(), ac)

	got, ok := FromContext(ctx)
	if !ok {
		t.Fatal("expected auth context to be present")
	}
	if got != ac {
		t.Errorf("got %+v, want %+v", got, ac)
	}
}

func TestFromContextEmpty(t *testing.T) {
	_, ok := FromContext(context.Background())
	if ok {
		t.Error("expected no auth context on empty context")
	}
}

func TestHelpersEmpty(t *testing.T) {
	ctx := context.Background()
	if Email(ctx) != "" {
		t.Error("expected empty email on anonymous context")
	}
	if IsAdmin(ctx) {
		t.Error("expected IsAdmin = false on anonymous context")
	}
}

func TestHelpersPopulated(t *testing.T) {
	ctx := WithAuth(context.Background(), AuthContext{Email: "bob@example.com", IsAdmin: false})
	if Email(ctx) != "bob@example.com" {
		t.Errorf("email = %q, want bob@example.com", Email(ctx))
	}
	if IsAdmin(ctx) {
		t.Error("expected IsAdmin = false")
	}
}
