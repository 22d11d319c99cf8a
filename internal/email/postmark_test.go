package email

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestSendMagicLink(t *testing.T) {
	var received postmarkEmail
	var gotToken string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotToken = r.Header.Get("X-Postmark-Server-Token")
		if err := json.NewDecoder(r.Body).Decode(&received); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"MessageID": "test-id"}`))
	}))
	defer server.Close()

	client := NewClient("test-token", "hello@solstice.test", "https://solstice.test")
	client.httpClient = &http.Client{Transport: &rewriteTransport{base: http.DefaultTransport, target: server.URL}}

	err := client.SendMagicLink("alice@example.com", "abc123")
	if err != nil {
		t.Fatalf("send magic link: %v", err)
	}

	if gotToken != "test-token" {
		t.Errorf("server token = %q, want %q", gotToken, "test-token")
	}
	if received.To != "alice@example.com" {
		t.Errorf("To = %q, want %q", received.To, "alice@example.com")
	}
	if received.From != "hello@solstice.test" {
		t.Errorf("From = %q, want %q", received.From, "hello@solstice.test")
	}
	if received.Subject != "Sign in to Solstice" {
		t.Errorf("Subject = %q, want %q", received.Subject, "Sign in to Solstice")
	}
	if !strings.Contains(received.TextBody, "https://solstice.test/auth/verify?token=abc123") {
		t.Errorf("TextBody missing verify link: %q", received.TextBody)
	}
	if !strings.Contains(received.HtmlBody, "https://solstice.test/auth/verify?token=abc123") {
		t.Errorf("HtmlBody missing verify link: %q", received.HtmlBody)
	}
}

func TestSendMagicLinkNotConfigured(t *testing.T) {
	client := NewClient("", "hello@solstice.test", "https://solstice.test")

	err := client.SendMagicLink("alice@example.com", "abc123")
	if err == nil {
		t.Fatal("expected error for unconfigured client")
	}
}

func TestSendMagicLinkAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
	}))
	defer server.Close()

	client := NewClient("test-token", "hello@solstice.test", "https://solstice.test")
	client.httpClient = &http.Client{Transport: &rewriteTransport{base: http.DefaultTransport, target: server.URL}}

	err := client.SendMagicLink("alice@example.com", "abc123")
	if err == nil {
		t.Fatal("expected error for API failure")
	}
}

func TestConfigured(t *testing.T) {
	c1 := NewClient("token", "from@test.com", "https://test.com")
	if !c1.Configured() {
		t.Error("expected Configured() = true")
	}

	c2 := NewClient("", "from@test.com", "https://test.com")
	if c2.Configured() {
		t.Error("expected Configured() = false")
	}
}

func TestVerifyLink(t *testing.T) {
	client := NewClient("", "from@test.com", "https://solstice.test")
	got := client.VerifyLink("tok123")
	want := "https://solstice.test/auth/verify?token=tok123"
	if got != want {
		t.Errorf("VerifyLink = %q, want %q", got, want)
	}
}

// rewriteTransport redirects all requests to a test server URL.
type rewriteTransport struct {
	base   http.RoundTripper
	target string
}

func (t *rewriteTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req.URL.Scheme = "http"
	req.URL.Host = t.target[len("http://"):]
	return t.base.RoundTrip(req)
}
