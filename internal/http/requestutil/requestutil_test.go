package requestutil

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestSanitizeRequestID(t *testing.T) {
	if got := SanitizeRequestID("valid-123"); got != "valid-123" {
		t.Fatalf("expected pass-through, got %s", got)
	}
	for _, bad := range []string{"", "bad id", strings.Repeat("x", 65), "semi;colon"} {
		got := SanitizeRequestID(bad)
		if got == bad || !requestIDPattern.MatchString(got) {
			t.Fatalf("SanitizeRequestID(%q)=%q, expected a fresh id", bad, got)
		}
	}
	if NewRequestID() == NewRequestID() {
		t.Fatal("expected distinct ids")
	}
}

func TestClientIP(t *testing.T) {
	if got := ClientIP(nil); got != "" {
		t.Fatalf("expected empty for nil request, got %q", got)
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Forwarded-For", "1.2.3.4, 5.6.7.8")
	if got := ClientIP(req); got != "1.2.3.4" {
		t.Fatalf("expected first forwarded address, got %s", got)
	}

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "9.9.9.9:1234"
	if got := ClientIP(req); got != "9.9.9.9" {
		t.Fatalf("expected remote host, got %s", got)
	}

	req.RemoteAddr = "pipe"
	if got := ClientIP(req); got != "pipe" {
		t.Fatalf("expected raw remote addr without a port, got %s", got)
	}
}

func TestBearerToken(t *testing.T) {
	cases := map[string]string{
		"Bearer abc":    "abc",
		"bearer  xyz ":  "xyz",
		"Basic abc":     "",
		"Bearer":        "",
		"":              "",
	}
	for header, want := range cases {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		if got := BearerToken(req); got != want {
			t.Fatalf("BearerToken(%q)=%q want %q", header, got, want)
		}
	}
	if BearerToken(nil) != "" {
		t.Fatal("expected empty token for nil request")
	}
}
