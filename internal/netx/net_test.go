package netx

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestResolveURL(t *testing.T) {
	tests := []struct {
		name string
		base string
		ref  string
		want string
	}{
		{"empty ref", "http://127.0.0.1:8000", "", ""},
		{"blank ref", "http://127.0.0.1:8000", "  ", ""},
		{"relative", "http://127.0.0.1:8000", "uploads/a.png", "http://127.0.0.1:8000/uploads/a.png"},
		{"rooted", "http://127.0.0.1:8000/", "/uploads/a.png", "http://127.0.0.1:8000/uploads/a.png"},
		{"absolute kept", "http://127.0.0.1:8000", "https://cdn.example.com/a.png", "https://cdn.example.com/a.png"},
		{"no base", "", "uploads/a.png", "uploads/a.png"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ResolveURL(tt.base, tt.ref); got != tt.want {
				t.Fatalf("ResolveURL(%q, %q) = %q, want %q", tt.base, tt.ref, got, tt.want)
			}
		})
	}
}

func TestResolveURL_Fetchable(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/uploads/a.png" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_, _ = io.WriteString(w, "img")
	}))
	defer ts.Close()

	resp, err := ts.Client().Get(ResolveURL(ts.URL, "/uploads/a.png"))
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
}
