package tiktok

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestFetchOEmbed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("url"); got != "https://www.tiktok.com/@x/video/1" {
			t.Errorf("url param = %q", got)
		}
		w.Write([]byte(`{"title":"clip","thumbnail_url":"https://cdn.example/t.jpg"}`))
	}))
	defer srv.Close()

	c := &Client{OEmbedURL: srv.URL, HTTPClient: &http.Client{Timeout: 5 * time.Second}}

	payload, err := c.FetchOEmbed(context.Background(), "https://www.tiktok.com/@x/video/1")
	if err != nil {
		t.Fatalf("FetchOEmbed: %v", err)
	}
	if len(payload) == 0 {
		t.Fatalf("empty payload")
	}
}

func TestFetchOEmbed_InvalidJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>error page</html>"))
	}))
	defer srv.Close()

	c := &Client{OEmbedURL: srv.URL, HTTPClient: &http.Client{Timeout: 5 * time.Second}}

	if _, err := c.FetchOEmbed(context.Background(), "https://www.tiktok.com/@x/video/1"); err == nil {
		t.Fatalf("expected error on non-JSON body")
	}
}
