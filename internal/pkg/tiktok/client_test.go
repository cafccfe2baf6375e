package tiktok

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"
)

func testClient() *Client {
	return &Client{
		ClientKey:    "test-key",
		ClientSecret: "test-secret",
		RedirectURI:  "https://example.com/api/tiktok/callback",
		AuthorizeURL: defaultAuthorizeURL,
		TokenURL:     defaultTokenURL,
		APIBaseURL:   defaultAPIBaseURL,
		OEmbedURL:    defaultOEmbedURL,
		HTTPClient:   &http.Client{Timeout: 5 * time.Second},
	}
}

func TestAuthorizeURLWithState(t *testing.T) {
	c := testClient()

	raw, err := c.AuthorizeURLWithState("nonce-123")
	if err != nil {
		t.Fatalf("AuthorizeURLWithState: %v", err)
	}

	u, err := url.Parse(raw)
	if err != nil {
		t.Fatalf("parse authorize URL: %v", err)
	}
	q := u.Query()
	if got := q.Get("client_key"); got != "test-key" {
		t.Fatalf("client_key = %q", got)
	}
	if got := q.Get("redirect_uri"); got != c.RedirectURI {
		t.Fatalf("redirect_uri = %q", got)
	}
	if got := q.Get("response_type"); got != "code" {
		t.Fatalf("response_type = %q", got)
	}
	if got := q.Get("state"); got != "nonce-123" {
		t.Fatalf("state = %q", got)
	}
	if !strings.Contains(q.Get("scope"), "video.list") {
		t.Fatalf("scope missing video.list: %q", q.Get("scope"))
	}
}

func TestAuthorizeURLWithState_MissingConfig(t *testing.T) {
	c := testClient()
	c.ClientKey = ""
	if _, err := c.AuthorizeURLWithState("s"); err == nil {
		t.Fatalf("expected error without client key")
	}
}

func TestExchangeCode_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/x-www-form-urlencoded" {
			t.Errorf("content-type = %q", ct)
		}
		if err := r.ParseForm(); err != nil {
			t.Errorf("parse form: %v", err)
		}
		if got := r.PostForm.Get("grant_type"); got != "authorization_code" {
			t.Errorf("grant_type = %q", got)
		}
		if got := r.PostForm.Get("code"); got != "the-code" {
			t.Errorf("code = %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"access_token":"tok-1","expires_in":86400,"open_id":"o1","scope":"user.info.basic","token_type":"Bearer"}`))
	}))
	defer srv.Close()

	c := testClient()
	c.TokenURL = srv.URL

	tok, err := c.ExchangeCode(context.Background(), "the-code")
	if err != nil {
		t.Fatalf("ExchangeCode: %v", err)
	}
	if tok.AccessToken != "tok-1" {
		t.Fatalf("access token = %q", tok.AccessToken)
	}
	if tok.ExpiresIn != 86400 {
		t.Fatalf("expires_in = %d", tok.ExpiresIn)
	}
}

func TestExchangeCode_NonJSONResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>not json</html>"))
	}))
	defer srv.Close()

	c := testClient()
	c.TokenURL = srv.URL

	_, err := c.ExchangeCode(context.Background(), "code")
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.Message != "non-JSON response" {
		t.Fatalf("message = %q", apiErr.Message)
	}
	if !strings.Contains(apiErr.Snippet, "not json") {
		t.Fatalf("snippet should carry the raw body, got %q", apiErr.Snippet)
	}
}

func TestExchangeCode_Rejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":"invalid_grant","error_description":"code expired"}`))
	}))
	defer srv.Close()

	c := testClient()
	c.TokenURL = srv.URL

	_, err := c.ExchangeCode(context.Background(), "stale")
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d", apiErr.StatusCode)
	}
}

func TestExchangeCode_MissingToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"error":"invalid_request","error_description":"redirect mismatch"}`))
	}))
	defer srv.Close()

	c := testClient()
	c.TokenURL = srv.URL

	_, err := c.ExchangeCode(context.Background(), "code")
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if !strings.Contains(apiErr.Message, "invalid_request") {
		t.Fatalf("message should carry the provider error, got %q", apiErr.Message)
	}
}

func TestGetUserInfo_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer tok" {
			t.Errorf("authorization = %q", got)
		}
		if !strings.Contains(r.URL.RawQuery, "fields=") {
			t.Errorf("missing fields query: %s", r.URL.RawQuery)
		}
		w.Write([]byte(`{"data":{"user":{"display_name":"Quynh Anh","follower_count":1500000,"is_verified":true}},"error":{"code":"ok"}}`))
	}))
	defer srv.Close()

	c := testClient()
	c.APIBaseURL = srv.URL

	user, err := c.GetUserInfo(context.Background(), "tok")
	if err != nil {
		t.Fatalf("GetUserInfo: %v", err)
	}
	if user.DisplayName != "Quynh Anh" {
		t.Fatalf("display name = %q", user.DisplayName)
	}
	if !user.IsVerified {
		t.Fatalf("expected verified")
	}
}

func TestGetUserInfo_MissingUser(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":{},"error":{"code":"access_token_invalid","message":"token expired"}}`))
	}))
	defer srv.Close()

	c := testClient()
	c.APIBaseURL = srv.URL

	_, err := c.GetUserInfo(context.Background(), "tok")
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if !strings.Contains(apiErr.Message, "access_token_invalid") {
		t.Fatalf("message = %q", apiErr.Message)
	}
}

func TestFetchProfileUpdate_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasPrefix(r.URL.Path, "/user/info/"):
			w.Write([]byte(`{"data":{"user":{
				"display_name":"Quynh Anh",
				"bio_description":"hello",
				"avatar_url":"https://cdn.example/avatar.jpg",
				"is_verified":true,
				"follower_count":1500000,
				"following_count":321,
				"likes_count":24000000,
				"profile_deep_link":"https://www.tiktok.com/@quynhanh"
			}},"error":{"code":"ok"}}`))
		case strings.HasPrefix(r.URL.Path, "/video/list/"):
			w.Write([]byte(`{"data":{"videos":[
				{"id":"v1","share_url":"https://www.tiktok.com/@quynhanh/video/1","title":"one"},
				{"id":"v2","share_url":"","title":"no share url"},
				{"id":"v3","share_url":"https://www.tiktok.com/@quynhanh/video/3","title":"three"}
			]},"error":{"code":"ok"}}`))
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}))
	defer srv.Close()

	c := testClient()
	c.APIBaseURL = srv.URL

	update, err := c.FetchProfileUpdate(context.Background(), "tok")
	if err != nil {
		t.Fatalf("FetchProfileUpdate: %v", err)
	}
	if update.Username != "Quynh Anh" {
		t.Fatalf("username = %q", update.Username)
	}
	if update.FollowerCount != "1.5M" {
		t.Fatalf("follower count = %q", update.FollowerCount)
	}
	if update.FollowingCount != "321" {
		t.Fatalf("following count = %q", update.FollowingCount)
	}
	if update.HeartCount != "24.0M" {
		t.Fatalf("heart count = %q", update.HeartCount)
	}
	// Videos without a share URL are skipped.
	if len(update.VideoLinks) != 2 {
		t.Fatalf("video links = %v", update.VideoLinks)
	}
	if update.VideoLinks[0] != "https://www.tiktok.com/@quynhanh/video/1" {
		t.Fatalf("first link = %q", update.VideoLinks[0])
	}
	if len(update.Videos) != 2 {
		t.Fatalf("raw videos = %d", len(update.Videos))
	}
}

func TestFetchProfileUpdate_VideoListFailureDegrades(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasPrefix(r.URL.Path, "/user/info/"):
			w.Write([]byte(`{"data":{"user":{"display_name":"Quynh Anh","follower_count":10}},"error":{"code":"ok"}}`))
		case strings.HasPrefix(r.URL.Path, "/video/list/"):
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte(`{"error":{"code":"internal_error","message":"boom"}}`))
		}
	}))
	defer srv.Close()

	c := testClient()
	c.APIBaseURL = srv.URL

	update, err := c.FetchProfileUpdate(context.Background(), "tok")
	if err != nil {
		t.Fatalf("video list failure must not fail aggregation: %v", err)
	}
	if update.Username != "Quynh Anh" {
		t.Fatalf("username = %q", update.Username)
	}
	if len(update.VideoLinks) != 0 {
		t.Fatalf("expected no video links, got %v", update.VideoLinks)
	}
}

func TestFetchProfileUpdate_UserInfoFailureIsTerminal(t *testing.T) {
	videoCalled := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasPrefix(r.URL.Path, "/user/info/"):
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"error":{"code":"access_token_invalid","message":"expired"}}`))
		case strings.HasPrefix(r.URL.Path, "/video/list/"):
			videoCalled = true
		}
	}))
	defer srv.Close()

	c := testClient()
	c.APIBaseURL = srv.URL

	if _, err := c.FetchProfileUpdate(context.Background(), "tok"); err == nil {
		t.Fatalf("expected user info failure to be terminal")
	}
	if videoCalled {
		t.Fatalf("video list must not be called after user info fails")
	}
}
