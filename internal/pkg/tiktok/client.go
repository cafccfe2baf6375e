package tiktok

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/nghiaphan04/quynh-anh-bio/app/models"
	"github.com/nghiaphan04/quynh-anh-bio/internal/pkg/env"
)

const (
	defaultAuthorizeURL = "https://www.tiktok.com/v2/auth/authorize/"
	defaultTokenURL     = "https://open.tiktokapis.com/v2/auth/access_token/"
	defaultAPIBaseURL   = "https://open.tiktokapis.com/v2"
	defaultOEmbedURL    = "https://www.tiktok.com/oembed"

	// Scopes needed for profile stats and the video list.
	authorizeScopes = "user.info.basic,user.info.profile,user.info.stats,video.list"

	userInfoFields = "open_id,union_id,avatar_url,avatar_url_100,display_name," +
		"bio_description,is_verified,follower_count,following_count,likes_count," +
		"video_count,profile_deep_link"
	videoListFields = "id,create_time,cover_image_url,share_url,video_description," +
		"duration,title,view_count,like_count"

	// Upstream page-size cap for the video list call.
	videoListMaxCount = 20

	// How much of a raw upstream body is kept in diagnostics.
	snippetLimit = 200
)

type Client struct {
	ClientKey    string
	ClientSecret string
	RedirectURI  string

	AuthorizeURL string
	TokenURL     string
	APIBaseURL   string
	OEmbedURL    string

	HTTPClient *http.Client
}

// TokenResponse is the token-exchange payload. expires_in is in seconds.
type TokenResponse struct {
	AccessToken      string `json:"access_token"`
	ExpiresIn        int    `json:"expires_in"`
	OpenID           string `json:"open_id"`
	Scope            string `json:"scope"`
	TokenType        string `json:"token_type"`
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
}

// UserInfo mirrors the fields requested from /user/info/.
type UserInfo struct {
	OpenID          string `json:"open_id"`
	UnionID         string `json:"union_id"`
	AvatarURL       string `json:"avatar_url"`
	AvatarURL100    string `json:"avatar_url_100"`
	DisplayName     string `json:"display_name"`
	BioDescription  string `json:"bio_description"`
	IsVerified      bool   `json:"is_verified"`
	FollowerCount   int64  `json:"follower_count"`
	FollowingCount  int64  `json:"following_count"`
	LikesCount      int64  `json:"likes_count"`
	VideoCount      int64  `json:"video_count"`
	ProfileDeepLink string `json:"profile_deep_link"`
}

// Video mirrors the fields requested from /video/list/.
type Video struct {
	ID               string `json:"id"`
	CreateTime       int64  `json:"create_time"`
	CoverImageURL    string `json:"cover_image_url"`
	ShareURL         string `json:"share_url"`
	VideoDescription string `json:"video_description"`
	Duration         int    `json:"duration"`
	Title            string `json:"title"`
	ViewCount        int64  `json:"view_count"`
	LikeCount        int64  `json:"like_count"`
}

// APIError is a failed upstream call. Parse failures (non-JSON bodies) and
// API-level failures (valid JSON, wrong shape) are reported through the same
// type but with distinct messages, always carrying a truncated body snippet
// for diagnosis.
type APIError struct {
	Op         string
	StatusCode int
	Message    string
	Snippet    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("tiktok %s failed: %s (status=%d body=%q)", e.Op, e.Message, e.StatusCode, e.Snippet)
}

func NewClientFromEnv() *Client {
	base := strings.TrimRight(env.GetEnv("PUBLIC_DOMAIN", ""), "/")
	redirectURI := strings.TrimSpace(env.GetEnv("TIKTOK_REDIRECT_URI", ""))
	if redirectURI == "" && base != "" {
		redirectURI = base + "/api/tiktok/callback"
	}

	return &Client{
		ClientKey:    strings.TrimSpace(env.GetEnv("TIKTOK_CLIENT_KEY", "")),
		ClientSecret: strings.TrimSpace(env.GetEnv("TIKTOK_CLIENT_SECRET", "")),
		RedirectURI:  redirectURI,
		AuthorizeURL: strings.TrimSpace(env.GetEnv("TIKTOK_AUTHORIZE_URL", defaultAuthorizeURL)),
		TokenURL:     strings.TrimSpace(env.GetEnv("TIKTOK_TOKEN_URL", defaultTokenURL)),
		APIBaseURL:   strings.TrimSpace(env.GetEnv("TIKTOK_API_BASE_URL", defaultAPIBaseURL)),
		OEmbedURL:    strings.TrimSpace(env.GetEnv("TIKTOK_OEMBED_URL", defaultOEmbedURL)),
		HTTPClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// AuthorizeURLWithState builds the URL the admin popup is sent to. The
// redirect URI must exactly match the one used by ExchangeCode.
func (c *Client) AuthorizeURLWithState(state string) (string, error) {
	if strings.TrimSpace(c.ClientKey) == "" {
		return "", errors.New("TIKTOK_CLIENT_KEY is not configured")
	}
	if strings.TrimSpace(c.RedirectURI) == "" {
		return "", errors.New("TIKTOK_REDIRECT_URI is not configured")
	}
	u, err := url.Parse(c.AuthorizeURL)
	if err != nil {
		return "", fmt.Errorf("invalid TIKTOK_AUTHORIZE_URL: %w", err)
	}
	q := u.Query()
	q.Set("client_key", c.ClientKey)
	q.Set("scope", authorizeScopes)
	q.Set("response_type", "code")
	q.Set("redirect_uri", c.RedirectURI)
	q.Set("state", state)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// ExchangeCode trades an authorization code for an access token.
func (c *Client) ExchangeCode(ctx context.Context, code string) (*TokenResponse, error) {
	if strings.TrimSpace(c.ClientKey) == "" || strings.TrimSpace(c.ClientSecret) == "" {
		return nil, errors.New("TIKTOK_CLIENT_KEY/TIKTOK_CLIENT_SECRET are not configured")
	}
	if strings.TrimSpace(code) == "" {
		return nil, errors.New("oauth code is required")
	}

	form := url.Values{}
	form.Set("client_key", c.ClientKey)
	form.Set("client_secret", c.ClientSecret)
	form.Set("code", strings.TrimSpace(code))
	form.Set("grant_type", "authorization_code")
	form.Set("redirect_uri", c.RedirectURI)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.TokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &APIError{Op: "token exchange", StatusCode: resp.StatusCode, Message: "request rejected", Snippet: snippet(body)}
	}

	var out TokenResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, &APIError{Op: "token exchange", StatusCode: resp.StatusCode, Message: "non-JSON response", Snippet: snippet(body)}
	}
	if strings.TrimSpace(out.AccessToken) == "" {
		msg := "missing access_token"
		if out.Error != "" {
			msg = out.Error + ": " + out.ErrorDescription
		}
		return nil, &APIError{Op: "token exchange", StatusCode: resp.StatusCode, Message: msg, Snippet: snippet(body)}
	}
	return &out, nil
}

// GetUserInfo fetches the account's identity and stats with a bearer token.
func (c *Client) GetUserInfo(ctx context.Context, accessToken string) (*UserInfo, error) {
	token := strings.TrimSpace(accessToken)
	if token == "" {
		return nil, errors.New("access token is required")
	}

	u, err := url.Parse(strings.TrimRight(c.APIBaseURL, "/") + "/user/info/")
	if err != nil {
		return nil, err
	}
	q := u.Query()
	q.Set("fields", userInfoFields)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))

	var raw struct {
		Data struct {
			User *UserInfo `json:"user"`
		} `json:"data"`
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, &APIError{Op: "user info", StatusCode: resp.StatusCode, Message: "non-JSON response", Snippet: snippet(body)}
	}
	if raw.Data.User == nil {
		msg := "response missing user object"
		if raw.Error.Code != "" && raw.Error.Code != "ok" {
			msg = raw.Error.Code + ": " + raw.Error.Message
		}
		return nil, &APIError{Op: "user info", StatusCode: resp.StatusCode, Message: msg, Snippet: snippet(body)}
	}
	return raw.Data.User, nil
}

// ListVideos fetches the most recent videos, capped at videoListMaxCount.
func (c *Client) ListVideos(ctx context.Context, accessToken string) ([]Video, error) {
	token := strings.TrimSpace(accessToken)
	if token == "" {
		return nil, errors.New("access token is required")
	}

	u, err := url.Parse(strings.TrimRight(c.APIBaseURL, "/") + "/video/list/")
	if err != nil {
		return nil, err
	}
	q := u.Query()
	q.Set("fields", videoListFields)
	u.RawQuery = q.Encode()

	reqBody, _ := json.Marshal(map[string]int{"max_count": videoListMaxCount})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.String(), bytes.NewReader(reqBody))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 2<<20))

	var raw struct {
		Data struct {
			Videos []Video `json:"videos"`
		} `json:"data"`
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, &APIError{Op: "video list", StatusCode: resp.StatusCode, Message: "non-JSON response", Snippet: snippet(body)}
	}
	if raw.Error.Code != "" && raw.Error.Code != "ok" {
		return nil, &APIError{Op: "video list", StatusCode: resp.StatusCode, Message: raw.Error.Code + ": " + raw.Error.Message, Snippet: snippet(body)}
	}
	return raw.Data.Videos, nil
}

// FetchProfileUpdate aggregates user-info and video-list into a flat profile
// payload. A user-info failure is terminal; a video-list failure is logged and
// degrades to an empty list, never failing the aggregation. The two calls run
// sequentially on purpose: user-info data must be usable even when the video
// call breaks.
func (c *Client) FetchProfileUpdate(ctx context.Context, accessToken string) (*models.ProfileUpdate, error) {
	user, err := c.GetUserInfo(ctx, accessToken)
	if err != nil {
		return nil, err
	}

	var videos []Video
	if videos, err = c.ListVideos(ctx, accessToken); err != nil {
		log.Printf("tiktok: video list fetch failed, continuing without videos: %v", err)
		videos = nil
	}

	videoLinks := make([]string, 0, len(videos))
	rawVideos := make(models.ProfileVideoList, 0, len(videos))
	for _, v := range videos {
		if v.ShareURL == "" {
			continue
		}
		videoLinks = append(videoLinks, v.ShareURL)
		rawVideos = append(rawVideos, models.ProfileVideo{
			ID:               v.ID,
			CreateTime:       v.CreateTime,
			CoverImageURL:    v.CoverImageURL,
			ShareURL:         v.ShareURL,
			VideoDescription: v.VideoDescription,
			Duration:         v.Duration,
			Title:            v.Title,
			ViewCount:        v.ViewCount,
			LikeCount:        v.LikeCount,
		})
	}

	return &models.ProfileUpdate{
		Username:       user.DisplayName,
		Bio:            user.BioDescription,
		AvatarURL:      user.AvatarURL,
		AvatarURL100:   user.AvatarURL100,
		Verified:       user.IsVerified,
		FollowerCount:  FormatCount(user.FollowerCount),
		FollowingCount: FormatCount(user.FollowingCount),
		HeartCount:     FormatCount(user.LikesCount),
		ProfileLink:    user.ProfileDeepLink,
		VideoLinks:     videoLinks,
		Videos:         rawVideos,
	}, nil
}

func snippet(body []byte) string {
	if len(body) > snippetLimit {
		return string(body[:snippetLimit])
	}
	return string(body)
}
