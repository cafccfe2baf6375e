package tiktok

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
)

// FetchOEmbed proxies TikTok's public oEmbed endpoint for a video URL. The
// response is passed through verbatim so the page can embed players without
// exposing the browser to tiktok.com directly.
func (c *Client) FetchOEmbed(ctx context.Context, videoURL string) (json.RawMessage, error) {
	u, err := url.Parse(c.OEmbedURL)
	if err != nil {
		return nil, err
	}
	q := u.Query()
	q.Set("url", videoURL)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &APIError{Op: "oembed", StatusCode: resp.StatusCode, Message: "request rejected", Snippet: snippet(body)}
	}
	if !json.Valid(body) {
		return nil, &APIError{Op: "oembed", StatusCode: resp.StatusCode, Message: "non-JSON response", Snippet: snippet(body)}
	}
	return json.RawMessage(body), nil
}
