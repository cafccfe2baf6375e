package tiktok

import "strconv"

// FormatCount renders a raw counter as the compact display string the page
// shows: 999 -> "999", 1000 -> "1.0K", 1500000 -> "1.5M". One decimal place,
// matching TikTok's own rendering.
func FormatCount(n int64) string {
	switch {
	case n >= 1_000_000:
		return strconv.FormatFloat(float64(n)/1_000_000, 'f', 1, 64) + "M"
	case n >= 1_000:
		return strconv.FormatFloat(float64(n)/1_000, 'f', 1, 64) + "K"
	default:
		return strconv.FormatInt(n, 10)
	}
}
