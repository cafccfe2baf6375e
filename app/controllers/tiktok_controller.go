package controllers

import (
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/nghiaphan04/quynh-anh-bio/app/models"
	"github.com/nghiaphan04/quynh-anh-bio/app/repository"
	"github.com/nghiaphan04/quynh-anh-bio/internal/pkg/env"
	"github.com/nghiaphan04/quynh-anh-bio/internal/pkg/tiktok"
)

// TikTokTokenCookie holds the short-lived access token for the admin's
// browser session. http-only, so the panel's JS never sees the raw token.
const TikTokTokenCookie = "tiktok_access_token"

// AuthSuccessMessageType is the tag the callback popup posts to its opener.
const AuthSuccessMessageType = "TIKTOK_AUTH_SUCCESS"

// popupHTML notifies the opener window and closes the popup. Its only job.
const popupHTML = `<html><body><script>window.opener.postMessage({ type: '` + AuthSuccessMessageType + `' }, '*'); window.close();</script></body></html>`

// HandleTikTokConnect sends the admin's popup to TikTok's authorization page.
func HandleTikTokConnect(c *fiber.Ctx) error {
	client := tiktok.NewClientFromEnv()

	// CSRF nonce on the wire.
	// TODO: stash the state in the session and compare it in
	// HandleTikTokCallback before exchanging the code.
	state := uuid.NewString()

	authURL, err := client.AuthorizeURLWithState(state)
	if err != nil {
		log.Printf("tiktok: connect not configured: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "TikTok OAuth is not configured",
		})
	}

	return c.Redirect(authURL, fiber.StatusTemporaryRedirect)
}

// HandleTikTokCallback exchanges the authorization code for an access token
// and stores it in the session cookie. On success the response is a minimal
// HTML page that signals the opener window and closes the popup.
func HandleTikTokCallback(c *fiber.Ctx) error {
	if errParam := c.Query("error"); errParam != "" {
		// User denied or provider error: back to the home surface, no exchange.
		return c.Redirect("/?error=" + errParam)
	}

	code := c.Query("code")
	if code == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "No code provided",
		})
	}

	client := tiktok.NewClientFromEnv()
	token, err := client.ExchangeCode(c.Context(), code)
	if err != nil {
		log.Printf("tiktok: token exchange failed: %v", err)

		var apiErr *tiktok.APIError
		if errors.As(err, &apiErr) {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error":   "Failed to exchange token",
				"details": apiErr.Message,
				"body":    apiErr.Snippet,
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error":   "Internal server error",
			"details": err.Error(),
		})
	}

	// Exactly one cookie write, and only on success.
	c.Cookie(&fiber.Cookie{
		Name:     TikTokTokenCookie,
		Value:    token.AccessToken,
		MaxAge:   token.ExpiresIn,
		HTTPOnly: true,
		Secure:   !env.IsDev(),
		SameSite: "Lax",
		Path:     "/",
	})

	c.Set(fiber.HeaderContentType, fiber.MIMETextHTMLCharsetUTF8)
	return c.SendString(popupHTML)
}

// HandleTikTokUser aggregates user-info and video-list into the flat
// profile-update payload. Nothing is persisted here; the sync endpoint does
// the merge.
func HandleTikTokUser(c *fiber.Ctx) error {
	accessToken := c.Cookies(TikTokTokenCookie)
	if accessToken == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Not authenticated with TikTok",
		})
	}

	client := tiktok.NewClientFromEnv()
	update, err := client.FetchProfileUpdate(c.Context(), accessToken)
	if err != nil {
		log.Printf("tiktok: aggregation failed: %v", err)

		var apiErr *tiktok.APIError
		if errors.As(err, &apiErr) {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error":   "Failed to fetch user info",
				"details": apiErr.Message,
				"body":    apiErr.Snippet,
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error":   "Internal server error",
			"details": err.Error(),
		})
	}

	return c.JSON(update)
}

// HandleTikTokSync fetches fresh TikTok data and merges it into the persisted
// profile: non-empty payload fields replace stored values, everything else is
// retained, and the merged record is saved immediately.
func HandleTikTokSync(c *fiber.Ctx) error {
	accessToken := c.Cookies(TikTokTokenCookie)
	if accessToken == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Not authenticated with TikTok",
		})
	}

	client := tiktok.NewClientFromEnv()
	update, err := client.FetchProfileUpdate(c.Context(), accessToken)
	if err != nil {
		log.Printf("tiktok: sync aggregation failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch TikTok data",
		})
	}

	repo := repository.GetGlobalRepositories().Profile
	profile, err := repo.First()
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			log.Printf("tiktok: sync profile load failed: %v", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Failed to load profile",
			})
		}
		profile = models.DefaultProfile()
	}

	profile.ApplyUpdate(update)
	if err := repo.Save(profile); err != nil {
		log.Printf("tiktok: sync save failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to save profile",
		})
	}

	return c.JSON(profile)
}
