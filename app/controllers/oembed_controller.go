package controllers

import (
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"

	"github.com/nghiaphan04/quynh-anh-bio/internal/pkg/cache"
	"github.com/nghiaphan04/quynh-anh-bio/internal/pkg/tiktok"
)

const oembedCacheTTL = 1 * time.Hour

// HandleAPIOEmbed proxies TikTok's oEmbed endpoint so the public page can
// render video cards without hitting TikTok from every visitor's browser.
// Responses are cached per video URL.
func HandleAPIOEmbed(c *fiber.Ctx) error {
	videoURL := c.Query("url")
	if videoURL == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "url parameter is required",
		})
	}

	cacheKey := "oembed:" + videoURL
	if cached, err := cache.Get(cacheKey); err == nil {
		c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
		return c.SendString(cached)
	} else if err != redis.Nil {
		log.Printf("oembed: cache read failed: %v", err)
	}

	client := tiktok.NewClientFromEnv()
	payload, err := client.FetchOEmbed(c.Context(), videoURL)
	if err != nil {
		log.Printf("oembed: fetch failed: %v", err)
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"error": "Failed to fetch oEmbed data",
		})
	}

	if err := cache.Set(cacheKey, string(payload), oembedCacheTTL); err != nil {
		log.Printf("oembed: cache write failed: %v", err)
	}

	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	return c.Send(payload)
}
