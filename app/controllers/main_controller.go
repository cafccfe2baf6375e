package controllers

import (
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/sujit-baniya/flash"
	"gorm.io/gorm"

	"github.com/nghiaphan04/quynh-anh-bio/app/models"
	"github.com/nghiaphan04/quynh-anh-bio/app/repository"
	"github.com/nghiaphan04/quynh-anh-bio/internal/pkg/metrics/counter"
)

// HandleHome renders the public link-in-bio page from the persisted profile.
func HandleHome(c *fiber.Ctx) error {
	profile, err := repository.GetGlobalRepositories().Profile.First()
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			log.Printf("home: failed to load profile: %v", err)
		}
		profile = models.DefaultProfile()
	}
	profile.Normalize()

	if err := counter.AddProfileView(); err != nil {
		log.Printf("home: view counter increment failed: %v", err)
	}

	// Pinned videos first, then the rest in their stored order.
	ordered := make([]string, 0, len(profile.VideoLinks))
	ordered = append(ordered, profile.PinnedVideos...)
	for _, link := range profile.VideoLinks {
		if !profile.IsPinned(link) {
			ordered = append(ordered, link)
		}
	}

	return c.Render("index", fiber.Map{
		"Title":         profile.Username,
		"Profile":       profile,
		"OrderedVideos": ordered,
		"AuthError":     c.Query("error"),
		"IsLoggedIn":    isLoggedIn(c),
		"Flash":         flash.Get(c),
	}, "layouts/main")
}
