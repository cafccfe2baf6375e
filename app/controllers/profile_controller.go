package controllers

import (
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/nghiaphan04/quynh-anh-bio/app/models"
	"github.com/nghiaphan04/quynh-anh-bio/app/repository"
)

// HandleAPIProfileGet serves the profile as JSON for the admin panel and any
// external consumer. Before the first save it returns the default structure
// instead of a 404, so the panel always has something to edit.
func HandleAPIProfileGet(c *fiber.Ctx) error {
	profile, err := repository.GetGlobalRepositories().Profile.First()
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.JSON(models.DefaultProfile())
		}
		log.Printf("profile: load failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch profile",
		})
	}
	profile.Normalize()
	return c.JSON(profile)
}

// HandleAPIProfilePost persists the admin's profile draft. The single row is
// updated in place; it is created on the very first save.
func HandleAPIProfilePost(c *fiber.Ctx) error {
	var draft models.Profile
	if err := c.BodyParser(&draft); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	draft.Normalize()
	if err := draft.Validate(); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":   "Validation failed",
			"details": err.Error(),
		})
	}

	repo := repository.GetGlobalRepositories().Profile
	if err := repo.Save(&draft); err != nil {
		log.Printf("profile: save failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to update profile",
		})
	}

	return c.JSON(draft)
}
