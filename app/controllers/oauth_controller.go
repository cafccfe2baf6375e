package controllers

import (
	"errors"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	gothfiber "github.com/shareed2k/goth_fiber"
	"gorm.io/gorm"

	"github.com/nghiaphan04/quynh-anh-bio/app/models"
	"github.com/nghiaphan04/quynh-anh-bio/app/repository"
	"github.com/nghiaphan04/quynh-anh-bio/internal/pkg/env"
	"github.com/nghiaphan04/quynh-anh-bio/internal/pkg/session"
	"github.com/nghiaphan04/quynh-anh-bio/internal/pkg/usercontext"
)

// HandleOAuthCallback completes the provider flow and logs the user in.
// Accounts whose email matches ADMIN_EMAIL get the admin role; anyone else
// signs in as a plain viewer and cannot edit the profile.
func HandleOAuthCallback(c *fiber.Ctx) error {
	u, err := gothfiber.CompleteUserAuth(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).SendString(fmt.Sprintf("OAuth failed: %v", err))
	}

	users := repository.GetGlobalRepositories().User

	appUser, err := users.GetByEmail(u.Email)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		// Password is a random placeholder since validation requires one;
		// it is not usable for form login.
		placeholder := fmt.Sprintf("oauth_%d", time.Now().UnixNano())
		hash, hashErr := models.HashPassword(placeholder)
		if hashErr != nil {
			return c.Status(fiber.StatusInternalServerError).SendString("account setup failed")
		}

		role := models.ROLE_USER
		if u.Email != "" && u.Email == env.GetEnv("ADMIN_EMAIL", "") {
			role = models.ROLE_ADMIN
		}

		appUser = &models.User{
			Name:      firstNonEmpty(u.Name, u.NickName, u.Email, "User"),
			Email:     u.Email,
			Password:  hash,
			Role:      role,
			Status:    models.STATUS_ACTIVE,
			AvatarURL: u.AvatarURL,
		}
		if err := users.Create(appUser); err != nil {
			return c.Status(fiber.StatusInternalServerError).SendString(fmt.Sprintf("create user failed: %v", err))
		}
	} else if err != nil {
		return c.Status(fiber.StatusInternalServerError).SendString(fmt.Sprintf("db error: %v", err))
	}

	sess, err := session.GetSessionStore().Get(c)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).SendString("session init failed")
	}
	sess.Set(usercontext.AuthKey, true)
	sess.Set(usercontext.KeyUserID, appUser.ID)
	sess.Set(usercontext.KeyUsername, appUser.Name)
	sess.Set(usercontext.KeyIsAdmin, appUser.Role == models.ROLE_ADMIN)
	if err := sess.Save(); err != nil {
		return c.Status(fiber.StatusInternalServerError).SendString("session save failed")
	}

	// Best effort; login already succeeded.
	now := time.Now()
	appUser.LastLoginAt = &now
	_ = users.Update(appUser)

	return c.Redirect("/admin", fiber.StatusSeeOther)
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
