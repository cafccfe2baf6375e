package controllers

import (
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/sujit-baniya/flash"
	"gorm.io/gorm"

	"github.com/nghiaphan04/quynh-anh-bio/app/models"
	"github.com/nghiaphan04/quynh-anh-bio/app/repository"
	"github.com/nghiaphan04/quynh-anh-bio/internal/pkg/avatar"
	"github.com/nghiaphan04/quynh-anh-bio/internal/pkg/metrics/counter"
	"github.com/nghiaphan04/quynh-anh-bio/internal/pkg/usercontext"
)

// HandleAdminPanel renders the editing surface. The panel itself loads the
// profile over /api/profile, so this handler only needs view state.
func HandleAdminPanel(c *fiber.Ctx) error {
	// Opportunistic flush keeps the stored view counter roughly current
	// whenever the admin looks at the panel.
	if err := counter.Flush(repository.GetGlobalRepositories().Profile); err != nil {
		log.Printf("admin: view counter flush failed: %v", err)
	}

	profile, err := repository.GetGlobalRepositories().Profile.First()
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			log.Printf("admin: failed to load profile: %v", err)
		}
		profile = models.DefaultProfile()
	}
	profile.Normalize()

	pending, err := counter.PendingViews()
	if err != nil {
		log.Printf("admin: pending views read failed: %v", err)
	}

	uc := usercontext.GetUserContext(c)

	return c.Render("admin", fiber.Map{
		"Title":        "Quản lý trang cá nhân",
		"Profile":      profile,
		"PendingViews": pending,
		"Username":     uc.Username,
		"IsAdmin":      uc.IsAdmin,
		"IsLoggedIn":   true,
		"csrf":         csrfToken(c),
		"Flash":        flash.Get(c),
	}, "layouts/main")
}

// HandleAvatarUpload accepts a multipart image, crops it square and points
// the profile at the stored file.
func HandleAvatarUpload(c *fiber.Ctx) error {
	fileHeader, err := c.FormFile("avatar")
	if err != nil {
		fm := fiber.Map{"type": "error", "message": "Chưa chọn ảnh đại diện."}
		return flash.WithError(c, fm).Redirect("/admin")
	}

	file, err := fileHeader.Open()
	if err != nil {
		fm := fiber.Map{"type": "error", "message": "Không đọc được tệp tải lên."}
		return flash.WithError(c, fm).Redirect("/admin")
	}
	defer file.Close()

	publicPath, err := avatar.Process(file, "./uploads")
	if err != nil {
		log.Printf("admin: avatar processing failed: %v", err)
		fm := fiber.Map{"type": "error", "message": "Ảnh không hợp lệ hoặc không xử lý được."}
		return flash.WithError(c, fm).Redirect("/admin")
	}

	repo := repository.GetGlobalRepositories().Profile
	profile, err := repo.First()
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			log.Printf("admin: failed to load profile for avatar: %v", err)
			fm := fiber.Map{"type": "error", "message": "Không tải được hồ sơ."}
			return flash.WithError(c, fm).Redirect("/admin")
		}
		profile = models.DefaultProfile()
	}

	profile.AvatarURL = publicPath
	profile.AvatarURL100 = publicPath
	if err := repo.Save(profile); err != nil {
		log.Printf("admin: avatar save failed: %v", err)
		fm := fiber.Map{"type": "error", "message": "Không lưu được ảnh đại diện."}
		return flash.WithError(c, fm).Redirect("/admin")
	}

	fm := fiber.Map{"type": "success", "message": "Đã cập nhật ảnh đại diện!"}
	return flash.WithSuccess(c, fm).Redirect("/admin")
}
