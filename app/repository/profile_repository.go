package repository

import (
	"gorm.io/gorm"

	"github.com/nghiaphan04/quynh-anh-bio/app/models"
)

// profileRepository implements the ProfileRepository interface
type profileRepository struct {
	db *gorm.DB
}

// NewProfileRepository creates a new profile repository instance
func NewProfileRepository(db *gorm.DB) ProfileRepository {
	return &profileRepository{db: db}
}

func (r *profileRepository) First() (*models.Profile, error) {
	var profile models.Profile
	err := r.db.First(&profile).Error
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

func (r *profileRepository) Save(profile *models.Profile) error {
	profile.Normalize()

	var existing models.Profile
	err := r.db.First(&existing).Error
	switch {
	case err == nil:
		profile.ID = existing.ID
		profile.CreatedAt = existing.CreatedAt
		// The view counter is owned by the flush path, not the admin form.
		profile.ViewCount = existing.ViewCount
		return r.db.Save(profile).Error
	case err == gorm.ErrRecordNotFound:
		profile.ID = 0
		return r.db.Create(profile).Error
	default:
		return err
	}
}

func (r *profileRepository) IncrementViewCount(delta int64) error {
	if delta == 0 {
		return nil
	}
	return r.db.Session(&gorm.Session{AllowGlobalUpdate: true}).
		Model(&models.Profile{}).
		UpdateColumn("view_count", gorm.Expr("view_count + ?", delta)).Error
}
