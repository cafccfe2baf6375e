package repository

import (
	"gorm.io/gorm"

	"github.com/nghiaphan04/quynh-anh-bio/app/models"
)

// ProfileRepository defines the interface for profile-related database operations
type ProfileRepository interface {
	// First returns the canonical profile row, or gorm.ErrRecordNotFound
	// before the first save.
	First() (*models.Profile, error)
	// Save updates the row in place, creating it when absent. The single-row
	// invariant lives here: no second row is ever inserted.
	Save(profile *models.Profile) error
	// IncrementViewCount applies a batched page-view delta.
	IncrementViewCount(delta int64) error
}

// UserRepository defines the interface for user-related database operations
type UserRepository interface {
	Create(user *models.User) error
	GetByID(id uint) (*models.User, error)
	GetByEmail(email string) (*models.User, error)
	Update(user *models.User) error
	Count() (int64, error)
}

// Repositories bundles all repository instances
type Repositories struct {
	Profile ProfileRepository
	User    UserRepository
}

// NewRepositories creates all repository instances backed by the given DB
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		Profile: NewProfileRepository(db),
		User:    NewUserRepository(db),
	}
}
