package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type User struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Email       string    `gorm:"size:255;uniqueIndex;not null" json:"email"`
	Password    string    `gorm:"size:255;not null" json:"-"`
	FirstName   string    `gorm:"size:128;not null" json:"first_name"`
	LastName    string    `gorm:"size:128;not null" json:"last_name"`
	IsActive    bool      `gorm:"default:false" json:"is_active"`
	IsStaff     bool      `gorm:"default:false" json:"is_staff"`
	IsSuperuser bool      `gorm:"default:false" json:"is_superuser"`
	Thumbnail   *string   `gorm:"size:512" json:"thumbnail"`
	DateJoined  time.Time `gorm:"column:date_joined;autoCreateTime" json:"date_joined"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

// UserVisible is the profile shape exposed to other users. The password
// hash never leaves the User model.
type UserVisible struct {
	ID          uuid.UUID `json:"id"`
	Email       string    `json:"email"`
	FirstName   string    `json:"first_name"`
	LastName    string    `json:"last_name"`
	IsActive    bool      `json:"is_active"`
	IsStaff     bool      `json:"is_staff"`
	IsSuperuser bool      `json:"is_superuser"`
	Thumbnail   *string   `json:"thumbnail"`
	DateJoined  time.Time `json:"date_joined"`
}

func (u *User) Visible() UserVisible {
	return UserVisible{
		ID:          u.ID,
		Email:       u.Email,
		FirstName:   u.FirstName,
		LastName:    u.LastName,
		IsActive:    u.IsActive,
		IsStaff:     u.IsStaff,
		IsSuperuser: u.IsSuperuser,
		Thumbnail:   u.Thumbnail,
		DateJoined:  u.DateJoined,
	}
}
