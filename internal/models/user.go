package models

import (
	"time"

	"gorm.io/gorm"
)

// User mirrors the identity the auth provider hands us; the service only
// needs the subject id and the admin flag for visibility scoping.
type User struct {
	ID       string `json:"id" gorm:"primaryKey;size:255"`
	Name     string `json:"name" gorm:"not null;size:100"`
	Email    string `json:"email" gorm:"uniqueIndex;not null;size:255"`
	IsAdmin  bool   `json:"is_admin" gorm:"default:false"`
	IsActive bool   `json:"is_active" gorm:"default:true"`

	LastLoginAt *time.Time `json:"last_login_at"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

func (User) TableName() string {
	return "users"
}
