package models

import (
	"time"

	"gorm.io/gorm"
)

type UserRole string

const (
	RoleUser   UserRole = "user"
	RoleWorker UserRole = "worker"
	RoleAdmin  UserRole = "admin"
)

type User struct {
	ID                uint     `json:"id" gorm:"primaryKey"`
	FullName          string   `json:"full_name" gorm:"size:255;not null"`
	Email             string   `json:"email" gorm:"size:255;uniqueIndex;not null"`
	PasswordHash      string   `json:"-" gorm:"size:255;not null"`
	Address           string   `json:"address" gorm:"size:500;not null"`
	Role              UserRole `json:"role" gorm:"type:varchar(20);not null;default:'user';check:role IN ('user','worker','admin')"`
	ProfilePictureURL *string  `json:"profile_picture_url" gorm:"size:500"`
	ProfilePictureID  *string  `json:"-" gorm:"size:255"`

	ResetPasswordToken   *string    `json:"-" gorm:"size:255"`
	ResetPasswordExpires *time.Time `json:"-"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`

	// Worker-specific state lives on the profile, not the user row
	WorkerProfile *WorkerProfile `json:"worker_profile,omitempty" gorm:"foreignKey:UserID"`
}

// TableName specifies the table name for the User model
func (User) TableName() string {
	return "users"
}

// BeforeCreate is a GORM hook that runs before creating a user
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.Role == "" {
		u.Role = RoleUser
	}
	return nil
}

// IsValidRole checks if a role value is one of the known roles
func IsValidRole(r UserRole) bool {
	switch r {
	case RoleUser, RoleWorker, RoleAdmin:
		return true
	default:
		return false
	}
}

// IsWorker checks if the user is a worker
func (u *User) IsWorker() bool {
	return u.Role == RoleWorker
}

// IsAdmin checks if the user is an admin
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
