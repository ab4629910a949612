package models

import "gorm.io/gorm"

// User roles
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User represents a registered account. Dashboard profiles are a projection
// of this row.
type User struct {
	gorm.Model
	Email        string  `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string  `gorm:"not null" json:"-"`
	Name         *string `json:"name,omitempty"`
	AvatarURL    string  `json:"avatar_url,omitempty"`

	Role     string `gorm:"default:'user'" json:"role"` // user, admin
	IsActive bool   `gorm:"default:true" json:"is_active"`

	// Bumped on password change to invalidate outstanding tokens
	TokenVersion int `gorm:"default:0" json:"-"`

	// Relations
	Memberships []TeamMember `gorm:"foreignKey:UserID" json:"-"`
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
