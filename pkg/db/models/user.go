package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/giftlypk/giftly-backend/pkg/enums"
)

// User represents the canonical identity entity. PasswordHash is nil for
// accounts provisioned through Google sign-in.
type User struct {
	ID           uuid.UUID          `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Email        string             `gorm:"column:email;type:text;not null;uniqueIndex"`
	PasswordHash *string            `gorm:"column:password_hash"`
	Provider     enums.AuthProvider `gorm:"column:provider;type:text;not null;default:'password'"`
	FullName     string             `gorm:"column:full_name;not null"`
	Phone        *string            `gorm:"column:phone"`
	PhotoURL     *string            `gorm:"column:photo_url"`
	IsActive     bool               `gorm:"column:is_active;not null;default:true"`
	LastLoginAt  *time.Time         `gorm:"column:last_login_at"`
	CreatedAt    time.Time          `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time          `gorm:"column:updated_at;autoUpdateTime"`
}
