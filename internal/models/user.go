package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type UserRole string

const (
	RoleUser  UserRole = "user"
	RoleAdmin UserRole = "admin"
)

func (r UserRole) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

type User struct {
	ID           string    `gorm:"primarykey;type:varchar(36)" bson:"_id" json:"id"`
	Name         string    `gorm:"type:varchar(100);not null" bson:"name" json:"name" validate:"required,max=100"`
	Email        string    `gorm:"type:varchar(255);uniqueIndex;not null" bson:"email" json:"email" validate:"required,email"`
	PasswordHash string    `gorm:"type:varchar(255);not null" bson:"password" json:"-"`
	Role         UserRole  `gorm:"type:varchar(20);not null;default:'user'" bson:"role" json:"role" validate:"required,oneof=user admin"`
	CreatedAt    time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time `bson:"updatedAt" json:"updatedAt"`
}

func (u *User) AssignID() {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	u.AssignID()
	return nil
}

// Principal is the authenticated caller as resolved from a bearer token.
type Principal struct {
	UserID string
	Role   UserRole
}

func (p Principal) IsAdmin() bool {
	return p.Role == RoleAdmin
}
