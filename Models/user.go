package Models

import (
	"gorm.io/gorm"
)

// Permission levels. Higher levels include the lower ones.
const (
	PermissionViewer     = 1
	PermissionInspector  = 2
	PermissionSupervisor = 3
	PermissionAdmin      = 4
)

type User struct {
	gorm.Model
	Name       string `json:"name" gorm:"size:255;not null"`
	Email      string `json:"email" gorm:"size:255;not null;uniqueIndex"`
	Password   []byte `json:"-"`
	Permission int    `json:"permission" gorm:"not null;default:1"`
	IsApproved bool   `json:"is_approved" gorm:"not null;default:false"`
	Phone      string `json:"phone" gorm:"size:50"`
}

type RegisterUserRequest struct {
	Name       string `json:"name" validate:"required"`
	Email      string `json:"email" validate:"required,email"`
	Password   string `json:"password" validate:"required,min=6"`
	Permission int    `json:"permission" validate:"gte=1,lte=4"`
	Phone      string `json:"phone"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type UpdateUserRequest struct {
	ID         uint    `json:"id" validate:"required"`
	Name       *string `json:"name"`
	Email      *string `json:"email" validate:"omitempty,email"`
	Password   *string `json:"password" validate:"omitempty,min=6"`
	Permission *int    `json:"permission" validate:"omitempty,gte=1,lte=4"`
	IsApproved *bool   `json:"is_approved"`
	Phone      *string `json:"phone"`
}
