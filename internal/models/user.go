package models

import (
	"time"
)

// User roles
const (
	RoleAdmin    = "ADMIN"
	RoleEmployee = "EMPLOYEE"
	RoleRetailer = "RETAILER"
)

type User struct {
	ID           uint      `gorm:"primarykey" json:"id"`
	Name         string    `gorm:"not null" json:"name"`
	Email        string    `gorm:"uniqueIndex;not null" json:"email"`
	Phone        string    `gorm:"uniqueIndex;not null" json:"phone"`
	Password     string    `gorm:"not null" json:"-"`
	Role         string    `gorm:"not null;default:'RETAILER'" json:"role"`
	IsActive     bool      `gorm:"default:true" json:"is_active"`
	TokenVersion int       `gorm:"default:1" json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// IsReviewer reports whether the role may approve or reject applications.
func IsReviewer(role string) bool {
	return role == RoleAdmin || role == RoleEmployee
}
