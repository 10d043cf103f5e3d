package model

import "time"

// User roles recognized by the auth layer.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User represents a registered account, either an end user or an administrator.
type User struct {
	ID           int64     `gorm:"primaryKey" json:"id"`
	Username     string    `gorm:"uniqueIndex;size:64;not null" json:"username"`
	Email        string    `gorm:"uniqueIndex;size:256;not null" json:"email"`
	FullName     string    `gorm:"size:256;not null" json:"full_name"`
	PasswordHash string    `gorm:"not null" json:"-"`
	Role         string    `gorm:"size:16;not null;default:user" json:"role"`
	CreatedAt    time.Time `json:"created_at"`
}
