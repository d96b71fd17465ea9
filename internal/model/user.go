package model

import (
	"time"
)

// User is an authenticated party that can create and be assigned tasks.
type User struct {
	ID           string    `gorm:"primarykey;size:36" json:"id"`
	Name         string    `gorm:"size:100;not null" json:"name"`
	Email        string    `gorm:"size:255;not null;uniqueIndex" json:"email"`
	PasswordHash string    `gorm:"size:255;not null" json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// TableName returns the table name for the User model.
func (User) TableName() string {
	return "users"
}

// UserRef is the compact user representation embedded in task payloads.
type UserRef struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// Ref returns the compact representation of the user.
func (u *User) Ref() UserRef {
	return UserRef{ID: u.ID, Email: u.Email}
}
