package model

import "time"

const DefaultAvatar = "https://i.pravatar.cc/300"

// User is the stored identity record. Salt and PasswordHash are never
// serialized.
type User struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email"`
	Salt         string    `json:"-"`
	PasswordHash string    `json:"-"`
	Lastname     string    `json:"lastname"`
	Avatar       string    `json:"avatar"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
