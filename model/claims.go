package model

import "time"

// Claims are the decoded, already verified contents of a bearer token.
type Claims struct {
	UserID    int64     `json:"sub"`
	JTI       string    `json:"jti"`
	IssuedAt  time.Time `json:"iat"`
	ExpiresAt time.Time `json:"exp"`
}
