package model

import (
	"time"

	"github.com/uptrace/bun"
)

type Todo struct {
	bun.BaseModel `bun:"table:todos,alias:t" json:"-"`

	ID        int64     `bun:"id,pk,autoincrement" json:"id"`
	Label     string    `bun:"label,notnull" json:"label"`
	IsDone    bool      `bun:"is_done,notnull" json:"is_done"`
	UserID    int64     `bun:"user_id,notnull" json:"user_id"`
	CreatedAt time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"created_at"`
	UpdatedAt time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp" json:"updated_at"`
}
