package models

import (
	"context"
	"time"

	"github.com/uptrace/bun"
)

// Merchant : Merchant account Model
type Merchant struct {
	ID            int64        `json:"id" bun:",pk,autoincrement"`
	Email         string       `json:"email" bun:",unique,notnull" validate:"required,email"`
	Password      string       `json:"-" bun:",notnull"`
	WalletAddress string       `json:"wallet_address" bun:",notnull"`
	CreatedAt     time.Time    `json:"created_at" bun:",nullzero,notnull,default:current_timestamp"`
	UpdatedAt     bun.NullTime `json:"updated_at"`
}

func (m *Merchant) BeforeAppendModel(ctx context.Context, query bun.Query) error {
	switch query.(type) {
	case *bun.UpdateQuery:
		m.UpdatedAt = bun.NullTime{Time: time.Now()}
	}
	return nil
}

var _ bun.BeforeAppendModelHook = (*Merchant)(nil)
