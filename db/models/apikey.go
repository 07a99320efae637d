package models

import (
	"time"
)

// APIKey : API key Model
//
// Only the SHA-256 digest of the key is stored, the plain key is shown once
// at creation time.
type APIKey struct {
	ID         int64     `json:"id" bun:",pk,autoincrement"`
	MerchantID int64     `json:"merchant_id" bun:",notnull"`
	Merchant   *Merchant `json:"-" bun:"rel:belongs-to,join:merchant_id=id"`
	Digest     string    `json:"-" bun:",unique,notnull"`
	Label      string    `json:"label" bun:",nullzero"`
	CreatedAt  time.Time `json:"created_at" bun:",nullzero,notnull,default:current_timestamp"`
}
