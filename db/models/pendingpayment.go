package models

import (
	"time"

	"github.com/uptrace/bun"
)

// PendingPayment : a submitted transaction hash that could not be verified
// yet (not mined, rpc outage). The background routine re-checks these until
// they settle, fail permanently, or run out of attempts.
type PendingPayment struct {
	ID          int64        `json:"id" bun:",pk,autoincrement"`
	InvoiceID   string       `json:"invoice_id" bun:",notnull"`
	Invoice     *Invoice     `json:"-" bun:"rel:belongs-to,join:invoice_id=id"`
	TxHash      string       `json:"tx_hash" bun:",notnull"`
	Status      string       `json:"status" bun:",default:'pending'"`
	Attempts    int          `json:"attempts" bun:",default:0"`
	LastError   string       `json:"last_error,omitempty" bun:",nullzero"`
	NextRetryAt bun.NullTime `json:"next_retry_at"`
	CreatedAt   time.Time    `json:"created_at" bun:",nullzero,notnull,default:current_timestamp"`
	UpdatedAt   bun.NullTime `json:"updated_at"`
}
