package models

import (
	"context"
	"time"

	"github.com/anvahreal/ravgateway/common"
	"github.com/uptrace/bun"
)

// Invoice : Invoice Model
//
// RecipientAddress is a snapshot of the merchant's wallet at issue time so a
// later wallet change can never redirect an in-flight invoice. TxHash and
// PaidAt are set together, exactly once, when the invoice settles.
type Invoice struct {
	ID               string       `json:"id" bun:",pk"`
	MerchantID       int64        `json:"merchant_id" validate:"required"`
	Merchant         *Merchant    `json:"-" bun:"rel:belongs-to,join:merchant_id=id"`
	AmountCents      int64        `json:"amount_cents" validate:"gt=0"`
	Network          string       `json:"network" validate:"required"`
	RecipientAddress string       `json:"recipient_address" bun:",notnull"`
	Status           string       `json:"status" bun:",default:'draft'"`
	TxHash           string       `json:"tx_hash,omitempty" bun:",nullzero"`
	PaidAmount       string       `json:"paid_amount,omitempty" bun:",nullzero"`
	PaidBlockNumber  uint64       `json:"paid_block_number,omitempty" bun:",nullzero"`
	Memo             string       `json:"memo,omitempty" bun:",nullzero"`
	CustomerEmail    string       `json:"customer_email,omitempty" bun:",nullzero"`
	DueAt            bun.NullTime `json:"due_at"`
	PaidAt           bun.NullTime `json:"paid_at"`
	CreatedAt        time.Time    `json:"created_at" bun:",nullzero,notnull,default:current_timestamp"`
	UpdatedAt        bun.NullTime `json:"updated_at"`
}

func (i *Invoice) BeforeAppendModel(ctx context.Context, query bun.Query) error {
	switch query.(type) {
	case *bun.UpdateQuery:
		i.UpdatedAt = bun.NullTime{Time: time.Now()}
	}
	return nil
}

// DisplayStatus derives the overdue label: a sent or viewed invoice past its
// due date reads as overdue without a stored transition, and a late payment
// is still accepted.
func (i *Invoice) DisplayStatus(now time.Time) string {
	if i.Status == common.InvoiceStatusPaid || i.Status == common.InvoiceStatusDraft {
		return i.Status
	}
	if !i.DueAt.IsZero() && now.After(i.DueAt.Time) {
		return common.InvoiceStatusOverdue
	}
	return i.Status
}

// Payable reports whether a verified payment may still settle this invoice.
func (i *Invoice) Payable() bool {
	switch i.Status {
	case common.InvoiceStatusSent, common.InvoiceStatusViewed:
		return true
	}
	return false
}

var _ bun.BeforeAppendModelHook = (*Invoice)(nil)
