package models

import (
	"testing"
	"time"

	"github.com/anvahreal/ravgateway/common"
	"github.com/stretchr/testify/assert"
	"github.com/uptrace/bun"
)

func TestDisplayStatusOverdue(t *testing.T) {
	now := time.Now()
	invoice := &Invoice{
		Status: common.InvoiceStatusSent,
		DueAt:  bun.NullTime{Time: now.Add(-time.Hour)},
	}
	assert.Equal(t, common.InvoiceStatusOverdue, invoice.DisplayStatus(now))

	invoice.Status = common.InvoiceStatusViewed
	assert.Equal(t, common.InvoiceStatusOverdue, invoice.DisplayStatus(now))
}

func TestDisplayStatusNotOverdueBeforeDueDate(t *testing.T) {
	now := time.Now()
	invoice := &Invoice{
		Status: common.InvoiceStatusSent,
		DueAt:  bun.NullTime{Time: now.Add(time.Hour)},
	}
	assert.Equal(t, common.InvoiceStatusSent, invoice.DisplayStatus(now))
}

func TestDisplayStatusPaidNeverOverdue(t *testing.T) {
	// a settled invoice keeps reading paid even past its due date
	now := time.Now()
	invoice := &Invoice{
		Status: common.InvoiceStatusPaid,
		DueAt:  bun.NullTime{Time: now.Add(-time.Hour)},
	}
	assert.Equal(t, common.InvoiceStatusPaid, invoice.DisplayStatus(now))
}

func TestDisplayStatusDraftUnaffectedByDueDate(t *testing.T) {
	now := time.Now()
	invoice := &Invoice{
		Status: common.InvoiceStatusDraft,
		DueAt:  bun.NullTime{Time: now.Add(-time.Hour)},
	}
	assert.Equal(t, common.InvoiceStatusDraft, invoice.DisplayStatus(now))
}

func TestDisplayStatusNoDueDate(t *testing.T) {
	invoice := &Invoice{Status: common.InvoiceStatusSent}
	assert.Equal(t, common.InvoiceStatusSent, invoice.DisplayStatus(time.Now()))
}

func TestPayable(t *testing.T) {
	invoice := &Invoice{Status: common.InvoiceStatusDraft}
	assert.False(t, invoice.Payable())

	invoice.Status = common.InvoiceStatusSent
	assert.True(t, invoice.Payable())

	invoice.Status = common.InvoiceStatusViewed
	assert.True(t, invoice.Payable())

	invoice.Status = common.InvoiceStatusPaid
	assert.False(t, invoice.Payable())
}

// An overdue invoice stays payable: overdue is a display label, not a state.
func TestOverdueStillPayable(t *testing.T) {
	now := time.Now()
	invoice := &Invoice{
		Status: common.InvoiceStatusViewed,
		DueAt:  bun.NullTime{Time: now.Add(-24 * time.Hour)},
	}
	assert.Equal(t, common.InvoiceStatusOverdue, invoice.DisplayStatus(now))
	assert.True(t, invoice.Payable())
}
