package common

const (
	InvoiceStatusDraft  = "draft"
	InvoiceStatusSent   = "sent"
	InvoiceStatusViewed = "viewed"
	InvoiceStatusPaid   = "paid"
	// Overdue is derived from due_at at read time, it is never persisted.
	InvoiceStatusOverdue = "overdue"

	NetworkBase = "base"
	NetworkCelo = "celo"

	PendingPaymentStatusPending = "pending"
	PendingPaymentStatusFailed  = "failed"

	TopicInvoicePaid = "invoice.paid"

	APIKeyPrefix = "rav_"
)
