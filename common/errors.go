package common

import "errors"

// Verification and settlement errors. Every failure mode is a distinct
// sentinel so callers can map them to specific user-facing messages.
var (
	ErrInvoiceNotFound            = errors.New("invoice not found")
	ErrInvalidTransition          = errors.New("invalid invoice status transition")
	ErrAlreadyPaidWithDifferentTx = errors.New("invoice already settled with a different transaction")

	ErrUnsupportedNetwork     = errors.New("unsupported network")
	ErrInvalidTransactionHash = errors.New("malformed transaction hash")
	ErrTransactionNotFound    = errors.New("transaction not found or not yet mined")
	ErrRPCError               = errors.New("chain rpc error")
	ErrTransactionFailed      = errors.New("transaction failed on-chain")
	ErrTransferEventNotFound  = errors.New("no matching token transfer in receipt")
	ErrRecipientMismatch      = errors.New("transfer recipient does not match invoice")
	ErrAmountMismatch         = errors.New("transfer amount below invoice amount")
)

// IsTransient reports whether a verification error may succeed on retry,
// e.g. a transaction that has not been mined yet. Transient errors never
// mutate invoice state.
func IsTransient(err error) bool {
	return errors.Is(err, ErrTransactionNotFound) || errors.Is(err, ErrRPCError)
}
