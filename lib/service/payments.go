package service

import (
	"context"
	"math/big"
	"strconv"
	"time"

	"github.com/anvahreal/ravgateway/chain"
	"github.com/anvahreal/ravgateway/common"
	"github.com/anvahreal/ravgateway/db/models"
	"github.com/getsentry/sentry-go"
	"github.com/uptrace/bun"
)

// VerifyPayment turns a claimed transaction hash into a verdict against the
// invoice's stored terms. It performs a single receipt fetch and never
// retries internally, re-polling a not-yet-mined transaction is the caller's
// job (see background_routines.go).
func (svc *GatewayService) VerifyPayment(ctx context.Context, invoice *models.Invoice, txHash string) (*chain.VerificationResult, error) {
	client, found := svc.ReceiptClientFor(invoice.Network)
	if !found {
		return nil, common.ErrUnsupportedNetwork
	}
	receipt, err := client.GetTransactionReceipt(ctx, txHash)
	if err != nil {
		return nil, err
	}
	return chain.VerifyReceipt(receipt, client.Network(), txHash, invoice.RecipientAddress, invoice.AmountCents)
}

// MarkPaid settles the invoice with a verified payment. The write is a
// compare-and-set on status: it only lands while the invoice is still in a
// pre-paid state, so two racing settlement calls can never both win. A replay
// with the already-stored tx hash returns the settled invoice without error,
// a different hash on a settled invoice is a conflict.
func (svc *GatewayService) MarkPaid(ctx context.Context, invoiceID, txHash string, amount *big.Int, blockNumber uint64) (*models.Invoice, error) {
	now := time.Now()
	res, err := svc.DB.NewUpdate().Model((*models.Invoice)(nil)).
		Set("status = ?", common.InvoiceStatusPaid).
		Set("tx_hash = ?", txHash).
		Set("paid_amount = ?", amount.String()).
		Set("paid_block_number = ?", blockNumber).
		Set("paid_at = ?", now).
		Set("updated_at = ?", now).
		Where("id = ?", invoiceID).
		Where("status IN (?)", bun.In([]string{common.InvoiceStatusSent, common.InvoiceStatusViewed})).
		Exec(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	invoice, findErr := svc.FindInvoice(ctx, invoiceID)
	if findErr != nil {
		return nil, findErr
	}
	if rows == 0 {
		switch {
		case invoice.Status == common.InvoiceStatusPaid && invoice.TxHash == txHash:
			// duplicate verification call, e.g. two browser tabs polling
			return invoice, nil
		case invoice.Status == common.InvoiceStatusPaid:
			svc.Logger.Errorf("Conflicting settlement attempt: invoice_id:%s stored_tx:%s new_tx:%s", invoiceID, invoice.TxHash, txHash)
			return nil, common.ErrAlreadyPaidWithDifferentTx
		default:
			return nil, common.ErrInvalidTransition
		}
	}

	svc.Logger.Infof("Invoice settled: invoice_id:%s tx_hash:%s amount:%s block:%d", invoiceID, txHash, amount.String(), blockNumber)
	svc.InvoicePubSub.Publish(strconv.FormatInt(invoice.MerchantID, 10), *invoice)
	svc.InvoicePubSub.Publish(common.TopicInvoicePaid, *invoice)
	return invoice, nil
}

// SettlePayment is the full verification entry point: load, verify, settle.
// Every distinct failure kind propagates to the caller untouched.
func (svc *GatewayService) SettlePayment(ctx context.Context, invoiceID, txHash string) (*models.Invoice, error) {
	invoice, err := svc.FindInvoice(ctx, invoiceID)
	if err != nil {
		return nil, err
	}
	if invoice.Status == common.InvoiceStatusPaid {
		if invoice.TxHash == txHash {
			return invoice, nil
		}
		return nil, common.ErrAlreadyPaidWithDifferentTx
	}
	if !invoice.Payable() {
		return nil, common.ErrInvalidTransition
	}

	result, err := svc.VerifyPayment(ctx, invoice, txHash)
	if err != nil {
		return nil, err
	}
	return svc.MarkPaid(ctx, invoiceID, result.TxHash, result.Amount, result.BlockNumber)
}

// SubmitPayment handles a customer-submitted hash. Transient failures (not
// mined yet, rpc down) additionally enqueue the hash for the background
// re-checker so the customer does not have to babysit the payment page.
func (svc *GatewayService) SubmitPayment(ctx context.Context, invoiceID, txHash string) (*models.Invoice, error) {
	invoice, err := svc.SettlePayment(ctx, invoiceID, txHash)
	if err != nil && common.IsTransient(err) {
		if enqueueErr := svc.EnqueuePendingPayment(ctx, invoiceID, txHash, err); enqueueErr != nil {
			svc.Logger.Errorf("Failed to enqueue pending payment: invoice_id:%s tx_hash:%s %v", invoiceID, txHash, enqueueErr)
			sentry.CaptureException(enqueueErr)
		}
	}
	return invoice, err
}

func (svc *GatewayService) EnqueuePendingPayment(ctx context.Context, invoiceID, txHash string, cause error) error {
	pending := &models.PendingPayment{
		InvoiceID:   invoiceID,
		TxHash:      txHash,
		Status:      common.PendingPaymentStatusPending,
		LastError:   cause.Error(),
		NextRetryAt: bun.NullTime{Time: time.Now().Add(svc.retryDelay(0))},
	}
	_, err := svc.DB.NewInsert().Model(pending).
		On("CONFLICT (invoice_id, tx_hash) DO NOTHING").
		Exec(ctx)
	return err
}
