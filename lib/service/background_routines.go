package service

import (
	"context"
	"time"

	"github.com/anvahreal/ravgateway/common"
	"github.com/anvahreal/ravgateway/db/models"
	"github.com/getsentry/sentry-go"
	"github.com/uptrace/bun"
)

const maxRetryDelay = 10 * time.Minute

// retryDelay doubles per attempt from the poll interval up to maxRetryDelay.
func (svc *GatewayService) retryDelay(attempts int) time.Duration {
	delay := time.Duration(svc.Config.PendingCheckInterval) * time.Second
	for i := 0; i < attempts; i++ {
		delay *= 2
		if delay > maxRetryDelay {
			return maxRetryDelay
		}
	}
	return delay
}

// StartPendingPaymentRoutine re-checks submitted transaction hashes that were
// not verifiable yet. This is the caller-side retry policy: the verifier
// itself never polls.
func (svc *GatewayService) StartPendingPaymentRoutine(ctx context.Context) error {
	ticker := time.NewTicker(time.Duration(svc.Config.PendingCheckInterval) * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := svc.CheckPendingPayments(ctx); err != nil {
				svc.Logger.Errorf("Pending payment check failed: %v", err)
				sentry.CaptureException(err)
			}
		}
	}
}

func (svc *GatewayService) CheckPendingPayments(ctx context.Context) error {
	pending := []models.PendingPayment{}
	err := svc.DB.NewSelect().Model(&pending).
		Where("status = ?", common.PendingPaymentStatusPending).
		Where("next_retry_at <= ?", time.Now()).
		Scan(ctx)
	if err != nil {
		return err
	}
	if len(pending) == 0 {
		return nil
	}
	svc.Logger.Infof("Found %d pending payments", len(pending))
	for _, p := range pending {
		svc.checkPendingPayment(ctx, &p)
	}
	return nil
}

func (svc *GatewayService) checkPendingPayment(ctx context.Context, pending *models.PendingPayment) {
	_, err := svc.SettlePayment(ctx, pending.InvoiceID, pending.TxHash)
	switch {
	case err == nil:
		svc.Logger.Infof("Pending payment settled: invoice_id:%s tx_hash:%s", pending.InvoiceID, pending.TxHash)
		if _, derr := svc.DB.NewDelete().Model(pending).WherePK().Exec(ctx); derr != nil {
			svc.Logger.Errorf("Failed to remove settled pending payment %d: %v", pending.ID, derr)
		}
	case common.IsTransient(err):
		pending.Attempts++
		pending.LastError = err.Error()
		if pending.Attempts >= svc.Config.PendingMaxAttempts {
			pending.Status = common.PendingPaymentStatusFailed
			svc.Logger.Infof("Pending payment gave up after %d attempts: invoice_id:%s tx_hash:%s", pending.Attempts, pending.InvoiceID, pending.TxHash)
		} else {
			pending.NextRetryAt = bun.NullTime{Time: time.Now().Add(svc.retryDelay(pending.Attempts))}
		}
		if _, uerr := svc.DB.NewUpdate().Model(pending).WherePK().Exec(ctx); uerr != nil {
			svc.Logger.Errorf("Failed to update pending payment %d: %v", pending.ID, uerr)
		}
	default:
		// permanent rejection: wrong amount, wrong recipient, failed tx
		pending.Status = common.PendingPaymentStatusFailed
		pending.LastError = err.Error()
		svc.Logger.Infof("Pending payment rejected: invoice_id:%s tx_hash:%s %v", pending.InvoiceID, pending.TxHash, err)
		if _, uerr := svc.DB.NewUpdate().Model(pending).WherePK().Exec(ctx); uerr != nil {
			svc.Logger.Errorf("Failed to update pending payment %d: %v", pending.ID, uerr)
		}
	}
}
