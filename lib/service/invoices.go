package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/anvahreal/ravgateway/common"
	"github.com/anvahreal/ravgateway/db/models"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// AddInvoice creates a draft invoice for the merchant. The merchant's wallet
// address is copied onto the invoice, a later wallet change on the profile
// leaves issued invoices untouched.
func (svc *GatewayService) AddInvoice(ctx context.Context, merchantID int64, amountCents int64, network, memo, customerEmail string, dueAt time.Time) (*models.Invoice, error) {
	if _, err := svc.ChainConfig.FindNetwork(network); err != nil {
		return nil, err
	}
	merchant, err := svc.FindMerchant(ctx, merchantID)
	if err != nil {
		return nil, err
	}
	if dueAt.IsZero() {
		dueAt = time.Now().AddDate(0, 0, svc.Config.DefaultInvoiceDueDays)
	}

	invoice := &models.Invoice{
		ID:               uuid.NewString(),
		MerchantID:       merchantID,
		AmountCents:      amountCents,
		Network:          network,
		RecipientAddress: merchant.WalletAddress,
		Status:           common.InvoiceStatusDraft,
		Memo:             memo,
		CustomerEmail:    customerEmail,
		DueAt:            bun.NullTime{Time: dueAt},
	}
	_, err = svc.DB.NewInsert().Model(invoice).Exec(ctx)
	if err != nil {
		return nil, err
	}
	svc.Logger.Infof("Added invoice: invoice_id:%s merchant_id:%d amount_cents:%d network:%s", invoice.ID, merchantID, amountCents, network)
	return invoice, nil
}

func (svc *GatewayService) FindInvoice(ctx context.Context, invoiceID string) (*models.Invoice, error) {
	var invoice models.Invoice
	err := svc.DB.NewSelect().Model(&invoice).Where("id = ?", invoiceID).Limit(1).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrInvoiceNotFound
		}
		return nil, err
	}
	return &invoice, nil
}

func (svc *GatewayService) FindInvoiceForMerchant(ctx context.Context, merchantID int64, invoiceID string) (*models.Invoice, error) {
	invoice, err := svc.FindInvoice(ctx, invoiceID)
	if err != nil {
		return nil, err
	}
	if invoice.MerchantID != merchantID {
		return nil, common.ErrInvoiceNotFound
	}
	return invoice, nil
}

func (svc *GatewayService) InvoicesFor(ctx context.Context, merchantID int64) ([]models.Invoice, error) {
	invoices := []models.Invoice{}
	err := svc.DB.NewSelect().Model(&invoices).Where("merchant_id = ?", merchantID).OrderExpr("created_at DESC").Scan(ctx)
	return invoices, err
}

// SendInvoice transitions draft -> sent. Sending an already sent invoice is
// a no-op, any other state is an invalid transition.
func (svc *GatewayService) SendInvoice(ctx context.Context, merchantID int64, invoiceID string) (*models.Invoice, error) {
	invoice, err := svc.FindInvoiceForMerchant(ctx, merchantID, invoiceID)
	if err != nil {
		return nil, err
	}
	res, err := svc.DB.NewUpdate().Model((*models.Invoice)(nil)).
		Set("status = ?", common.InvoiceStatusSent).
		Set("updated_at = ?", time.Now()).
		Where("id = ?", invoiceID).
		Where("status = ?", common.InvoiceStatusDraft).
		Exec(ctx)
	if err != nil {
		return nil, err
	}
	if rows, _ := res.RowsAffected(); rows == 0 && invoice.Status != common.InvoiceStatusSent {
		return nil, common.ErrInvalidTransition
	}
	return svc.FindInvoice(ctx, invoiceID)
}

// TrackView records the first customer view: sent -> viewed. Repeat views and
// views of settled invoices are no-ops, the conditional update simply matches
// nothing. Draft invoices are not publicly viewable.
func (svc *GatewayService) TrackView(ctx context.Context, invoiceID string) (*models.Invoice, error) {
	invoice, err := svc.FindInvoice(ctx, invoiceID)
	if err != nil {
		return nil, err
	}
	if invoice.Status == common.InvoiceStatusDraft {
		return nil, common.ErrInvoiceNotFound
	}
	res, err := svc.DB.NewUpdate().Model((*models.Invoice)(nil)).
		Set("status = ?", common.InvoiceStatusViewed).
		Set("updated_at = ?", time.Now()).
		Where("id = ?", invoiceID).
		Where("status = ?", common.InvoiceStatusSent).
		Exec(ctx)
	if err != nil {
		return nil, err
	}
	if rows, _ := res.RowsAffected(); rows > 0 {
		svc.Logger.Infof("Invoice viewed: invoice_id:%s", invoiceID)
		invoice.Status = common.InvoiceStatusViewed
	}
	return invoice, nil
}
