package service

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/anvahreal/ravgateway/common"
	"github.com/anvahreal/ravgateway/db/models"
)

type WebhookPayload struct {
	InvoiceID   string    `json:"invoice_id"`
	MerchantID  int64     `json:"merchant_id"`
	AmountCents int64     `json:"amount_cents"`
	PaidAmount  string    `json:"paid_amount"`
	Network     string    `json:"network"`
	TxHash      string    `json:"tx_hash"`
	PaidAt      time.Time `json:"paid_at"`
}

// StartWebhookSubscription POSTs every settled invoice to the configured
// webhook url. Strictly fire-and-forget: a delivery failure is logged and
// never rolls back the payment status.
func (svc *GatewayService) StartWebhookSubscription(ctx context.Context, url string) {
	svc.Logger.Infof("Starting webhook subscription with webhook url %s", url)
	paidInvoices := make(chan models.Invoice, 16)
	subID, err := svc.InvoicePubSub.Subscribe(common.TopicInvoicePaid, paidInvoices)
	if err != nil {
		svc.Logger.Errorf("Failed to subscribe to paid invoices: %v", err)
		return
	}
	defer svc.InvoicePubSub.Unsubscribe(subID, common.TopicInvoicePaid)
	for {
		select {
		case <-ctx.Done():
			return
		case invoice := <-paidInvoices:
			svc.postToWebhook(invoice, url)
		}
	}
}

func (svc *GatewayService) postToWebhook(invoice models.Invoice, url string) {
	payload := new(bytes.Buffer)
	err := json.NewEncoder(payload).Encode(WebhookPayload{
		InvoiceID:   invoice.ID,
		MerchantID:  invoice.MerchantID,
		AmountCents: invoice.AmountCents,
		PaidAmount:  invoice.PaidAmount,
		Network:     invoice.Network,
		TxHash:      invoice.TxHash,
		PaidAt:      invoice.PaidAt.Time,
	})
	if err != nil {
		svc.Logger.Error(err)
		return
	}

	resp, err := http.Post(url, "application/json", payload)
	if err != nil {
		svc.Logger.Error(err)
		return
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		msg, err := io.ReadAll(resp.Body)
		if err != nil {
			svc.Logger.Error(err)
		}
		svc.Logger.Errorf("Webhook status code was %d, body: %s", resp.StatusCode, msg)
	}
}
