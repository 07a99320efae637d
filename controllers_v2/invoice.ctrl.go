package v2controllers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/anvahreal/ravgateway/chain"
	"github.com/anvahreal/ravgateway/db/models"
	"github.com/anvahreal/ravgateway/lib/responses"
	"github.com/anvahreal/ravgateway/lib/service"
	"github.com/getsentry/sentry-go"
	"github.com/labstack/echo/v4"
	qrcode "github.com/skip2/go-qrcode"
)

// InvoiceController : Invoice CRUD controller struct
type InvoiceController struct {
	svc *service.GatewayService
}

func NewInvoiceController(svc *service.GatewayService) *InvoiceController {
	return &InvoiceController{svc: svc}
}

type Invoice struct {
	ID               string    `json:"id"`
	AmountCents      int64     `json:"amount_cents"`
	Network          string    `json:"network"`
	RecipientAddress string    `json:"recipient_address"`
	Status           string    `json:"status"`
	TxHash           string    `json:"tx_hash,omitempty"`
	PaidAmount       string    `json:"paid_amount,omitempty"`
	Memo             string    `json:"memo,omitempty"`
	CustomerEmail    string    `json:"customer_email,omitempty"`
	DueAt            time.Time `json:"due_at"`
	PaidAt           time.Time `json:"paid_at,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
	IsPaid           bool      `json:"is_paid"`
}

func newInvoiceResponse(invoice *models.Invoice) Invoice {
	status := invoice.DisplayStatus(time.Now())
	return Invoice{
		ID:               invoice.ID,
		AmountCents:      invoice.AmountCents,
		Network:          invoice.Network,
		RecipientAddress: invoice.RecipientAddress,
		Status:           status,
		TxHash:           invoice.TxHash,
		PaidAmount:       invoice.PaidAmount,
		Memo:             invoice.Memo,
		CustomerEmail:    invoice.CustomerEmail,
		DueAt:            invoice.DueAt.Time,
		PaidAt:           invoice.PaidAt.Time,
		CreatedAt:        invoice.CreatedAt,
		IsPaid:           invoice.Status == "paid",
	}
}

type AddInvoiceRequestBody struct {
	AmountCents   int64     `json:"amount_cents" validate:"required,gt=0"`
	Network       string    `json:"network" validate:"required"`
	Memo          string    `json:"memo"`
	CustomerEmail string    `json:"customer_email" validate:"omitempty,email"`
	DueAt         time.Time `json:"due_at"`
	Send          bool      `json:"send"`
}

type GetInvoicesResponseBody struct {
	Invoices []Invoice `json:"invoices"`
}

// AddInvoice godoc
// @Summary      Create an invoice
// @Description  Creates a stablecoin invoice for the authenticated merchant, optionally marking it sent immediately
// @Accept       json
// @Produce      json
// @Tags         Invoice
// @Param        invoice  body      AddInvoiceRequestBody  True  "Add Invoice"
// @Success      200      {object}  Invoice
// @Failure      400      {object}  responses.ErrorResponse
// @Failure      500      {object}  responses.ErrorResponse
// @Router       /v2/invoices [post]
// @Security     OAuth2Password
func (controller *InvoiceController) AddInvoice(c echo.Context) error {
	merchantID := c.Get("MerchantID").(int64)
	var body AddInvoiceRequestBody

	if err := c.Bind(&body); err != nil {
		c.Logger().Errorf("Failed to load invoice request body: %v", err)
		return c.JSON(http.StatusBadRequest, responses.BadArgumentsError)
	}
	if err := c.Validate(&body); err != nil {
		c.Logger().Errorf("Invalid invoice request body: %v", err)
		return c.JSON(http.StatusBadRequest, responses.BadArgumentsError)
	}

	invoice, err := controller.svc.AddInvoice(c.Request().Context(), merchantID, body.AmountCents, body.Network, body.Memo, body.CustomerEmail, body.DueAt)
	if err != nil {
		c.Logger().Errorf("Error creating invoice: merchant_id:%d error: %v", merchantID, err)
		errResp := responses.VerificationErrorResponse(err)
		return c.JSON(errResp.HttpStatusCode, errResp)
	}

	if body.Send {
		invoice, err = controller.svc.SendInvoice(c.Request().Context(), merchantID, invoice.ID)
		if err != nil {
			c.Logger().Errorf("Error sending invoice: invoice_id:%s error: %v", invoice.ID, err)
			sentry.CaptureException(err)
			return c.JSON(http.StatusInternalServerError, responses.GeneralServerError)
		}
	}

	return c.JSON(http.StatusOK, newInvoiceResponse(invoice))
}

// GetInvoices godoc
// @Summary      List invoices
// @Description  Returns all invoices of the authenticated merchant, newest first
// @Produce      json
// @Tags         Invoice
// @Success      200  {object}  GetInvoicesResponseBody
// @Failure      500  {object}  responses.ErrorResponse
// @Router       /v2/invoices [get]
// @Security     OAuth2Password
func (controller *InvoiceController) GetInvoices(c echo.Context) error {
	merchantID := c.Get("MerchantID").(int64)

	invoices, err := controller.svc.InvoicesFor(c.Request().Context(), merchantID)
	if err != nil {
		return err
	}

	response := make([]Invoice, len(invoices))
	for i, invoice := range invoices {
		inv := invoice
		response[i] = newInvoiceResponse(&inv)
	}
	return c.JSON(http.StatusOK, &GetInvoicesResponseBody{Invoices: response})
}

// GetInvoice godoc
// @Summary      Retrieve an invoice
// @Produce      json
// @Tags         Invoice
// @Param        id  path  string  true  "Invoice id"
// @Success      200  {object}  Invoice
// @Failure      404  {object}  responses.ErrorResponse
// @Router       /v2/invoices/{id} [get]
// @Security     OAuth2Password
func (controller *InvoiceController) GetInvoice(c echo.Context) error {
	merchantID := c.Get("MerchantID").(int64)

	invoice, err := controller.svc.FindInvoiceForMerchant(c.Request().Context(), merchantID, c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusNotFound, responses.InvoiceNotFoundError)
	}
	return c.JSON(http.StatusOK, newInvoiceResponse(invoice))
}

// SendInvoice godoc
// @Summary      Mark an invoice sent
// @Description  Transitions a draft invoice to sent so it becomes payable
// @Produce      json
// @Tags         Invoice
// @Param        id  path  string  true  "Invoice id"
// @Success      200  {object}  Invoice
// @Failure      400  {object}  responses.ErrorResponse
// @Failure      404  {object}  responses.ErrorResponse
// @Router       /v2/invoices/{id}/send [post]
// @Security     OAuth2Password
func (controller *InvoiceController) SendInvoice(c echo.Context) error {
	merchantID := c.Get("MerchantID").(int64)

	invoice, err := controller.svc.SendInvoice(c.Request().Context(), merchantID, c.Param("id"))
	if err != nil {
		errResp := responses.VerificationErrorResponse(err)
		return c.JSON(errResp.HttpStatusCode, errResp)
	}
	return c.JSON(http.StatusOK, newInvoiceResponse(invoice))
}

// InvoiceQR godoc
// @Summary      Invoice payment QR code
// @Description  Returns an EIP-681 payment request QR code as PNG
// @Produce      png
// @Tags         Invoice
// @Param        id  path  string  true  "Invoice id"
// @Success      200
// @Failure      404  {object}  responses.ErrorResponse
// @Router       /v2/invoices/{id}/qr [get]
// @Security     OAuth2Password
func (controller *InvoiceController) InvoiceQR(c echo.Context) error {
	merchantID := c.Get("MerchantID").(int64)

	invoice, err := controller.svc.FindInvoiceForMerchant(c.Request().Context(), merchantID, c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusNotFound, responses.InvoiceNotFoundError)
	}
	network, err := controller.svc.ChainConfig.FindNetwork(invoice.Network)
	if err != nil {
		errResp := responses.VerificationErrorResponse(err)
		return c.JSON(errResp.HttpStatusCode, errResp)
	}

	// EIP-681 token transfer request, understood by most mobile wallets
	uri := fmt.Sprintf("ethereum:%s@%d/transfer?address=%s&uint256=%s",
		network.TokenContract.Hex(),
		network.ChainID,
		invoice.RecipientAddress,
		chain.CentsToTokenUnits(invoice.AmountCents, network.TokenDecimals).String(),
	)
	png, err := qrcode.Encode(uri, qrcode.Medium, 256)
	if err != nil {
		c.Logger().Errorf("Failed to encode qr code: invoice_id:%s %v", invoice.ID, err)
		return c.JSON(http.StatusInternalServerError, responses.GeneralServerError)
	}
	return c.Blob(http.StatusOK, "image/png", png)
}
