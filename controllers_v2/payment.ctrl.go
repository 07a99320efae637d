package v2controllers

import (
	"net/http"
	"time"

	"github.com/anvahreal/ravgateway/common"
	"github.com/anvahreal/ravgateway/db/models"
	"github.com/anvahreal/ravgateway/lib/responses"
	"github.com/anvahreal/ravgateway/lib/service"
	"github.com/labstack/echo/v4"
)

// PaymentController : Public payment page controller struct
type PaymentController struct {
	svc *service.GatewayService
}

func NewPaymentController(svc *service.GatewayService) *PaymentController {
	return &PaymentController{svc: svc}
}

type PublicInvoice struct {
	ID               string    `json:"id"`
	AmountCents      int64     `json:"amount_cents"`
	Network          string    `json:"network"`
	TokenSymbol      string    `json:"token_symbol"`
	TokenAmount      string    `json:"token_amount"`
	RecipientAddress string    `json:"recipient_address"`
	Status           string    `json:"status"`
	Memo             string    `json:"memo,omitempty"`
	DueAt            time.Time `json:"due_at"`
	TxHash           string    `json:"tx_hash,omitempty"`
}

type SubmitPaymentRequestBody struct {
	TxHash string `json:"tx_hash" validate:"required"`
}

type PaymentStatusResponseBody struct {
	Status string `json:"status"`
	TxHash string `json:"tx_hash,omitempty"`
}

func (controller *PaymentController) newPublicInvoice(invoice *models.Invoice) (*PublicInvoice, error) {
	network, err := controller.svc.ChainConfig.FindNetwork(invoice.Network)
	if err != nil {
		return nil, err
	}
	return &PublicInvoice{
		ID:               invoice.ID,
		AmountCents:      invoice.AmountCents,
		Network:          invoice.Network,
		TokenSymbol:      network.TokenSymbol,
		TokenAmount:      network.TokenAmount(invoice.AmountCents),
		RecipientAddress: invoice.RecipientAddress,
		Status:           invoice.DisplayStatus(time.Now()),
		Memo:             invoice.Memo,
		DueAt:            invoice.DueAt.Time,
		TxHash:           invoice.TxHash,
	}, nil
}

// GetPublicInvoice godoc
// @Summary      Public payment page data
// @Description  Returns the invoice as shown to the paying customer and records the first view
// @Produce      json
// @Tags         Payment
// @Param        id  path  string  true  "Invoice id"
// @Success      200  {object}  PublicInvoice
// @Failure      404  {object}  responses.ErrorResponse
// @Router       /pay/{id} [get]
func (controller *PaymentController) GetPublicInvoice(c echo.Context) error {
	invoice, err := controller.svc.TrackView(c.Request().Context(), c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusNotFound, responses.InvoiceNotFoundError)
	}
	response, err := controller.newPublicInvoice(invoice)
	if err != nil {
		errResp := responses.VerificationErrorResponse(err)
		return c.JSON(errResp.HttpStatusCode, errResp)
	}
	return c.JSON(http.StatusOK, response)
}

// SubmitPayment godoc
// @Summary      Submit a payment transaction
// @Description  Verifies the submitted transaction hash on chain and settles the invoice when it checks out
// @Accept       json
// @Produce      json
// @Tags         Payment
// @Param        id       path  string                    true  "Invoice id"
// @Param        payment  body  SubmitPaymentRequestBody  True  "Submit payment"
// @Success      200  {object}  PublicInvoice
// @Failure      400  {object}  responses.ErrorResponse
// @Failure      404  {object}  responses.ErrorResponse
// @Failure      409  {object}  responses.ErrorResponse
// @Failure      502  {object}  responses.ErrorResponse
// @Router       /pay/{id}/payments [post]
func (controller *PaymentController) SubmitPayment(c echo.Context) error {
	var body SubmitPaymentRequestBody
	if err := c.Bind(&body); err != nil {
		c.Logger().Errorf("Failed to load payment request body: %v", err)
		return c.JSON(http.StatusBadRequest, responses.BadArgumentsError)
	}
	if err := c.Validate(&body); err != nil {
		return c.JSON(http.StatusBadRequest, responses.BadArgumentsError)
	}

	invoice, err := controller.svc.SubmitPayment(c.Request().Context(), c.Param("id"), body.TxHash)
	if err != nil {
		c.Logger().Errorf("Payment verification failed: invoice_id:%s tx_hash:%s %v", c.Param("id"), body.TxHash, err)
		errResp := responses.VerificationErrorResponse(err)
		if common.IsTransient(err) {
			// the hash is queued for re-checking, tell the customer to wait
			return c.JSON(http.StatusAccepted, errResp)
		}
		return c.JSON(errResp.HttpStatusCode, errResp)
	}

	response, err := controller.newPublicInvoice(invoice)
	if err != nil {
		errResp := responses.VerificationErrorResponse(err)
		return c.JSON(errResp.HttpStatusCode, errResp)
	}
	return c.JSON(http.StatusOK, response)
}

// PaymentStatus godoc
// @Summary      Payment status
// @Description  Lightweight status poll for the payment page
// @Produce      json
// @Tags         Payment
// @Param        id  path  string  true  "Invoice id"
// @Success      200  {object}  PaymentStatusResponseBody
// @Failure      404  {object}  responses.ErrorResponse
// @Router       /pay/{id}/status [get]
func (controller *PaymentController) PaymentStatus(c echo.Context) error {
	invoice, err := controller.svc.FindInvoice(c.Request().Context(), c.Param("id"))
	if err != nil || invoice.Status == common.InvoiceStatusDraft {
		return c.JSON(http.StatusNotFound, responses.InvoiceNotFoundError)
	}
	return c.JSON(http.StatusOK, &PaymentStatusResponseBody{
		Status: invoice.DisplayStatus(time.Now()),
		TxHash: invoice.TxHash,
	})
}
