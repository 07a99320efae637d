package responses

import (
	"errors"
	"net/http"

	"github.com/anvahreal/ravgateway/common"
	"github.com/getsentry/sentry-go"
	sentryecho "github.com/getsentry/sentry-go/echo"
	"github.com/labstack/echo/v4"
)

type ErrorResponse struct {
	Error          bool   `json:"error"`
	Code           int    `json:"code"`
	Message        string `json:"message"`
	HttpStatusCode int    `json:"-"`
}

var GeneralServerError = ErrorResponse{
	Error:          true,
	Code:           6,
	Message:        "Something went wrong. Please try again later",
	HttpStatusCode: 500,
}

var BadArgumentsError = ErrorResponse{
	Error:          true,
	Code:           8,
	Message:        "Bad arguments",
	HttpStatusCode: 400,
}

var BadAuthError = ErrorResponse{
	Error:          true,
	Code:           1,
	Message:        "bad auth",
	HttpStatusCode: 401,
}

var EmailTakenError = ErrorResponse{
	Error:          true,
	Code:           8,
	Message:        "email already taken",
	HttpStatusCode: 400,
}

var InvoiceNotFoundError = ErrorResponse{
	Error:          true,
	Code:           10,
	Message:        "invoice not found",
	HttpStatusCode: 404,
}

var UnsupportedNetworkError = ErrorResponse{
	Error:          true,
	Code:           11,
	Message:        "unsupported network",
	HttpStatusCode: 400,
}

var TransactionNotFoundError = ErrorResponse{
	Error:          true,
	Code:           12,
	Message:        "transaction not found or not yet mined. try again in a moment",
	HttpStatusCode: 404,
}

var RPCErrorResponse = ErrorResponse{
	Error:          true,
	Code:           13,
	Message:        "could not reach the chain rpc. try again later",
	HttpStatusCode: 502,
}

var TransactionFailedError = ErrorResponse{
	Error:          true,
	Code:           14,
	Message:        "the transaction failed on-chain and cannot settle this invoice",
	HttpStatusCode: 400,
}

var TransferEventNotFoundError = ErrorResponse{
	Error:          true,
	Code:           15,
	Message:        "no matching stablecoin transfer found in this transaction",
	HttpStatusCode: 400,
}

var RecipientMismatchError = ErrorResponse{
	Error:          true,
	Code:           16,
	Message:        "the payment was sent to the wrong address",
	HttpStatusCode: 400,
}

var AmountMismatchError = ErrorResponse{
	Error:          true,
	Code:           17,
	Message:        "the payment amount is less than the invoice amount",
	HttpStatusCode: 400,
}

var AlreadyPaidWithDifferentTxError = ErrorResponse{
	Error:          true,
	Code:           18,
	Message:        "this invoice was already settled with a different transaction",
	HttpStatusCode: 409,
}

var InvalidTransitionError = ErrorResponse{
	Error:          true,
	Code:           19,
	Message:        "the invoice is not in a payable state",
	HttpStatusCode: 400,
}

var InvalidTransactionHashError = ErrorResponse{
	Error:          true,
	Code:           20,
	Message:        "malformed transaction hash",
	HttpStatusCode: 400,
}

// VerificationErrorResponse maps the settlement error taxonomy to the wire
// response. Every failure kind stays distinct so the payment page can tell
// the customer exactly which check failed.
func VerificationErrorResponse(err error) ErrorResponse {
	switch {
	case errors.Is(err, common.ErrInvoiceNotFound):
		return InvoiceNotFoundError
	case errors.Is(err, common.ErrUnsupportedNetwork):
		return UnsupportedNetworkError
	case errors.Is(err, common.ErrInvalidTransactionHash):
		return InvalidTransactionHashError
	case errors.Is(err, common.ErrTransactionNotFound):
		return TransactionNotFoundError
	case errors.Is(err, common.ErrRPCError):
		return RPCErrorResponse
	case errors.Is(err, common.ErrTransactionFailed):
		return TransactionFailedError
	case errors.Is(err, common.ErrTransferEventNotFound):
		return TransferEventNotFoundError
	case errors.Is(err, common.ErrRecipientMismatch):
		return RecipientMismatchError
	case errors.Is(err, common.ErrAmountMismatch):
		return AmountMismatchError
	case errors.Is(err, common.ErrAlreadyPaidWithDifferentTx):
		return AlreadyPaidWithDifferentTxError
	case errors.Is(err, common.ErrInvalidTransition):
		return InvalidTransitionError
	}
	return GeneralServerError
}

func HTTPErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	c.Logger().Error(err)
	if hub := sentryecho.GetHubFromContext(c); hub != nil && isErrAllowedForSentry(err) {
		hub.WithScope(func(scope *sentry.Scope) {
			scope.SetExtra("MerchantID", c.Get("MerchantID"))
			hub.CaptureException(err)
		})
	}
	if he, ok := err.(*echo.HTTPError); ok {
		c.JSON(he.Code, he.Message)
	} else {
		c.JSON(http.StatusInternalServerError, GeneralServerError)
	}
}

// auth failures are expected noise, they never go to sentry
func isErrAllowedForSentry(err error) bool {
	he, ok := err.(*echo.HTTPError)
	if !ok {
		return true
	}
	if m, ok := he.Message.(echo.Map); ok {
		if code, ok := m["code"].(int); ok && code == BadAuthError.Code {
			return false
		}
	}
	return he.Code != http.StatusUnauthorized
}
