package responses

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/anvahreal/ravgateway/common"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
)

func TestBadAuthErrorsNotAllowedForSentry(t *testing.T) {
	badAuthErrResponse := echo.NewHTTPError(http.StatusBadRequest, echo.Map{
		"error":   true,
		"code":    1,
		"message": "bad auth",
	})

	isAllowed := isErrAllowedForSentry(badAuthErrResponse)
	assert.False(t, isAllowed)
}

func TestUnauthorizedErrorsNotAllowedForSentry(t *testing.T) {
	unauthorized := echo.NewHTTPError(http.StatusUnauthorized, "missing key")

	isAllowed := isErrAllowedForSentry(unauthorized)
	assert.False(t, isAllowed)
}

func TestNonErrorResponseErrorsAllowedForSentry(t *testing.T) {
	err := errors.New("random error")

	isAllowed := isErrAllowedForSentry(err)
	assert.True(t, isAllowed)
}

func TestVerificationErrorResponseMapping(t *testing.T) {
	assert.Equal(t, AmountMismatchError, VerificationErrorResponse(common.ErrAmountMismatch))
	assert.Equal(t, RecipientMismatchError, VerificationErrorResponse(common.ErrRecipientMismatch))
	assert.Equal(t, AlreadyPaidWithDifferentTxError, VerificationErrorResponse(common.ErrAlreadyPaidWithDifferentTx))
	assert.Equal(t, GeneralServerError, VerificationErrorResponse(errors.New("boom")))
}

func TestWrappedVerificationErrorsKeepTheirKind(t *testing.T) {
	wrapped := fmt.Errorf("%w: got 99 want 100", common.ErrAmountMismatch)
	assert.Equal(t, AmountMismatchError, VerificationErrorResponse(wrapped))
}
