package v2controllers

import (
	"net/http"
	"strings"

	"github.com/anvahreal/ravgateway/lib/responses"
	"github.com/anvahreal/ravgateway/lib/service"
	"github.com/labstack/echo/v4"
)

// MerchantController : Merchant signup and auth controller struct
type MerchantController struct {
	svc *service.GatewayService
}

func NewMerchantController(svc *service.GatewayService) *MerchantController {
	return &MerchantController{svc: svc}
}

type CreateMerchantRequestBody struct {
	Email         string `json:"email" validate:"required,email"`
	Password      string `json:"password" validate:"required,min=8"`
	WalletAddress string `json:"wallet_address" validate:"required"`
}
type CreateMerchantResponseBody struct {
	ID            int64  `json:"id"`
	Email         string `json:"email"`
	WalletAddress string `json:"wallet_address"`
}

// CreateMerchant godoc
// @Summary      Create a merchant account
// @Description  Register a merchant with an email, password and payout wallet
// @Accept       json
// @Produce      json
// @Tags         Merchant
// @Param        merchant  body      CreateMerchantRequestBody  false  "Create Merchant"
// @Success      200       {object}  CreateMerchantResponseBody
// @Failure      400       {object}  responses.ErrorResponse
// @Failure      500       {object}  responses.ErrorResponse
// @Router       /v2/merchants [post]
func (controller *MerchantController) CreateMerchant(c echo.Context) error {
	var body CreateMerchantRequestBody

	if err := c.Bind(&body); err != nil {
		c.Logger().Errorf("Failed to load create merchant request body: %v", err)
		return c.JSON(http.StatusBadRequest, responses.BadArgumentsError)
	}
	if err := c.Validate(&body); err != nil {
		c.Logger().Errorf("Invalid create merchant request body: %v", err)
		return c.JSON(http.StatusBadRequest, responses.BadArgumentsError)
	}

	merchant, err := controller.svc.CreateMerchant(c.Request().Context(), body.Email, body.Password, body.WalletAddress)
	if err != nil {
		c.Logger().Errorf("Failed to create merchant: %v", err)
		if strings.Contains(err.Error(), "duplicate") {
			return c.JSON(http.StatusBadRequest, responses.EmailTakenError)
		}
		return c.JSON(http.StatusBadRequest, responses.BadArgumentsError)
	}

	return c.JSON(http.StatusOK, &CreateMerchantResponseBody{
		ID:            merchant.ID,
		Email:         merchant.Email,
		WalletAddress: merchant.WalletAddress,
	})
}

type AuthRequestBody struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}
type AuthResponseBody struct {
	AccessToken string `json:"access_token"`
}

// Auth godoc
// @Summary      Authenticate a merchant
// @Description  Exchange email and password for a dashboard access token
// @Accept       json
// @Produce      json
// @Tags         Merchant
// @Param        credentials  body      AuthRequestBody  false  "Credentials"
// @Success      200          {object}  AuthResponseBody
// @Failure      401          {object}  responses.ErrorResponse
// @Router       /v2/auth [post]
func (controller *MerchantController) Auth(c echo.Context) error {
	var body AuthRequestBody

	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, responses.BadArgumentsError)
	}
	if err := c.Validate(&body); err != nil {
		return c.JSON(http.StatusBadRequest, responses.BadArgumentsError)
	}

	accessToken, err := controller.svc.GenerateToken(c.Request().Context(), body.Email, body.Password)
	if err != nil {
		c.Logger().Errorf("Authentication failed for %s: %v", body.Email, err)
		return c.JSON(http.StatusUnauthorized, responses.BadAuthError)
	}

	return c.JSON(http.StatusOK, &AuthResponseBody{AccessToken: accessToken})
}

type CreateAPIKeyRequestBody struct {
	Label string `json:"label"`
}
type CreateAPIKeyResponseBody struct {
	Key   string `json:"key"`
	Label string `json:"label"`
}

// CreateAPIKey godoc
// @Summary      Create an API key
// @Description  Mint a programmatic API key. The key is returned once and only its digest is stored.
// @Accept       json
// @Produce      json
// @Tags         Merchant
// @Param        key  body      CreateAPIKeyRequestBody  false  "API key label"
// @Success      200  {object}  CreateAPIKeyResponseBody
// @Failure      500  {object}  responses.ErrorResponse
// @Router       /v2/apikeys [post]
// @Security     OAuth2Password
func (controller *MerchantController) CreateAPIKey(c echo.Context) error {
	merchantID := c.Get("MerchantID").(int64)
	var body CreateAPIKeyRequestBody
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, responses.BadArgumentsError)
	}

	plainKey, key, err := controller.svc.CreateAPIKey(c.Request().Context(), merchantID, body.Label)
	if err != nil {
		c.Logger().Errorf("Failed to create api key: merchant_id:%d %v", merchantID, err)
		return c.JSON(http.StatusInternalServerError, responses.GeneralServerError)
	}

	return c.JSON(http.StatusOK, &CreateAPIKeyResponseBody{Key: plainKey, Label: key.Label})
}
