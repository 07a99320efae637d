package transport

import (
	v2controllers "github.com/anvahreal/ravgateway/controllers_v2"
	"github.com/anvahreal/ravgateway/lib/service"
	"github.com/labstack/echo/v4"
)

func RegisterV2Endpoints(svc *service.GatewayService, e *echo.Echo, secured *echo.Group, strictRateLimitMiddleware echo.MiddlewareFunc, logMw echo.MiddlewareFunc) {
	merchantCtrl := v2controllers.NewMerchantController(svc)
	if svc.Config.AllowAccountCreation {
		e.POST("/v2/merchants", merchantCtrl.CreateMerchant, strictRateLimitMiddleware, logMw)
	}
	e.POST("/v2/auth", merchantCtrl.Auth, strictRateLimitMiddleware, logMw)

	invoiceCtrl := v2controllers.NewInvoiceController(svc)
	cacheClient := CreateCacheClient()

	secured.POST("/v2/apikeys", merchantCtrl.CreateAPIKey)
	secured.POST("/v2/invoices", invoiceCtrl.AddInvoice)
	secured.GET("/v2/invoices", invoiceCtrl.GetInvoices)
	secured.GET("/v2/invoices/:id", invoiceCtrl.GetInvoice)
	secured.POST("/v2/invoices/:id/send", invoiceCtrl.SendInvoice)
	secured.GET("/v2/invoices/:id/qr", invoiceCtrl.InvoiceQR, cacheClient.Middleware())
}

// RegisterPublicEndpoints mounts the unauthenticated payment page routes.
// Submitting a transaction hash triggers chain RPC calls, so it sits behind
// the strict rate limit.
func RegisterPublicEndpoints(svc *service.GatewayService, e *echo.Echo, strictRateLimitMiddleware echo.MiddlewareFunc, logMw echo.MiddlewareFunc) {
	paymentCtrl := v2controllers.NewPaymentController(svc)
	e.GET("/pay/:id", paymentCtrl.GetPublicInvoice, logMw)
	e.GET("/pay/:id/status", paymentCtrl.PaymentStatus)
	e.POST("/pay/:id/payments", paymentCtrl.SubmitPayment, strictRateLimitMiddleware, logMw)

	healthCtrl := v2controllers.NewHealthController(svc)
	e.GET("/healthz", healthCtrl.Healthz)
}
