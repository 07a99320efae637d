package transport

import (
	"testing"

	"github.com/anvahreal/ravgateway/lib/service"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
)

func registeredRoutes(e *echo.Echo) map[string]bool {
	routes := make(map[string]bool)
	for _, r := range e.Routes() {
		routes[r.Method+" "+r.Path] = true
	}
	return routes
}

func TestRegisterEndpoints(t *testing.T) {
	svc := &service.GatewayService{
		Config: &service.Config{AllowAccountCreation: true, StrictRateLimit: 10, BurstRateLimit: 1},
	}
	e := echo.New()
	noop := func(next echo.HandlerFunc) echo.HandlerFunc { return next }
	secured := e.Group("")

	RegisterV2Endpoints(svc, e, secured, noop, noop)
	RegisterPublicEndpoints(svc, e, noop, noop)

	routes := registeredRoutes(e)
	for _, route := range []string{
		"POST /v2/merchants",
		"POST /v2/auth",
		"POST /v2/apikeys",
		"POST /v2/invoices",
		"GET /v2/invoices",
		"GET /v2/invoices/:id",
		"POST /v2/invoices/:id/send",
		"GET /v2/invoices/:id/qr",
		"GET /pay/:id",
		"GET /pay/:id/status",
		"POST /pay/:id/payments",
		"GET /healthz",
	} {
		assert.True(t, routes[route], route)
	}
}

func TestRegisterEndpointsWithoutAccountCreation(t *testing.T) {
	svc := &service.GatewayService{
		Config: &service.Config{AllowAccountCreation: false},
	}
	e := echo.New()
	noop := func(next echo.HandlerFunc) echo.HandlerFunc { return next }

	RegisterV2Endpoints(svc, e, e.Group(""), noop, noop)

	assert.False(t, registeredRoutes(e)["POST /v2/merchants"])
}
