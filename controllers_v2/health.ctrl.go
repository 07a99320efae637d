package v2controllers

import (
	"net/http"

	"github.com/anvahreal/ravgateway/lib/service"
	"github.com/labstack/echo/v4"
)

type HealthController struct {
	svc *service.GatewayService
}

func NewHealthController(svc *service.GatewayService) *HealthController {
	return &HealthController{svc: svc}
}

// Healthz godoc
// @Summary      Liveness check
// @Produce      json
// @Tags         Health
// @Success      200
// @Failure      500
// @Router       /healthz [get]
func (controller *HealthController) Healthz(c echo.Context) error {
	if err := controller.svc.DB.PingContext(c.Request().Context()); err != nil {
		return c.String(http.StatusInternalServerError, "db unreachable")
	}
	return c.String(http.StatusOK, "ok")
}
