package http

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	echoSwagger "github.com/swaggo/echo-swagger"
	"go.uber.org/zap"
)

// NewEcho builds the echo instance with every route, the request logger,
// panic recovery and OpenAPI request validation.
func (s *Server) NewEcho() (*echo.Echo, error) {
	validator, err := NewRequestValidator()
	if err != nil {
		return nil, err
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = s.errorHandler

	e.Use(middleware.Recover())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:  true,
		LogURI:     true,
		LogStatus:  true,
		LogLatency: true,
		LogError:   true,
		LogValuesFunc: func(_ echo.Context, v middleware.RequestLoggerValues) error {
			fields := []zap.Field{
				zap.String("method", v.Method),
				zap.String("uri", v.URI),
				zap.Int("status", v.Status),
				zap.Duration("latency", v.Latency),
			}
			if v.Error != nil {
				fields = append(fields, zap.Error(v.Error))
			}
			s.logger.Debug("request", fields...)
			return nil
		},
	}))

	e.GET("/health", func(c echo.Context) error {
		return c.String(http.StatusOK, "Healthy")
	})
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	validate := validator.Middleware()
	e.POST("/orders", s.CreateOrder, validate)
	e.GET("/orders/:id", s.GetOrder, validate)
	e.POST("/orders/:id/status", s.UpdateOrderStatus, validate)
	e.POST("/orders/:id/labels", s.GenerateLabel, validate)
	e.POST("/orders/:id/void-label", s.VoidLabel, validate)
	e.POST("/refresh-tracking", s.RefreshTracking, validate)
	e.GET("/promo-codes/:code", s.GetPromoCode, validate)
	e.POST("/print-jobs", s.CreatePrintJob, validate)
	e.GET("/print-jobs", s.ListPrintJobs, validate)
	e.GET("/print-jobs/:id", s.GetPrintJob, validate)
	e.GET("/customers/:id/orders", s.GetCustomerOrders, validate)

	return e, nil
}
