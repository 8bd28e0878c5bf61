package http

import (
	"net/http"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"
	echoSwagger "github.com/swaggo/echo-swagger"
	"github.com/swaggo/swag"
	"go.uber.org/zap"
)

const requestTimeout = 30 * time.Second

var registerDocOnce sync.Once

// NewRouter builds the echo instance serving the API, its OpenAPI document
// and the Swagger UI.
func NewRouter(s *Server, doc *OpenAPIDoc) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Logger.SetLevel(log.WARN)
	e.Validator = newRequestValidator()

	e.Use(middleware.Recover())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:   true,
		LogURI:      true,
		LogStatus:   true,
		LogLatency:  true,
		LogError:    true,
		HandleError: true,
		LogValuesFunc: func(_ echo.Context, v middleware.RequestLoggerValues) error {
			fields := []zap.Field{
				zap.String("method", v.Method),
				zap.String("uri", v.URI),
				zap.Int("status", v.Status),
				zap.Duration("latency", v.Latency),
			}
			if v.Error != nil {
				s.logger.Warn("request", append(fields, zap.Error(v.Error))...)
				return nil
			}
			s.logger.Debug("request", fields...)
			return nil
		},
	}))

	e.GET("/health", func(c echo.Context) error {
		return c.String(http.StatusOK, "Healthy")
	})

	if doc != nil {
		registerDocOnce.Do(func() { swag.Register(swag.Name, doc) })
		e.GET("/openapi.json", func(c echo.Context) error {
			return c.JSONBlob(http.StatusOK, doc.raw)
		})
		e.GET("/swagger/*", echoSwagger.EchoWrapHandler(echoSwagger.URL("/openapi.json")))
	}

	api := e.Group("/api/v1", middleware.ContextTimeout(requestTimeout))

	api.POST("/orders", s.CreateOrder)
	api.GET("/orders/:orderId", s.GetOrder)
	api.POST("/orders/:orderId/transitions", s.TransitionOrder)
	api.POST("/orders/:orderId/cancellation", s.CancelOrder)
	api.POST("/orders/:orderId/refund", s.RefundOrder)
	api.POST("/orders/:orderId/auto-progression", s.AutoProgressOrder)
	api.POST("/orders/:orderId/delivery-code", s.RegenerateDeliveryCode)
	api.POST("/orders/:orderId/delivery-confirmation", s.ConfirmDelivery)

	admin := api.Group("/admin")
	admin.GET("/orders/active", s.GetActiveOrders)
	admin.POST("/orders/:orderId/delivery-code/expiration", s.ForceExpireDeliveryCode)
	admin.DELETE("/couriers/:courierId/lockout", s.ClearCourierLockout)
	admin.GET("/couriers/:courierId/validation-stats", s.GetCourierValidationStats)

	return e
}
