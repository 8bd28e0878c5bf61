// Package http exposes the order workflow over a JSON API served by echo.
package http

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/fxavier/mozdelivery-api-sub003/internal/core/application/usecases/commands"
	"github.com/fxavier/mozdelivery-api-sub003/internal/core/application/usecases/queries"
	"github.com/fxavier/mozdelivery-api-sub003/internal/core/domain/model/kernel"
	"github.com/fxavier/mozdelivery-api-sub003/internal/core/domain/model/order"
	"github.com/fxavier/mozdelivery-api-sub003/internal/pkg/errs"
	"github.com/fxavier/mozdelivery-api-sub003/internal/pkg/logger"

	"github.com/labstack/echo/v4"
	"github.com/oapi-codegen/runtime"
	openapi_types "github.com/oapi-codegen/runtime/types"
	"go.uber.org/zap"
)

// Use case ports of the HTTP adapter. The command and query handlers of the
// application layer implement them.
type (
	CreateOrderHandler interface {
		Handle(ctx context.Context, cmd commands.CreateOrderCommand) error
	}
	ChangeOrderStatusHandler interface {
		Handle(ctx context.Context, cmd commands.ChangeOrderStatusCommand) error
	}
	CancelOrderHandler interface {
		Handle(ctx context.Context, cmd commands.CancelOrderCommand) error
	}
	RefundOrderHandler interface {
		Handle(ctx context.Context, cmd commands.RefundOrderCommand) error
	}
	AutoProgressOrderHandler interface {
		Handle(ctx context.Context, cmd commands.AutoProgressOrderCommand) error
	}
	RegenerateDeliveryCodeHandler interface {
		Handle(ctx context.Context, cmd commands.RegenerateDeliveryCodeCommand) error
	}
	ConfirmDeliveryHandler interface {
		Handle(ctx context.Context, cmd commands.ConfirmDeliveryCommand) error
	}
	ForceExpireDeliveryCodeHandler interface {
		Handle(ctx context.Context, cmd commands.ForceExpireDeliveryCodeCommand) error
	}
	ClearCourierLockoutHandler interface {
		Handle(ctx context.Context, cmd commands.ClearCourierLockoutCommand) error
	}
	GetOrderHandler interface {
		Handle(ctx context.Context, query queries.GetOrderQuery) (queries.GetOrderQueryResponse, error)
	}
	GetActiveOrdersHandler interface {
		Handle(ctx context.Context, query queries.GetActiveOrdersQuery) ([]queries.GetActiveOrdersQueryResponse, error)
	}
	GetCourierValidationStatsHandler interface {
		Handle(
			ctx context.Context,
			query queries.GetCourierValidationStatsQuery,
		) (queries.GetCourierValidationStatsQueryResponse, error)
	}
)

// Handlers groups every use case the API serves. All fields are required.
type Handlers struct {
	CreateOrder               CreateOrderHandler
	ChangeOrderStatus         ChangeOrderStatusHandler
	CancelOrder               CancelOrderHandler
	RefundOrder               RefundOrderHandler
	AutoProgressOrder         AutoProgressOrderHandler
	RegenerateDeliveryCode    RegenerateDeliveryCodeHandler
	ConfirmDelivery           ConfirmDeliveryHandler
	ForceExpireDeliveryCode   ForceExpireDeliveryCodeHandler
	ClearCourierLockout       ClearCourierLockoutHandler
	GetOrder                  GetOrderHandler
	GetActiveOrders           GetActiveOrdersHandler
	GetCourierValidationStats GetCourierValidationStatsHandler
}

// Server translates HTTP requests into commands and queries.
type Server struct {
	h      Handlers
	logger *zap.Logger
}

func NewServer(h Handlers, log *zap.Logger) (*Server, error) {
	if h.CreateOrder == nil || h.ChangeOrderStatus == nil || h.CancelOrder == nil || h.RefundOrder == nil ||
		h.AutoProgressOrder == nil || h.RegenerateDeliveryCode == nil || h.ConfirmDelivery == nil ||
		h.ForceExpireDeliveryCode == nil || h.ClearCourierLockout == nil || h.GetOrder == nil ||
		h.GetActiveOrders == nil || h.GetCourierValidationStats == nil {
		return nil, errs.NewValueIsRequiredError("handlers")
	}
	return &Server{h: h, logger: logger.Component(log, "http")}, nil
}

// CreateOrder handles POST /api/v1/orders.
func (s *Server) CreateOrder(c echo.Context) error {
	var req NewOrder
	if err := decode(c, &req); err != nil {
		return badRequest(c, err.Error())
	}

	orderID := kernel.NewUUID()
	if req.OrderID != "" {
		id, err := parseUUID("orderId", req.OrderID)
		if err != nil {
			return s.fail(c, err)
		}
		orderID = id
	}
	merchantID, err := parseUUID("merchantId", req.MerchantID)
	if err != nil {
		return s.fail(c, err)
	}
	customerID, err := parseUUID("customerId", req.CustomerID)
	if err != nil {
		return s.fail(c, err)
	}
	method, err := order.ParsePaymentMethod(req.PaymentMethod)
	if err != nil {
		return s.fail(c, err)
	}
	point, err := kernel.NewGeoPoint(req.Address.Latitude, req.Address.Longitude)
	if err != nil {
		return s.fail(c, err)
	}

	items := make([]commands.ItemInput, 0, len(req.Items))
	for _, item := range req.Items {
		productID, err := parseUUID("productId", item.ProductID)
		if err != nil {
			return s.fail(c, err)
		}
		items = append(items, commands.ItemInput{
			ProductID: productID,
			Name:      item.Name,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
		})
	}

	cmd, err := commands.NewCreateOrderCommand(
		orderID,
		merchantID,
		customerID,
		items,
		order.AddressParams{
			Street:       req.Address.Street,
			City:         req.Address.City,
			District:     req.Address.District,
			PostalCode:   req.Address.PostalCode,
			Country:      req.Address.Country,
			Point:        point,
			Instructions: req.Address.Instructions,
		},
		method,
		strings.ToUpper(req.Currency),
	)
	if err != nil {
		return s.fail(c, err)
	}
	if err = s.h.CreateOrder.Handle(c.Request().Context(), cmd); err != nil {
		return s.fail(c, err)
	}

	c.Response().Header().Set(echo.HeaderLocation, "/api/v1/orders/"+orderID.String())
	return c.JSON(http.StatusCreated, OrderCreated{OrderID: orderID.String()})
}

// GetOrder handles GET /api/v1/orders/:orderId.
func (s *Server) GetOrder(c echo.Context) error {
	orderID, err := pathUUID(c, "orderId")
	if err != nil {
		return badRequest(c, err.Error())
	}
	return s.respondOrder(c, orderID)
}

// TransitionOrder handles POST /api/v1/orders/:orderId/transitions.
func (s *Server) TransitionOrder(c echo.Context) error {
	orderID, err := pathUUID(c, "orderId")
	if err != nil {
		return badRequest(c, err.Error())
	}
	var req StatusTransition
	if err = decode(c, &req); err != nil {
		return badRequest(c, err.Error())
	}

	target, err := order.ParseStatus(req.Status)
	if err != nil {
		return s.fail(c, err)
	}
	cmd, err := commands.NewChangeOrderStatusCommand(orderID, target)
	if err != nil {
		return s.fail(c, err)
	}
	if err = s.h.ChangeOrderStatus.Handle(c.Request().Context(), cmd); err != nil {
		return s.fail(c, err)
	}
	return s.respondOrder(c, orderID)
}

// CancelOrder handles POST /api/v1/orders/:orderId/cancellation.
func (s *Server) CancelOrder(c echo.Context) error {
	orderID, err := pathUUID(c, "orderId")
	if err != nil {
		return badRequest(c, err.Error())
	}
	var req Cancellation
	if err = decode(c, &req); err != nil {
		return badRequest(c, err.Error())
	}

	reason, err := order.ParseCancellationReason(req.Reason)
	if err != nil {
		return s.fail(c, err)
	}
	cmd, err := commands.NewCancelOrderCommand(orderID, reason, req.Details)
	if err != nil {
		return s.fail(c, err)
	}
	if err = s.h.CancelOrder.Handle(c.Request().Context(), cmd); err != nil {
		return s.fail(c, err)
	}
	return s.respondOrder(c, orderID)
}

// RefundOrder handles POST /api/v1/orders/:orderId/refund.
func (s *Server) RefundOrder(c echo.Context) error {
	orderID, err := pathUUID(c, "orderId")
	if err != nil {
		return badRequest(c, err.Error())
	}
	var req RefundRequest
	if err = decode(c, &req); err != nil {
		return badRequest(c, err.Error())
	}

	cmd, err := commands.NewRefundOrderCommand(orderID, req.Reason)
	if err != nil {
		return s.fail(c, err)
	}
	if err = s.h.RefundOrder.Handle(c.Request().Context(), cmd); err != nil {
		return s.fail(c, err)
	}
	return s.respondOrder(c, orderID)
}

// AutoProgressOrder handles POST /api/v1/orders/:orderId/auto-progression.
func (s *Server) AutoProgressOrder(c echo.Context) error {
	orderID, err := pathUUID(c, "orderId")
	if err != nil {
		return badRequest(c, err.Error())
	}

	cmd, err := commands.NewAutoProgressOrderCommand(orderID)
	if err != nil {
		return s.fail(c, err)
	}
	if err = s.h.AutoProgressOrder.Handle(c.Request().Context(), cmd); err != nil {
		return s.fail(c, err)
	}
	return s.respondOrder(c, orderID)
}

// RegenerateDeliveryCode handles POST /api/v1/orders/:orderId/delivery-code.
// The new code reaches the customer through the DCCGenerated event, never
// through this response.
func (s *Server) RegenerateDeliveryCode(c echo.Context) error {
	orderID, err := pathUUID(c, "orderId")
	if err != nil {
		return badRequest(c, err.Error())
	}
	var req DeliveryCodeRequest
	if err = decode(c, &req); err != nil {
		return badRequest(c, err.Error())
	}

	cmd, err := commands.NewRegenerateDeliveryCodeCommand(
		orderID, time.Duration(req.ExpiresInMinutes)*time.Minute, req.MaxAttempts)
	if err != nil {
		return s.fail(c, err)
	}
	if err = s.h.RegenerateDeliveryCode.Handle(c.Request().Context(), cmd); err != nil {
		return s.fail(c, err)
	}
	return s.respondOrder(c, orderID)
}

// ConfirmDelivery handles POST /api/v1/orders/:orderId/delivery-confirmation.
func (s *Server) ConfirmDelivery(c echo.Context) error {
	orderID, err := pathUUID(c, "orderId")
	if err != nil {
		return badRequest(c, err.Error())
	}
	var req DeliveryConfirmation
	if err = decode(c, &req); err != nil {
		return badRequest(c, err.Error())
	}

	courierID, err := parseUUID("courierId", req.CourierID)
	if err != nil {
		return s.fail(c, err)
	}
	cmd, err := commands.NewConfirmDeliveryCommand(orderID, courierID, req.Code)
	if err != nil {
		return s.fail(c, err)
	}
	if err = s.h.ConfirmDelivery.Handle(c.Request().Context(), cmd); err != nil {
		return s.fail(c, err)
	}
	return s.respondOrder(c, orderID)
}

// ForceExpireDeliveryCode handles
// POST /api/v1/admin/orders/:orderId/delivery-code/expiration.
func (s *Server) ForceExpireDeliveryCode(c echo.Context) error {
	orderID, err := pathUUID(c, "orderId")
	if err != nil {
		return badRequest(c, err.Error())
	}
	var req AdminAction
	if err = decode(c, &req); err != nil {
		return badRequest(c, err.Error())
	}

	cmd, err := commands.NewForceExpireDeliveryCodeCommand(orderID, req.AdminID, req.Reason)
	if err != nil {
		return s.fail(c, err)
	}
	if err = s.h.ForceExpireDeliveryCode.Handle(c.Request().Context(), cmd); err != nil {
		return s.fail(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// ClearCourierLockout handles DELETE /api/v1/admin/couriers/:courierId/lockout.
func (s *Server) ClearCourierLockout(c echo.Context) error {
	courierID, err := pathUUID(c, "courierId")
	if err != nil {
		return badRequest(c, err.Error())
	}
	var req AdminAction
	if err = decode(c, &req); err != nil {
		return badRequest(c, err.Error())
	}

	cmd, err := commands.NewClearCourierLockoutCommand(courierID, req.AdminID, req.Reason)
	if err != nil {
		return s.fail(c, err)
	}
	if err = s.h.ClearCourierLockout.Handle(c.Request().Context(), cmd); err != nil {
		return s.fail(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// GetCourierValidationStats handles
// GET /api/v1/admin/couriers/:courierId/validation-stats?window=24h.
func (s *Server) GetCourierValidationStats(c echo.Context) error {
	courierID, err := pathUUID(c, "courierId")
	if err != nil {
		return badRequest(c, err.Error())
	}

	var window *string
	if err = runtime.BindQueryParameter("form", true, false, "window", c.QueryParams(), &window); err != nil {
		return badRequest(c, err.Error())
	}
	var d time.Duration
	if window != nil && *window != "" {
		if d, err = time.ParseDuration(*window); err != nil {
			return badRequest(c, "invalid window: "+err.Error())
		}
	}

	query, err := queries.NewGetCourierValidationStatsQuery(courierID, d)
	if err != nil {
		return s.fail(c, err)
	}
	stats, err := s.h.GetCourierValidationStats.Handle(c.Request().Context(), query)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusOK, toValidationStats(stats))
}

// GetActiveOrders handles GET /api/v1/admin/orders/active?merchantId=&limit=.
func (s *Server) GetActiveOrders(c echo.Context) error {
	var merchant *openapi_types.UUID
	if err := runtime.BindQueryParameter("form", true, false, "merchantId", c.QueryParams(), &merchant); err != nil {
		return badRequest(c, err.Error())
	}
	var limit *int
	if err := runtime.BindQueryParameter("form", true, false, "limit", c.QueryParams(), &limit); err != nil {
		return badRequest(c, err.Error())
	}

	var merchantID *kernel.UUID
	if merchant != nil {
		id, err := kernel.UUIDFrom(*merchant)
		if err != nil {
			return s.fail(c, err)
		}
		merchantID = &id
	}

	var n int
	if limit != nil {
		n = *limit
	}

	query, err := queries.NewGetActiveOrdersQuery(merchantID, n)
	if err != nil {
		return s.fail(c, err)
	}
	orders, err := s.h.GetActiveOrders.Handle(c.Request().Context(), query)
	if err != nil {
		return s.fail(c, err)
	}

	response := make([]ActiveOrder, len(orders))
	for i, o := range orders {
		response[i] = ActiveOrder{
			ID:              o.ID.String(),
			MerchantID:      o.MerchantID.String(),
			Status:          o.Status.String(),
			StatusChangedAt: o.StatusChangedAt,
		}
	}
	return c.JSON(http.StatusOK, response)
}

func (s *Server) respondOrder(c echo.Context, orderID kernel.UUID) error {
	query, err := queries.NewGetOrderQuery(orderID)
	if err != nil {
		return s.fail(c, err)
	}
	view, err := s.h.GetOrder.Handle(c.Request().Context(), query)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusOK, toOrderView(view))
}

// decode binds the JSON body and runs the struct validation rules on it.
func decode(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return errors.New("invalid request body")
	}
	return c.Validate(req)
}

func parseUUID(name, value string) (kernel.UUID, error) {
	id, err := kernel.UUIDFromString(value)
	if err != nil {
		return kernel.UUID{}, errs.NewValueIsInvalidErrorWithCause(name, err)
	}
	return id, nil
}

// pathUUID binds a simple-style path parameter the way generated servers do.
func pathUUID(c echo.Context, name string) (kernel.UUID, error) {
	var id openapi_types.UUID
	err := runtime.BindStyledParameterWithOptions("simple", name, c.Param(name), &id,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false, Required: true})
	if err != nil {
		return kernel.UUID{}, err
	}
	return kernel.UUIDFrom(id)
}
