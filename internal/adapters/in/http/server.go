// Package http is the REST surface of the buyback service.
package http

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"buyback/internal/core/application/usecases/commands"
	"buyback/internal/core/application/usecases/queries"
	"buyback/internal/core/domain/model/kernel"
	"buyback/internal/core/domain/model/order"
	"buyback/internal/pkg/errs"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// CommandHandlers groups the write-side use cases the server exposes.
type CommandHandlers struct {
	CreateOrder       commands.CreateOrderCommandHandler
	UpdateOrderStatus commands.UpdateOrderStatusCommandHandler
	GenerateLabel     commands.GenerateLabelCommandHandler
	VoidLabels        commands.VoidLabelsCommandHandler
	RefreshTracking   commands.RefreshTrackingCommandHandler
	CreatePrintJob    commands.CreatePrintJobCommandHandler
}

// QueryHandlers groups the read-side use cases the server exposes.
type QueryHandlers struct {
	GetOrder          queries.GetOrderQueryHandler
	GetPromoCode      queries.GetPromoCodeQueryHandler
	GetCustomerOrders queries.GetCustomerOrdersQueryHandler
	GetPrintJob       queries.GetPrintJobQueryHandler
	ListPrintJobs     queries.ListPrintJobsQueryHandler
}

// Server coordinates between HTTP handlers and application use cases.
type Server struct {
	commands CommandHandlers
	queries  QueryHandlers
	logger   *zap.Logger
}

func NewServer(commandHandlers CommandHandlers, queryHandlers QueryHandlers, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		commands: commandHandlers,
		queries:  queryHandlers,
		logger:   logger.With(zap.String("component", "http")),
	}
}

// CreateOrder handles POST /orders.
func (s *Server) CreateOrder(c echo.Context) error {
	var req CreateOrderRequest
	if err := c.Bind(&req); err != nil {
		return err
	}

	address, err := kernel.NewAddress(req.Address.Name, req.Address.Street1, req.Address.Street2,
		req.Address.City, req.Address.State, req.Address.PostalCode, req.Address.Country)
	if err != nil {
		return err
	}
	device := order.Device{
		Model:       req.Device.Model,
		Storage:     req.Device.Storage,
		Condition:   req.Device.Condition,
		QuotedPrice: req.Device.QuotedPrice,
	}
	cmd, err := commands.NewCreateOrderCommand(req.CustomerID, order.ShippingPreference(req.ShippingPreference),
		device, address.WithPhone(req.Address.Phone), req.PromoCode)
	if err != nil {
		return err
	}

	created, err := s.commands.CreateOrder.Handle(c.Request().Context(), cmd)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, OrderResponse{Order: queries.NewGetOrderQueryResponse(created)})
}

// GetOrder handles GET /orders/:id.
func (s *Server) GetOrder(c echo.Context) error {
	id, err := orderID(c)
	if err != nil {
		return err
	}
	query, err := queries.NewGetOrderQuery(id)
	if err != nil {
		return err
	}

	res, err := s.queries.GetOrder.Handle(c.Request().Context(), query)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, OrderResponse{Order: res})
}

// UpdateOrderStatus handles POST /orders/:id/status.
func (s *Server) UpdateOrderStatus(c echo.Context) error {
	id, err := orderID(c)
	if err != nil {
		return err
	}
	var req UpdateOrderStatusRequest
	if err = c.Bind(&req); err != nil {
		return err
	}
	cmd, err := commands.NewUpdateOrderStatusCommand(id, req.Status, req.Note, req.SuppressLog)
	if err != nil {
		return err
	}

	updated, err := s.commands.UpdateOrderStatus.Handle(c.Request().Context(), cmd)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, OrderResponse{Order: queries.NewGetOrderQueryResponse(updated)})
}

// GenerateLabel handles POST /orders/:id/labels.
func (s *Server) GenerateLabel(c echo.Context) error {
	id, err := orderID(c)
	if err != nil {
		return err
	}
	var req GenerateLabelRequest
	if err = c.Bind(&req); err != nil {
		return err
	}
	cmd, err := commands.NewGenerateLabelCommand(id, req.Slot)
	if err != nil {
		return err
	}

	label, err := s.commands.GenerateLabel.Handle(c.Request().Context(), cmd)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, LabelResponse{Label: label.ToMap()})
}

// VoidLabel handles POST /orders/:id/void-label. When a slot fails the
// results gathered so far are returned with the error.
func (s *Server) VoidLabel(c echo.Context) error {
	id, err := orderID(c)
	if err != nil {
		return err
	}
	var req VoidLabelRequest
	if err = c.Bind(&req); err != nil {
		return err
	}
	cmd, err := commands.NewVoidLabelsCommand(id, req.Labels, req.RetryPending)
	if err != nil {
		return err
	}

	results, err := s.commands.VoidLabels.Handle(c.Request().Context(), cmd)
	if err != nil {
		if len(results) == 0 {
			return err
		}
		status, body := errorResponse(err)
		s.logger.Warn("void stopped", zap.Int64("order_id", id), zap.Error(err))
		return c.JSON(status, VoidLabelFailure{ErrorResponse: body, Results: results})
	}
	return c.JSON(http.StatusOK, VoidLabelResponse{Results: results})
}

// RefreshTracking handles POST /refresh-tracking. A failure answers with the
// stored status so callers can see the order was left as it was.
func (s *Server) RefreshTracking(c echo.Context) error {
	var req RefreshTrackingRequest
	if err := c.Bind(&req); err != nil {
		return err
	}
	cmd, err := commands.NewRefreshTrackingCommand(req.OrderID)
	if err != nil {
		return err
	}

	res, err := s.commands.RefreshTracking.Handle(c.Request().Context(), cmd)
	if err != nil {
		status, body := errorResponse(err)
		if status >= http.StatusInternalServerError {
			s.logger.Error("refresh failed", zap.Int64("order_id", req.OrderID), zap.Error(err))
		}
		return c.JSON(status, RefreshTrackingFailure{
			ErrorResponse: body,
			OrderID:       req.OrderID,
			Status:        res.PreviousStatus,
		})
	}
	return c.JSON(http.StatusOK, newRefreshTrackingResponse(res))
}

// GetPromoCode handles GET /promo-codes/:code.
func (s *Server) GetPromoCode(c echo.Context) error {
	query, err := queries.NewGetPromoCodeQuery(c.Param("code"))
	if err != nil {
		return err
	}
	res, err := s.queries.GetPromoCode.Handle(c.Request().Context(), query)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, res)
}

// CreatePrintJob handles POST /print-jobs.
func (s *Server) CreatePrintJob(c echo.Context) error {
	var req CreatePrintJobRequest
	if err := c.Bind(&req); err != nil {
		return err
	}
	cmd, err := commands.NewCreatePrintJobCommand(req.OrderIDs)
	if err != nil {
		return err
	}

	job, err := s.commands.CreatePrintJob.Handle(c.Request().Context(), cmd)
	if err != nil && job.ID == "" {
		return err
	}
	res := PrintJobResponse{Job: newPrintJob(job)}
	if err != nil {
		res.Warnings = strings.Split(err.Error(), "\n")
	}
	return c.JSON(http.StatusCreated, res)
}

// GetPrintJob handles GET /print-jobs/:id.
func (s *Server) GetPrintJob(c echo.Context) error {
	query, err := queries.NewGetPrintJobQuery(c.Param("id"))
	if err != nil {
		return err
	}
	job, err := s.queries.GetPrintJob.Handle(c.Request().Context(), query)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, PrintJobResponse{Job: newPrintJob(job)})
}

// ListPrintJobs handles GET /print-jobs?since=.
func (s *Server) ListPrintJobs(c echo.Context) error {
	query, err := queries.NewListPrintJobsQuery(c.QueryParam("since"))
	if err != nil {
		return err
	}
	jobs, err := s.queries.ListPrintJobs.Handle(c.Request().Context(), query)
	if err != nil {
		return err
	}
	res := PrintJobsResponse{Jobs: make([]PrintJob, 0, len(jobs))}
	for _, job := range jobs {
		res.Jobs = append(res.Jobs, newPrintJob(job))
	}
	return c.JSON(http.StatusOK, res)
}

// GetCustomerOrders handles GET /customers/:id/orders.
func (s *Server) GetCustomerOrders(c echo.Context) error {
	query, err := queries.NewGetCustomerOrdersQuery(c.Param("id"))
	if err != nil {
		return err
	}
	orders, err := s.queries.GetCustomerOrders.Handle(c.Request().Context(), query)
	if err != nil {
		return err
	}
	if orders == nil {
		orders = []queries.CustomerOrderResponse{}
	}
	return c.JSON(http.StatusOK, CustomerOrdersResponse{Orders: orders})
}

func orderID(c echo.Context) (int64, error) {
	raw := c.Param("id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, errs.NewValueIsInvalidErrorWithCause("id", fmt.Errorf("%q is not a positive integer", raw))
	}
	return id, nil
}
