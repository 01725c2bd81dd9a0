// Package http exposes the fulfillment core over a REST API.
// Handlers translate requests into commands and queries, and domain errors
// into HTTP status codes; no business logic lives here.
package http

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"fulfillment/internal/core/application/usecases/commands"
	"fulfillment/internal/core/application/usecases/queries"
	"fulfillment/internal/core/domain/model/assignment"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/metrics"
	"fulfillment/internal/pkg/errs"

	"github.com/labstack/echo/v4"
)

// Server coordinates between HTTP handlers and application use cases.
type Server struct {
	// Command handlers
	placeOrderHandler           commands.PlaceOrderCommandHandler
	updateOrderStatusHandler    commands.UpdateOrderStatusCommandHandler
	autoBatchHandler            commands.AutoBatchCommandHandler
	dispatchBatchesHandler      commands.DispatchBatchesCommandHandler
	claimBatchHandler           commands.ClaimBatchCommandHandler
	updateDeliveryStatusHandler commands.UpdateDeliveryStatusCommandHandler
	reassignBatchHandler        commands.ReassignBatchCommandHandler
	cancelBatchHandler          commands.CancelBatchCommandHandler

	// Query handlers
	getAvailableBatchesHandler queries.GetAvailableBatchesQueryHandler
	getMyBatchHandler          queries.GetMyBatchQueryHandler
	getBatchByIDHandler        queries.GetBatchByIDQueryHandler
	getBatchStatsHandler       queries.GetBatchStatsQueryHandler
}

// NewServer creates a new HTTP server with the required command and query handlers.
func NewServer(
	placeOrderHandler commands.PlaceOrderCommandHandler,
	updateOrderStatusHandler commands.UpdateOrderStatusCommandHandler,
	autoBatchHandler commands.AutoBatchCommandHandler,
	dispatchBatchesHandler commands.DispatchBatchesCommandHandler,
	claimBatchHandler commands.ClaimBatchCommandHandler,
	updateDeliveryStatusHandler commands.UpdateDeliveryStatusCommandHandler,
	reassignBatchHandler commands.ReassignBatchCommandHandler,
	cancelBatchHandler commands.CancelBatchCommandHandler,
	getAvailableBatchesHandler queries.GetAvailableBatchesQueryHandler,
	getMyBatchHandler queries.GetMyBatchQueryHandler,
	getBatchByIDHandler queries.GetBatchByIDQueryHandler,
	getBatchStatsHandler queries.GetBatchStatsQueryHandler,
) *Server {
	return &Server{
		placeOrderHandler:           placeOrderHandler,
		updateOrderStatusHandler:    updateOrderStatusHandler,
		autoBatchHandler:            autoBatchHandler,
		dispatchBatchesHandler:      dispatchBatchesHandler,
		claimBatchHandler:           claimBatchHandler,
		updateDeliveryStatusHandler: updateDeliveryStatusHandler,
		reassignBatchHandler:        reassignBatchHandler,
		cancelBatchHandler:          cancelBatchHandler,
		getAvailableBatchesHandler:  getAvailableBatchesHandler,
		getMyBatchHandler:           getMyBatchHandler,
		getBatchByIDHandler:         getBatchByIDHandler,
		getBatchStatsHandler:        getBatchStatsHandler,
	}
}

// RegisterRoutes attaches every endpoint to the echo instance.
func (s *Server) RegisterRoutes(e *echo.Echo) {
	v1 := e.Group("/api/v1")

	v1.POST("/orders", s.PlaceOrder)
	v1.PATCH("/orders/:orderId/status", s.UpdateOrderStatus)

	v1.POST("/batches/auto-batch", s.AutoBatch)
	v1.POST("/batches/dispatch", s.DispatchBatches)
	v1.GET("/batches/available", s.GetAvailableBatches)
	v1.GET("/batches/my", s.GetMyBatch)
	v1.GET("/batches/:batchId", s.GetBatchByID)
	v1.POST("/batches/:batchId/claim", s.ClaimBatch)
	v1.POST("/batches/:batchId/reassign", s.ReassignBatch)
	v1.POST("/batches/:batchId/cancel", s.CancelBatch)

	v1.PATCH("/deliveries/:orderId/status", s.UpdateDeliveryStatus)

	v1.GET("/kitchens/:kitchenId/batch-stats", s.GetBatchStats)
}

// PlaceOrder handles POST /api/v1/orders - places a new order.
func (s *Server) PlaceOrder(ctx echo.Context) error {
	var request PlaceOrderRequest
	if err := ctx.Bind(&request); err != nil {
		return badRequest(ctx, "Invalid request body")
	}

	customerID, err := kernel.UUIDFromString(request.CustomerID)
	if err != nil {
		return badRequest(ctx, "Invalid customer id")
	}
	kitchenID, err := kernel.UUIDFromString(request.KitchenID)
	if err != nil {
		return badRequest(ctx, "Invalid kitchen id")
	}
	zoneID, err := kernel.UUIDFromString(request.ZoneID)
	if err != nil {
		return badRequest(ctx, "Invalid zone id")
	}

	var mealWindow *kernel.MealWindow
	if request.MealWindow != nil {
		w := kernel.MealWindow(*request.MealWindow)
		mealWindow = &w
	}

	address, err := kernel.NewAddress(
		request.Address.Line, request.Address.Landmark,
		request.Address.City, request.Address.Pincode)
	if err != nil {
		return badRequest(ctx, "Invalid address: "+err.Error())
	}

	cmd, err := commands.NewPlaceOrderCommand(
		kernel.NewUUID(), customerID, kitchenID, zoneID,
		mealWindow, address, request.Items)
	if err != nil {
		return badRequest(ctx, "Invalid order data: "+err.Error())
	}

	placed, err := s.placeOrderHandler.Handle(ctx.Request().Context(), cmd)
	if err != nil {
		return domainError(ctx, err)
	}

	metrics.OrdersPlaced.Inc()
	return ctx.JSON(http.StatusCreated, toOrderResponse(placed))
}

// UpdateOrderStatus handles PATCH /api/v1/orders/:orderId/status - moves an
// order through its kitchen-side lifecycle.
func (s *Server) UpdateOrderStatus(ctx echo.Context) error {
	orderID, err := kernel.UUIDFromString(ctx.Param("orderId"))
	if err != nil {
		return badRequest(ctx, "Invalid order id")
	}

	var request UpdateOrderStatusRequest
	if err = ctx.Bind(&request); err != nil {
		return badRequest(ctx, "Invalid request body")
	}

	cmd, err := commands.NewUpdateOrderStatusCommand(
		orderID, order.Status(request.Status), request.Actor, request.Note)
	if err != nil {
		return badRequest(ctx, "Invalid status update: "+err.Error())
	}

	updated, err := s.updateOrderStatusHandler.Handle(ctx.Request().Context(), cmd)
	if err != nil {
		return domainError(ctx, err)
	}

	return ctx.JSON(http.StatusOK, toOrderResponse(updated))
}

// AutoBatch handles POST /api/v1/batches/auto-batch - runs a batching sweep.
func (s *Server) AutoBatch(ctx echo.Context) error {
	var request AutoBatchRequest
	if err := ctx.Bind(&request); err != nil {
		return badRequest(ctx, "Invalid request body")
	}

	var mealWindow *kernel.MealWindow
	if request.MealWindow != nil {
		w := kernel.MealWindow(*request.MealWindow)
		mealWindow = &w
	}

	var kitchenID *kernel.UUID
	if request.KitchenID != nil {
		id, err := kernel.UUIDFromString(*request.KitchenID)
		if err != nil {
			return badRequest(ctx, "Invalid kitchen id")
		}
		kitchenID = &id
	}

	cmd, err := commands.NewAutoBatchCommand(mealWindow, kitchenID)
	if err != nil {
		return badRequest(ctx, "Invalid batching request: "+err.Error())
	}

	result, err := s.autoBatchHandler.Handle(ctx.Request().Context(), cmd)
	if err != nil {
		return domainError(ctx, err)
	}

	return ctx.JSON(http.StatusOK, AutoBatchResponse{
		BatchesCreated:  result.BatchesCreated,
		BatchesUpdated:  result.BatchesUpdated,
		OrdersProcessed: result.OrdersProcessed,
	})
}

// DispatchBatches handles POST /api/v1/batches/dispatch - offers collected
// batches whose cutoff has passed to drivers.
func (s *Server) DispatchBatches(ctx echo.Context) error {
	var request DispatchBatchesRequest
	if err := ctx.Bind(&request); err != nil {
		return badRequest(ctx, "Invalid request body")
	}

	var kitchenID *kernel.UUID
	if request.KitchenID != nil {
		id, err := kernel.UUIDFromString(*request.KitchenID)
		if err != nil {
			return badRequest(ctx, "Invalid kitchen id")
		}
		kitchenID = &id
	}

	cmd, err := commands.NewDispatchBatchesCommand(
		kernel.MealWindow(request.MealWindow), kitchenID, request.Force)
	if err != nil {
		return badRequest(ctx, "Invalid dispatch request: "+err.Error())
	}

	result, err := s.dispatchBatchesHandler.Handle(ctx.Request().Context(), cmd)
	if err != nil {
		return domainError(ctx, err)
	}

	return ctx.JSON(http.StatusOK, DispatchBatchesResponse{
		BatchesDispatched: result.BatchesDispatched,
	})
}

// ClaimBatch handles POST /api/v1/batches/:batchId/claim - a driver's attempt
// to take an offered batch. Exactly one concurrent claimer succeeds; the rest
// receive 409.
func (s *Server) ClaimBatch(ctx echo.Context) error {
	batchID, err := kernel.UUIDFromString(ctx.Param("batchId"))
	if err != nil {
		return badRequest(ctx, "Invalid batch id")
	}

	var request ClaimBatchRequest
	if err = ctx.Bind(&request); err != nil {
		return badRequest(ctx, "Invalid request body")
	}

	driverID, err := kernel.UUIDFromString(request.DriverID)
	if err != nil {
		return badRequest(ctx, "Invalid driver id")
	}

	cmd, err := commands.NewClaimBatchCommand(batchID, driverID)
	if err != nil {
		return badRequest(ctx, "Invalid claim: "+err.Error())
	}

	claimed, err := s.claimBatchHandler.Handle(ctx.Request().Context(), cmd)
	if err != nil {
		if errors.Is(err, errs.ErrPreconditionFailed) {
			metrics.ClaimAttempts.WithLabelValues("lost").Inc()
		}
		return domainError(ctx, err)
	}

	metrics.ClaimAttempts.WithLabelValues("won").Inc()
	response := BatchResponse{
		ID:             claimed.ID().String(),
		BatchNumber:    claimed.BatchNumber(),
		KitchenID:      claimed.KitchenID().String(),
		ZoneID:         claimed.ZoneID().String(),
		MealWindow:     string(claimed.MealWindow()),
		BatchDate:      claimed.BatchDate(),
		WindowEndTime:  claimed.WindowEndTime(),
		Capacity:       claimed.Capacity(),
		Status:         string(claimed.Status()),
		ClaimedAt:      claimed.ClaimedAt(),
		CompletedAt:    claimed.CompletedAt(),
		TotalDelivered: claimed.TotalDelivered(),
		TotalFailed:    claimed.TotalFailed(),
		OrderIDs:       uuidStrings(claimed.OrderIDs()),
	}
	if id := claimed.DriverID(); id != nil {
		value := id.String()
		response.DriverID = &value
	}

	return ctx.JSON(http.StatusOK, response)
}

// UpdateDeliveryStatus handles PATCH /api/v1/deliveries/:orderId/status - a
// driver's progress report on one stop.
func (s *Server) UpdateDeliveryStatus(ctx echo.Context) error {
	orderID, err := kernel.UUIDFromString(ctx.Param("orderId"))
	if err != nil {
		return badRequest(ctx, "Invalid order id")
	}

	var request UpdateDeliveryStatusRequest
	if err = ctx.Bind(&request); err != nil {
		return badRequest(ctx, "Invalid request body")
	}

	driverID, err := kernel.UUIDFromString(request.DriverID)
	if err != nil {
		return badRequest(ctx, "Invalid driver id")
	}

	var proofType *assignment.ProofType
	if request.ProofType != nil {
		p := assignment.ProofType(*request.ProofType)
		proofType = &p
	}

	cmd, err := commands.NewUpdateDeliveryStatusCommand(
		orderID, driverID,
		assignment.Status(request.Status),
		proofType, request.ProofValue, request.FailureReason,
		request.Latitude, request.Longitude)
	if err != nil {
		return badRequest(ctx, "Invalid delivery report: "+err.Error())
	}

	result, err := s.updateDeliveryStatusHandler.Handle(ctx.Request().Context(), cmd)
	if err != nil {
		return domainError(ctx, err)
	}

	if result.Assignment.Status().IsTerminal() {
		metrics.DeliveriesClosed.WithLabelValues(strings.ToLower(string(result.Assignment.Status()))).Inc()
	}

	return ctx.JSON(http.StatusOK, DeliveryStatusResponse{
		OrderID:          result.Order.ID().String(),
		OrderStatus:      string(result.Order.Status()),
		AssignmentStatus: string(result.Assignment.Status()),
		ProofVerified:    result.Assignment.Proof().Verified(),
	})
}

// ReassignBatch handles POST /api/v1/batches/:batchId/reassign - an operator
// hands an active batch to a different driver.
func (s *Server) ReassignBatch(ctx echo.Context) error {
	batchID, err := kernel.UUIDFromString(ctx.Param("batchId"))
	if err != nil {
		return badRequest(ctx, "Invalid batch id")
	}

	var request ReassignBatchRequest
	if err = ctx.Bind(&request); err != nil {
		return badRequest(ctx, "Invalid request body")
	}

	driverID, err := kernel.UUIDFromString(request.DriverID)
	if err != nil {
		return badRequest(ctx, "Invalid driver id")
	}

	cmd, err := commands.NewReassignBatchCommand(batchID, driverID, request.Actor, request.Reason)
	if err != nil {
		return badRequest(ctx, "Invalid reassignment: "+err.Error())
	}

	if err = s.reassignBatchHandler.Handle(ctx.Request().Context(), cmd); err != nil {
		return domainError(ctx, err)
	}

	return ctx.NoContent(http.StatusNoContent)
}

// CancelBatch handles POST /api/v1/batches/:batchId/cancel - an operator
// cancels a batch, releasing its orders back to the batchable pool.
func (s *Server) CancelBatch(ctx echo.Context) error {
	batchID, err := kernel.UUIDFromString(ctx.Param("batchId"))
	if err != nil {
		return badRequest(ctx, "Invalid batch id")
	}

	var request CancelBatchRequest
	if err = ctx.Bind(&request); err != nil {
		return badRequest(ctx, "Invalid request body")
	}

	cmd, err := commands.NewCancelBatchCommand(batchID, request.Actor, request.Reason)
	if err != nil {
		return badRequest(ctx, "Invalid cancellation: "+err.Error())
	}

	if err = s.cancelBatchHandler.Handle(ctx.Request().Context(), cmd); err != nil {
		return domainError(ctx, err)
	}

	return ctx.NoContent(http.StatusNoContent)
}

// GetAvailableBatches handles GET /api/v1/batches/available - lists batches a
// driver may claim.
func (s *Server) GetAvailableBatches(ctx echo.Context) error {
	driverID, err := kernel.UUIDFromString(ctx.QueryParam("driver_id"))
	if err != nil {
		return badRequest(ctx, "Invalid driver id")
	}

	query, err := queries.NewGetAvailableBatchesQuery(driverID)
	if err != nil {
		return badRequest(ctx, "Invalid query: "+err.Error())
	}

	batches, err := s.getAvailableBatchesHandler.Handle(ctx.Request().Context(), query)
	if err != nil {
		return domainError(ctx, err)
	}

	response := make([]AvailableBatchResponse, len(batches))
	for i, b := range batches {
		response[i] = AvailableBatchResponse{
			ID:            b.ID.String(),
			BatchNumber:   b.BatchNumber,
			KitchenID:     b.KitchenID.String(),
			ZoneID:        b.ZoneID.String(),
			MealWindow:    b.MealWindow,
			WindowEndTime: b.WindowEndTime,
			MemberCount:   b.MemberCount,
		}
	}

	return ctx.JSON(http.StatusOK, response)
}

// GetMyBatch handles GET /api/v1/batches/my - the driver's active batch with
// its ordered stops.
func (s *Server) GetMyBatch(ctx echo.Context) error {
	driverID, err := kernel.UUIDFromString(ctx.QueryParam("driver_id"))
	if err != nil {
		return badRequest(ctx, "Invalid driver id")
	}

	query, err := queries.NewGetMyBatchQuery(driverID)
	if err != nil {
		return badRequest(ctx, "Invalid query: "+err.Error())
	}

	myBatch, err := s.getMyBatchHandler.Handle(ctx.Request().Context(), query)
	if err != nil {
		return domainError(ctx, err)
	}

	stops := make([]MyBatchStopResponse, len(myBatch.Stops))
	for i, stop := range myBatch.Stops {
		stops[i] = MyBatchStopResponse{
			OrderID:     stop.OrderID.String(),
			Sequence:    stop.Sequence,
			Status:      stop.Status,
			OrderStatus: stop.OrderStatus,
			AddressLine: stop.AddressLine,
			City:        stop.City,
			Pincode:     stop.Pincode,
		}
	}

	return ctx.JSON(http.StatusOK, MyBatchResponse{
		ID:            myBatch.ID.String(),
		BatchNumber:   myBatch.BatchNumber,
		Status:        myBatch.Status,
		MealWindow:    myBatch.MealWindow,
		WindowEndTime: myBatch.WindowEndTime,
		ClaimedAt:     myBatch.ClaimedAt,
		Stops:         stops,
	})
}

// GetBatchByID handles GET /api/v1/batches/:batchId.
func (s *Server) GetBatchByID(ctx echo.Context) error {
	batchID, err := kernel.UUIDFromString(ctx.Param("batchId"))
	if err != nil {
		return badRequest(ctx, "Invalid batch id")
	}

	query, err := queries.NewGetBatchByIDQuery(batchID)
	if err != nil {
		return badRequest(ctx, "Invalid query: "+err.Error())
	}

	found, err := s.getBatchByIDHandler.Handle(ctx.Request().Context(), query)
	if err != nil {
		return domainError(ctx, err)
	}

	response := BatchResponse{
		ID:             found.ID.String(),
		BatchNumber:    found.BatchNumber,
		KitchenID:      found.KitchenID.String(),
		ZoneID:         found.ZoneID.String(),
		MealWindow:     found.MealWindow,
		BatchDate:      found.BatchDate,
		WindowEndTime:  found.WindowEndTime,
		Capacity:       found.Capacity,
		Status:         found.Status,
		ClaimedAt:      found.ClaimedAt,
		CompletedAt:    found.CompletedAt,
		TotalDelivered: found.TotalDelivered,
		TotalFailed:    found.TotalFailed,
		OrderIDs:       uuidStrings(found.OrderIDs),
	}
	if found.DriverID != nil {
		value := found.DriverID.String()
		response.DriverID = &value
	}

	return ctx.JSON(http.StatusOK, response)
}

// GetBatchStats handles GET /api/v1/kitchens/:kitchenId/batch-stats - per-batch
// delivery outcomes for one kitchen-day. The date query parameter defaults to
// today.
func (s *Server) GetBatchStats(ctx echo.Context) error {
	kitchenID, err := kernel.UUIDFromString(ctx.Param("kitchenId"))
	if err != nil {
		return badRequest(ctx, "Invalid kitchen id")
	}

	date := time.Now().UTC()
	if raw := ctx.QueryParam("date"); raw != "" {
		date, err = time.Parse("2006-01-02", raw)
		if err != nil {
			return badRequest(ctx, "Invalid date, expected YYYY-MM-DD")
		}
	}

	query, err := queries.NewGetBatchStatsQuery(kitchenID, date)
	if err != nil {
		return badRequest(ctx, "Invalid query: "+err.Error())
	}

	stats, err := s.getBatchStatsHandler.Handle(ctx.Request().Context(), query)
	if err != nil {
		return domainError(ctx, err)
	}

	response := make([]BatchStatsResponse, len(stats))
	for i, line := range stats {
		response[i] = BatchStatsResponse{
			BatchID:        line.BatchID.String(),
			BatchNumber:    line.BatchNumber,
			MealWindow:     line.MealWindow,
			Status:         line.Status,
			MemberCount:    line.MemberCount,
			TotalDelivered: line.TotalDelivered,
			TotalFailed:    line.TotalFailed,
		}
	}

	return ctx.JSON(http.StatusOK, response)
}

func toOrderResponse(o *order.Order) OrderResponse {
	response := OrderResponse{
		ID:         o.ID().String(),
		CustomerID: o.CustomerID().String(),
		KitchenID:  o.KitchenID().String(),
		ZoneID:     o.ZoneID().String(),
		Status:     string(o.Status()),
	}
	if w := o.MealWindow(); w != nil {
		value := string(*w)
		response.MealWindow = &value
	}
	if id := o.BatchID(); id != nil {
		value := id.String()
		response.BatchID = &value
	}
	if id := o.DriverID(); id != nil {
		value := id.String()
		response.DriverID = &value
	}
	return response
}

func uuidStrings(ids []kernel.UUID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.String()
	}
	return out
}

func badRequest(ctx echo.Context, message string) error {
	return ctx.JSON(http.StatusBadRequest, Error{
		Code:    http.StatusBadRequest,
		Message: message,
	})
}

// domainError maps domain error classes onto HTTP statuses: missing
// aggregates to 404, state conflicts (lost claims, cutoff not reached, proof
// mismatches) to 409, validation failures to 400, everything else to 500.
func domainError(ctx echo.Context, err error) error {
	switch {
	case errors.Is(err, errs.ErrObjectNotFound):
		return ctx.JSON(http.StatusNotFound, Error{
			Code:    http.StatusNotFound,
			Message: err.Error(),
		})
	case errors.Is(err, errs.ErrPreconditionFailed):
		return ctx.JSON(http.StatusConflict, Error{
			Code:    http.StatusConflict,
			Message: err.Error(),
		})
	case errors.Is(err, errs.ErrValueIsRequired),
		errors.Is(err, errs.ErrValueIsInvalid),
		errors.Is(err, errs.ErrValueIsOutOfRange):
		return ctx.JSON(http.StatusBadRequest, Error{
			Code:    http.StatusBadRequest,
			Message: err.Error(),
		})
	default:
		return ctx.JSON(http.StatusInternalServerError, Error{
			Code:    http.StatusInternalServerError,
			Message: "Internal server error",
		})
	}
}
