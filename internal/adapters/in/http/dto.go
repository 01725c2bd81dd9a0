package http

import (
	"encoding/json"
	"time"
)

// Error is the uniform error body returned by every endpoint.
type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// AddressRequest carries a delivery address.
type AddressRequest struct {
	Line     string `json:"line"`
	Landmark string `json:"landmark"`
	City     string `json:"city"`
	Pincode  string `json:"pincode"`
}

// PlaceOrderRequest is the body of POST /api/v1/orders.
type PlaceOrderRequest struct {
	CustomerID string          `json:"customer_id"`
	KitchenID  string          `json:"kitchen_id"`
	ZoneID     string          `json:"zone_id"`
	MealWindow *string         `json:"meal_window,omitempty"`
	Address    AddressRequest  `json:"address"`
	Items      json.RawMessage `json:"items"`
}

// OrderResponse is the representation of an order returned by write endpoints.
type OrderResponse struct {
	ID         string  `json:"id"`
	CustomerID string  `json:"customer_id"`
	KitchenID  string  `json:"kitchen_id"`
	ZoneID     string  `json:"zone_id"`
	MealWindow *string `json:"meal_window,omitempty"`
	Status     string  `json:"status"`
	BatchID    *string `json:"batch_id,omitempty"`
	DriverID   *string `json:"driver_id,omitempty"`
}

// UpdateOrderStatusRequest is the body of PATCH /api/v1/orders/:orderId/status.
type UpdateOrderStatusRequest struct {
	Status string `json:"status"`
	Actor  string `json:"actor"`
	Note   string `json:"note,omitempty"`
}

// AutoBatchRequest is the body of POST /api/v1/batches/auto-batch.
type AutoBatchRequest struct {
	MealWindow *string `json:"meal_window,omitempty"`
	KitchenID  *string `json:"kitchen_id,omitempty"`
}

// AutoBatchResponse reports the outcome of a batching sweep.
type AutoBatchResponse struct {
	BatchesCreated  int `json:"batches_created"`
	BatchesUpdated  int `json:"batches_updated"`
	OrdersProcessed int `json:"orders_processed"`
}

// DispatchBatchesRequest is the body of POST /api/v1/batches/dispatch.
type DispatchBatchesRequest struct {
	MealWindow string  `json:"meal_window"`
	KitchenID  *string `json:"kitchen_id,omitempty"`
	Force      bool    `json:"force,omitempty"`
}

// DispatchBatchesResponse reports the outcome of a dispatch sweep.
type DispatchBatchesResponse struct {
	BatchesDispatched int `json:"batches_dispatched"`
}

// ClaimBatchRequest is the body of POST /api/v1/batches/:batchId/claim.
type ClaimBatchRequest struct {
	DriverID string `json:"driver_id"`
}

// BatchResponse is the full batch representation.
type BatchResponse struct {
	ID             string     `json:"id"`
	BatchNumber    string     `json:"batch_number"`
	KitchenID      string     `json:"kitchen_id"`
	ZoneID         string     `json:"zone_id"`
	MealWindow     string     `json:"meal_window"`
	BatchDate      time.Time  `json:"batch_date"`
	WindowEndTime  time.Time  `json:"window_end_time"`
	Capacity       int        `json:"capacity"`
	Status         string     `json:"status"`
	DriverID       *string    `json:"driver_id,omitempty"`
	ClaimedAt      *time.Time `json:"claimed_at,omitempty"`
	CompletedAt    *time.Time `json:"completed_at,omitempty"`
	TotalDelivered int        `json:"total_delivered"`
	TotalFailed    int        `json:"total_failed"`
	OrderIDs       []string   `json:"order_ids"`
}

// UpdateDeliveryStatusRequest is the body of PATCH /api/v1/deliveries/:orderId/status.
type UpdateDeliveryStatusRequest struct {
	DriverID      string   `json:"driver_id"`
	Status        string   `json:"status"`
	ProofType     *string  `json:"proof_type,omitempty"`
	ProofValue    string   `json:"proof_value,omitempty"`
	FailureReason string   `json:"failure_reason,omitempty"`
	Latitude      *float64 `json:"latitude,omitempty"`
	Longitude     *float64 `json:"longitude,omitempty"`
}

// DeliveryStatusResponse pairs the assignment state with the order state
// after a driver report.
type DeliveryStatusResponse struct {
	OrderID          string `json:"order_id"`
	OrderStatus      string `json:"order_status"`
	AssignmentStatus string `json:"assignment_status"`
	ProofVerified    bool   `json:"proof_verified"`
}

// ReassignBatchRequest is the body of POST /api/v1/batches/:batchId/reassign.
type ReassignBatchRequest struct {
	DriverID string `json:"driver_id"`
	Actor    string `json:"actor"`
	Reason   string `json:"reason"`
}

// CancelBatchRequest is the body of POST /api/v1/batches/:batchId/cancel.
type CancelBatchRequest struct {
	Actor  string `json:"actor"`
	Reason string `json:"reason"`
}

// AvailableBatchResponse is one claimable batch in the driver listing.
type AvailableBatchResponse struct {
	ID            string    `json:"id"`
	BatchNumber   string    `json:"batch_number"`
	KitchenID     string    `json:"kitchen_id"`
	ZoneID        string    `json:"zone_id"`
	MealWindow    string    `json:"meal_window"`
	WindowEndTime time.Time `json:"window_end_time"`
	MemberCount   int       `json:"member_count"`
}

// MyBatchStopResponse is one stop of the driver's active batch.
type MyBatchStopResponse struct {
	OrderID     string `json:"order_id"`
	Sequence    int    `json:"sequence"`
	Status      string `json:"status"`
	OrderStatus string `json:"order_status"`
	AddressLine string `json:"address_line"`
	City        string `json:"city"`
	Pincode     string `json:"pincode"`
}

// MyBatchResponse is the driver's active batch with its stops.
type MyBatchResponse struct {
	ID            string                `json:"id"`
	BatchNumber   string                `json:"batch_number"`
	Status        string                `json:"status"`
	MealWindow    string                `json:"meal_window"`
	WindowEndTime time.Time             `json:"window_end_time"`
	ClaimedAt     time.Time             `json:"claimed_at"`
	Stops         []MyBatchStopResponse `json:"stops"`
}

// BatchStatsResponse is one batch's delivery statistics line.
type BatchStatsResponse struct {
	BatchID        string `json:"batch_id"`
	BatchNumber    string `json:"batch_number"`
	MealWindow     string `json:"meal_window"`
	Status         string `json:"status"`
	MemberCount    int    `json:"member_count"`
	TotalDelivered int    `json:"total_delivered"`
	TotalFailed    int    `json:"total_failed"`
}
