package commands

import (
	"encoding/json"

	"fulfillment/internal/core/domain/model/batch"
	"fulfillment/internal/core/domain/model/order"
)

func orderStatusPayload(o *order.Order) json.RawMessage {
	payload, _ := json.Marshal(map[string]string{
		"orderId": o.ID().String(),
		"status":  o.Status().String(),
	})
	return payload
}

func batchAvailablePayload(b *batch.Batch) json.RawMessage {
	payload, _ := json.Marshal(map[string]any{
		"batchId":     b.ID().String(),
		"batchNumber": b.BatchNumber(),
		"kitchenId":   b.KitchenID().String(),
		"zoneId":      b.ZoneID().String(),
		"mealWindow":  b.MealWindow().String(),
		"memberCount": b.MemberCount(),
	})
	return payload
}

func driverAssignedPayload(o *order.Order, b *batch.Batch, otpSecret string) json.RawMessage {
	payload, _ := json.Marshal(map[string]string{
		"orderId":     o.ID().String(),
		"batchNumber": b.BatchNumber(),
		"driverId":    o.DriverID().String(),
		"otp":         otpSecret,
	})
	return payload
}
