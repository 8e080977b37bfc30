// Package orderrepo persists order documents and their activity logs in
// PostgreSQL. The document is stored as jsonb next to the few columns the
// service queries by; the activity log lives in its own append-only table.
package orderrepo

import (
	"time"

	"buyback/internal/core/domain/model/order"

	"gorm.io/datatypes"
)

// OrderDTO is one order document row. Version is bumped by every commit.
type OrderDTO struct {
	ID         int64             `gorm:"primaryKey;autoIncrement:false"`
	Version    int64             `gorm:"not null"`
	Status     string            `gorm:"index"`
	CustomerID string            `gorm:"index"`
	Document   datatypes.JSONMap `gorm:"type:jsonb;not null"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func (OrderDTO) TableName() string {
	return "orders"
}

// ActivityLogDTO is one activity log entry. Position orders entries within
// an order and is unique per order.
type ActivityLogDTO struct {
	ID       string            `gorm:"type:uuid;primaryKey"`
	OrderID  int64             `gorm:"not null;uniqueIndex:idx_activity_log_order_position"`
	Position int64             `gorm:"not null;uniqueIndex:idx_activity_log_order_position"`
	Type     string            `gorm:"not null"`
	Message  string            `gorm:"not null"`
	Metadata datatypes.JSONMap `gorm:"type:jsonb"`
	At       time.Time         `gorm:"not null"`
}

func (ActivityLogDTO) TableName() string {
	return "order_activity_log"
}

func newOrderDTO(id, version int64, doc map[string]any) OrderDTO {
	status, _ := doc[order.KeyStatus].(string)
	customerID, _ := doc[order.KeyCustomerID].(string)
	return OrderDTO{
		ID:         id,
		Version:    version,
		Status:     status,
		CustomerID: customerID,
		Document:   datatypes.JSONMap(doc),
	}
}

func logDTOs(orderID, firstPosition int64, entries []order.ActivityLogEntry) []ActivityLogDTO {
	dtos := make([]ActivityLogDTO, 0, len(entries))
	for i, e := range entries {
		var metadata datatypes.JSONMap
		if len(e.Metadata) > 0 {
			metadata = datatypes.JSONMap(e.Metadata)
		}
		dtos = append(dtos, ActivityLogDTO{
			ID:       e.ID,
			OrderID:  orderID,
			Position: firstPosition + int64(i),
			Type:     e.Type,
			Message:  e.Message,
			Metadata: metadata,
			At:       e.At.UTC(),
		})
	}
	return dtos
}

func (d ActivityLogDTO) toDomain() order.ActivityLogEntry {
	var metadata map[string]any
	if len(d.Metadata) > 0 {
		metadata = map[string]any(d.Metadata)
	}
	return order.ActivityLogEntry{
		ID:       d.ID,
		Type:     d.Type,
		Message:  d.Message,
		Metadata: metadata,
		At:       d.At.UTC(),
	}
}
