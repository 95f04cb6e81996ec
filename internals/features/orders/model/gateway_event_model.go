// file: internals/features/orders/model/gateway_event_model.go
package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type GatewayEventStatus string

const (
	GatewayEventStatusReceived  GatewayEventStatus = "received"
	GatewayEventStatusProcessed GatewayEventStatus = "processed"
	GatewayEventStatusIgnored   GatewayEventStatus = "ignored"
	GatewayEventStatusFailed    GatewayEventStatus = "failed"
)

// GatewayEvent is the audit record of one inbound webhook delivery. The
// webhook endpoint always acks 200, so this table is what supports manual
// reconciliation when a delivery could not be applied.
type GatewayEvent struct {
	GatewayEventID       uuid.UUID          `json:"gateway_event_id"        gorm:"column:gateway_event_id;type:uuid;primaryKey"`
	GatewayEventOrderID  *uuid.UUID         `json:"gateway_event_order_id"  gorm:"column:gateway_event_order_id;type:uuid"`
	GatewayEventProvider string             `json:"gateway_event_provider"  gorm:"column:gateway_event_provider;type:text;not null"`
	GatewayEventExternalID *string          `json:"gateway_event_external_id" gorm:"column:gateway_event_external_id;type:text"`
	GatewayEventPayload  datatypes.JSON     `json:"gateway_event_payload"   gorm:"column:gateway_event_payload;type:jsonb"`
	GatewayEventRawQuery *string            `json:"gateway_event_raw_query" gorm:"column:gateway_event_raw_query;type:text"`
	GatewayEventStatus   GatewayEventStatus `json:"gateway_event_status"    gorm:"column:gateway_event_status;type:text;not null"`
	GatewayEventError    *string            `json:"gateway_event_error"     gorm:"column:gateway_event_error;type:text"`

	GatewayEventReceivedAt  time.Time  `json:"gateway_event_received_at"  gorm:"column:gateway_event_received_at;type:timestamptz;not null"`
	GatewayEventProcessedAt *time.Time `json:"gateway_event_processed_at" gorm:"column:gateway_event_processed_at;type:timestamptz"`
}

func (GatewayEvent) TableName() string { return "gateway_events" }
