package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

const (
	AuditActionTankCreate     = "tank.create"
	AuditActionTankUpdate     = "tank.update"
	AuditActionTankDeactivate = "tank.deactivate"
	AuditActionPriceSet       = "price.set"
)

// JSONValue is a JSONB column passed through verbatim.
type JSONValue []byte

func NewJSONValue(v interface{}) (JSONValue, error) {
	if v == nil {
		return nil, nil
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return JSONValue(raw), nil
}

func (j *JSONValue) Scan(value interface{}) error {
	switch v := value.(type) {
	case nil:
		*j = nil
	case []byte:
		*j = append((*j)[:0], v...)
	case string:
		*j = JSONValue(v)
	default:
		return fmt.Errorf("failed to scan JSONValue: %T", value)
	}
	return nil
}

func (j JSONValue) Value() (driver.Value, error) {
	if len(j) == 0 {
		return nil, nil
	}
	return string(j), nil
}

func (j JSONValue) MarshalJSON() ([]byte, error) {
	if len(j) == 0 {
		return []byte("null"), nil
	}
	return j, nil
}

type AuditLog struct {
	ID         uuid.UUID `json:"id"`
	Action     string    `json:"action"`
	EntityType string    `json:"entityType"`
	EntityID   uuid.UUID `json:"entityId"`
	OldValues  JSONValue `json:"oldValues,omitempty"`
	NewValues  JSONValue `json:"newValues,omitempty"`
	Reason     string    `json:"reason"`
	Actor      string    `json:"actor"`
	Timestamp  time.Time `json:"timestamp"`
}
