package dto

import (
	"encoding/json"

	"github.com/highroller/payroll-api/internal/models"
)

// SubmitModifyRequest proposes either a single field edit (fieldName + requestedValue) or a full
// snapshot edit (updatedData, optionally originalData). Snapshot payloads may be JSON objects or
// JSON strings holding an object.
type SubmitModifyRequest struct {
	EmployeeID     int64           `json:"employeeId"`
	FieldName      string          `json:"fieldName,omitempty"`
	CurrentValue   *string         `json:"currentValue,omitempty"`
	RequestedValue *string         `json:"requestedValue,omitempty"`
	OriginalData   json.RawMessage `json:"originalData,omitempty" swaggertype:"object"`
	UpdatedData    json.RawMessage `json:"updatedData,omitempty" swaggertype:"object"`
	Reason         string          `json:"reason"`
}

// ResolveModifyRequest carries the admin comment for approve and reject.
type ResolveModifyRequest struct {
	Comments string `json:"comments"`
}

// ModifyRequestQuery mirrors supported listing filters.
type ModifyRequestQuery struct {
	Status      models.ModifyRequestStatus
	RequestedBy string
	EmployeeID  int64
	Limit       int
	Offset      int
}
