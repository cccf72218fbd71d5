package models

import "time"

// ModifyRequestKind distinguishes single field edits from full snapshot edits.
type ModifyRequestKind string

const (
	ModifyRequestKindField    ModifyRequestKind = "FIELD"
	ModifyRequestKindSnapshot ModifyRequestKind = "SNAPSHOT"
)

// ModifyRequestStatus captures workflow states for employee change requests.
type ModifyRequestStatus string

const (
	ModifyRequestStatusPending  ModifyRequestStatus = "PENDING"
	ModifyRequestStatusApproved ModifyRequestStatus = "APPROVED"
	ModifyRequestStatusRejected ModifyRequestStatus = "REJECTED"
)

// Valid reports whether s is one of the known statuses.
func (s ModifyRequestStatus) Valid() bool {
	switch s {
	case ModifyRequestStatusPending, ModifyRequestStatusApproved, ModifyRequestStatusRejected:
		return true
	}
	return false
}

// ModifyRequest is a proposed edit to an employee awaiting admin review.
type ModifyRequest struct {
	ID              int64               `db:"id" json:"id"`
	EmployeeID      int64               `db:"employee_id" json:"employeeId"`
	Kind            ModifyRequestKind   `db:"kind" json:"kind"`
	FieldName       *string             `db:"field_name" json:"fieldName,omitempty"`
	CurrentValue    *string             `db:"current_value" json:"currentValue,omitempty"`
	RequestedValue  *string             `db:"requested_value" json:"requestedValue,omitempty"`
	OriginalData    *string             `db:"original_data" json:"originalData,omitempty"`
	UpdatedData     *string             `db:"updated_data" json:"updatedData,omitempty"`
	Reason          string              `db:"reason" json:"reason"`
	Status          ModifyRequestStatus `db:"status" json:"status"`
	RequestedBy     string              `db:"requested_by" json:"requestedBy"`
	RequestedByRole UserRole            `db:"requested_by_role" json:"requestedByRole"`
	RequestDate     time.Time           `db:"request_date" json:"requestDate"`
	ProcessedDate   *time.Time          `db:"processed_date" json:"processedDate,omitempty"`
	ProcessedBy     *string             `db:"processed_by" json:"processedBy,omitempty"`
	AdminComments   *string             `db:"admin_comments" json:"adminComments,omitempty"`
}

// ModifyRequestFilter constrains listing queries. Empty fields are ignored.
type ModifyRequestFilter struct {
	Status      ModifyRequestStatus
	RequestedBy string
	EmployeeID  int64
	Limit       int
	Offset      int
}
