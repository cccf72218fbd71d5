package models

import "time"

// AuditAction constants represent actions to be logged.
const (
	AuditActionLogin                = "LOGIN"
	AuditActionLogout               = "LOGOUT"
	AuditActionSignup               = "SIGNUP"
	AuditActionEmployeeCreate       = "EMPLOYEE_CREATE"
	AuditActionEmployeeUpdate       = "EMPLOYEE_UPDATE"
	AuditActionEmployeeDelete       = "EMPLOYEE_DELETE"
	AuditActionModifyRequestApprove = "MODIFY_REQUEST_APPROVE"
	AuditActionModifyRequestReject  = "MODIFY_REQUEST_REJECT"
	AuditActionModifyRequestDelete  = "MODIFY_REQUEST_DELETE"
)

// AuditLog represents an audit trail record.
type AuditLog struct {
	ID         int64     `db:"id" json:"id"`
	UserID     *int64    `db:"user_id" json:"userId,omitempty"`
	Action     string    `db:"action" json:"action"`
	Resource   string    `db:"resource" json:"resource"`
	ResourceID *string   `db:"resource_id" json:"resourceId,omitempty"`
	OldValues  []byte    `db:"old_values" json:"oldValues,omitempty"`
	NewValues  []byte    `db:"new_values" json:"newValues,omitempty"`
	IPAddress  string    `db:"ip_address" json:"ipAddress"`
	UserAgent  string    `db:"user_agent" json:"userAgent"`
	CreatedAt  time.Time `db:"created_at" json:"createdAt"`
}
