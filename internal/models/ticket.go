package models

import "time"

// TicketStatusUnderProcess is assigned to new tickets.
const TicketStatusUnderProcess = "under process"

// Ticket is a support request raised by staff.
type Ticket struct {
	ID        int64     `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Category  string    `db:"category" json:"category"`
	Details   string    `db:"details" json:"details"`
	Status    string    `db:"status" json:"status"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}
