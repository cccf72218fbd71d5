package dto

// CreateTicketRequest opens a support ticket.
type CreateTicketRequest struct {
	Name     string `json:"name" validate:"required,max=255"`
	Category string `json:"category" validate:"required,max=100"`
	Details  string `json:"details"`
}

// UpdateTicketStatusRequest changes a ticket status.
type UpdateTicketStatusRequest struct {
	Status string `json:"status" validate:"required,max=50"`
}
