package model

import "time"

// SwapRequest is a request to exchange shift assignments between two
// employees.
type SwapRequest struct {
	ID                string
	RequesterID       string
	RequesterShiftID  string
	TargetEmployeeID  string
	RequestedShiftID  string
	Status            RequestStatus
	Reason            string
	Notes             string
	Priority          string // optional tag, e.g. "urgent"; empty = none
	CreatedAt         time.Time
	ResolvedAt        *time.Time
}

// SwapApproval is the decision record tied 1:1 to an approved swap request.
type SwapApproval struct {
	ID            string
	SwapRequestID string
	ApproverID    string
	ApprovedAt    time.Time
}
