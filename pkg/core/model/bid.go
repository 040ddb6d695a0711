package model

import (
	"fmt"
	"time"
)

// OpenBidStatus is the status of a bidding window, independent of the
// wrapped shift's own status.
type OpenBidStatus string

const (
	OpenBidOpen    OpenBidStatus = "Open"
	OpenBidOffered OpenBidStatus = "Offered"
	OpenBidFilled  OpenBidStatus = "Filled"
	OpenBidDraft   OpenBidStatus = "Draft"
)

func (s OpenBidStatus) IsValid() bool {
	switch s {
	case OpenBidOpen, OpenBidOffered, OpenBidFilled, OpenBidDraft:
		return true
	}
	return false
}

// AcceptsBids reports whether employees may express interest while the
// window is in this status.
func (s OpenBidStatus) AcceptsBids() bool {
	return s == OpenBidOpen || s == OpenBidOffered
}

// ParseOpenBidStatus converts a persisted string to an OpenBidStatus,
// rejecting unknown values.
func ParseOpenBidStatus(raw string) (OpenBidStatus, error) {
	s := OpenBidStatus(raw)
	if !s.IsValid() {
		return "", fmt.Errorf("unknown open bid status %q", raw)
	}
	return s, nil
}

// RequestStatus is the lifecycle status shared by employee bids and swap
// requests. The lower-case wire values differ in casing from the shift
// statuses; they are preserved as-is for compatibility with existing data.
type RequestStatus string

const (
	RequestPending  RequestStatus = "pending"
	RequestApproved RequestStatus = "approved"
	RequestRejected RequestStatus = "rejected"
)

func (s RequestStatus) IsValid() bool {
	return s == RequestPending || s == RequestApproved || s == RequestRejected
}

// IsTerminal reports whether the request has been resolved. Approved and
// rejected are both terminal; no transition may leave them.
func (s RequestStatus) IsTerminal() bool {
	return s == RequestApproved || s == RequestRejected
}

// ParseRequestStatus converts a persisted string to a RequestStatus,
// rejecting unknown values.
func ParseRequestStatus(raw string) (RequestStatus, error) {
	s := RequestStatus(raw)
	if !s.IsValid() {
		return "", fmt.Errorf("unknown request status %q", raw)
	}
	return s, nil
}

// OpenBid wraps a shift that is open for bidding.
type OpenBid struct {
	ID      string
	ShiftID string
	Status  OpenBidStatus
}

// EmployeeBid is one employee's expression of interest in an open bid.
type EmployeeBid struct {
	ID         string
	OpenBidID  string
	EmployeeID string
	Status     RequestStatus
	Comment    string
	CreatedAt  time.Time
	ResolvedAt *time.Time
}
