package edition

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// EventType classifies an entry in the append-only edition audit log
type EventType string

const (
	// EventAssigned records a number granted to a previously unnumbered item
	EventAssigned EventType = "assigned"
	// EventResequenced records a number change (or clearing) during a resequence
	EventResequenced EventType = "resequenced"
	// EventRevoked records an administrative removal of a number
	EventRevoked EventType = "revoked"
	// EventAuthenticated records a certificate authentication by the owner
	EventAuthenticated EventType = "authenticated"
	// EventOwnershipTransfer records a change of certificate ownership
	EventOwnershipTransfer EventType = "ownership_transfer"
)

// IsValid returns true for a known event type
func (t EventType) IsValid() bool {
	switch t {
	case EventAssigned, EventResequenced, EventRevoked, EventAuthenticated, EventOwnershipTransfer:
		return true
	default:
		return false
	}
}

// EditionEvent is one append-only entry in the audit history of a line item.
// Every change to a stored edition number produces exactly one event.
type EditionEvent struct {
	ID         uuid.UUID
	LineItemID string
	EventType  EventType
	Payload    json.RawMessage
	CreatedAt  time.Time
}

// NumberChangePayload is the payload of assigned/resequenced/revoked events
type NumberChangePayload struct {
	ProductID string `json:"product_id"`
	From      *int   `json:"from"`
	To        *int   `json:"to"`
	Total     int    `json:"total"`
}

// OwnershipPayload is the payload of authenticated/ownership_transfer events
type OwnershipPayload struct {
	OwnerName  string `json:"owner_name,omitempty"`
	OwnerEmail string `json:"owner_email,omitempty"`
	FromEmail  string `json:"from_email,omitempty"`
	ToEmail    string `json:"to_email,omitempty"`
}

// NewNumberChangeEvent builds an audit event for a stored-number change
func NewNumberChangeEvent(lineItemID string, eventType EventType, payload NumberChangePayload) (*EditionEvent, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return &EditionEvent{
		ID:         uuid.New(),
		LineItemID: lineItemID,
		EventType:  eventType,
		Payload:    body,
		CreatedAt:  time.Now(),
	}, nil
}

// NewOwnershipEvent builds an authenticated or ownership_transfer event
func NewOwnershipEvent(lineItemID string, eventType EventType, payload OwnershipPayload) (*EditionEvent, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return &EditionEvent{
		ID:         uuid.New(),
		LineItemID: lineItemID,
		EventType:  eventType,
		Payload:    body,
		CreatedAt:  time.Now(),
	}, nil
}
