package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	EventTypeRequestCreated     = "request.created"
	EventTypeRequestSubmitted   = "request.submitted"
	EventTypeRequestRecommended = "request.recommended"
	EventTypeRequestApproved    = "request.approved"
	EventTypeRequestDisapproved = "request.disapproved"
	EventTypeRequestPosted      = "request.posted"
	EventTypeRequestReceived    = "request.received"
	EventTypeRequestCancelled   = "request.cancelled"
	EventTypeRequestForEdit     = "request.returned_for_edit"
)

// RequestLifecycleEvent is emitted whenever a material request changes status.
type RequestLifecycleEvent struct {
	BaseEvent
	RequestID int64  `json:"request_id"`
	DocNo     string `json:"doc_no"`
	Status    string `json:"status"`
	ActorID   int64  `json:"actor_id"`
}

func NewRequestLifecycleEvent(eventType string, requestID int64, docNo string, status string, actorID int64) *RequestLifecycleEvent {
	return &RequestLifecycleEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      eventType,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"request_id": requestID,
				"doc_no":     docNo,
				"status":     status,
				"actor_id":   actorID,
			},
		},
		RequestID: requestID,
		DocNo:     docNo,
		Status:    status,
		ActorID:   actorID,
	}
}
