package amqp

import (
	"encoding/json"
	"errors"
	"time"
)

// Actions carried by ResourceEvent.
const (
	ActionCreated = "created"
	ActionUpdated = "updated"
	ActionDeleted = "deleted"
)

// Resources carried by ResourceEvent.
const (
	ResourceUser        = "user"
	ResourceAccount     = "account"
	ResourceCategory    = "category"
	ResourceBudget      = "budget"
	ResourceTransaction = "transaction"
)

// ResourceEvent announces a committed change on a user's resource. Consumers
// load current state from the database; the event carries identifiers only.
type ResourceEvent struct {
	Resource   string    `json:"resource"`
	Action     string    `json:"action"`
	ID         int64     `json:"id"`
	UserID     int64     `json:"userId"`
	OccurredAt time.Time `json:"occurredAt"`
}

func NewResourceEvent(resource, action string, id, userID int64) ResourceEvent {
	return ResourceEvent{
		Resource:   resource,
		Action:     action,
		ID:         id,
		UserID:     userID,
		OccurredAt: time.Now().UTC(),
	}
}

// ToJSON converts the event to JSON bytes
func (e ResourceEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// ResourceEventFromJSON decodes an event and rejects ones missing their
// resource or action.
func ResourceEventFromJSON(data []byte) (ResourceEvent, error) {
	var evt ResourceEvent
	if err := json.Unmarshal(data, &evt); err != nil {
		return ResourceEvent{}, err
	}
	if evt.Resource == "" || evt.Action == "" {
		return ResourceEvent{}, errors.New("event without resource or action")
	}
	return evt, nil
}
