package amqp

import (
	"encoding/json"
	"time"

	"finsight/internal/editor"
)

// ActivityMessage is the wire form of one successful mutation.
type ActivityMessage struct {
	Resource  string    `json:"resource"`
	Action    string    `json:"action"`
	ID        int64     `json:"id,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// NewActivityMessage stamps the message with the activity time, or now when unset.
func NewActivityMessage(a editor.Activity) *ActivityMessage {
	at := a.At
	if at.IsZero() {
		at = time.Now().UTC()
	}
	return &ActivityMessage{
		Resource:  a.Resource,
		Action:    a.Action,
		ID:        a.ID,
		Timestamp: at,
	}
}

func (m *ActivityMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func ActivityMessageFromJSON(data []byte) (*ActivityMessage, error) {
	var msg ActivityMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
