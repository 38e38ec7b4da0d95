package wire

import (
	"encoding/json"

	"github.com/mitchellh/mapstructure"
)

// 事件名称
const (
	EventAuth    string = "auth"
	EventMessage        = "message"
	EventError          = "error"
)

// Event is the envelope every websocket frame carries.
type Event struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

// AuthParams carries the session token presented after connecting.
type AuthParams struct {
	Token string `mapstructure:"token"`
}

// MessageParams carries a chat submission.
type MessageParams struct {
	Message string `mapstructure:"message"`
	ReplyTo *int64 `mapstructure:"reply_to"`
}

// ErrorParams is sent back to the offending connection only.
type ErrorParams struct {
	Message string `json:"message"`
}

func UnmarshalEvent(b []byte) (Event, error) {
	var e Event
	err := json.Unmarshal(b, &e)
	return e, err
}

func MarshalEvent(e Event) []byte {
	b, _ := json.Marshal(e)
	return b
}

// DecodeParams maps an event's loosely typed data onto a params struct.
func DecodeParams(data interface{}, out interface{}) error {
	return mapstructure.Decode(data, out)
}
