package protocol

import (
	"encoding/json"
	"fmt"
)

// envelope is the wire shape: urgency travels as a JSON label beside
// the payload text.
type envelope struct {
	Urgency string `json:"urgency"`
	Payload string `json:"payload"`
}

// EncodeMessage renders msg as a JSON envelope frame.
func EncodeMessage(msg Message) ([]byte, error) {
	raw, err := json.Marshal(envelope{
		Urgency: msg.Urgency.String(),
		Payload: string(msg.Payload),
	})
	if err != nil {
		return nil, fmt.Errorf("protocol: encode envelope: %w", err)
	}
	return raw, nil
}

// DecodeMessage parses a received frame into a Message. Frames that are
// not a JSON envelope are treated as bare Normal payloads rather than
// rejected, so plain-text peers keep working.
func DecodeMessage(frame []byte) Message {
	var env envelope
	if err := json.Unmarshal(frame, &env); err != nil {
		return NewMessage(Normal, frame)
	}
	return NewMessage(ParseUrgency(env.Urgency), []byte(env.Payload))
}
