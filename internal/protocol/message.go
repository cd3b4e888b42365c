package protocol

import "strings"

// Urgency classifies an inbound message for routing. Unknown values
// collapse to Normal so a peer speaking a newer vocabulary degrades to
// the ordinary path instead of being dropped.
type Urgency string

const (
	Normal   Urgency = "normal"
	Elevated Urgency = "elevated"
	Critical Urgency = "critical"
)

func (u Urgency) String() string { return string(u) }

// Urgent reports whether the message should take the priority path.
func (u Urgency) Urgent() bool {
	return u == Elevated || u == Critical
}

// ParseUrgency maps a wire label to an Urgency, defaulting to Normal
// for anything unrecognized.
func ParseUrgency(s string) Urgency {
	switch Urgency(strings.ToLower(strings.TrimSpace(s))) {
	case Elevated:
		return Elevated
	case Critical:
		return Critical
	default:
		return Normal
	}
}

// Message is one decoded inbound frame. Treat it as immutable after
// construction; the session hands each message to exactly one handler
// and never retains it.
type Message struct {
	Urgency Urgency
	Payload []byte
}

func NewMessage(urgency Urgency, payload []byte) Message {
	return Message{Urgency: urgency, Payload: payload}
}

func (m Message) Text() string { return string(m.Payload) }
