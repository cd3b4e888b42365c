package protocol

// Handler is the capability a session routes inbound messages to. Both
// operations run synchronously on the session's receive loop; a slow
// handler delays the next receive, which is the intended backpressure.
type Handler interface {
	OnNormal(msg Message)
	OnUrgent(msg Message)
}

// HandlerFuncs adapts two funcs to Handler. A nil func drops the
// message silently.
type HandlerFuncs struct {
	Normal func(msg Message)
	Urgent func(msg Message)
}

func (h HandlerFuncs) OnNormal(msg Message) {
	if h.Normal != nil {
		h.Normal(msg)
	}
}

func (h HandlerFuncs) OnUrgent(msg Message) {
	if h.Urgent != nil {
		h.Urgent(msg)
	}
}

// Dispatcher routes messages by urgency. Routing is total: every
// message goes to exactly one handler operation, Elevated and Critical
// to OnUrgent, everything else to OnNormal.
type Dispatcher struct {
	handler Handler
}

func NewDispatcher(handler Handler) *Dispatcher {
	return &Dispatcher{handler: handler}
}

func (d *Dispatcher) Dispatch(msg Message) {
	if d.handler == nil {
		return
	}
	if msg.Urgency.Urgent() {
		d.handler.OnUrgent(msg)
		return
	}
	d.handler.OnNormal(msg)
}
