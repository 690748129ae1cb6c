package gtpc

// Writer persists the output of every event. Writers copy what they need:
// the EventOutput is reused by the producer after WriteEvent returns.
type Writer interface {
	WriteEvent(out *EventOutput) error
	Close() error
}
