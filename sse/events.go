package sse

// Event names written on the "event:" line.
const (
	EventConnected  = "connected"
	EventTransition = "transition"
)

// Event is one published message.
type Event struct {
	Topic string
	Name  string
	Data  []byte
}

// Publisher accepts events for delivery. Publish never blocks; it reports
// false when the event was dropped.
type Publisher interface {
	Publish(topic, name string, data []byte) bool
}
