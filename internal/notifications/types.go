package notifications

// Level classifies a notification so senders can pick an icon or urgency.
type Level int

const (
	LevelInfo Level = iota
	LevelSuccess
	LevelError
)

// Payload is a generic user-facing notification payload.
type Payload struct {
	Title   string
	Content string
	Level   Level
}

// Sender sends notifications using a platform-specific backend.
type Sender interface {
	Send(payload Payload)
}

// SenderFunc adapts a function to Sender.
type SenderFunc func(Payload)

func (f SenderFunc) Send(payload Payload) {
	if f != nil {
		f(payload)
	}
}
