package report

// Level tells a notification sink how to present a message.
type Level int

const (
	LevelSuccess Level = iota
	LevelError
)

type Notification struct {
	Level       Level
	Title       string
	Description string
}

// Notifier receives the user-facing outcome of every run.
type Notifier interface {
	Notify(n Notification)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(Notification)

func (f NotifierFunc) Notify(n Notification) { f(n) }

type discard struct{}

func (discard) Notify(Notification) {}
