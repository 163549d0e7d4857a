// Package notifier is the platform notification capability consumed by the
// reminder scheduler. Adapters are selected at startup; the scheduler never
// branches on platform.
package notifier

// Notifier delivers reminders to the user. The tag is the day-item id, used
// by the platform layer for de-duplication and cancellation.
type Notifier interface {
	// Available reports whether notifications can currently be delivered.
	Available() bool
	// Request asks the platform for permission to deliver notifications.
	Request() bool
	Raise(title, body, tag string) error
	Cancel(tag string)
}

// Noop silently drops everything. Used when no delivery channel is
// configured: reminders degrade to "nothing fires", never an error.
type Noop struct{}

func (Noop) Available() bool            { return false }
func (Noop) Request() bool              { return false }
func (Noop) Raise(_, _, _ string) error { return nil }
func (Noop) Cancel(_ string)            {}
