package chat

// Conn is the slice of a live connection the relay needs: a stable id and a
// fire-and-forget emit. socketio.Conn satisfies it; tests use fakes.
type Conn interface {
	ID() string
	Emit(event string, args ...interface{})
}
