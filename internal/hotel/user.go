package hotel

// Session is the transport endpoint bound to one user.
// Owned by the adapter; the engine only invokes it, it never
// constructs or destroys one.
type Session interface {
	Send(data []byte) error
	Close(code ClosureCode) error
}

// User binds a connection identity to its transport session.
// Immutable once constructed.
type User struct {
	ConnectionID string
	Name         string
	Session      Session
}
