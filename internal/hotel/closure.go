package hotel

import "fmt"

// ClosureCode identifies why the server is terminating a connection.
// Code and reason are sent to the peer in the close frame.
type ClosureCode struct {
	Code   int
	Reason string
}

var (
	CodeRoomNotFound = ClosureCode{Code: 2001, Reason: "Room not found"}
	CodeNameInUse    = ClosureCode{Code: 2002, Reason: "Name in use"}
	CodeInvalidName  = ClosureCode{Code: 2003, Reason: "Invalid name"}
	CodeRoomDeleted  = ClosureCode{Code: 2004, Reason: "Room deleted"}
)

// DisconnectError tells the transport to close the connection with the
// carried code. It is distinct from per-message errors, which leave the
// connection open.
type DisconnectError struct {
	Closure ClosureCode
}

func (e *DisconnectError) Error() string {
	return fmt.Sprintf("disconnect %d: %s", e.Closure.Code, e.Closure.Reason)
}
