package domain

import (
	"errors"
	"strings"
)

var (
	// ErrRoomNotFound means the code has no live room; the session layer
	// should force the client back to the lounge.
	ErrRoomNotFound = errors.New("room does not exist")
	// ErrDuplicateSession means the name already holds a session in the room.
	ErrDuplicateSession = errors.New("username already connected to this room")
	ErrInvalidMessage   = errors.New("invalid message")
)

// Reason is the user-facing text of err. Session errors collapse to
// their sentinel text; validation errors lose the sentinel prefix.
func Reason(err error) string {
	for _, s := range []error{ErrRoomNotFound, ErrDuplicateSession} {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	msg := err.Error()
	if errors.Is(err, ErrInvalidMessage) {
		if i := strings.Index(msg, ErrInvalidMessage.Error()+": "); i >= 0 {
			msg = msg[i+len(ErrInvalidMessage.Error())+2:]
		}
	}
	return msg
}
