package domain

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	FrameMessage  = "message"
	FramePresence = "presence"
	FrameError    = "error"
)

type PresenceEvent string

const (
	Joined PresenceEvent = "joined"
	Left   PresenceEvent = "left"
)

// Message is a user-authored chat line. Avatar is copied from the sender
// profile at send time and never re-resolved.
type Message struct {
	Type      string    `json:"type"`
	ID        string    `json:"id"`
	Sender    Username  `json:"sender"`
	Body      string    `json:"body"`
	Timestamp time.Time `json:"timestamp"`
	Avatar    string    `json:"avatar"`
}

// Presence is an ephemeral join/leave notice. It never enters a transcript.
type Presence struct {
	Type      string        `json:"type"`
	Name      Username      `json:"name"`
	Event     PresenceEvent `json:"event"`
	Timestamp time.Time     `json:"timestamp"`
	Avatar    string        `json:"avatar"`
}

// ErrorReply goes to the originating session only.
type ErrorReply struct {
	Type  string `json:"type"`
	Error string `json:"error"`
}

func NewPresence(name Username, ev PresenceEvent, avatar string) Presence {
	return Presence{Type: FramePresence, Name: name, Event: ev, Timestamp: time.Now(), Avatar: avatar}
}

func NewErrorReply(reason string) ErrorReply {
	return ErrorReply{Type: FrameError, Error: reason}
}

const DefaultMaxMessageLength = 500

// ValidateBody rejects bodies that are blank after trimming or longer
// than max characters. The returned error wraps ErrInvalidMessage and
// its text is the reason shown to the sender.
func ValidateBody(body string, max int) error {
	if strings.TrimSpace(body) == "" {
		return fmt.Errorf("%w: message cannot be empty", ErrInvalidMessage)
	}
	if max > 0 && utf8.RuneCountInString(body) > max {
		return fmt.Errorf("%w: message must be less than %d characters", ErrInvalidMessage, max)
	}
	return nil
}
