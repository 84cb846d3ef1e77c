// Package domain contains entity without logic, just meta-data
package domain

import (
	"errors"
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	MinUsernameLen = 3
	MaxUsernameLen = 20
)

var (
	ErrUsernameEmpty    = errors.New("username is required")
	ErrUsernameTooShort = errors.New("username must be at least 3 characters")
	ErrUsernameTooLong  = errors.New("username must be less than 20 characters")
	ErrUsernameInvalid  = errors.New("username can only contain letters, numbers, hyphens, and underscores")
)

type Username string

// User is the profile the session layer resolves a name to.
// Avatar is an opaque presentation reference (an inline SVG today).
type User struct {
	Name   Username `json:"name"`
	Avatar string   `json:"avatar"`
}

// ParseUsername trims and validates a login name. Lengths count
// characters; letters and digits of any script are allowed, plus '_'
// and '-', and at least one letter or digit is required.
func ParseUsername(raw string) (Username, error) {
	name := strings.TrimSpace(raw)
	if name == "" {
		return "", ErrUsernameEmpty
	}
	n := utf8.RuneCountInString(name)
	if n < MinUsernameLen {
		return "", ErrUsernameTooShort
	}
	if n > MaxUsernameLen {
		return "", ErrUsernameTooLong
	}
	alnum := false
	for _, r := range name {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r):
			alnum = true
		case r == '_', r == '-':
		default:
			return "", ErrUsernameInvalid
		}
	}
	if !alnum {
		return "", ErrUsernameInvalid
	}
	return Username(name), nil
}
