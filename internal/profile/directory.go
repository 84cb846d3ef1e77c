// Package profile keeps the per-user presentation data (avatar) that
// messages and presence notices copy at send time.
package profile

import (
	"errors"
	"math/rand/v2"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/dkeye/Lounge/internal/domain"
)

var (
	ErrUnknownUser   = errors.New("unknown user")
	ErrAvatarOutside = errors.New("avatar index out of range")
)

// Palette is the default set of avatars.
var Palette = []string{
	`<svg viewBox="0 0 100 100" xmlns="http://www.w3.org/2000/svg"><circle cx="50" cy="50" r="50" fill="#4A90E2"/></svg>`,
	`<svg viewBox="0 0 100 100" xmlns="http://www.w3.org/2000/svg"><circle cx="50" cy="50" r="50" fill="#50C878"/></svg>`,
	`<svg viewBox="0 0 100 100" xmlns="http://www.w3.org/2000/svg"><circle cx="50" cy="50" r="50" fill="#FF6B6B"/></svg>`,
	`<svg viewBox="0 0 100 100" xmlns="http://www.w3.org/2000/svg"><circle cx="50" cy="50" r="50" fill="#9B59B6"/></svg>`,
	`<svg viewBox="0 0 100 100" xmlns="http://www.w3.org/2000/svg"><circle cx="50" cy="50" r="50" fill="#F39C12"/></svg>`,
	`<svg viewBox="0 0 100 100" xmlns="http://www.w3.org/2000/svg"><circle cx="50" cy="50" r="50" fill="#1ABC9C"/></svg>`,
}

type Directory struct {
	palette []string

	mu    sync.RWMutex
	users map[domain.Username]*domain.User
}

func NewDirectory(palette []string) *Directory {
	if len(palette) == 0 {
		palette = Palette
	}
	return &Directory{palette: palette, users: make(map[domain.Username]*domain.User)}
}

func (d *Directory) Palette() []string {
	out := make([]string, len(d.palette))
	copy(out, d.palette)
	return out
}

// Ensure returns the profile for name, creating one with a random
// avatar on first sight.
func (d *Directory) Ensure(name domain.Username) domain.User {
	d.mu.Lock()
	defer d.mu.Unlock()
	if u, ok := d.users[name]; ok {
		return *u
	}
	u := &domain.User{Name: name, Avatar: d.palette[rand.IntN(len(d.palette))]}
	d.users[name] = u
	log.Info().Str("module", "profile").Str("name", string(name)).Msg("profile created")
	return *u
}

func (d *Directory) Get(name domain.Username) (domain.User, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	u, ok := d.users[name]
	if !ok {
		return domain.User{}, ErrUnknownUser
	}
	return *u, nil
}

// Avatar implements app.AvatarSource. Unknown users get no avatar.
func (d *Directory) Avatar(name domain.Username) string {
	u, err := d.Get(name)
	if err != nil {
		return ""
	}
	return u.Avatar
}

// SetAvatar switches name to palette entry index. Messages already sent
// keep the avatar they were sent with.
func (d *Directory) SetAvatar(name domain.Username, index int) error {
	if index < 0 || index >= len(d.palette) {
		return ErrAvatarOutside
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	u, ok := d.users[name]
	if !ok {
		return ErrUnknownUser
	}
	u.Avatar = d.palette[index]
	return nil
}
