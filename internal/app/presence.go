package app

import (
	"errors"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/dkeye/Lounge/internal/core"
	"github.com/dkeye/Lounge/internal/domain"
	"github.com/dkeye/Lounge/internal/metrics"
)

// AvatarSource resolves the avatar currently set on a user's profile.
type AvatarSource interface {
	Avatar(name domain.Username) string
}

// Presence applies connect, disconnect and leave events to rooms.
// Per (room, name) the only states are absent and present.
type Presence struct {
	Rooms       *Registry
	Out         *Broadcaster
	Avatars     AvatarSource
	GracePeriod time.Duration
	Metrics     *metrics.Metrics
}

func (p *Presence) avatar(name domain.Username) string {
	if p.Avatars == nil {
		return ""
	}
	return p.Avatars.Avatar(name)
}

// Connect makes name present in code. The duplicate check and insert
// are one step under the room lock.
func (p *Presence) Connect(code domain.RoomCode, name domain.Username, conn core.SignalConnection) error {
	room, err := p.Rooms.Get(code)
	if err != nil {
		p.Metrics.Connect("room_not_found")
		return err
	}
	notice := p.Out.Encode(domain.NewPresence(name, domain.Joined, p.avatar(name)))
	res, err := room.AddMember(core.NewMemberSession(domain.NewMember(name), conn), notice)
	switch {
	case errors.Is(err, domain.ErrDuplicateSession):
		p.Metrics.Connect("duplicate")
		return err
	case err != nil:
		p.Metrics.Connect("room_not_found")
		return err
	}
	p.Metrics.Connect("ok")
	p.Out.Delivered(room, notice, res)
	log.Info().Str("module", "app.presence").Str("room", string(code)).Str("name", string(name)).Msg("joined")
	return nil
}

// Disconnect handles an abrupt connection loss. An emptied room gets a
// grace period so a quick reconnect finds it again.
func (p *Presence) Disconnect(code domain.RoomCode, name domain.Username) {
	remaining, ok := p.depart(code, name, "disconnect")
	if ok && remaining <= 0 {
		p.Rooms.ScheduleCleanup(code, p.GracePeriod)
	}
}

// Leave handles a deliberate departure. An emptied room is deleted now.
func (p *Presence) Leave(code domain.RoomCode, name domain.Username) {
	remaining, ok := p.depart(code, name, "leave")
	if ok && remaining <= 0 {
		p.Rooms.DeleteIfEmpty(code, ReasonLeave)
	}
}

func (p *Presence) depart(code domain.RoomCode, name domain.Username, kind string) (int, bool) {
	room, err := p.Rooms.Get(code)
	if err != nil {
		log.Debug().Str("module", "app.presence").Str("room", string(code)).Str("name", string(name)).Str("kind", kind).Msg("departure from missing room ignored")
		return 0, false
	}
	notice := p.Out.Encode(domain.NewPresence(name, domain.Left, p.avatar(name)))
	remaining, res, removed := room.RemoveMember(name, notice)
	if !removed {
		log.Debug().Str("module", "app.presence").Str("room", string(code)).Str("name", string(name)).Str("kind", kind).Msg("departure of absent member ignored")
		return remaining, false
	}
	p.Metrics.Departure(kind)
	p.Out.Delivered(room, notice, res)
	log.Info().Str("module", "app.presence").Str("room", string(code)).Str("name", string(name)).Str("kind", kind).Int("members", remaining).Msg("left")
	return remaining, true
}
