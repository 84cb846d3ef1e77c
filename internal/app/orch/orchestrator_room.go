package orch

import (
	"github.com/rs/zerolog/log"

	"github.com/dkeye/Lounge/internal/core"
	"github.com/dkeye/Lounge/internal/domain"
)

func (o *Orchestrator) CreateRoom() (domain.RoomCode, error) {
	return o.Registry.Create()
}

func (o *Orchestrator) RoomExists(code domain.RoomCode) bool {
	return o.Registry.Exists(code)
}

// OnConnect binds a freshly established connection to (code, name).
// domain.ErrRoomNotFound means the client must be sent back to the
// lounge; domain.ErrDuplicateSession means the connection is refused.
func (o *Orchestrator) OnConnect(code domain.RoomCode, name domain.Username, conn core.SignalConnection) error {
	if err := o.Presence.Connect(code, name, conn); err != nil {
		log.Info().Err(err).Str("module", "orch").Str("room", string(code)).Str("name", string(name)).Msg("connect refused")
		return err
	}
	return nil
}

func (o *Orchestrator) OnDisconnect(code domain.RoomCode, name domain.Username) {
	o.Presence.Disconnect(code, name)
}

func (o *Orchestrator) OnLeave(code domain.RoomCode, name domain.Username) {
	o.Presence.Leave(code, name)
}

// Transcript returns the messages sent to code so far, oldest first.
func (o *Orchestrator) Transcript(code domain.RoomCode) ([]domain.Message, error) {
	room, err := o.Registry.Get(code)
	if err != nil {
		return nil, err
	}
	return room.Transcript(), nil
}

func (o *Orchestrator) Members(code domain.RoomCode) ([]core.MemberDTO, error) {
	room, err := o.Registry.Get(code)
	if err != nil {
		return nil, err
	}
	return room.MembersSnapshot(), nil
}

func (o *Orchestrator) Rooms() []core.RoomInfo {
	return o.Registry.List()
}

// EvictRoom closes every member connection and drops the room.
func (o *Orchestrator) EvictRoom(code domain.RoomCode) {
	room, err := o.Registry.Get(code)
	if err != nil {
		return
	}
	o.Registry.Delete(code)
	n := room.CloseMembers()
	log.Info().Str("module", "orch").Str("room", string(code)).Int("members", n).Msg("room evicted")
}
