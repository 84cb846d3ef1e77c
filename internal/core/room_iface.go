package core

import (
	"time"

	"github.com/dkeye/Lounge/internal/domain"
)

// PublishResult reports delivery stats/backpressure to orchestrator.
type PublishResult struct {
	SendTo  int
	Dropped []MemberSession
}

// FrameTap observes every room-wide frame inside the room's locked
// step, so it sees frames in delivery order. It must not block.
type FrameTap func(code domain.RoomCode, f Frame)

// MemberDTO is a read-only view for APIs (no transport fields).
type MemberDTO struct {
	Name     domain.Username `json:"name"`
	JoinedAt time.Time       `json:"joined_at"`
}

// RoomService is the core-facing API of a room.
// Every mutating call runs under the room's own lock, so the
// membership check, the mutation and the fan-out are one step.
// It owns the membership set but never touches transport resources.
type RoomService interface {
	Room() *domain.Room
	MemberCount() int
	MembersSnapshot() []MemberDTO
	Transcript() []domain.Message

	// AddMember inserts ms and delivers notice to every member, the new
	// one included. Fails with ErrRoomNotFound on a closed room and
	// ErrDuplicateSession when the name is already present.
	AddMember(ms MemberSession, notice Frame) (PublishResult, error)
	// RemoveMember drops name and delivers notice to the remaining
	// members. removed is false when name was not present.
	RemoveMember(name domain.Username, notice Frame) (remaining int, res PublishResult, removed bool)
	// Broadcast appends record (when non-nil) to the transcript and
	// delivers data to every member.
	Broadcast(data Frame, record *domain.Message) (PublishResult, error)

	// CloseIfEmpty marks the room closed when it has no members.
	CloseIfEmpty() bool
	Close()
	// CloseMembers closes every member connection; the transport then
	// reports the disconnects.
	CloseMembers() int
}

type RoomInfo struct {
	Code        domain.RoomCode `json:"code"`
	MemberCount int             `json:"member_count"`
	CreatedAt   time.Time       `json:"created_at"`
}
