package core

import (
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/dkeye/Lounge/internal/domain"
)

// roomImpl is a threadsafe in-memory room.
// It never closes adapter-owned resources.
type roomImpl struct {
	room *domain.Room

	mu         sync.Mutex
	closed     bool
	count      int
	byName     map[domain.Username]MemberSession
	transcript []domain.Message
	tap        FrameTap
}

// NewRoomService wraps room; tap may be nil.
func NewRoomService(room *domain.Room, tap FrameTap) RoomService {
	return &roomImpl{
		room:   room,
		byName: make(map[domain.Username]MemberSession),
		tap:    tap,
	}
}

func (r *roomImpl) Room() *domain.Room { return r.room }

func (r *roomImpl) MemberCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.count
}

func (r *roomImpl) AddMember(ms MemberSession, notice Frame) (PublishResult, error) {
	name := ms.Meta().Name
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return PublishResult{}, domain.ErrRoomNotFound
	}
	if _, ok := r.byName[name]; ok {
		return PublishResult{}, domain.ErrDuplicateSession
	}
	r.byName[name] = ms
	r.count++
	log.Info().Str("module", "core.room").Str("room", string(r.room.Code)).Str("name", string(name)).Int("members", r.count).Msg("member added")
	return r.fanOut(notice), nil
}

func (r *roomImpl) RemoveMember(name domain.Username, notice Frame) (int, PublishResult, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byName[name]; !ok {
		return r.count, PublishResult{}, false
	}
	delete(r.byName, name)
	if r.count > 0 {
		r.count--
	} else {
		log.Error().Str("module", "core.room").Str("room", string(r.room.Code)).Str("name", string(name)).Msg("member count would go negative")
	}
	log.Info().Str("module", "core.room").Str("room", string(r.room.Code)).Str("name", string(name)).Int("members", r.count).Msg("member removed")
	return r.count, r.fanOut(notice), true
}

func (r *roomImpl) Broadcast(data Frame, record *domain.Message) (PublishResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return PublishResult{}, domain.ErrRoomNotFound
	}
	if record != nil {
		r.transcript = append(r.transcript, *record)
	}
	res := r.fanOut(data)
	log.Debug().Str("module", "core.room").Str("room", string(r.room.Code)).Int("sent_to", res.SendTo).Int("dropped", len(res.Dropped)).Msg("broadcast result")
	return res, nil
}

// fanOut must be called with r.mu held.
func (r *roomImpl) fanOut(data Frame) PublishResult {
	res := PublishResult{}
	if len(data) == 0 {
		return res
	}
	for _, m := range r.byName {
		if err := m.Signal().TrySend(data); err != nil {
			res.Dropped = append(res.Dropped, m)
			continue
		}
		res.SendTo++
	}
	if r.tap != nil {
		r.tap(r.room.Code, data)
	}
	return res
}

func (r *roomImpl) CloseIfEmpty() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.count > 0 {
		return false
	}
	r.closed = true
	return true
}

func (r *roomImpl) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
}

func (r *roomImpl) CloseMembers() int {
	r.mu.Lock()
	conns := make([]SignalConnection, 0, len(r.byName))
	for _, ms := range r.byName {
		conns = append(conns, ms.Signal())
	}
	r.mu.Unlock()
	for _, c := range conns {
		c.Close()
	}
	return len(conns)
}

func (r *roomImpl) MembersSnapshot() []MemberDTO {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]MemberDTO, 0, len(r.byName))
	for _, ms := range r.byName {
		m := ms.Meta()
		out = append(out, MemberDTO{Name: m.Name, JoinedAt: m.JoinedAt})
	}
	return out
}

func (r *roomImpl) Transcript() []domain.Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.Message, len(r.transcript))
	copy(out, r.transcript)
	return out
}

// NewRoom is a tiny helper for registries: a fresh room under code.
func NewRoom(code domain.RoomCode) RoomService {
	return NewTappedRoom(code, nil)
}

func NewTappedRoom(code domain.RoomCode, tap FrameTap) RoomService {
	return NewRoomService(&domain.Room{Code: code, CreatedAt: time.Now()}, tap)
}
