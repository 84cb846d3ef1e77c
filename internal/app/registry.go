package app

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/dkeye/Lounge/internal/core"
	"github.com/dkeye/Lounge/internal/domain"
	"github.com/dkeye/Lounge/internal/metrics"
)

// CodeSource hands out room codes not reported as taken.
type CodeSource interface {
	Generate(taken func(domain.RoomCode) bool) (domain.RoomCode, error)
}

const (
	ReasonLeave   = "leave"
	ReasonCleanup = "cleanup"
	ReasonAdmin   = "admin"
)

// Registry owns the code -> room mapping and is the single source of
// truth for which rooms are live. Lock order is Registry.mu before any
// room lock; rooms never call back into the registry.
type Registry struct {
	codes   CodeSource
	sched   core.Scheduler
	metrics *metrics.Metrics

	mu    sync.RWMutex
	rooms map[domain.RoomCode]core.RoomService
	tap   core.FrameTap
}

func NewRegistry(codes CodeSource, sched core.Scheduler, m *metrics.Metrics) *Registry {
	if sched == nil {
		sched = core.TimerScheduler{}
	}
	return &Registry{
		codes:   codes,
		sched:   sched,
		metrics: m,
		rooms:   make(map[domain.RoomCode]core.RoomService),
	}
}

func (r *Registry) Create() (domain.RoomCode, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	code, err := r.codes.Generate(func(c domain.RoomCode) bool {
		_, ok := r.rooms[c]
		return ok
	})
	if err != nil {
		return "", fmt.Errorf("create room: %w", err)
	}
	r.rooms[code] = core.NewTappedRoom(code, r.tap)
	r.metrics.RoomCreated()
	log.Info().Str("module", "app.registry").Str("room", string(code)).Msg("room created")
	return code, nil
}

// Mirror hands every room-wide frame of rooms created from now on to
// sink, in the order members receive them. Call it before Create.
func (r *Registry) Mirror(sink EventSink) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if sink == nil {
		r.tap = nil
		return
	}
	r.tap = sink.Publish
}

func (r *Registry) Exists(code domain.RoomCode) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.rooms[code]
	return ok
}

func (r *Registry) Get(code domain.RoomCode) (core.RoomService, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	room, ok := r.rooms[code]
	if !ok {
		return nil, fmt.Errorf("room %s: %w", code, domain.ErrRoomNotFound)
	}
	return room, nil
}

// Delete removes the room regardless of occupancy. No-op if absent.
func (r *Registry) Delete(code domain.RoomCode) {
	r.mu.Lock()
	defer r.mu.Unlock()
	room, ok := r.rooms[code]
	if !ok {
		return
	}
	room.Close()
	delete(r.rooms, code)
	r.metrics.RoomDeleted(ReasonAdmin)
	log.Info().Str("module", "app.registry").Str("room", string(code)).Msg("room deleted")
}

// DeleteIfEmpty removes whatever room is live under code when it has no
// members. The emptiness check and the close happen under the room lock,
// so a join racing with it either lands first (room kept) or sees the
// room closed and fails with ErrRoomNotFound.
func (r *Registry) DeleteIfEmpty(code domain.RoomCode, reason string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	room, ok := r.rooms[code]
	if !ok {
		return false
	}
	if !room.CloseIfEmpty() {
		return false
	}
	delete(r.rooms, code)
	r.metrics.RoomDeleted(reason)
	log.Info().Str("module", "app.registry").Str("room", string(code)).Str("reason", reason).Msg("empty room deleted")
	return true
}

// ScheduleCleanup re-checks code after delay and deletes the room if it
// is still empty. Safe to call repeatedly for the same code: each check
// looks at the room live at fire time and holds no lock while waiting.
func (r *Registry) ScheduleCleanup(code domain.RoomCode, delay time.Duration) {
	log.Debug().Str("module", "app.registry").Str("room", string(code)).Dur("delay", delay).Msg("cleanup scheduled")
	r.sched.AfterFunc(delay, func() {
		if !r.Exists(code) {
			r.metrics.CleanupCheck("gone")
			return
		}
		if r.DeleteIfEmpty(code, ReasonCleanup) {
			r.metrics.CleanupCheck("deleted")
			return
		}
		r.metrics.CleanupCheck("kept")
		log.Debug().Str("module", "app.registry").Str("room", string(code)).Msg("cleanup skipped, room occupied")
	})
}

// List returns live rooms ordered by code.
func (r *Registry) List() []core.RoomInfo {
	r.mu.RLock()
	rooms := make([]core.RoomService, 0, len(r.rooms))
	for _, room := range r.rooms {
		rooms = append(rooms, room)
	}
	r.mu.RUnlock()

	out := make([]core.RoomInfo, 0, len(rooms))
	for _, room := range rooms {
		out = append(out, core.RoomInfo{
			Code:        room.Room().Code,
			MemberCount: room.MemberCount(),
			CreatedAt:   room.Room().CreatedAt,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out
}
