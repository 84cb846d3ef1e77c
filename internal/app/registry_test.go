package app

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dkeye/Lounge/internal/core"
	"github.com/dkeye/Lounge/internal/domain"
)

func TestRegistry_CreateGetExists(t *testing.T) {
	f := newFixture("ABCD")
	code, err := f.reg.Create()
	require.NoError(t, err)
	assert.Equal(t, domain.RoomCode("ABCD"), code)
	assert.True(t, f.reg.Exists(code))

	room, err := f.reg.Get(code)
	require.NoError(t, err)
	assert.Equal(t, code, room.Room().Code)
	assert.Zero(t, room.MemberCount())
	assert.Empty(t, room.Transcript())
}

func TestRegistry_GetMissing(t *testing.T) {
	f := newFixture()
	_, err := f.reg.Get("ZZZZ")
	assert.ErrorIs(t, err, domain.ErrRoomNotFound)
	assert.False(t, f.reg.Exists("ZZZZ"))
}

func TestRegistry_CreateSkipsLiveCodes(t *testing.T) {
	f := newFixture("ABCD", "ABCD", "WXYZ")
	first, err := f.reg.Create()
	require.NoError(t, err)
	second, err := f.reg.Create()
	require.NoError(t, err)

	assert.Equal(t, domain.RoomCode("ABCD"), first)
	assert.Equal(t, domain.RoomCode("WXYZ"), second)
}

func TestRegistry_GeneratedCodesAvoidSeededRoom(t *testing.T) {
	gen, err := core.NewCodeGenerator(4)
	require.NoError(t, err)
	reg := NewRegistry(gen, &manualScheduler{}, nil)
	reg.rooms["ABCD"] = core.NewRoom("ABCD")

	for i := 0; i < 1000; i++ {
		code, err := reg.Create()
		require.NoError(t, err)
		require.NotEqual(t, domain.RoomCode("ABCD"), code)
		reg.Delete(code)
	}
	assert.True(t, reg.Exists("ABCD"))
}

func TestRegistry_DeleteIsIdempotent(t *testing.T) {
	f := newFixture("ABCD")
	code, _ := f.reg.Create()
	room, _ := f.reg.Get(code)

	f.reg.Delete(code)
	f.reg.Delete(code)
	assert.False(t, f.reg.Exists(code))

	_, err := room.AddMember(core.NewMemberSession(domain.NewMember("late"), &fakeConn{}), nil)
	assert.ErrorIs(t, err, domain.ErrRoomNotFound, "stale references see the room closed")
}

func TestRegistry_ScheduleCleanupDeletesEmptyRoom(t *testing.T) {
	f := newFixture("ABCD")
	code, _ := f.reg.Create()

	f.reg.ScheduleCleanup(code, time.Second)
	assert.True(t, f.reg.Exists(code), "nothing happens before the delay")

	f.sched.FireAll()
	assert.False(t, f.reg.Exists(code))
}

func TestRegistry_ScheduleCleanupKeepsOccupiedRoom(t *testing.T) {
	f := newFixture("ABCD")
	code, _ := f.reg.Create()
	f.reg.ScheduleCleanup(code, time.Second)

	require.NoError(t, f.presence.Connect(code, "alice", &fakeConn{}))
	f.sched.FireAll()
	assert.True(t, f.reg.Exists(code))
}

func TestRegistry_ScheduleCleanupTwice(t *testing.T) {
	f := newFixture("ABCD")
	code, _ := f.reg.Create()
	f.reg.ScheduleCleanup(code, time.Second)
	f.reg.ScheduleCleanup(code, time.Second)
	require.Equal(t, 2, f.sched.Pending())

	assert.NotPanics(t, f.sched.FireAll)
	assert.False(t, f.reg.Exists(code))
}

func TestRegistry_CleanupWithRealTimer(t *testing.T) {
	gen, err := core.NewCodeGenerator(4)
	require.NoError(t, err)
	reg := NewRegistry(gen, nil, nil)
	code, err := reg.Create()
	require.NoError(t, err)

	reg.ScheduleCleanup(code, 20*time.Millisecond)
	assert.True(t, reg.Exists(code))
	assert.Eventually(t, func() bool { return !reg.Exists(code) }, time.Second, 5*time.Millisecond)
}

func TestRegistry_List(t *testing.T) {
	f := newFixture("WXYZ", "ABCD")
	_, _ = f.reg.Create()
	_, _ = f.reg.Create()
	require.NoError(t, f.presence.Connect("ABCD", "alice", &fakeConn{}))

	rooms := f.reg.List()
	require.Len(t, rooms, 2)
	assert.Equal(t, domain.RoomCode("ABCD"), rooms[0].Code)
	assert.Equal(t, 1, rooms[0].MemberCount)
	assert.Equal(t, domain.RoomCode("WXYZ"), rooms[1].Code)
}
