package app

import (
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dkeye/Lounge/internal/core"
	"github.com/dkeye/Lounge/internal/domain"
)

type fakeConn struct {
	mu     sync.Mutex
	frames []core.Frame
	full   bool
	closed bool
}

func (c *fakeConn) TrySend(f core.Frame) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.full {
		return errors.New("full")
	}
	c.frames = append(c.frames, f)
	return nil
}

func (c *fakeConn) Close() {
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()
}

func (c *fakeConn) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

func (c *fakeConn) presences(t *testing.T) []domain.Presence {
	t.Helper()
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []domain.Presence
	for _, f := range c.frames {
		var p domain.Presence
		require.NoError(t, json.Unmarshal(f, &p))
		if p.Type == domain.FramePresence {
			out = append(out, p)
		}
	}
	return out
}

func (c *fakeConn) messages(t *testing.T) []domain.Message {
	t.Helper()
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []domain.Message
	for _, f := range c.frames {
		var m domain.Message
		require.NoError(t, json.Unmarshal(f, &m))
		if m.Type == domain.FrameMessage {
			out = append(out, m)
		}
	}
	return out
}

// manualScheduler queues callbacks until the test fires them.
type manualScheduler struct {
	mu      sync.Mutex
	pending []func()
	delays  []time.Duration
}

func (s *manualScheduler) AfterFunc(d time.Duration, f func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending = append(s.pending, f)
	s.delays = append(s.delays, d)
}

func (s *manualScheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}

func (s *manualScheduler) FireAll() {
	s.mu.Lock()
	fns := s.pending
	s.pending = nil
	s.mu.Unlock()
	for _, f := range fns {
		f()
	}
}

// fixedCodes hands out codes in order, skipping taken ones.
type fixedCodes struct {
	mu    sync.Mutex
	codes []domain.RoomCode
}

func (f *fixedCodes) Generate(taken func(domain.RoomCode) bool) (domain.RoomCode, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for len(f.codes) > 0 {
		c := f.codes[0]
		f.codes = f.codes[1:]
		if !taken(c) {
			return c, nil
		}
	}
	return "", errors.New("out of codes")
}

type staticAvatars map[domain.Username]string

func (s staticAvatars) Avatar(name domain.Username) string { return s[name] }

type recordingSink struct {
	mu     sync.Mutex
	frames map[domain.RoomCode][]core.Frame
}

func (s *recordingSink) Publish(code domain.RoomCode, f core.Frame) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.frames == nil {
		s.frames = make(map[domain.RoomCode][]core.Frame)
	}
	s.frames[code] = append(s.frames[code], f)
}

func (s *recordingSink) count(code domain.RoomCode) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.frames[code])
}

// messages decodes the chat frames the sink saw for code, in order.
func (s *recordingSink) messages(t *testing.T, code domain.RoomCode) []domain.Message {
	t.Helper()
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.Message
	for _, f := range s.frames[code] {
		var m domain.Message
		require.NoError(t, json.Unmarshal(f, &m))
		if m.Type == domain.FrameMessage {
			out = append(out, m)
		}
	}
	return out
}

type fixture struct {
	reg      *Registry
	sched    *manualScheduler
	out      *Broadcaster
	presence *Presence
	sink     *recordingSink
}

func newFixture(codes ...domain.RoomCode) *fixture {
	sched := &manualScheduler{}
	reg := NewRegistry(&fixedCodes{codes: codes}, sched, nil)
	sink := &recordingSink{}
	reg.Mirror(sink)
	out := &Broadcaster{Rooms: reg, Policy: SimplePolicy{}}
	return &fixture{
		reg:   reg,
		sched: sched,
		out:   out,
		sink:  sink,
		presence: &Presence{
			Rooms:       reg,
			Out:         out,
			Avatars:     staticAvatars{"alice": "red", "bob": "blue"},
			GracePeriod: 5 * time.Second,
		},
	}
}
