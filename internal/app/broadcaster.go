package app

import (
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/dkeye/Lounge/internal/core"
	"github.com/dkeye/Lounge/internal/domain"
	"github.com/dkeye/Lounge/internal/metrics"
)

// EventSink receives every room-wide frame from inside the room's locked
// step (see Registry.Mirror). Publish must not block.
type EventSink interface {
	Publish(code domain.RoomCode, frame core.Frame)
}

// Broadcaster encodes payloads once and hands the same bytes to every
// member of a room.
type Broadcaster struct {
	Rooms   *Registry
	Policy  Policy
	Metrics *metrics.Metrics
}

func (b *Broadcaster) Encode(v any) core.Frame {
	data, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Str("module", "app.broadcaster").Msg("encode frame")
		return nil
	}
	return data
}

// Send appends msg to the room transcript and delivers it to every
// member in one room-locked step.
func (b *Broadcaster) Send(code domain.RoomCode, msg domain.Message) error {
	room, err := b.Rooms.Get(code)
	if err != nil {
		return err
	}
	frame := b.Encode(msg)
	if frame == nil {
		return fmt.Errorf("encode message for %s", code)
	}
	res, err := room.Broadcast(frame, &msg)
	if err != nil {
		return fmt.Errorf("room %s: %w", code, err)
	}
	b.Delivered(room, frame, res)
	return nil
}

// Reply delivers v to a single connection, bypassing room and transcript.
func (b *Broadcaster) Reply(conn core.SignalConnection, v any) {
	frame := b.Encode(v)
	if frame == nil {
		return
	}
	if err := conn.TrySend(frame); err != nil {
		log.Warn().Err(err).Str("module", "app.broadcaster").Msg("reply dropped")
	}
}

// Delivered accounts for a fan-out that already happened under the room
// lock: metrics and the backpressure policy.
func (b *Broadcaster) Delivered(room core.RoomService, frame core.Frame, res core.PublishResult) {
	b.Metrics.Delivered(res.SendTo, len(res.Dropped))
	if b.Policy == nil {
		return
	}
	for _, slow := range res.Dropped {
		switch b.Policy.OnBackPressure(room, slow) {
		case KickMember:
			log.Warn().Str("module", "app.broadcaster").Str("room", string(room.Room().Code)).Str("name", string(slow.Meta().Name)).Msg("kicking slow member")
			slow.Signal().Close()
		case NoAction:
		}
	}
}
