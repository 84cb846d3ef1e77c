// Package orch is the room session service the transport layer talks to.
// It combines the registry, presence and broadcaster behind one facade.
package orch

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/dkeye/Lounge/internal/app"
	"github.com/dkeye/Lounge/internal/core"
	"github.com/dkeye/Lounge/internal/domain"
	"github.com/dkeye/Lounge/internal/metrics"
)

type Orchestrator struct {
	Registry    *app.Registry
	Presence    *app.Presence
	Broadcaster *app.Broadcaster
	Avatars     app.AvatarSource
	Metrics     *metrics.Metrics

	MaxMessageLength int
}

// Options carries the tunables New needs besides the collaborators.
type Options struct {
	GracePeriod      time.Duration
	MaxMessageLength int
	Policy           app.Policy
	Sink             app.EventSink
	Scheduler        core.Scheduler
}

// New wires one registry into presence and broadcaster.
func New(codes app.CodeSource, avatars app.AvatarSource, m *metrics.Metrics, opts Options) *Orchestrator {
	reg := app.NewRegistry(codes, opts.Scheduler, m)
	if opts.Sink != nil {
		reg.Mirror(opts.Sink)
	}
	out := &app.Broadcaster{Rooms: reg, Policy: opts.Policy, Metrics: m}
	if opts.MaxMessageLength <= 0 {
		opts.MaxMessageLength = domain.DefaultMaxMessageLength
	}
	return &Orchestrator{
		Registry:    reg,
		Broadcaster: out,
		Presence: &app.Presence{
			Rooms:       reg,
			Out:         out,
			Avatars:     avatars,
			GracePeriod: opts.GracePeriod,
			Metrics:     m,
		},
		Avatars:          avatars,
		Metrics:          m,
		MaxMessageLength: opts.MaxMessageLength,
	}
}

// OnMessage validates body and broadcasts it to the room. A rejected
// body is returned as an error wrapping domain.ErrInvalidMessage; the
// caller replies to the sender only.
func (o *Orchestrator) OnMessage(code domain.RoomCode, name domain.Username, body string) (domain.Message, error) {
	if err := domain.ValidateBody(body, o.MaxMessageLength); err != nil {
		o.Metrics.Message("invalid")
		return domain.Message{}, err
	}
	msg := domain.Message{
		Type:      domain.FrameMessage,
		ID:        uuid.NewString(),
		Sender:    name,
		Body:      body,
		Timestamp: time.Now(),
	}
	if o.Avatars != nil {
		msg.Avatar = o.Avatars.Avatar(name)
	}
	if err := o.Broadcaster.Send(code, msg); err != nil {
		o.Metrics.Message("room_not_found")
		return domain.Message{}, fmt.Errorf("send message: %w", err)
	}
	o.Metrics.Message("ok")
	log.Debug().Str("module", "orch").Str("room", string(code)).Str("name", string(name)).Msg("message sent")
	return msg, nil
}

// Reply sends a single-session payload such as an error reply.
func (o *Orchestrator) Reply(conn core.SignalConnection, v any) {
	o.Broadcaster.Reply(conn, v)
}
