// Package bus mirrors room frames onto Redis Pub/Sub for consumers
// outside this process.
package bus

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/dkeye/Lounge/internal/core"
	"github.com/dkeye/Lounge/internal/domain"
)

// Publisher is the subset of *redis.Client the sink uses.
type Publisher interface {
	Publish(ctx context.Context, channel string, message any) *redis.IntCmd
}

type event struct {
	code  domain.RoomCode
	frame core.Frame
}

// RedisSink implements app.EventSink. Publish only enqueues; Run drains
// the queue, so a slow or absent Redis never stalls a room.
type RedisSink struct {
	client  Publisher
	prefix  string
	queue   chan event
	timeout time.Duration
	done    chan struct{}
}

func NewRedisSink(client Publisher, prefix string, buffer int) *RedisSink {
	if buffer <= 0 {
		buffer = 256
	}
	return &RedisSink{
		client:  client,
		prefix:  prefix,
		queue:   make(chan event, buffer),
		timeout: 2 * time.Second,
		done:    make(chan struct{}),
	}
}

// Channel is the Pub/Sub channel for room code.
func (s *RedisSink) Channel(code domain.RoomCode) string {
	return s.prefix + string(code)
}

// Publish enqueues frame for code and drops it if the queue is full.
func (s *RedisSink) Publish(code domain.RoomCode, frame core.Frame) {
	select {
	case s.queue <- event{code: code, frame: frame}:
	default:
		log.Warn().Str("module", "adapters.bus").Str("room", string(code)).Msg("event queue full, dropping frame")
	}
}

// Done is closed when Run returns.
func (s *RedisSink) Done() <-chan struct{} { return s.done }

// Run publishes queued frames until ctx is done.
func (s *RedisSink) Run(ctx context.Context) error {
	defer close(s.done)
	log.Info().Str("module", "adapters.bus").Str("prefix", s.prefix).Msg("redis sink started")
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev := <-s.queue:
			pubCtx, cancel := context.WithTimeout(ctx, s.timeout)
			err := s.client.Publish(pubCtx, s.Channel(ev.code), []byte(ev.frame)).Err()
			cancel()
			if err != nil && ctx.Err() == nil {
				log.Warn().Err(err).Str("module", "adapters.bus").Str("room", string(ev.code)).Msg("publish failed")
			}
		}
	}
}

// NewClient opens a Redis client and checks it with PING.
func NewClient(ctx context.Context, addr string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   db,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}
	return client, nil
}
