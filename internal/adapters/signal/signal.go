package signal

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/dkeye/Lounge/internal/core"
	"github.com/dkeye/Lounge/internal/domain"
)

var (
	ErrBackpressure = errors.New("backpressure")
	ErrClosed       = errors.New("connection closed")
)

// RoomSessions is what the controller needs from the room session service.
type RoomSessions interface {
	OnConnect(code domain.RoomCode, name domain.Username, conn core.SignalConnection) error
	OnDisconnect(code domain.RoomCode, name domain.Username)
	OnLeave(code domain.RoomCode, name domain.Username)
	OnMessage(code domain.RoomCode, name domain.Username, body string) (domain.Message, error)
	Members(code domain.RoomCode) ([]core.MemberDTO, error)
	Reply(conn core.SignalConnection, v any)
}

type Options struct {
	SendBuffer int
	ReadLimit  int64
	PingPeriod time.Duration
}

type SignalWSController struct {
	Orch    RoomSessions
	Limiter *RoomRateLimiter
	opts    Options
}

func NewSignalWSController(orch RoomSessions, limiter *RoomRateLimiter, opts Options) *SignalWSController {
	if opts.SendBuffer <= 0 {
		opts.SendBuffer = 64
	}
	if opts.ReadLimit <= 0 {
		opts.ReadLimit = 32768
	}
	if opts.PingPeriod <= 0 {
		opts.PingPeriod = 54 * time.Second
	}
	return &SignalWSController{Orch: orch, Limiter: limiter, opts: opts}
}

// WsSignalConn is the websocket endpoint of one session.
// It implements core.SignalConnection.
type WsSignalConn struct {
	conn *websocket.Conn
	send chan core.Frame
	done chan struct{}

	code domain.RoomCode
	name domain.Username
	left atomic.Bool

	mu     sync.RWMutex
	closed bool
}

func (c *WsSignalConn) TrySend(f core.Frame) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return ErrClosed
	}
	select {
	case c.send <- f:
	default:
		return ErrBackpressure
	}
	return nil
}

// Close stops accepting frames. The write pump flushes what is queued
// and then tears the socket down. Safe to call more than once.
func (c *WsSignalConn) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.done)
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// HandleSignal upgrades the request and binds the connection to
// (code, name), both resolved by the session layer beforehand.
func (ctl *SignalWSController) HandleSignal(ctx context.Context, c *gin.Context, code domain.RoomCode, name domain.Username) {
	logger := log.With().Str("module", "signal").Str("room", string(code)).Str("name", string(name)).Logger()

	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.Error().Err(err).Msg("ws upgrade")
		return
	}
	logger.Info().Msg("new WS connection")

	conn := &WsSignalConn{
		conn: ws,
		send: make(chan core.Frame, ctl.opts.SendBuffer),
		done: make(chan struct{}),
		code: code,
		name: name,
	}

	// Refused connections never reach the read pump, so they never
	// produce a disconnect for the session that holds the name.
	if err := ctl.Orch.OnConnect(code, name, conn); err != nil {
		logger.Info().Err(err).Msg("connect refused")
		ctl.reject(ws, err)
		return
	}

	ctx, cancel := context.WithCancel(ctx)
	go ctl.writePump(ctx, conn)
	go func() {
		defer cancel()
		ctl.readPump(ctx, conn)
	}()
}

func (ctl *SignalWSController) reject(ws *websocket.Conn, err error) {
	code := websocket.ClosePolicyViolation
	if errors.Is(err, domain.ErrRoomNotFound) {
		code = websocket.CloseGoingAway
	}
	_ = ws.SetWriteDeadline(time.Now().Add(writeWait))
	_ = ws.WriteJSON(domain.NewErrorReply(domain.Reason(err)))
	_ = ws.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(code, domain.Reason(err)))
	_ = ws.Close()
}
