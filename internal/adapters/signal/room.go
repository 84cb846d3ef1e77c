package signal

import (
	"encoding/json"
	"errors"

	"github.com/rs/zerolog/log"

	"github.com/dkeye/Lounge/internal/domain"
)

func (ctl *SignalWSController) handleMessage(c *WsSignalConn, data []byte) bool {
	var p struct {
		Type string `json:"type"`
		Data string `json:"data"`
	}
	if err := json.Unmarshal(data, &p); err != nil {
		log.Warn().Err(err).Str("module", "signal").Msg("bad message payload")
		ctl.sendError(c, "bad_payload")
		return false
	}
	if ctl.Limiter != nil && !ctl.Limiter.Allow(c.code, c.name) {
		ctl.sendError(c, "rate limited")
		return false
	}

	_, err := ctl.Orch.OnMessage(c.code, c.name, p.Data)
	switch {
	case err == nil:
		return false
	case errors.Is(err, domain.ErrInvalidMessage):
		ctl.sendError(c, domain.Reason(err))
		return false
	case errors.Is(err, domain.ErrRoomNotFound):
		// The room is gone under us; send the client back to the lounge.
		ctl.sendError(c, domain.Reason(domain.ErrRoomNotFound))
		return true
	default:
		log.Error().Err(err).Str("module", "signal").Msg("message failed")
		ctl.sendError(c, "internal error")
		return false
	}
}

// handleLeave is a deliberate departure: the room is dropped at once if
// this was the last member, and the socket is closed afterwards.
func (ctl *SignalWSController) handleLeave(c *WsSignalConn) {
	log.Info().Str("module", "signal").Str("room", string(c.code)).Str("name", string(c.name)).Msg("leave")
	c.left.Store(true)
	ctl.Orch.OnLeave(c.code, c.name)
	ctl.sendJSON(c, map[string]any{
		"type": "left",
	})
}

func (ctl *SignalWSController) sendError(c *WsSignalConn, reason string) {
	ctl.sendJSON(c, domain.NewErrorReply(reason))
}
