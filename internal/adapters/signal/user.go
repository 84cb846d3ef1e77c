package signal

import (
	"github.com/dkeye/Lounge/internal/core"
	"github.com/dkeye/Lounge/internal/domain"
)

func (ctl *SignalWSController) handleWhoAmI(c *WsSignalConn) {
	resp := struct {
		Type    string           `json:"type"`
		Name    domain.Username  `json:"name"`
		Room    domain.RoomCode  `json:"room"`
		Members []core.MemberDTO `json:"members"`
	}{
		Type: "whoami",
		Name: c.name,
		Room: c.code,
	}
	if members, err := ctl.Orch.Members(c.code); err == nil {
		resp.Members = members
	}
	ctl.sendJSON(c, resp)
}
