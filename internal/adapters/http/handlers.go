package http

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/dkeye/Lounge/internal/adapters/signal"
	"github.com/dkeye/Lounge/internal/app/orch"
	"github.com/dkeye/Lounge/internal/domain"
	"github.com/dkeye/Lounge/internal/profile"
)

type LoginRequest struct {
	Name string `json:"name"`
}

type JoinRequest struct {
	Code string `json:"code"`
}

type AvatarRequest struct {
	Index *int `json:"index"`
}

type ProfileResponse struct {
	Name    domain.Username `json:"name"`
	Avatar  string          `json:"avatar"`
	Palette []string        `json:"palette"`
	Room    domain.RoomCode `json:"room,omitempty"`
}

type RoomResponse struct {
	Code        domain.RoomCode  `json:"code"`
	MemberCount int              `json:"member_count"`
	Messages    []domain.Message `json:"messages"`
}

type handlers struct {
	orch     *orch.Orchestrator
	profiles *profile.Directory
	codes    CodeShape
	signal   *signal.SignalWSController
}

// requireUser rejects requests whose session carries no name.
func requireUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		name, _ := sessions.Default(c).Get(keyName).(string)
		if name == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "login required"})
			return
		}
		c.Set(keyName, domain.Username(name))
		c.Next()
	}
}

func currentUser(c *gin.Context) domain.Username {
	name, _ := c.Get(keyName)
	u, _ := name.(domain.Username)
	return u
}

func currentRoom(c *gin.Context) domain.RoomCode {
	code, _ := sessions.Default(c).Get(keyRoom).(string)
	return domain.RoomCode(code)
}

func (h *handlers) login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing or invalid name"})
		return
	}
	name, err := domain.ParseUsername(req.Name)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	user := h.profiles.Ensure(name)

	s := sessions.Default(c)
	s.Clear()
	s.Set(keyName, string(name))
	if err := s.Save(); err != nil {
		log.Error().Err(err).Str("module", "adapters.http").Msg("session save")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "session"})
		return
	}
	log.Info().Str("module", "adapters.http").Str("name", string(name)).Msg("login")
	c.JSON(http.StatusOK, ProfileResponse{Name: user.Name, Avatar: user.Avatar, Palette: h.profiles.Palette()})
}

func (h *handlers) logout(c *gin.Context) {
	s := sessions.Default(c)
	s.Clear()
	s.Options(sessions.Options{Path: "/", MaxAge: -1})
	_ = s.Save()
	c.Status(http.StatusNoContent)
}

func (h *handlers) getProfile(c *gin.Context) {
	user := h.profiles.Ensure(currentUser(c))
	c.JSON(http.StatusOK, ProfileResponse{
		Name:    user.Name,
		Avatar:  user.Avatar,
		Palette: h.profiles.Palette(),
		Room:    currentRoom(c),
	})
}

func (h *handlers) setAvatar(c *gin.Context) {
	var req AvatarRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Index == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing or invalid index"})
		return
	}
	name := currentUser(c)
	h.profiles.Ensure(name)
	if err := h.profiles.SetAvatar(name, *req.Index); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	h.getProfile(c)
}

func (h *handlers) listRooms(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"rooms": h.orch.Rooms()})
}

func (h *handlers) createRoom(c *gin.Context) {
	code, err := h.orch.CreateRoom()
	if err != nil {
		log.Error().Err(err).Str("module", "adapters.http").Msg("create room")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not create room"})
		return
	}
	if !h.bindRoom(c, code) {
		return
	}
	c.JSON(http.StatusCreated, gin.H{"code": code})
}

func (h *handlers) joinRoom(c *gin.Context) {
	var req JoinRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Code) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "please enter a room code"})
		return
	}
	raw := strings.TrimSpace(req.Code)
	if h.codes != nil && !h.codes.Valid(raw) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid room code"})
		return
	}
	code := domain.RoomCode(raw)
	if !h.orch.RoomExists(code) {
		c.JSON(http.StatusNotFound, gin.H{"error": domain.ErrRoomNotFound.Error()})
		return
	}
	if !h.bindRoom(c, code) {
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": code})
}

func (h *handlers) bindRoom(c *gin.Context, code domain.RoomCode) bool {
	s := sessions.Default(c)
	s.Set(keyRoom, string(code))
	if err := s.Save(); err != nil {
		log.Error().Err(err).Str("module", "adapters.http").Msg("session save")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "session"})
		return false
	}
	return true
}

// roomInfo serves only the room bound to the caller's session. Any
// other code answers like a missing room.
func (h *handlers) roomInfo(c *gin.Context) {
	code := domain.RoomCode(c.Param("code"))
	if code != currentRoom(c) {
		c.JSON(http.StatusNotFound, gin.H{"error": domain.ErrRoomNotFound.Error()})
		return
	}
	messages, err := h.orch.Transcript(code)
	if errors.Is(err, domain.ErrRoomNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": domain.ErrRoomNotFound.Error()})
		return
	}
	members, _ := h.orch.Members(code)
	c.JSON(http.StatusOK, RoomResponse{Code: code, MemberCount: len(members), Messages: messages})
}

// websocket hands the session-bound (room, name) pair to the signal
// controller. A stale room is refused there with an error frame.
func (h *handlers) websocket(ctx context.Context, c *gin.Context) {
	code := currentRoom(c)
	if code == "" {
		c.JSON(http.StatusConflict, gin.H{"error": "no room selected"})
		return
	}
	h.signal.HandleSignal(ctx, c, code, currentUser(c))
}
