package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pot-code/course-gate/internal/infrastructure/auth"
	"github.com/pot-code/course-gate/internal/presence"
)

// PresenceHandler learner liveness
type PresenceHandler struct {
	Heartbeat *presence.Heartbeat
	JWTUtil   *auth.JWTUtil
}

// NewPresenceHandler ...
func NewPresenceHandler(Heartbeat *presence.Heartbeat, JWTUtil *auth.JWTUtil) *PresenceHandler {
	return &PresenceHandler{Heartbeat, JWTUtil}
}

type presenceResponse struct {
	UserID   string     `json:"userId"`
	Online   bool       `json:"online"`
	LastSeen *time.Time `json:"lastSeen,omitempty"`
}

// HandleBeat mark the token owner online
func (ph *PresenceHandler) HandleBeat(c echo.Context) error {
	claims := ph.JWTUtil.GetContextToken(c)
	if err := ph.Heartbeat.Beat(c.Request().Context(), claims.UID); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// HandleGetPresence ...
func (ph *PresenceHandler) HandleGetPresence(c echo.Context) error {
	uid := c.Param("user")
	ctx := c.Request().Context()

	online, err := ph.Heartbeat.Online(ctx, uid)
	if err != nil {
		return err
	}
	res := &presenceResponse{UserID: uid, Online: online}
	if online {
		seen, err := ph.Heartbeat.LastSeen(ctx, uid)
		if err != nil {
			return err
		}
		if !seen.IsZero() {
			res.LastSeen = &seen
		}
	}
	return c.JSON(http.StatusOK, res)
}
