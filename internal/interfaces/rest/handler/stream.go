package handler

import (
	"context"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	infra "github.com/pot-code/course-gate/internal/infrastructure"
	"github.com/pot-code/course-gate/internal/infrastructure/auth"
	"github.com/pot-code/course-gate/internal/infrastructure/logging"
	"github.com/pot-code/course-gate/internal/presence"
	"github.com/pot-code/course-gate/internal/progress"
	"go.uber.org/zap"
)

// events buffered per connection, newer events are dropped while full
const streamBuffer = 16

// StreamHandler pushes the token owner's progress events over websocket,
// an open stream keeps the learner online when Heartbeat is set
type StreamHandler struct {
	Notifier  *progress.Notifier
	Heartbeat *presence.Heartbeat
	JWTUtil   *auth.JWTUtil
	Websocket *infra.Websocket
}

// NewStreamHandler ...
func NewStreamHandler(
	Notifier *progress.Notifier,
	Heartbeat *presence.Heartbeat,
	JWTUtil *auth.JWTUtil,
	Websocket *infra.Websocket,
) *StreamHandler {
	return &StreamHandler{Notifier, Heartbeat, JWTUtil, Websocket}
}

// HandleProgressStream ...
func (sh *StreamHandler) HandleProgressStream(c echo.Context) error {
	claims := sh.JWTUtil.GetContextToken(c)
	return sh.Websocket.WithHeartbeat(sh.streamTo(claims.UID))(c)
}

func (sh *StreamHandler) streamTo(userID string) infra.WebsocketHandler {
	return func(ctx context.Context, conn *websocket.Conn) error {
		logger := logging.ExtractLoggerFromContext(ctx).With(zap.String("user.id", userID))
		events := make(chan progress.Event, streamBuffer)
		unsubscribe := sh.Notifier.Subscribe(func(e progress.Event) {
			if e.UserID != userID {
				return
			}
			select {
			case events <- e:
			default:
				logger.Warn("Progress stream is full, event dropped", zap.String("course.id", e.CourseID))
			}
		})
		defer unsubscribe()
		if sh.Heartbeat != nil {
			go sh.Heartbeat.Run(ctx, userID)
		}

		logger.Debug("Progress stream opened")
		defer logger.Debug("Progress stream closed")
		for {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case e := <-events:
				conn.SetWriteDeadline(time.Now().Add(sh.Websocket.WriteWait()))
				if err := conn.WriteJSON(&e); err != nil {
					return err
				}
			}
		}
	}
}
