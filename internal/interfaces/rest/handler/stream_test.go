package handler

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	infra "github.com/pot-code/course-gate/internal/infrastructure"
	"github.com/pot-code/course-gate/internal/infrastructure/driver"
	"github.com/pot-code/course-gate/internal/presence"
	"github.com/pot-code/course-gate/internal/progress"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStreamHandler_DeliversOwnEvents(t *testing.T) {
	notifier := progress.NewNotifier()
	kv := driver.NewMemoryKV()
	hb := presence.NewHeartbeat(kv, time.Hour, time.Hour)
	sh := NewStreamHandler(notifier, hb, testJWT, infra.NewWebsocket())

	app := echo.New()
	app.GET("/ws/progress", sh.HandleProgressStream, func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			return next(asUser(c, "u1"))
		}
	})
	server := httptest.NewServer(app)
	defer server.Close()

	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws/progress"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return notifier.Len() == 1 }, time.Second, 10*time.Millisecond)
	require.Eventually(t, func() bool {
		online, err := hb.Online(context.Background(), "u1")
		return err == nil && online
	}, time.Second, 10*time.Millisecond, "an open stream marks the learner online")

	notifier.Publish(progress.Event{Kind: progress.EventLessonCompleted, UserID: "u2", CourseID: "c1", LessonID: "X"})
	notifier.Publish(progress.Event{Kind: progress.EventLessonCompleted, UserID: "u1", CourseID: "c1", LessonID: "A", Progress: 20})

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var got progress.Event
	require.NoError(t, conn.ReadJSON(&got))
	assert.Equal(t, "u1", got.UserID)
	assert.Equal(t, "A", got.LessonID)
	assert.Equal(t, 20, got.Progress)

	conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	conn.Close()
	require.Eventually(t, func() bool { return notifier.Len() == 0 }, 2*time.Second, 10*time.Millisecond,
		"closing the socket unsubscribes")
}
