package rest

import (
	"context"
	"expvar"
	"fmt"
	"log"
	"net/http"
	"net/http/pprof"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	echo_middleware "github.com/labstack/echo/v4/middleware"
	"github.com/pot-code/course-gate/internal/course"
	infra "github.com/pot-code/course-gate/internal/infrastructure"
	"github.com/pot-code/course-gate/internal/infrastructure/auth"
	"github.com/pot-code/course-gate/internal/infrastructure/driver"
	"github.com/pot-code/course-gate/internal/infrastructure/validate"
	"github.com/pot-code/course-gate/internal/interfaces/rest/handler"
	"github.com/pot-code/course-gate/internal/interfaces/rest/middleware"
	"github.com/pot-code/course-gate/internal/presence"
	"github.com/pot-code/course-gate/internal/progress"
	"github.com/pot-code/course-gate/internal/user"
	"go.elastic.co/apm/module/apmechov4"
	"go.uber.org/zap"
)

// liveness probe budget per dependency
const probeTimeout = 2 * time.Second

// Serve create http transport server
func Serve(
	conn driver.ITransactionalDB,
	kv driver.KeyValueDB,
	option *infra.AppConfig,
	UserUseCase user.UserUseCase,
	CourseUseCase course.CourseUseCase,
	ProgressUseCase progress.ProgressUseCase,
	Notifier *progress.Notifier,
	Heartbeat *presence.Heartbeat,
	logger *zap.Logger,
) {
	app := NewServer(conn, kv, option,
		UserUseCase, CourseUseCase, ProgressUseCase,
		Notifier, Heartbeat, logger)
	printRoutes(app, logger)
	if err := app.Start(fmt.Sprintf("%s:%d", option.Host, option.Port)); err != nil {
		log.Fatal(err)
	}
}

// NewServer register middlewares and routes
func NewServer(
	conn driver.ITransactionalDB,
	kv driver.KeyValueDB,
	option *infra.AppConfig,
	UserUseCase user.UserUseCase,
	CourseUseCase course.CourseUseCase,
	ProgressUseCase progress.ProgressUseCase,
	Notifier *progress.Notifier,
	Heartbeat *presence.Heartbeat,
	logger *zap.Logger,
) *echo.Echo {
	var (
		app       = echo.New()
		validator = validate.NewValidator()
		websocket = infra.NewWebsocket()
		jwtUtil   = auth.NewJWTUtil(option.Security.JWTMethod,
			option.Security.JWTSecret,
			option.Security.TokenName,
			option.SessionTimeout)
		authorizer    = auth.NewEmailAllowList(option.Security.AdminEmails)
		jwtMiddleware = middleware.VerifyToken(jwtUtil, &middleware.ValidateTokenOption{
			InBlackList: func(ctx context.Context, token string) (bool, error) {
				return kv.Exists(ctx, handler.BlacklistKey(token))
			},
		})
		refreshMiddleware = middleware.RefreshToken(jwtUtil, &middleware.RefreshTokenOption{
			Threshold: option.SessionRefresh,
		})
		adminMiddleware = middleware.RequireAdmin(jwtUtil, authorizer)
	)
	app.HideBanner = true

	registerLivenessProbe(app, conn, kv)
	if option.Env == infra.EnvDevelopment {
		registerProfileEndpoints(app)

		app.Use(middleware.Logging(logger, &middleware.LoggingConfig{
			Skipper: func(e echo.Context) bool {
				return strings.HasPrefix(e.Request().RequestURI, "/healthz")
			},
		}))
	}
	app.Use(middleware.ErrorHandling(
		&middleware.ErrorHandlingOption{
			Handler: func(c echo.Context, err error) {
				traceID := c.Response().Header().Get(echo.HeaderXRequestID)
				code := http.StatusInternalServerError
				if known, ok := handler.StatusOf(err); ok {
					code = known
				}
				c.JSON(code,
					handler.NewRESTStandardError(code, err.Error()).SetTraceID(traceID),
				)
				logger.Error(err.Error(),
					zap.String("trace.id", traceID),
					zap.String("url.path", c.Request().RequestURI),
					zap.String("http.request.method", c.Request().Method),
					zap.Int("http.response.status_code", code),
				)
			},
			HTTPError: func(c echo.Context, err *echo.HTTPError) {
				traceID := c.Response().Header().Get(echo.HeaderXRequestID)
				c.JSON(err.Code,
					handler.NewRESTStandardError(err.Code, fmt.Sprint(err.Message)).SetTraceID(traceID),
				)
			},
		},
	))
	app.Use(echo_middleware.Secure())
	if option.DevOP.APM {
		app.Use(apmechov4.Middleware())
	}
	app.Use(echo_middleware.CORS())
	app.Use(middleware.AbortRequest(&middleware.AbortRequestOption{
		Timeout: option.RequestTimeout,
		Skipper: func(c echo.Context) bool {
			// streams outlive any request budget
			return strings.Contains(c.Path(), "/ws/")
		},
	}))

	var (
		UserHandler     = handler.NewUserHandler(jwtUtil, kv, UserUseCase, validator)
		CourseHandler   = handler.NewCourseHandler(CourseUseCase)
		LearnHandler    = handler.NewLearnHandler(ProgressUseCase, CourseUseCase, UserUseCase, jwtUtil, validator)
		PresenceHandler = handler.NewPresenceHandler(Heartbeat, jwtUtil)
		AdminHandler    = handler.NewAdminHandler(CourseUseCase)
		StreamHandler   = handler.NewStreamHandler(Notifier, Heartbeat, jwtUtil, websocket)
	)

	createEndpoint(app,
		&endpoint{
			apiVersion:  "api/v1",
			middlewares: []echo.MiddlewareFunc{echo_middleware.RequestID(), middleware.SetTraceLogger(logger)},
			groups: []*apiGroup{
				{
					prefix: "/user",
					routes: []*route{
						{"POST", "/login", UserHandler.HandleSignIn, nil},
						{"PUT", "/sign-out", UserHandler.HandleSignOut, nil},
						{"POST", "/sign-up", UserHandler.HandleSignUp, nil},
						{"GET", "/exists", UserHandler.HandleUserExists, nil},
						{"GET", "/enrolled", LearnHandler.HandleListEnrolled, []echo.MiddlewareFunc{jwtMiddleware}},
					},
				},
				{
					prefix: "/courses",
					routes: []*route{
						{"GET", "", CourseHandler.HandleListCourses, nil},
						{"GET", "/:course", CourseHandler.HandleGetCourse, nil},
					},
				},
				{
					prefix:      "/learn",
					middlewares: []echo.MiddlewareFunc{jwtMiddleware, refreshMiddleware},
					routes: []*route{
						{"POST", "/:course/enroll", LearnHandler.HandleEnroll, nil},
						{"DELETE", "/:course/enroll", LearnHandler.HandleUnenroll, nil},
						{"GET", "/:course/outline", LearnHandler.HandleOutline, nil},
						{"GET", "/:course/progress", LearnHandler.HandleGetProgress, nil},
						{"GET", "/:course/modules/:module", LearnHandler.HandleGetModule, nil},
						{"GET", "/:course/lessons/:lesson", LearnHandler.HandleViewLesson, nil},
						{"GET", "/:course/lessons/:lesson/state", LearnHandler.HandleGetLessonState, nil},
						{"PUT", "/:course/lessons/:lesson/complete", LearnHandler.HandleCompleteLesson, nil},
						{"POST", "/:course/lessons/:lesson/quiz", LearnHandler.HandleSubmitQuiz, nil},
						{"PUT", "/:course/lessons/:lesson/score", LearnHandler.HandleRecordScore, nil},
					},
				},
				{
					prefix:      "/presence",
					middlewares: []echo.MiddlewareFunc{jwtMiddleware},
					routes: []*route{
						{"PUT", "", PresenceHandler.HandleBeat, nil},
					},
				},
				{
					prefix:      "/admin",
					middlewares: []echo.MiddlewareFunc{jwtMiddleware, refreshMiddleware, adminMiddleware},
					routes: []*route{
						{"PUT", "/courses", AdminHandler.HandleSaveCourse, nil},
						{"GET", "/courses/:course", AdminHandler.HandleGetCourse, nil},
						{"DELETE", "/courses/:course", AdminHandler.HandleDeleteCourse, nil},
						{"GET", "/presence/:user", PresenceHandler.HandleGetPresence, nil},
					},
				},
				{
					prefix:      "/ws",
					middlewares: []echo.MiddlewareFunc{jwtMiddleware},
					routes: []*route{
						{"GET", "/progress", StreamHandler.HandleProgressStream, nil},
					},
				},
			},
		})
	return app
}

func registerLivenessProbe(app *echo.Echo, db driver.ITransactionalDB, kv driver.KeyValueDB) {
	app.GET("/healthz", func(c echo.Context) error {
		ctx, cancel := context.WithTimeout(c.Request().Context(), probeTimeout)
		defer cancel()
		if db.Ping(ctx) == nil && kv.Ping(ctx) == nil {
			return c.NoContent(http.StatusOK)
		}
		return c.NoContent(http.StatusServiceUnavailable)
	})
}

func registerProfileEndpoints(app *echo.Echo) {
	expvarHandler := expvar.Handler()
	app.GET("/debug/vars", func(c echo.Context) error {
		expvarHandler.ServeHTTP(c.Response().Writer, c.Request())
		return nil
	})
	app.GET("/debug/pprof/", func(c echo.Context) error {
		pprof.Index(c.Response().Writer, c.Request())
		return nil
	})
	app.GET("/debug/pprof/:name", func(c echo.Context) error {
		switch c.Param("name") {
		case "cmdline":
			pprof.Cmdline(c.Response().Writer, c.Request())
		case "profile":
			pprof.Profile(c.Response().Writer, c.Request())
		case "symbol":
			pprof.Symbol(c.Response().Writer, c.Request())
		case "trace":
			pprof.Trace(c.Response().Writer, c.Request())
		default:
			pprof.Handler(c.Param("name")).ServeHTTP(c.Response().Writer, c.Request())
		}
		return nil
	})
}
