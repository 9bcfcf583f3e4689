package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/pot-code/course-gate/internal/course"
	infra "github.com/pot-code/course-gate/internal/infrastructure"
	"github.com/pot-code/course-gate/internal/infrastructure/driver"
	"github.com/pot-code/course-gate/internal/infrastructure/logging"
	"github.com/pot-code/course-gate/internal/infrastructure/uuid"
	"github.com/pot-code/course-gate/internal/infrastructure/validate"
	"github.com/pot-code/course-gate/internal/interfaces/rest"
	"github.com/pot-code/course-gate/internal/presence"
	"github.com/pot-code/course-gate/internal/progress"
	"github.com/pot-code/course-gate/internal/user"
	"go.uber.org/zap"
)

func main() {
	log.SetFlags(log.Lshortfile | log.Ldate | log.Ltime)
	option, err := infra.InitConfig()
	if err != nil {
		log.Fatal(err)
	}

	logger, err := logging.NewLogger(&logging.Config{
		FilePath: option.Logging.FilePath,
		Level:    option.Logging.Level,
		AppID:    option.AppID,
		Env:      option.Env,
	})
	if err != nil {
		log.Fatalf("Failed to create logger: %s\n", err)
	}
	logger = logger.With(
		zap.String("service.id", option.AppID),
	)
	defer logger.Sync()

	dbConn, err := driver.GetDBConnection(&driver.DBConfig{
		User:     option.Database.User,
		Password: option.Database.Password,
		MaxConn:  option.Database.MaxConn,
		Protocol: option.Database.Protocol,
		Driver:   option.Database.Driver,
		Host:     option.Database.Host,
		Port:     option.Database.Port,
		Query:    option.Database.Query,
		Schema:   option.Database.Schema,
	})
	if err != nil {
		log.Fatalf("Failed to create DB connection: %s\n", err)
	}
	logger.Debug("Create db connection instance", zap.String("db.driver", option.Database.Driver),
		zap.String("db.schema", option.Database.Schema),
		zap.String("db.host", option.Database.Host),
	)

	var kv driver.KeyValueDB
	switch option.KVStore.Driver {
	case "memory":
		kv = driver.NewMemoryKV()
		logger.Warn("Using in-memory kv store, progress is lost on restart")
	default:
		kv = driver.NewRedisClient(option.KVStore.Host, option.KVStore.Port, option.KVStore.Password)
	}
	defer kv.Close()

	validator := validate.NewValidator()
	catalog, err := course.LoadCatalog(option.Catalog.Path, validator)
	if err != nil {
		log.Fatalf("Failed to load course catalog: %s\n", err)
	}
	logger.Info("Course catalog loaded", zap.String("catalog.path", option.Catalog.Path),
		zap.Int("catalog.size", len(catalog.List())))
	go reloadOnHangup(catalog, logger)

	UUIDGenerator := uuid.NewNanoIDGenerator(option.Security.IDLength)
	CourseRepo := course.NewCourseRepository(dbConn)
	CourseUseCase := course.NewCourseUseCase(catalog, CourseRepo, UUIDGenerator, validator)

	UserRepo := user.NewUserRepository(dbConn, UUIDGenerator)
	UserUseCase := user.NewUserUseCase(UserRepo, CourseUseCase,
		option.Security.MaxLoginAttempts,
		option.Security.RetryTimeout)

	Notifier := progress.NewNotifier()
	ProgressRepo := progress.NewProgressRepository(kv)
	ProgressUseCase := progress.NewProgressUseCase(CourseUseCase, ProgressRepo, Notifier)

	Heartbeat := presence.NewHeartbeat(kv, option.Presence.Interval, option.Presence.TTL)

	rest.Serve(dbConn, kv, option, UserUseCase, CourseUseCase, ProgressUseCase, Notifier, Heartbeat, logger)
}

// reloadOnHangup re-read the catalog directory on SIGHUP, a broken catalog keeps the previous courses
func reloadOnHangup(catalog *course.Catalog, logger *zap.Logger) {
	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	for range hup {
		if err := catalog.Reload(); err != nil {
			logger.Error("Failed to reload course catalog", zap.Error(err))
			continue
		}
		logger.Info("Course catalog reloaded", zap.Int("catalog.size", len(catalog.List())))
	}
}

