package db

import (
	"fmt"
	"log"
	"os"
	"sync"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	"github.com/rpillai/docuchat/internal/config"
	"github.com/rpillai/docuchat/internal/domain/chatModel"
	"github.com/rpillai/docuchat/internal/domain/docModel"
	"github.com/rpillai/docuchat/pkg/logger_i"
)

var (
	instance *gorm.DB
	once     sync.Once
	logger   *logger_i.Logger
)

// GetPostgres opens the shared gorm handle. Returns nil if the database is
// unreachable; callers decide whether that is fatal.
func GetPostgres() *gorm.DB {
	once.Do(func() {
		logger = logger_i.NewLogger("Postgres")
		instance = connect()
	})
	return instance
}

func connect() *gorm.DB {
	dsn := os.Getenv("POSTGRES_DSN")
	if dsn == "" {
		host := envOr("POSTGRES_HOST", config.PostgresHost)
		port := envOr("POSTGRES_PORT", config.PostgresPort)
		user := envOr("POSTGRES_USER", config.PostgresUser)
		password := os.Getenv("POSTGRES_PASSWORD")
		name := envOr("POSTGRES_NAME", config.PostgresName)
		dsn = fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable", user, password, host, port, name)
	}

	gormLog := gormLogger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		gormLogger.Config{
			SlowThreshold:             1 * time.Second,
			LogLevel:                  gormLogger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)

	handle, err := gorm.Open(postgres.Open(dsn), &gorm.Config{Logger: gormLog})
	if err != nil {
		logger.Error("could not connect to postgres", "error", err)
		return nil
	}

	if err := Migrate(handle); err != nil {
		logger.Error("migration failed", "error", err)
		return nil
	}

	logger.Info("Postgres connected")
	return handle
}

func Migrate(handle *gorm.DB) error {
	return handle.AutoMigrate(
		&docModel.Document{},
		&docModel.DocumentChunk{},
		&chatModel.ChatSession{},
		&chatModel.ChatMessage{},
	)
}

func envOr(key string, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
