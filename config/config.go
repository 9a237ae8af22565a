// Package config loads the service settings from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/yeremiapane/venue-booking/utils"
	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	DriverMySQL  = "mysql"
	DriverSQLite = "sqlite"
)

// Config holds the application configuration
type Config struct {
	Port                  string
	GinMode               string
	DBDriver              string
	DBDSN                 string
	JWTSecret             string
	ChangeMonitorInterval time.Duration
	CORSOrigin            string
	LogLevel              string
	FloorPlanPath         string
	RateLimit             int
}

// Load reads .env (when present) and then the process environment.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		utils.InfoLogger.Debugf(".env file not loaded: %v", err)
	}

	return &Config{
		Port:                  getEnv("PORT", "8080"),
		GinMode:               getEnv("GIN_MODE", "debug"),
		DBDriver:              getEnv("DB_DRIVER", DriverSQLite),
		DBDSN:                 getEnv("DB_DSN", "venue.db"),
		JWTSecret:             os.Getenv("JWT_SECRET"),
		ChangeMonitorInterval: getDuration("CHANGE_MONITOR_INTERVAL", 500*time.Millisecond),
		CORSOrigin:            getEnv("CORS_ORIGIN", "http://127.0.0.1:5500"),
		LogLevel:              getEnv("LOG_LEVEL", "info"),
		FloorPlanPath:         getEnv("FLOOR_PLAN_PATH", "config/floorplan.yaml"),
		RateLimit:             getInt("RATE_LIMIT", 50),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getInt(key string, defaultValue int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
		utils.ErrorLogger.Printf("Invalid %s=%q, using %d", key, v, defaultValue)
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
		utils.ErrorLogger.Printf("Invalid %s=%q, using %s", key, v, defaultValue)
	}
	return defaultValue
}

// InitDB opens the database selected by DBDriver.
func InitDB(cfg *Config) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.DBDriver {
	case DriverMySQL:
		dialector = mysql.Open(cfg.DBDSN)
	case DriverSQLite:
		dialector = sqlite.Open(cfg.DBDSN)
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.DBDriver)
	}

	level := logger.Warn
	if cfg.GinMode == "release" {
		level = logger.Error
	}
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(level),
	})
	if err != nil {
		return nil, fmt.Errorf("open %s database: %w", cfg.DBDriver, err)
	}

	if cfg.DBDriver == DriverSQLite {
		// satu koneksi supaya trigger dan transaksi tidak saling mengunci
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxOpenConns(1)
	}

	utils.InfoLogger.Printf("Connected to %s database", cfg.DBDriver)
	return db, nil
}
