package db

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/monocle-dev/taskcalendar/internal/models"
	"github.com/sirupsen/logrus"
	gormmysql "gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	// Database drivers
	_ "github.com/lib/pq"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverMySQL    = "mysql"
)

// Connect opens a gorm handle for the given driver. The returned handle is
// the process-wide pool; request code derives sessions from it with
// WithContext.
func Connect(driver, dsn string, log *logrus.Logger) (*gorm.DB, error) {
	dialector, err := openDialector(driver, dsn)

	if err != nil {
		return nil, err
	}

	conn, err := gorm.Open(dialector, &gorm.Config{
		Logger:         newGormLogger(log),
		TranslateError: true,
	})

	if err != nil {
		return nil, fmt.Errorf("open %s database: %w", driver, err)
	}

	if normalizeDriver(driver) == DriverSQLite {
		sqlDB, err := conn.DB()
		if err != nil {
			return nil, fmt.Errorf("get sql.DB: %w", err)
		}
		// SQLite serializes writers; one connection avoids "database is locked".
		sqlDB.SetMaxOpenConns(1)
	}

	return conn, nil
}

// Migrate creates or updates the users, categories and tasks tables.
func Migrate(conn *gorm.DB) error {
	tables := []interface{}{
		&models.User{},
		&models.Category{},
		&models.Task{},
	}

	for _, model := range tables {
		if err := conn.AutoMigrate(model); err != nil {
			return fmt.Errorf("migrate %T: %w", model, err)
		}
	}

	return nil
}

// Close releases the underlying connection pool.
func Close(conn *gorm.DB) error {
	sqlDB, err := conn.DB()

	if err != nil {
		return err
	}

	return sqlDB.Close()
}

func normalizeDriver(driver string) string {
	switch strings.ToLower(strings.TrimSpace(driver)) {
	case "", "sqlite", "sqlite3":
		return DriverSQLite
	case "postgres", "postgresql":
		return DriverPostgres
	case "mysql":
		return DriverMySQL
	default:
		return driver
	}
}

func openDialector(driver, dsn string) (gorm.Dialector, error) {
	switch normalizeDriver(driver) {
	case DriverSQLite:
		if dsn == "" {
			dsn = "taskcalendar.db"
		}
		if err := ensureDirForSQLite(dsn); err != nil {
			return nil, err
		}
		return sqlite.Open(dsn), nil
	case DriverPostgres:
		sqlDB, err := sql.Open("postgres", dsn)
		if err != nil {
			return nil, fmt.Errorf("failed to open a postgres connection: %w", err)
		}
		return postgres.New(postgres.Config{Conn: sqlDB}), nil
	case DriverMySQL:
		cfg, err := mysql.ParseDSN(dsn)
		if err != nil {
			return nil, fmt.Errorf("parse mysql dsn: %w", err)
		}
		// Task dates are scanned into time.Time.
		cfg.ParseTime = true
		cfg.Loc = time.UTC
		sqlDB, err := sql.Open("mysql", cfg.FormatDSN())
		if err != nil {
			return nil, fmt.Errorf("failed to open a mysql connection: %w", err)
		}
		return gormmysql.New(gormmysql.Config{Conn: sqlDB}), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", driver)
	}
}

// ensureDirForSQLite creates the parent directory of a file-backed DSN.
func ensureDirForSQLite(dsn string) error {
	if strings.Contains(dsn, ":memory:") || strings.Contains(dsn, "mode=memory") {
		return nil
	}

	clean := strings.TrimPrefix(dsn, "file:")
	clean = strings.Split(clean, "?")[0]
	dir := filepath.Dir(clean)

	if dir == "." || dir == "" {
		return nil
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create db dir %q: %w", dir, err)
	}

	return nil
}

func newGormLogger(log *logrus.Logger) logger.Interface {
	if log == nil {
		return logger.Discard
	}

	level := logger.Warn
	if log.IsLevelEnabled(logrus.DebugLevel) {
		level = logger.Info
	}

	return logger.New(log, logger.Config{
		SlowThreshold:             time.Second,
		LogLevel:                  level,
		IgnoreRecordNotFoundError: true,
		Colorful:                  false,
	})
}
