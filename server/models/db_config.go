package models

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/skybiz/skybiz/server/logger"
	"github.com/skybiz/skybiz/shared"
	"github.com/skybiz/skybiz/utils"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

const DB_NAME = "skybiz.db"

var logg = logger.NewLogger("models")
var db *gorm.DB

// AutoMigrate opens the database and migrates the schema. Call EnsureGroups afterwards.
func AutoMigrate(config shared.DatabaseConfig, dbRootDir string) error {
	err := openDB(config, dbRootDir)
	if err != nil {
		return err
	}

	return migrate()
}

// InitializeTestDb replaces the package db with a fresh in-memory sqlite database.
func InitializeTestDb() {
	var err error

	db, err = gorm.Open(sqlite.Open("file::memory:"), gormConfig())
	if err != nil {
		log.Panic(err)
	}

	// Each connection to ':memory:' gets its own database
	sqlDB, err := db.DB()
	if err != nil {
		log.Panic(err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err = migrate(); err != nil {
		log.Panic(err)
	}

	if err = EnsureGroups(); err != nil {
		log.Panic(err)
	}
}

// EnsureGroups creates the Staff and User groups if they are missing. Safe to call repeatedly.
func EnsureGroups() error {
	for _, name := range []string{STAFF_GROUP, USER_GROUP} {
		group := Group{}
		res := db.Where(Group{Name: name}).FirstOrCreate(&group)
		if res.Error != nil {
			return fmt.Errorf("EnsureGroups: %v", res.Error)
		}

		if res.RowsAffected > 0 {
			logg.Infof("Inserted group '%v'", name)
		}
	}

	return nil
}

// SnapshotSqlite writes a consistent copy of the sqlite database to destPath.
func SnapshotSqlite(destPath string) error {
	if db.Dialector.Name() != "sqlite" {
		return errors.New("database snapshots are only supported for sqlite")
	}

	if utils.FileExist(destPath) {
		if err := os.Remove(destPath); err != nil {
			return err
		}
	}

	return db.Exec("VACUUM INTO ?", destPath).Error
}

// ---------------------------------------------------------------------------------//
// Helper functions
// --------------------------------------------------------------------------------//

func migrate() error {
	err := db.AutoMigrate(
		&Group{}, &Package{}, &User{}, &UserProfile{},
		&ContactMessage{}, &BusinessQuoteRequest{}, &SpeedTestResult{},
		&Branch{}, &NewsTicker{},
	)
	if err != nil {
		return fmt.Errorf("failed to migrate database: %v", err)
	}

	return nil
}

func openDB(config shared.DatabaseConfig, dbRootDir string) error {
	var dialector gorm.Dialector

	switch config.Driver {
	case "postgres":
		if config.DSN == "" {
			return errors.New("database.dsn is required for the postgres driver")
		}
		dialector = postgres.Open(config.DSN)
	case "sqlite":
		dsn := config.DSN
		if dsn == "" {
			path, err := SqliteFilePath(dbRootDir)
			if err != nil {
				return fmt.Errorf("failed to set sqlite DSN: %v", err)
			}
			dsn = fmt.Sprintf("file:%v?_journal_mode=WAL&_foreign_keys=1", path)
		}
		dialector = sqlite.Open(dsn)
	default:
		return fmt.Errorf("unsupported database driver %q", config.Driver)
	}

	var err error
	db, err = gorm.Open(dialector, gormConfig())
	if err != nil {
		return fmt.Errorf("failed to connect database: %v", err)
	}

	return nil
}

func gormConfig() *gorm.Config {
	return &gorm.Config{
		NowFunc: func() time.Time { return time.Now().UTC() },
		Logger: gormLogger.New(
			log.New(os.Stdout, "\r\n", log.LstdFlags),
			gormLogger.Config{
				LogLevel:                  gormLogger.Silent,
				IgnoreRecordNotFoundError: true,
				Colorful:                  false,
			},
		),
	}
}

// SqliteFilePath returns the path of the sqlite file used when no DSN is configured.
func SqliteFilePath(dbRootDir string) (string, error) {
	dbDir, err := DbDirectory(dbRootDir)
	if err != nil {
		return "", err
	}

	return filepath.Join(dbDir, DB_NAME), nil
}

func DbDirectory(dbRootDir string) (string, error) {
	dbDir := filepath.Join(dbRootDir, "db")

	err := utils.CreateDirIfNotExist(dbDir)
	if err != nil {
		return "", err
	}

	return dbDir, nil
}
