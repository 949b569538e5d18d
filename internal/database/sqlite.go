package database

import (
	"log"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/codyseavey/pogo-parser/backend/internal/models"
)

var DB *gorm.DB

// Initialize opens the database at dbPath, migrates it and stores the handle in DB
func Initialize(dbPath string) error {
	db, err := Open(dbPath)
	if err != nil {
		return err
	}
	DB = db
	return nil
}

// Open connects to a sqlite database and brings its schema up to date.
// ":memory:" gives a throwaway database.
func Open(dbPath string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, err
	}

	log.Println("Database connected successfully")

	// Must run before AutoMigrate adds the unique spawn index
	if err := cleanupDuplicateSpawns(db); err != nil {
		return nil, err
	}

	err = db.AutoMigrate(
		&models.Event{},
		&models.EventRange{},
		&models.EventSpawn{},
		&models.UnresolvedMention{},
	)
	if err != nil {
		return nil, err
	}

	if err := RunMigrations(db); err != nil {
		return nil, err
	}

	log.Println("Database migration completed")
	return db, nil
}

func GetDB() *gorm.DB {
	return DB
}
