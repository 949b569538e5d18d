package database

import (
	"log"

	"gorm.io/gorm"
)

// cleanupDuplicateSpawns removes repeated species rows per event before the
// unique index is added, keeping the newest row
func cleanupDuplicateSpawns(db *gorm.DB) error {
	if !db.Migrator().HasTable("event_spawns") {
		return nil
	}
	if db.Migrator().HasIndex("event_spawns", "idx_event_species") {
		return nil
	}

	result := db.Exec(`
		DELETE FROM event_spawns
		WHERE id NOT IN (
			SELECT MAX(id)
			FROM event_spawns
			GROUP BY event_id, species_id
		)
	`)
	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected > 0 {
		log.Printf("Cleaned up %d duplicate event_spawns entries", result.RowsAffected)
	}
	return nil
}

// RunMigrations runs any custom data migrations after schema changes
func RunMigrations(db *gorm.DB) error {
	if err := migrateDatelessFlag(db); err != nil {
		return err
	}
	return migrateReportSeverity(db)
}

// migrateDatelessFlag marks events stored before the flag existed that have no ranges
func migrateDatelessFlag(db *gorm.DB) error {
	if !db.Migrator().HasColumn("events", "dateless") {
		return nil
	}
	result := db.Exec(`
		UPDATE events SET dateless = 1
		WHERE dateless = 0 AND id NOT IN (SELECT DISTINCT event_id FROM event_ranges)
	`)
	if result.Error != nil {
		log.Printf("Warning: failed to backfill dateless flag: %v", result.Error)
		return nil
	}
	if result.RowsAffected > 0 {
		log.Printf("Marked %d events as dateless", result.RowsAffected)
	}
	return nil
}

// migrateReportSeverity gives rows recorded without a severity the default "warn"
func migrateReportSeverity(db *gorm.DB) error {
	if db.Migrator().HasColumn("unresolved_mentions", "severity") {
		db.Exec(`UPDATE unresolved_mentions SET severity = 'warn' WHERE severity IS NULL OR severity = ''`)
	}
	return nil
}
