package library

import (
	"database/sql"
	"fmt"
)

const currentSchemaVersion = 3

// mediaColumns lists the media table columns in storage order.
// The cdda table carries the same columns plus the disc id.
var mediaColumns = []string{
	"filename", "filetime", "filesize",
	"duration", "samplerate", "bitspersample", "channels",
	"artist", "title", "album", "genre", "year",
	"comment", "track", "version",
	"gaintrack", "gainalbum", "artwork", "bitrate",
}

var cddaColumns = append(append([]string{}, mediaColumns...), "cddb")

// tableFor returns the storage table for a source kind.
// Streams share the media table; only optical-disc tracks are split out.
func tableFor(src Source) string {
	if src == SourceCDDA {
		return "cdda"
	}
	return "media"
}

func columnsFor(src Source) []string {
	if src == SourceCDDA {
		return cddaColumns
	}
	return mediaColumns
}

// initSchema creates or forward-migrates the database schema.
// It is idempotent: opening an older-version database file adds the
// missing columns with safe defaults and never loses data. A failure
// here is fatal to Open; there is no rollback.
func initSchema(db *sql.DB) error {
	const recordColumns = `
		filetime INTEGER,
		filesize INTEGER,
		duration REAL,
		samplerate INTEGER,
		bitspersample INTEGER,
		channels INTEGER,
		artist TEXT,
		title TEXT,
		album TEXT,
		genre TEXT,
		year INTEGER,
		comment TEXT,
		track INTEGER,
		version TEXT,
		gaintrack REAL,
		gainalbum REAL,
		artwork TEXT,
		bitrate REAL`

	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER PRIMARY KEY
		);

		CREATE TABLE IF NOT EXISTS media (
			filename TEXT PRIMARY KEY NOT NULL,` + recordColumns + `
		);

		CREATE TABLE IF NOT EXISTS cdda (
			filename TEXT PRIMARY KEY NOT NULL,` + recordColumns + `,
			cddb INTEGER
		);

		CREATE TABLE IF NOT EXISTS artwork (
			id TEXT PRIMARY KEY NOT NULL,
			image BLOB
		);

		CREATE INDEX IF NOT EXISTS idx_media_artist ON media(artist);
		CREATE INDEX IF NOT EXISTS idx_media_album ON media(album);
		CREATE INDEX IF NOT EXISTS idx_media_genre ON media(genre);
		CREATE INDEX IF NOT EXISTS idx_media_year ON media(year);
		CREATE INDEX IF NOT EXISTS idx_cdda_cddb ON cdda(cddb);
	`)
	if err != nil {
		return fmt.Errorf("create schema: %w", err)
	}

	if _, err := db.Exec(`
		INSERT INTO schema_version (version)
		SELECT ? WHERE NOT EXISTS (SELECT 1 FROM schema_version)
	`, currentSchemaVersion); err != nil {
		return fmt.Errorf("set schema version: %w", err)
	}

	// Migrations from earlier versions: columns are added defensively, so
	// opening an old database file never loses data. Errors mean the
	// column already exists. Deprecated peak columns from old files are
	// tolerated but never read or written.
	_, _ = db.Exec(`ALTER TABLE media ADD COLUMN artwork TEXT`)
	_, _ = db.Exec(`ALTER TABLE media ADD COLUMN bitrate REAL`)
	_, _ = db.Exec(`ALTER TABLE cdda ADD COLUMN artwork TEXT`)
	_, _ = db.Exec(`ALTER TABLE cdda ADD COLUMN bitrate REAL`)

	if _, err := db.Exec(`
		UPDATE schema_version SET version = ? WHERE version < ?
	`, currentSchemaVersion, currentSchemaVersion); err != nil {
		return fmt.Errorf("update schema version: %w", err)
	}

	return nil
}
