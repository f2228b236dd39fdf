// Package db opens the application database and provides small helpers
// around database/sql.
package db

import (
	"database/sql"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	_ "modernc.org/sqlite" // SQLite driver
)

const (
	appName    = "vuplayer"
	dbFileName = "library.db"
)

// Open opens (creating if necessary) the SQLite database at path.
// An empty path resolves to the default XDG data location. The returned
// connection is limited to a single underlying connection so that all
// table operations are serialized through one transaction boundary.
func Open(path string) (*sql.DB, error) {
	if path == "" {
		var err error
		path, err = DefaultPath()
		if err != nil {
			return nil, err
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(`PRAGMA busy_timeout = 5000`); err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}

// DefaultPath returns the XDG data location for the library database.
func DefaultPath() (string, error) {
	return xdg.DataFile(filepath.Join(appName, dbFileName))
}
